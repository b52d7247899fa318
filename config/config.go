package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/zen-garden/zenop/core/runlog"
	"github.com/zen-garden/zenop/infra/engine"
	"github.com/zen-garden/zenop/infra/metrics"
	"github.com/zen-garden/zenop/infra/monitoring"
	"github.com/zen-garden/zenop/infra/mqtt"
)

// EnvPrefix marks environment variables overriding settings, e.g.
// ZENOP_ENGINE__WORK_DIR=/scratch sets engine.work_dir.
const EnvPrefix = "ZENOP_"

type Config struct {
	Engine  engine.Config     `json:"engine"`
	Metrics metrics.Config    `json:"metrics"`
	Logging runlog.Config     `json:"logging"`
	Notify  mqtt.Config       `json:"notify"`
	Sentry  monitoring.Config `json:"sentry"`
}

// Load reads settings from path and applies environment overrides. A
// missing file is an error unless optional is set, in which case only
// defaults and environment overrides apply.
func Load(path string, optional bool) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		_, serr := os.Stat(path)
		missing := errors.Is(serr, fs.ErrNotExist)
		if !missing || !optional {
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Engine.SetDefaults()
	c.Metrics.SetDefaults()
	c.Logging.SetDefaults()
	c.Notify.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return c.Notify.Validate()
}
