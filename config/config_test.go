package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zenop.yaml")
	data := `engine:
  command: ["zen-garden"]
  work_dir: "/scratch"
metrics:
  prometheus_enabled: true
  pushgateway_url: "http://pushgateway:9091"
logging:
  backend: "sqlite"
  path: "runs.db"
notify:
  enabled: true
  broker: "tcp://localhost:1883"
  qos: 1
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path, false)
	require.NoError(t, err)
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"engine.command", cfg.Engine.Command[0], "zen-garden"},
		{"engine.work_dir", cfg.Engine.WorkDir, "/scratch"},
		{"metrics.prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.job_name", cfg.Metrics.JobName, "zenop"},
		{"logging.backend", cfg.Logging.Backend, "sqlite"},
		{"notify.broker", cfg.Notify.Broker, "tcp://localhost:1883"},
		{"notify.qos", cfg.Notify.QoS, byte(1)},
		{"notify.topic_prefix", cfg.Notify.TopicPrefix, "zenop/runs"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zenop.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"logging": {"backend": "jsonl", "path": "a.jsonl"}}`), 0o644))
	t.Setenv("ZENOP_LOGGING__PATH", "b.jsonl")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "b.jsonl", cfg.Logging.Path)
	assert.Equal(t, []string{"python", "-m", "zen_garden"}, cfg.Engine.Command)
}

func TestLoadOptionalMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenop.yaml")
	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "jsonl", cfg.Logging.Backend)

	_, err = Load(path, false)
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "zenop.toml"), true)
	assert.Error(t, err)

	path := filepath.Join(dir, "zenop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  backend: kafka\n"), 0o644))
	_, err = Load(path, false)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("notify:\n  enabled: true\n"), 0o644))
	_, err = Load(path, false)
	assert.Error(t, err)
}
