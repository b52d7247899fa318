package metrics

import (
	"fmt"
	"net/url"
)

// Config defines settings for the Prometheus sink.
type Config struct {
	// PrometheusEnabled turns on metric collection.
	PrometheusEnabled bool `json:"prometheus_enabled"`
	// PushgatewayURL receives the metrics when the run ends. Batch workers do
	// not live long enough to be scraped.
	PushgatewayURL string `json:"pushgateway_url"`
	// JobName is the push gateway job label.
	JobName string `json:"job_name"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.JobName == "" {
		c.JobName = "zenop"
	}
}

// Validate checks the push gateway URL.
func (c Config) Validate() error {
	if c.PushgatewayURL == "" {
		return nil
	}
	u, err := url.Parse(c.PushgatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid pushgateway_url %q", c.PushgatewayURL)
	}
	return nil
}
