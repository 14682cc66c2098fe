package metrics

import "github.com/kilianp07/disburse/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PushURL is a Prometheus Pushgateway receiving the registry after each batch.
	PushURL        string `json:"push_url"`
	Job            string `json:"job"`
	PrometheusPort string `json:"prometheus_port"`
}

// SetDefaults applies default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Job == "" {
		c.Job = "disburse"
	}
}
