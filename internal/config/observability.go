package config

import "errors"

type ObservabilityConfig struct {
	ServiceName string         `koanf:"service_name"`
	Environment string         `koanf:"environment"`
	NewRelic    NewRelicConfig `koanf:"new_relic"`
}

type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
}

// Enabled reports whether New Relic should be started.
func (n NewRelicConfig) Enabled() bool {
	return n.LicenseKey != ""
}

func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		NewRelic: NewRelicConfig{DistributedTracingEnabled: true},
	}
}

func (o *ObservabilityConfig) Validate() error {
	if o.ServiceName == "" {
		return errors.New("service_name is required")
	}
	if o.NewRelic.LicenseKey != "" && len(o.NewRelic.LicenseKey) != 40 {
		return errors.New("new_relic.license_key must be 40 characters")
	}
	return nil
}
