// Package config loads per-service configuration from the environment.
// Missing or invalid values fall back to fixed defaults rather than
// failing startup.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration shared by the chain services.
// Fields are populated from the environment; anything unset keeps the
// default supplied by the service binary.
type Config struct {
	ServiceName string `env:"SERVICE_NAME"`
	Version     string `env:"SERVICE_VERSION"`
	Environment string `env:"ENVIRONMENT"`
	Port        int    `env:"PORT"`

	// DownstreamURL is the next hop's base URL. Empty for the leaf service.
	DownstreamURL string `env:"DOWNSTREAM_URL"`

	LogLevel string `env:"LOG_LEVEL"`

	TraceExporter  string  `env:"TRACE_EXPORTER"`
	TraceEndpoint  string  `env:"OTLP_ENDPOINT"`
	TraceSamplePct float64 `env:"TRACE_SAMPLE_PCT"`

	MetricsExporter string `env:"METRICS_EXPORTER"`
	MetricsEndpoint string `env:"OTLP_METRICS_ENDPOINT"`

	// Simulated work bounds, milliseconds.
	WorkMinMS int `env:"WORK_MIN_MS"`
	WorkMaxMS int `env:"WORK_MAX_MS"`

	// DeclineRate is the simulated payment decline probability (payment
	// service only).
	DeclineRate float64 `env:"DECLINE_RATE"`
}

// Defaults carries the per-service values that differ between binaries.
type Defaults struct {
	ServiceName   string
	Port          int
	DownstreamURL string
}

func defaultConfig(d Defaults) *Config {
	return &Config{
		ServiceName:     d.ServiceName,
		Version:         "dev",
		Environment:     "development",
		Port:            d.Port,
		DownstreamURL:   d.DownstreamURL,
		LogLevel:        "info",
		TraceExporter:   "otlp",
		TraceEndpoint:   "tempo:4317",
		TraceSamplePct:  1.0,
		MetricsExporter: "prometheus",
		WorkMinMS:       10,
		WorkMaxMS:       100,
		DeclineRate:     0.2,
	}
}

// Load reads configuration from the environment on top of the defaults.
// On a malformed environment it returns the pristine defaults together
// with the parse error so the caller can log and continue.
func Load(d Defaults) (*Config, error) {
	cfg := defaultConfig(d)
	if err := env.Parse(cfg); err != nil {
		return defaultConfig(d), fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
