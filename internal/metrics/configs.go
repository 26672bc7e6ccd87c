package metrics

import "os"

// DefaultAddress is where the metrics HTTP server listens.
const DefaultAddress = ":9090"

// Config controls the Prometheus metrics endpoint.
type Config struct {
	// Address is the listen address for the /metrics server.
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// ServiceName is attached to every metric as a constant service label.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`

	// EnableDefaultCollectors registers the Go runtime, process and build
	// info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`
}

// DefaultConfig returns the metrics defaults for this service.
func DefaultConfig() Config {
	return Config{
		Address:                 DefaultAddress,
		ServiceName:             "docsearch",
		EnableDefaultCollectors: true,
	}
}

// NewConfig builds a Config from defaults overridden by the environment.
func NewConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("METRICS_SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("METRICS_ENABLE_DEFAULT_COLLECTORS"); v == "false" {
		cfg.EnableDefaultCollectors = false
	}
	return cfg
}
