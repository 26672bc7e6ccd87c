package vectorstore

import (
	"os"
	"strconv"
	"time"
)

// Config holds connection and behavior settings for the vector store gateway.
//
// It is intentionally minimal, readable, and easy to override from environment
// variables, YAML, or programmatically via helper methods.
//
// Example (builder style):
//
//	cfg := vectorstore.FromEndpoint("localhost").
//	    WithApiKey(os.Getenv("QDRANT_API_KEY")).
//	    WithTimeout(10 * time.Second)
type Config struct {
	// Hostname of the Qdrant server, e.g. "localhost".
	Endpoint string `yaml:"endpoint" env:"QDRANT_ENDPOINT"`

	// gRPC port of the Qdrant server. Defaults to 6334.
	Port int `yaml:"port" env:"QDRANT_PORT"`

	// Optional authentication token for secured deployments.
	ApiKey string `yaml:"api_key" env:"QDRANT_API_KEY"`

	// Collection name this gateway operates on.
	Collection string `yaml:"collection" env:"QDRANT_COLLECTION"`

	// Dimension of the dense embedding space.
	DenseDim uint64 `yaml:"dense_dim" env:"QDRANT_DENSE_DIM"`

	// Dimension of each token vector in the multi-vector space.
	MultiDim uint64 `yaml:"multi_dim" env:"QDRANT_MULTI_DIM"`

	// Maximum request duration before timing out.
	Timeout time.Duration `yaml:"timeout" env:"QDRANT_TIMEOUT"`

	// Whether to perform version compatibility checks between client and server.
	CheckCompatibility bool `yaml:"check_compatibility" env:"QDRANT_CHECK_COMPATIBILITY"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:           "localhost",
		Port:               6334,
		Collection:         "documents",
		DenseDim:           1024,
		MultiDim:           128,
		Timeout:            5 * time.Second,
		CheckCompatibility: true,
	}
}

// NewConfig builds a Config from defaults overridden by the environment.
func NewConfig() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("QDRANT_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	cfg.ApiKey = os.Getenv("QDRANT_API_KEY")
	if v := os.Getenv("QDRANT_COLLECTION"); v != "" {
		cfg.Collection = v
	}
	if v := os.Getenv("QDRANT_DENSE_DIM"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			cfg.DenseDim = n
		}
	}
	if v := os.Getenv("QDRANT_MULTI_DIM"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			cfg.MultiDim = n
		}
	}
	if v := os.Getenv("QDRANT_CHECK_COMPATIBILITY"); v == "false" {
		cfg.CheckCompatibility = false
	}
	return cfg
}

// FromEndpoint returns a default config pre-filled with a specific endpoint.
func FromEndpoint(host string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = host
	return cfg
}

// Builder-style helpers (optional, ergonomic)
func (c *Config) WithApiKey(key string) *Config {
	c.ApiKey = key
	return c
}

func (c *Config) WithCollection(name string) *Config {
	c.Collection = name
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithDimensions(dense, multi uint64) *Config {
	c.DenseDim = dense
	c.MultiDim = multi
	return c
}

func (c *Config) WithCompatibilityCheck(enabled bool) *Config {
	c.CheckCompatibility = enabled
	return c
}
