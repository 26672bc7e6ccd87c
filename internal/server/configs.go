package server

import (
	"os"
	"strconv"
)

const (
	// DefaultAddress is the API listen address.
	DefaultAddress = ":8080"

	// DefaultMaxUploadBytes caps one multipart submission.
	DefaultMaxUploadBytes = 64 << 20
)

// Config controls the HTTP edge.
type Config struct {
	// Address is the listen address for the API server.
	Address string `yaml:"address" envconfig:"SERVER_ADDRESS"`

	// MaxUploadBytes bounds the multipart memory budget per request.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"SERVER_MAX_UPLOAD_BYTES"`
}

// DefaultConfig returns the HTTP edge defaults.
func DefaultConfig() Config {
	return Config{
		Address:        DefaultAddress,
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
}

// NewConfig builds a Config from defaults overridden by the environment.
func NewConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("SERVER_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n
		}
	}
	return cfg
}
