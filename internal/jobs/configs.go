package jobs

import (
	"os"
	"strconv"
	"time"
)

const (
	// DefaultCallbackBaseURL is where the worker reports job completion.
	DefaultCallbackBaseURL = "http://localhost:8080"

	// DefaultNotifyTimeout bounds one report delivery attempt.
	DefaultNotifyTimeout = 10 * time.Second

	// DefaultNotifyMaxRetries bounds redeliveries after the first attempt.
	DefaultNotifyMaxRetries = 5
)

// Config holds the orchestration settings shared by dispatcher and worker.
type Config struct {
	// CallbackBaseURL is the external base URL of the API process. The
	// signed report path is appended to it.
	CallbackBaseURL string `yaml:"callback_base_url" envconfig:"JOBS_CALLBACK_BASE_URL"`

	// NotifyTimeout is the per-attempt timeout for report delivery.
	NotifyTimeout time.Duration `yaml:"notify_timeout" envconfig:"JOBS_NOTIFY_TIMEOUT_SECONDS"`

	// NotifyMaxRetries caps report delivery retries.
	NotifyMaxRetries uint64 `yaml:"notify_max_retries" envconfig:"JOBS_NOTIFY_MAX_RETRIES"`
}

// DefaultConfig returns the orchestration defaults.
func DefaultConfig() Config {
	return Config{
		CallbackBaseURL:  DefaultCallbackBaseURL,
		NotifyTimeout:    DefaultNotifyTimeout,
		NotifyMaxRetries: DefaultNotifyMaxRetries,
	}
}

// NewConfig builds a Config from defaults overridden by the environment.
func NewConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("JOBS_CALLBACK_BASE_URL"); v != "" {
		cfg.CallbackBaseURL = v
	}
	if v := os.Getenv("JOBS_NOTIFY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NotifyTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("JOBS_NOTIFY_MAX_RETRIES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil {
			cfg.NotifyMaxRetries = n
		}
	}
	return cfg
}
