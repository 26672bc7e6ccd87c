package ticket

import (
	"os"
	"strconv"
	"time"
)

const (
	// DefaultHost is the default Redis server hostname
	DefaultHost = "localhost"

	// DefaultPort is the default Redis server port
	DefaultPort = 6379

	// DefaultTTL bounds how long a pending ticket stays redeemable. Sized to
	// exceed the worst-case ingestion time so a slow job can still report.
	DefaultTTL = 1200 * time.Second
)

// Config defines the connection settings for the ticket ledger's backing
// Redis instance.
type Config struct {
	// Host is the Redis server hostname or IP address
	// Default: "localhost"
	Host string `yaml:"host" envconfig:"TICKET_REDIS_HOST"`

	// Port is the Redis server port
	// Default: 6379
	Port int `yaml:"port" envconfig:"TICKET_REDIS_PORT"`

	// Username is the Redis username for ACL authentication (Redis 6.0+)
	// Leave empty for no username-based authentication
	Username string `yaml:"username" envconfig:"TICKET_REDIS_USERNAME"`

	// Password is the Redis password for authentication
	// Leave empty for no authentication
	Password string `yaml:"password" envconfig:"TICKET_REDIS_PASSWORD"`

	// DB is the Redis database number to use
	// Default: 0
	DB int `yaml:"db" envconfig:"TICKET_REDIS_DB"`

	// TTL is how long a pending ticket stays redeemable
	// Default: 1200s
	TTL time.Duration `yaml:"ttl" envconfig:"TICKET_TTL"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host: DefaultHost,
		Port: DefaultPort,
		TTL:  DefaultTTL,
	}
}

// NewConfig builds a Config from defaults overridden by the environment.
func NewConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("TICKET_REDIS_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("TICKET_REDIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	cfg.Username = os.Getenv("TICKET_REDIS_USERNAME")
	cfg.Password = os.Getenv("TICKET_REDIS_PASSWORD")
	if v := os.Getenv("TICKET_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DB = n
		}
	}
	if v := os.Getenv("TICKET_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TTL = d
		}
	}
	return cfg
}
