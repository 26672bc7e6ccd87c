package registry

import (
	"os"
	"strconv"
	"time"
)

// Pool defaults mirror what the ingestion workload needs: short bursts of
// writes on dispatch, light reads on search enrichment.
const (
	DefaultHost            = "localhost"
	DefaultPort            = "5432"
	DefaultDbName          = "docsearch"
	DefaultSSLMode         = "disable"
	DefaultMaxOpenConns    = 50
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = time.Minute
)

// Config holds the document registry database settings.
type Config struct {
	Connection        Connection
	ConnectionDetails ConnectionDetails
}

// Connection contains the PostgreSQL connection parameters.
type Connection struct {
	Host     string `yaml:"host" envconfig:"REGISTRY_DB_HOST"`
	Port     string `yaml:"port" envconfig:"REGISTRY_DB_PORT"`
	User     string `yaml:"user" envconfig:"REGISTRY_DB_USER"`
	Password string `yaml:"password" envconfig:"REGISTRY_DB_PASSWORD"`
	DbName   string `yaml:"db_name" envconfig:"REGISTRY_DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"REGISTRY_DB_SSL_MODE"`
}

// ConnectionDetails tunes the underlying connection pool.
type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"REGISTRY_DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"REGISTRY_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"REGISTRY_DB_CONN_MAX_LIFETIME"`
}

// DefaultConfig returns a Config populated with local development defaults.
func DefaultConfig() Config {
	return Config{
		Connection: Connection{
			Host:    DefaultHost,
			Port:    DefaultPort,
			DbName:  DefaultDbName,
			SSLMode: DefaultSSLMode,
		},
		ConnectionDetails: ConnectionDetails{
			MaxOpenConns:    DefaultMaxOpenConns,
			MaxIdleConns:    DefaultMaxIdleConns,
			ConnMaxLifetime: DefaultConnMaxLifetime,
		},
	}
}

// NewConfig builds a Config from defaults overridden by the environment.
func NewConfig() Config {
	cfg := DefaultConfig()

	for key, dst := range map[string]*string{
		"REGISTRY_DB_HOST":     &cfg.Connection.Host,
		"REGISTRY_DB_PORT":     &cfg.Connection.Port,
		"REGISTRY_DB_USER":     &cfg.Connection.User,
		"REGISTRY_DB_PASSWORD": &cfg.Connection.Password,
		"REGISTRY_DB_NAME":     &cfg.Connection.DbName,
		"REGISTRY_DB_SSL_MODE": &cfg.Connection.SSLMode,
	} {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("REGISTRY_DB_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ConnectionDetails.MaxOpenConns = n
		}
	}
	if v := os.Getenv("REGISTRY_DB_MAX_IDLE_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ConnectionDetails.MaxIdleConns = n
		}
	}

	return cfg
}
