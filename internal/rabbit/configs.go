package rabbit

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for the ingestion job transport.
const (
	DefaultHost          = "localhost"
	DefaultPort          = 5672
	DefaultExchangeName  = "docsearch.ingest"
	DefaultExchangeType  = "direct"
	DefaultRoutingKey    = "ingest"
	DefaultQueueName     = "docsearch.ingest"
	DefaultPrefetchCount = 1
	DefaultContentType   = "application/json"

	DefaultDLExchangeName = "docsearch.ingest.dlx"
	DefaultDLQueueName    = "docsearch.ingest.dlq"
	DefaultDLRoutingKey   = "ingest-failed"
	// DefaultDLTtl is the main queue message TTL in seconds.
	DefaultDLTtl = 3600
)

// Config is the top-level configuration for the RabbitMQ client.
type Config struct {
	Connection Connection
	Channel    Channel
	DeadLetter DeadLetter
}

// Connection holds the settings needed to reach the RabbitMQ server.
type Connection struct {
	Host         string `yaml:"host" envconfig:"RABBIT_HOST"`
	Port         uint   `yaml:"port" envconfig:"RABBIT_PORT"`
	User         string `yaml:"user" envconfig:"RABBIT_USER"`
	Password     string `yaml:"password" envconfig:"RABBIT_PASSWORD"`
	IsSSLEnabled bool   `yaml:"ssl" envconfig:"RABBIT_SSL_ENABLED"`
}

// Channel configures the exchange, queue and routing used for ingestion jobs.
type Channel struct {
	ExchangeName  string `yaml:"exchange_name" envconfig:"RABBIT_EXCHANGE_NAME"`
	ExchangeType  string `yaml:"exchange_type" envconfig:"RABBIT_EXCHANGE_TYPE"`
	RoutingKey    string `yaml:"routing_key" envconfig:"RABBIT_ROUTING_KEY"`
	QueueName     string `yaml:"queue_name" envconfig:"RABBIT_QUEUE_NAME"`
	PrefetchCount int    `yaml:"prefetch_count" envconfig:"RABBIT_PREFETCH_COUNT"`

	// IsConsumer controls whether exchanges and queues are declared.
	// Consumers declare the full topology, publishers rely on it existing.
	IsConsumer bool `yaml:"is_consumer" envconfig:"RABBIT_IS_CONSUMER"`

	ContentType string `yaml:"content_type" envconfig:"RABBIT_CONTENT_TYPE"`
}

// DeadLetter configures where rejected or expired ingestion jobs end up.
type DeadLetter struct {
	ExchangeName string `yaml:"exchange_name" envconfig:"RABBIT_DL_EXCHANGE_NAME"`
	QueueName    string `yaml:"queue_name" envconfig:"RABBIT_DL_QUEUE_NAME"`
	RoutingKey   string `yaml:"routing_key" envconfig:"RABBIT_DL_ROUTING_KEY"`

	// Ttl is the main queue message time-to-live in seconds.
	// A value of 0 disables dead-lettering entirely.
	Ttl int `yaml:"ttl" envconfig:"RABBIT_DL_TTL"`
}

// DefaultConfig returns a configuration wired for the ingestion topology.
func DefaultConfig() Config {
	return Config{
		Connection: Connection{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Channel: Channel{
			ExchangeName:  DefaultExchangeName,
			ExchangeType:  DefaultExchangeType,
			RoutingKey:    DefaultRoutingKey,
			QueueName:     DefaultQueueName,
			PrefetchCount: DefaultPrefetchCount,
			ContentType:   DefaultContentType,
		},
		DeadLetter: DeadLetter{
			ExchangeName: DefaultDLExchangeName,
			QueueName:    DefaultDLQueueName,
			RoutingKey:   DefaultDLRoutingKey,
			Ttl:          DefaultDLTtl,
		},
	}
}

// NewConfig builds a Config from defaults overridden by the environment.
func NewConfig() Config {
	cfg := DefaultConfig()

	setString(&cfg.Connection.Host, "RABBIT_HOST")
	if v := os.Getenv("RABBIT_PORT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.Connection.Port = uint(n)
		}
	}
	setString(&cfg.Connection.User, "RABBIT_USER")
	setString(&cfg.Connection.Password, "RABBIT_PASSWORD")
	cfg.Connection.IsSSLEnabled = os.Getenv("RABBIT_SSL_ENABLED") == "true"

	setString(&cfg.Channel.ExchangeName, "RABBIT_EXCHANGE_NAME")
	setString(&cfg.Channel.ExchangeType, "RABBIT_EXCHANGE_TYPE")
	setString(&cfg.Channel.RoutingKey, "RABBIT_ROUTING_KEY")
	setString(&cfg.Channel.QueueName, "RABBIT_QUEUE_NAME")
	if v := os.Getenv("RABBIT_PREFETCH_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Channel.PrefetchCount = n
		}
	}

	setString(&cfg.DeadLetter.ExchangeName, "RABBIT_DL_EXCHANGE_NAME")
	setString(&cfg.DeadLetter.QueueName, "RABBIT_DL_QUEUE_NAME")
	setString(&cfg.DeadLetter.RoutingKey, "RABBIT_DL_ROUTING_KEY")
	if v := os.Getenv("RABBIT_DL_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DeadLetter.Ttl = n
		}
	}

	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// amqpURL assembles the broker URL for the configured connection.
func amqpURL(conn Connection) string {
	scheme := "amqp"
	if conn.IsSSLEnabled {
		scheme = "amqps"
	}
	return fmt.Sprintf("%s://%s:%s@%s:%d", scheme, conn.User, conn.Password, conn.Host, conn.Port)
}
