package rabbit

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Aleph-Alpha/docsearch/internal/logger"
)

// Client manages the AMQP connection and channel used for ingestion jobs.
// It reconnects automatically when the broker connection is lost.
type Client struct {
	cfg Config
	log *logger.Logger

	// Channel is the active AMQP channel. Guarded by mu together with conn.
	Channel *amqp.Channel
	conn    *amqp.Connection

	mu sync.RWMutex

	// shutdownSignal is closed when the client is being shut down.
	shutdownSignal    chan struct{}
	closeShutdownOnce sync.Once
}

// NewClient connects to RabbitMQ and sets up the ingestion topology.
// Consumers declare the exchange, queue and dead letter wiring; publishers
// only open a confirmed channel.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	conn, err := newConnection(cfg)
	if err != nil {
		return nil, err
	}

	ch, err := connectToChannel(conn, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Client{
		cfg:            cfg,
		log:            log,
		conn:           conn,
		Channel:        ch,
		shutdownSignal: make(chan struct{}),
	}, nil
}

// newConnection dials the broker. A short heartbeat keeps dead connections
// from lingering behind load balancers.
func newConnection(cfg Config) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(amqpURL(cfg.Connection), amqp.Config{
		Heartbeat: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbit at %s:%d: %w", cfg.Connection.Host, cfg.Connection.Port, err)
	}
	return conn, nil
}

// connectToChannel opens a channel with publisher confirms and, for
// consumers, declares the exchange, the dead letter pair and the main queue.
func connectToChannel(conn *amqp.Connection, cfg Config) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	if err = ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if !cfg.Channel.IsConsumer {
		return ch, nil
	}

	err = ch.ExchangeDeclare(
		cfg.Channel.ExchangeName,
		cfg.Channel.ExchangeType,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queueArgs := amqp.Table{}
	if cfg.DeadLetter.ExchangeName != "" && cfg.DeadLetter.Ttl > 0 {
		err = ch.ExchangeDeclare(
			cfg.DeadLetter.ExchangeName,
			"direct",
			true,  // Durable
			false, // AutoDelete
			false, // Internal
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			return nil, fmt.Errorf("failed to declare dead letter exchange: %w", err)
		}

		_, err = ch.QueueDeclare(
			cfg.DeadLetter.QueueName,
			true,  // Durable
			false, // AutoDelete
			false, // Exclusive
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			return nil, fmt.Errorf("failed to declare dead letter queue: %w", err)
		}

		err = ch.QueueBind(
			cfg.DeadLetter.QueueName,
			cfg.DeadLetter.RoutingKey,
			cfg.DeadLetter.ExchangeName,
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			return nil, fmt.Errorf("failed to bind dead letter queue: %w", err)
		}

		queueArgs = amqp.Table{
			"x-dead-letter-exchange":    cfg.DeadLetter.ExchangeName,
			"x-dead-letter-routing-key": cfg.DeadLetter.RoutingKey,
			"x-message-ttl":             cfg.DeadLetter.Ttl * 1000, // Convert to milliseconds
		}
	}

	_, err = ch.QueueDeclare(
		cfg.Channel.QueueName,
		true,      // Durable
		false,     // AutoDelete
		false,     // Exclusive
		false,     // NoWait
		queueArgs, // Arguments including dead letter config
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = ch.QueueBind(
		cfg.Channel.QueueName,
		cfg.Channel.RoutingKey,
		cfg.Channel.ExchangeName,
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	if cfg.Channel.PrefetchCount > 0 {
		if err = ch.Qos(cfg.Channel.PrefetchCount, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	return ch, nil
}

// RetryConnection watches the connection and re-establishes it when the
// broker drops it. Run it in a goroutine after NewClient.
func (rb *Client) RetryConnection(cfg Config) {
	defer rb.closeShutdownOnce.Do(func() {
		close(rb.shutdownSignal)
	})
outerLoop:
	for {
		errChan := make(chan *amqp.Error, 1)

		rb.mu.RLock()
		rb.conn.NotifyClose(errChan)
		rb.mu.RUnlock()

		select {
		case <-rb.shutdownSignal:
			return

		case closeErr := <-errChan:
			rb.log.Warn("rabbit connection closed, reconnecting", closeErr)
			for {
				select {
				case <-rb.shutdownSignal:
					return
				default:
					newConn, err := newConnection(cfg)
					if err != nil {
						rb.log.Error("rabbit reconnection failed", err)
						time.Sleep(time.Second)
						continue
					}

					rb.mu.Lock()
					rb.conn = newConn
					if rb.Channel != nil {
						_ = rb.Channel.Close()
					}
					rb.Channel, err = connectToChannel(newConn, cfg)
					rb.mu.Unlock()

					if err != nil {
						rb.log.Error("failed to re-establish rabbit channel", err)
						continue
					}

					rb.log.Info("reconnected to rabbit", nil)
					continue outerLoop
				}
			}
		}
	}
}

// GracefulShutdown stops consumers and closes the channel and connection.
func (rb *Client) GracefulShutdown() {
	rb.closeShutdownOnce.Do(func() {
		close(rb.shutdownSignal)
	})

	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.log.Info("shutting down rabbit client", nil)

	if rb.Channel != nil {
		if err := rb.Channel.Close(); err != nil {
			rb.log.Warn("failed to close rabbit channel", err)
		}
	}
	if rb.conn != nil && !rb.conn.IsClosed() {
		if err := rb.conn.Close(); err != nil {
			rb.log.Warn("failed to close rabbit connection", err)
		}
	}
}

// GetChannel exposes the underlying AMQP channel for direct operations.
func (rb *Client) GetChannel() *amqp.Channel {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.Channel
}
