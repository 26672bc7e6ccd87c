package rabbit

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerMessage wraps an AMQP delivery and implements Message.
type ConsumerMessage struct {
	body     []byte
	delivery *amqp.Delivery
}

// AckMsg acknowledges the message, removing it from the queue.
func (m *ConsumerMessage) AckMsg() error {
	return m.delivery.Ack(false)
}

// NackMsg rejects the message. With requeue false the message goes to the
// dead letter queue when one is configured.
func (m *ConsumerMessage) NackMsg(requeue bool) error {
	return m.delivery.Nack(false, requeue)
}

// Body returns the message payload.
func (m *ConsumerMessage) Body() []byte {
	return m.body
}

// Header returns the message headers.
func (m *ConsumerMessage) Header() map[string]interface{} {
	return m.delivery.Headers
}

// consumeQueue delivers messages from the named queue on a buffered channel.
// The returned channel is closed when the context is cancelled or the client
// shuts down. A closed delivery stream triggers a new Consume attempt so
// consumption survives reconnects.
func (rb *Client) consumeQueue(ctx context.Context, wg *sync.WaitGroup, queueName string) <-chan Message {
	outChan := make(chan Message, 100)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(outChan)
	outerLoop:
		for {
			select {
			case <-rb.shutdownSignal:
				rb.log.Info("stopping consumer on shutdown", nil, map[string]interface{}{"queue": queueName})
				return
			case <-ctx.Done():
				rb.log.Info("stopping consumer on context cancellation", ctx.Err(), map[string]interface{}{"queue": queueName})
				return
			default:
				rb.mu.RLock()
				msgs, err := rb.Channel.Consume(
					queueName,
					"",    // consumer
					false, // autoAck
					false, // exclusive
					false, // noLocal
					false, // noWait
					nil,   // args
				)
				rb.mu.RUnlock()

				if err != nil {
					rb.log.Error("failed to establish consumer", err, map[string]interface{}{"queue": queueName})
					time.Sleep(100 * time.Millisecond)
					continue
				}

				for {
					select {
					case <-ctx.Done():
						rb.log.Info("stopping consumer on context cancellation", ctx.Err(), map[string]interface{}{"queue": queueName})
						return
					case <-rb.shutdownSignal:
						rb.log.Info("stopping consumer on shutdown", nil, map[string]interface{}{"queue": queueName})
						return
					case msg, ok := <-msgs:
						if !ok {
							continue outerLoop
						}

						outChan <- &ConsumerMessage{
							body:     msg.Body,
							delivery: &msg,
						}
					}
				}
			}
		}
	}()
	return outChan
}

// Consume starts consuming ingestion jobs from the main queue.
func (rb *Client) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	return rb.consumeQueue(ctx, wg, rb.cfg.Channel.QueueName)
}

// ConsumeDLQ starts consuming failed jobs from the dead letter queue.
func (rb *Client) ConsumeDLQ(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	return rb.consumeQueue(ctx, wg, rb.cfg.DeadLetter.QueueName)
}

// Publish sends a message to the configured exchange. Jobs are published
// persistent so they survive a broker restart.
func (rb *Client) Publish(ctx context.Context, msg []byte, headers ...map[string]interface{}) error {
	var header map[string]interface{}
	if len(headers) > 0 {
		header = headers[0]
	}

	rb.mu.RLock()
	defer rb.mu.RUnlock()

	return rb.Channel.PublishWithContext(ctx,
		rb.cfg.Channel.ExchangeName,
		rb.cfg.Channel.RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			Headers:      header,
			ContentType:  rb.cfg.Channel.ContentType,
			DeliveryMode: amqp.Persistent,
			Body:         msg,
		},
	)
}
