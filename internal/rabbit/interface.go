package rabbit

import (
	"context"
	"sync"
)

// Publisher sends serialized ingestion jobs to the broker.
type Publisher interface {
	Publish(ctx context.Context, msg []byte, headers ...map[string]interface{}) error
}

// Consumer delivers ingestion jobs from the broker.
type Consumer interface {
	Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message
	ConsumeDLQ(ctx context.Context, wg *sync.WaitGroup) <-chan Message
}

// Message represents a consumed delivery. Implementations must support
// acknowledgment so that failed jobs can be routed to the dead letter queue.
type Message interface {
	// AckMsg acknowledges the message, removing it from the queue.
	AckMsg() error

	// NackMsg negatively acknowledges the message.
	// If requeue is true the message is requeued, otherwise it is
	// dead-lettered when a DLQ is configured.
	NackMsg(requeue bool) error

	// Body returns the message payload.
	Body() []byte

	// Header returns the message headers.
	Header() map[string]interface{}
}
