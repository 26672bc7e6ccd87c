// Package rabbit carries ingestion jobs between the API and the worker over
// RabbitMQ.
//
// The API publishes jobs with publisher confirms enabled; the worker declares
// the topology and consumes with a bounded prefetch. Jobs that the worker
// rejects are routed to a dead letter queue, and messages that sit unprocessed
// longer than the configured TTL expire there as well. The client reconnects
// automatically when the broker connection drops.
package rabbit
