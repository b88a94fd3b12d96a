// Package rabbitmq implements the queue link handles over AMQP 0.9.1.
//
// The mapping onto RabbitMQ:
//   - Factory dials one broker URL
//   - Connection wraps an AMQP connection
//   - Session wraps an AMQP channel
//   - Destination is a durable queue, declared on resolution
//   - Producer publishes through the default exchange with the queue name
//     as routing key
//   - Consumer runs a dedicated delivery stream with prefetch one and
//     acknowledges each delivery as it is handed to the caller
//
// The package holds no retry or reconnection machinery: a broken handle
// stays broken, and rebuilding after Close is the owner's job.
package rabbitmq
