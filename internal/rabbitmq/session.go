package rabbitmq

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/mqlink-go/messaging"
)

// Session wraps one AMQP channel. Producers and consumers created from it
// share the channel.
type Session struct {
	ch     *amqp.Channel
	logger *slog.Logger
}

// CreateDestination declares the named queue. Declaration is idempotent: a
// queue that already exists with matching attributes is left untouched.
func (s *Session) CreateDestination(ctx context.Context, name string) (messaging.Destination, error) {
	q, err := s.ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, &messaging.TransportError{Op: "declare queue " + name, Err: err}
	}
	s.logger.Debug("queue declared", "queue", q.Name, "messages", q.Messages)
	return Destination{name: q.Name}, nil
}

// CreateProducer creates a producer publishing to dest through the default
// exchange.
func (s *Session) CreateProducer(ctx context.Context, dest messaging.Destination) (messaging.Producer, error) {
	return &Producer{ch: s.ch, queue: dest.Name(), logger: s.logger}, nil
}

// CreateConsumer starts a delivery stream from dest with prefetch one.
func (s *Session) CreateConsumer(ctx context.Context, dest messaging.Destination) (messaging.Consumer, error) {
	if err := s.ch.Qos(1, 0, false); err != nil {
		return nil, &messaging.TransportError{Op: "set qos", Err: err}
	}
	tag := "mqlink-" + uuid.NewString()
	deliveries, err := s.ch.Consume(
		dest.Name(),
		tag,
		false, // manual ack, issued when a delivery is handed over
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, &messaging.TransportError{Op: "consume " + dest.Name(), Err: err}
	}
	s.logger.Debug("consumer started", "queue", dest.Name(), "tag", tag)
	return &Consumer{ch: s.ch, queue: dest.Name(), tag: tag, deliveries: deliveries, logger: s.logger}, nil
}

// Close releases the channel and with it every producer and consumer
// created from this session.
func (s *Session) Close() error {
	if err := s.ch.Close(); err != nil {
		return &messaging.TransportError{Op: "close session", Err: err}
	}
	return nil
}

// Destination is a declared queue.
type Destination struct {
	name string
}

// Name returns the physical queue name.
func (d Destination) Name() string {
	return d.name
}
