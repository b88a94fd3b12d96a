package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/mqlink-go/contracts"
	"github.com/glimte/mqlink-go/messaging"
)

// Producer publishes to one queue through the default exchange, with the
// queue name as routing key.
type Producer struct {
	ch     *amqp.Channel
	queue  string
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Send seals msg into an envelope and publishes it persistently.
func (p *Producer) Send(ctx context.Context, msg contracts.Message) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return &messaging.TransportError{Op: "publish", Err: ErrProducerClosed}
	}

	env, err := contracts.Seal(msg)
	if err != nil {
		return fmt.Errorf("seal message: %w", err)
	}
	body, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.ID,
		CorrelationId: env.CorrelationID,
		Timestamp:     env.Timestamp,
		Type:          string(env.Kind),
		Body:          body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return &messaging.TransportError{Op: "publish to " + p.queue, Err: err}
	}
	p.logger.Debug("published", "queue", p.queue, "id", env.ID, "kind", env.Kind)
	return nil
}

// Close marks the producer unusable. The channel belongs to the session
// and stays open.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
