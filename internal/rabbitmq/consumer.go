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

// Consumer receives from one queue over a dedicated delivery stream with
// prefetch one. Each delivery is acknowledged the moment it is handed to
// the caller: receiving transfers ownership, so there is no redelivery
// after a crash in application code.
type Consumer struct {
	ch         *amqp.Channel
	queue      string
	tag        string
	deliveries <-chan amqp.Delivery
	logger     *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Receive blocks until a delivery arrives or ctx is done.
func (c *Consumer) Receive(ctx context.Context) (contracts.Message, error) {
	select {
	case d, ok := <-c.deliveries:
		if !ok {
			return nil, &messaging.TransportError{Op: "receive", Err: ErrConsumerClosed}
		}
		return c.accept(d)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReceiveNoWait drains the local delivery buffer first and then asks the
// broker directly once, so a queued message that was not yet prefetched is
// still found. It returns nil, nil when the queue is empty.
func (c *Consumer) ReceiveNoWait(ctx context.Context) (contracts.Message, error) {
	select {
	case d, ok := <-c.deliveries:
		if !ok {
			return nil, &messaging.TransportError{Op: "receive", Err: ErrConsumerClosed}
		}
		return c.accept(d)
	default:
	}

	d, ok, err := c.ch.Get(c.queue, false)
	if err != nil {
		return nil, &messaging.TransportError{Op: "poll " + c.queue, Err: err}
	}
	if !ok {
		return nil, nil
	}
	return c.accept(d)
}

// accept acknowledges the delivery and decodes it into a message.
func (c *Consumer) accept(d amqp.Delivery) (contracts.Message, error) {
	if err := d.Ack(false); err != nil {
		return nil, &messaging.TransportError{Op: "ack", Err: err}
	}
	env, err := contracts.DecodeEnvelope(d.Body)
	if err != nil {
		return nil, fmt.Errorf("decode delivery %s: %w", d.MessageId, err)
	}
	msg, err := env.Open()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("received", "queue", c.queue, "id", env.ID, "kind", env.Kind)
	return msg, nil
}

// Close cancels the delivery stream. The channel belongs to the session
// and stays open. Closing twice is a no-op.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if err := c.ch.Cancel(c.tag, false); err != nil {
		return &messaging.TransportError{Op: "cancel " + c.tag, Err: err}
	}
	return nil
}
