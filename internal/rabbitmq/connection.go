package rabbitmq

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/mqlink-go/messaging"
)

// Connection wraps one AMQP connection.
type Connection struct {
	conn   *amqp.Connection
	logger *slog.Logger
}

// CreateSession opens a channel on the connection.
func (c *Connection) CreateSession(ctx context.Context) (messaging.Session, error) {
	if c.conn.IsClosed() {
		return nil, &messaging.TransportError{Op: "open session", Err: ErrConnectionClosed}
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, &messaging.TransportError{Op: "open session", Err: err}
	}
	c.logger.Debug("session opened")
	return &Session{ch: ch, logger: c.logger}, nil
}

// Close shuts down the connection and everything opened on it. Closing an
// already closed connection is a no-op.
func (c *Connection) Close() error {
	if c.conn.IsClosed() {
		return nil
	}
	if err := c.conn.Close(); err != nil {
		return &messaging.TransportError{Op: "close connection", Err: err}
	}
	return nil
}
