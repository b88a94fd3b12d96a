package rabbitmq

import (
	"context"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/mqlink-go/messaging"
)

const connectionName = "mqlink"

// Factory dials one RabbitMQ endpoint. It holds only configuration;
// nothing touches the network until CreateConnection.
type Factory struct {
	url       string
	heartbeat time.Duration
	locale    string
	logger    *slog.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithHeartbeat sets the AMQP heartbeat interval.
func WithHeartbeat(interval time.Duration) FactoryOption {
	return func(f *Factory) {
		f.heartbeat = interval
	}
}

// WithLocale sets the AMQP locale.
func WithLocale(locale string) FactoryOption {
	return func(f *Factory) {
		f.locale = locale
	}
}

// WithFactoryLogger sets the logger.
func WithFactoryLogger(logger *slog.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a factory for url.
func NewFactory(url string, options ...FactoryOption) *Factory {
	f := &Factory{
		url:       url,
		heartbeat: 10 * time.Second,
		locale:    "en_US",
		logger:    slog.Default(),
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// CreateConnection dials the broker.
func (f *Factory) CreateConnection(ctx context.Context) (messaging.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, &messaging.TransportError{Op: "dial " + SanitizeURL(f.url), Err: err}
	}

	cfg := amqp.Config{
		Heartbeat:  f.heartbeat,
		Locale:     f.locale,
		Properties: amqp.NewConnectionProperties(),
	}
	cfg.Properties.SetClientConnectionName(connectionName)

	conn, err := amqp.DialConfig(f.url, cfg)
	if err != nil {
		return nil, &messaging.TransportError{Op: "dial " + SanitizeURL(f.url), Err: err}
	}
	f.logger.Debug("connected to broker", "url", SanitizeURL(f.url))
	return &Connection{conn: conn, logger: f.logger}, nil
}
