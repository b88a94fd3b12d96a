// Package rabbitmq provides the RabbitMQ transport provider.
//
// Importing the package registers the provider for amqp and amqps broker
// URLs:
//
//	import _ "github.com/glimte/mqlink-go/transports/rabbitmq"
//
// NewFactory builds standalone connection factories for resolvers that
// need non-default settings.
package rabbitmq

import (
	"log/slog"
	"time"

	"github.com/glimte/mqlink-go/internal/rabbitmq"
	"github.com/glimte/mqlink-go/messaging"
)

// Provider creates RabbitMQ connection factories for amqp and amqps URLs.
type Provider struct{}

func init() {
	messaging.RegisterProvider(Provider{})
}

// Schemes lists the URL schemes RabbitMQ answers to.
func (Provider) Schemes() []string {
	return []string{"amqp", "amqps"}
}

// NewConnectionFactory builds a factory with default settings for rawURL.
// Nothing is dialed until the factory creates its first connection.
func (Provider) NewConnectionFactory(rawURL string) (messaging.ConnectionFactory, error) {
	return rabbitmq.NewFactory(rawURL), nil
}

// Option configures factories built by NewFactory.
type Option = rabbitmq.FactoryOption

// WithHeartbeat sets the AMQP heartbeat interval.
func WithHeartbeat(interval time.Duration) Option {
	return rabbitmq.WithHeartbeat(interval)
}

// WithLocale sets the AMQP locale.
func WithLocale(locale string) Option {
	return rabbitmq.WithLocale(locale)
}

// WithLogger sets the logger for link lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return rabbitmq.WithFactoryLogger(logger)
}

// NewFactory builds a connection factory for url with explicit settings,
// for resolvers that do not go through the URL scheme registry.
func NewFactory(url string, opts ...Option) messaging.ConnectionFactory {
	return rabbitmq.NewFactory(url, opts...)
}
