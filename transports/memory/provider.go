package memory

import (
	"context"
	"errors"
	"net/url"

	"github.com/glimte/mqlink-go/messaging"
)

// ErrClosed reports use of a closed in-memory handle.
var ErrClosed = errors.New("memory: closed")

// Provider creates in-process connection factories for mem URLs.
type Provider struct{}

func init() {
	messaging.RegisterProvider(Provider{})
}

// Schemes lists the URL schemes the in-process broker answers to.
func (Provider) Schemes() []string {
	return []string{"mem"}
}

// NewConnectionFactory binds a factory to the broker named by the URL
// host, so links built from the same URL share queues.
func (Provider) NewConnectionFactory(rawURL string) (messaging.ConnectionFactory, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &messaging.ConfigError{Op: "parse broker url", Name: rawURL, Err: err}
	}
	name := u.Host
	if name == "" {
		name = "default"
	}
	return &Factory{broker: brokerFor(name)}, nil
}

// Factory hands out connections to one in-process broker.
type Factory struct {
	broker *Broker
}

// NewFactory creates a factory bound to broker, for tests that want an
// isolated broker instance.
func NewFactory(broker *Broker) *Factory {
	return &Factory{broker: broker}
}

// Broker exposes the underlying broker for inspection.
func (f *Factory) Broker() *Broker {
	return f.broker
}

// CreateConnection opens a connection. There is no network behind it, so
// this cannot fail.
func (f *Factory) CreateConnection(ctx context.Context) (messaging.Connection, error) {
	return &Connection{broker: f.broker}, nil
}
