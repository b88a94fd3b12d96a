package messaging

import (
	"context"

	"github.com/glimte/mqlink-go/contracts"
)

// ConnectionFactory creates broker connections for one configured endpoint
type ConnectionFactory interface {
	// CreateConnection dials the broker and returns a live connection
	CreateConnection(ctx context.Context) (Connection, error)
}

// Connection is an open link to a broker
type Connection interface {
	// CreateSession opens an independent unit of work on the connection
	CreateSession(ctx context.Context) (Session, error)

	// Close releases the connection and everything opened on it
	Close() error
}

// Session is the context in which destinations, producers and consumers live
type Session interface {
	// CreateDestination resolves the named queue, declaring it if needed
	CreateDestination(ctx context.Context, name string) (Destination, error)

	// CreateProducer creates a producer bound to dest
	CreateProducer(ctx context.Context, dest Destination) (Producer, error)

	// CreateConsumer creates a consumer bound to dest
	CreateConsumer(ctx context.Context, dest Destination) (Consumer, error)

	// Close releases the session together with its producers and consumers
	Close() error
}

// Destination identifies a resolved queue
type Destination interface {
	// Name returns the physical queue name
	Name() string
}

// Producer sends messages to its destination
type Producer interface {
	// Send transmits one message
	Send(ctx context.Context, msg contracts.Message) error

	// Close releases the producer
	Close() error
}

// Consumer receives messages from its destination
type Consumer interface {
	// Receive blocks until a message arrives or ctx is done
	Receive(ctx context.Context) (contracts.Message, error)

	// ReceiveNoWait polls once and returns nil, nil when no message is ready
	ReceiveNoWait(ctx context.Context) (contracts.Message, error)

	// Close releases the consumer
	Close() error
}

// Resolver supplies the two lookups a link defers until first use: the
// connection factory for the configured endpoint, and destinations within
// an open session. Implementations decide where configuration comes from,
// a registry file or a literal broker URL.
type Resolver interface {
	// ConnectionFactory resolves the factory for the configured endpoint
	ConnectionFactory(ctx context.Context) (ConnectionFactory, error)

	// Destination resolves name to a destination within sess
	Destination(ctx context.Context, sess Session, name string) (Destination, error)
}
