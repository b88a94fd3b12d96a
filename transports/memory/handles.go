package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/glimte/mqlink-go/contracts"
	"github.com/glimte/mqlink-go/messaging"
)

// Connection groups sessions over one broker. No OS resource backs it;
// Close only blocks further use.
type Connection struct {
	broker *Broker
	mu     sync.Mutex
	closed bool
}

// CreateSession opens a session on the connection.
func (c *Connection) CreateSession(ctx context.Context) (messaging.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, &messaging.TransportError{Op: "open session", Err: ErrClosed}
	}
	return &Session{broker: c.broker}, nil
}

// Close blocks further use of the connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Session creates destinations, producers and consumers on one broker.
type Session struct {
	broker *Broker
	mu     sync.Mutex
	closed bool
}

// CreateDestination materializes the named queue.
func (s *Session) CreateDestination(ctx context.Context, name string) (messaging.Destination, error) {
	if err := s.check("declare queue"); err != nil {
		return nil, err
	}
	s.broker.queue(name)
	return Destination(name), nil
}

// CreateProducer creates a producer for dest.
func (s *Session) CreateProducer(ctx context.Context, dest messaging.Destination) (messaging.Producer, error) {
	if err := s.check("create producer"); err != nil {
		return nil, err
	}
	return &Producer{name: dest.Name(), queue: s.broker.queue(dest.Name())}, nil
}

// CreateConsumer creates a consumer for dest.
func (s *Session) CreateConsumer(ctx context.Context, dest messaging.Destination) (messaging.Consumer, error) {
	if err := s.check("create consumer"); err != nil {
		return nil, err
	}
	return &Consumer{name: dest.Name(), queue: s.broker.queue(dest.Name())}, nil
}

// Close blocks further use of the session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Session) check(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &messaging.TransportError{Op: op, Err: ErrClosed}
	}
	return nil
}

// Destination is a named in-memory queue.
type Destination string

// Name returns the queue name.
func (d Destination) Name() string {
	return string(d)
}

// Producer sends to one in-memory queue.
type Producer struct {
	name   string
	queue  chan<- []byte
	mu     sync.Mutex
	closed bool
}

// Send seals msg and parks the bytes on the queue. A full queue blocks
// until there is room or ctx is done.
func (p *Producer) Send(ctx context.Context, msg contracts.Message) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return &messaging.TransportError{Op: "publish", Err: ErrClosed}
	}

	env, err := contracts.Seal(msg)
	if err != nil {
		return fmt.Errorf("seal message: %w", err)
	}
	body, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	select {
	case p.queue <- body:
		return nil
	case <-ctx.Done():
		return &messaging.TransportError{Op: "publish " + p.name, Err: ctx.Err()}
	}
}

// Close blocks further sends.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Consumer receives from one in-memory queue.
type Consumer struct {
	name   string
	queue  <-chan []byte
	mu     sync.Mutex
	closed bool
}

// Receive blocks until a message arrives or ctx is done.
func (c *Consumer) Receive(ctx context.Context) (contracts.Message, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	select {
	case body := <-c.queue:
		return decode(body)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReceiveNoWait polls once and returns nil, nil when the queue is empty.
func (c *Consumer) ReceiveNoWait(ctx context.Context) (contracts.Message, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	select {
	case body := <-c.queue:
		return decode(body)
	default:
		return nil, nil
	}
}

// Close blocks further receives.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Consumer) check() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &messaging.TransportError{Op: "receive", Err: ErrClosed}
	}
	return nil
}

func decode(body []byte) (contracts.Message, error) {
	env, err := contracts.DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	return env.Open()
}
