package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/glimte/mqlink-go/contracts"
)

const mimeReadLimit = 512

// Config carries what a link needs to know before any I/O happens.
type Config struct {
	// QueueName is the destination name handed to the resolver on first use.
	// Under a directory resolver it is a logical alias; under a direct
	// resolver it is the physical queue name.
	QueueName string

	// Resolver supplies the connection factory and destinations.
	Resolver Resolver
}

// ConnectionManagerOption configures a ConnectionManager.
type ConnectionManagerOption func(*ConnectionManager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ConnectionManagerOption {
	return func(m *ConnectionManager) {
		m.logger = logger
	}
}

// ConnectionManager owns the lifecycle of one queue link: connection
// factory, connection, session, destination, producer and consumer.
// Handles are built lazily the first time an operation needs them and
// reused afterwards. Close releases them all and never fails, leaving the
// manager ready to rebuild the whole chain on the next operation.
//
// A handle is held exactly when its field is non-nil; a later handle is
// never present without its prerequisites. When one step of the chain
// fails, the steps already completed stay resolved, so a retry repeats
// only the failed step.
//
// All methods serialize on one mutex and are safe for concurrent use,
// though the link is designed for a single owning goroutine. Blocking
// waits inside Consume happen outside the lock so a concurrent Close is
// never wedged behind an idle queue.
type ConnectionManager struct {
	mu     sync.Mutex
	config Config
	logger *slog.Logger

	factory  ConnectionFactory
	conn     Connection
	sess     Session
	dest     Destination
	producer Producer
	consumer Consumer

	pending *MapMessageBuilder
	stats   LifecycleStats
}

// NewConnectionManager creates a manager for the configured queue. It
// never fails and performs no I/O; the first send, consume or start call
// establishes the link.
func NewConnectionManager(config Config, opts ...ConnectionManagerOption) *ConnectionManager {
	mimetype.SetLimit(mimeReadLimit)
	m := &ConnectionManager{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// QueueName returns the configured destination name.
func (m *ConnectionManager) QueueName() string {
	return m.config.QueueName
}

// ensureFactory resolves the connection factory unless one is already held.
func (m *ConnectionManager) ensureFactory(ctx context.Context) error {
	if m.factory != nil {
		return nil
	}
	factory, err := m.config.Resolver.ConnectionFactory(ctx)
	if err != nil {
		return fmt.Errorf("resolve connection factory: %w", err)
	}
	m.factory = factory
	m.stats.FactoryResolutions++
	m.logger.Debug("connection factory resolved")
	return nil
}

// ensureConnection opens the connection unless one is already held.
func (m *ConnectionManager) ensureConnection(ctx context.Context) error {
	if m.conn != nil {
		return nil
	}
	if err := m.ensureFactory(ctx); err != nil {
		return err
	}
	conn, err := m.factory.CreateConnection(ctx)
	if err != nil {
		return fmt.Errorf("open connection: %w", err)
	}
	m.conn = conn
	m.stats.ConnectionsOpened++
	m.logger.Debug("connection opened")
	return nil
}

// ensureSession opens the session unless one is already held.
func (m *ConnectionManager) ensureSession(ctx context.Context) error {
	if m.sess != nil {
		return nil
	}
	if err := m.ensureConnection(ctx); err != nil {
		return err
	}
	sess, err := m.conn.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	m.sess = sess
	m.stats.SessionsOpened++
	m.logger.Debug("session opened")
	return nil
}

// ensureDestination resolves the destination unless one is already held.
func (m *ConnectionManager) ensureDestination(ctx context.Context) error {
	if m.dest != nil {
		return nil
	}
	if err := m.ensureSession(ctx); err != nil {
		return err
	}
	dest, err := m.config.Resolver.Destination(ctx, m.sess, m.config.QueueName)
	if err != nil {
		return fmt.Errorf("resolve destination %q: %w", m.config.QueueName, err)
	}
	m.dest = dest
	m.stats.DestinationResolutions++
	m.logger.Debug("destination resolved", "queue", dest.Name())
	return nil
}

// ensureProducer creates the producer unless one is already held.
func (m *ConnectionManager) ensureProducer(ctx context.Context) error {
	if m.producer != nil {
		return nil
	}
	if err := m.ensureDestination(ctx); err != nil {
		return err
	}
	producer, err := m.sess.CreateProducer(ctx, m.dest)
	if err != nil {
		return fmt.Errorf("create producer: %w", err)
	}
	m.producer = producer
	m.stats.ProducersOpened++
	m.logger.Debug("producer created", "queue", m.dest.Name())
	return nil
}

// ensureConsumer creates the consumer unless one is already held.
func (m *ConnectionManager) ensureConsumer(ctx context.Context) error {
	if m.consumer != nil {
		return nil
	}
	if err := m.ensureDestination(ctx); err != nil {
		return err
	}
	consumer, err := m.sess.CreateConsumer(ctx, m.dest)
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	m.consumer = consumer
	m.stats.ConsumersOpened++
	m.logger.Debug("consumer created", "queue", m.dest.Name())
	return nil
}

// SendText sends text as a single message, establishing the link first if
// needed.
func (m *ConnectionManager) SendText(ctx context.Context, text string) error {
	return m.Send(ctx, contracts.NewTextMessage(text))
}

// SendBytes sends an opaque payload. An empty contentType is sniffed from
// the data.
func (m *ConnectionManager) SendBytes(ctx context.Context, data []byte, contentType string) error {
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	return m.Send(ctx, contracts.NewBytesMessage(data, contentType))
}

// Send transmits msg, establishing the link first if needed.
func (m *ConnectionManager) Send(ctx context.Context, msg contracts.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.send(ctx, msg)
}

// send requires m.mu to be held.
func (m *ConnectionManager) send(ctx context.Context, msg contracts.Message) error {
	if err := m.ensureProducer(ctx); err != nil {
		return err
	}
	if err := m.producer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s message: %w", msg.GetKind(), err)
	}
	m.stats.MessagesSent++
	m.logger.Debug("message sent", "id", msg.GetID(), "kind", msg.GetKind())
	return nil
}

// Consume blocks until a message arrives or ctx is done.
func (m *ConnectionManager) Consume(ctx context.Context) (contracts.Message, error) {
	consumer, err := m.lockedConsumer(ctx)
	if err != nil {
		return nil, err
	}
	msg, err := consumer.Receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	m.recordReceived(msg)
	return msg, nil
}

// ConsumeTimeout waits up to timeout for a message. A timeout of zero or
// less polls without waiting. An elapsed wait returns nil, nil: an empty
// queue is an outcome, not an error.
func (m *ConnectionManager) ConsumeTimeout(ctx context.Context, timeout time.Duration) (contracts.Message, error) {
	if timeout <= 0 {
		return m.ConsumeNoWait(ctx)
	}
	consumer, err := m.lockedConsumer(ctx)
	if err != nil {
		return nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	msg, err := consumer.Receive(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("receive: %w", err)
	}
	m.recordReceived(msg)
	return msg, nil
}

// ConsumeNoWait polls once and returns nil, nil when the queue is empty.
func (m *ConnectionManager) ConsumeNoWait(ctx context.Context) (contracts.Message, error) {
	consumer, err := m.lockedConsumer(ctx)
	if err != nil {
		return nil, err
	}
	msg, err := consumer.ReceiveNoWait(ctx)
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	m.recordReceived(msg)
	return msg, nil
}

// StartMapMessage establishes the producer and begins composing a map
// message. A builder from an earlier call is invalidated: one message is
// composed at a time.
func (m *ConnectionManager) StartMapMessage(ctx context.Context) (*MapMessageBuilder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureProducer(ctx); err != nil {
		return nil, err
	}
	if m.pending != nil {
		m.pending.invalidate()
	}
	b := newMapMessageBuilder(m)
	m.pending = b
	return b, nil
}

// Close releases every handle and never fails. Release errors are logged
// and swallowed so teardown always completes. All handle slots are
// cleared, so the next operation rebuilds the link from scratch, and a
// pending map message builder is invalidated because its producer is gone.
// Closing an already closed or never used manager is a no-op.
func (m *ConnectionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.producer != nil {
		if err := m.producer.Close(); err != nil {
			m.logger.Warn("producer close failed", "error", err)
		}
	}
	if m.consumer != nil {
		if err := m.consumer.Close(); err != nil {
			m.logger.Warn("consumer close failed", "error", err)
		}
	}
	if m.sess != nil {
		if err := m.sess.Close(); err != nil {
			m.logger.Warn("session close failed", "error", err)
		}
	}
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Warn("connection close failed", "error", err)
		}
	}

	m.factory = nil
	m.conn = nil
	m.sess = nil
	m.dest = nil
	m.producer = nil
	m.consumer = nil

	if m.pending != nil {
		m.pending.invalidate()
		m.pending = nil
	}

	m.stats.Closes++
	m.logger.Debug("link closed", "queue", m.config.QueueName)
}

// Stats returns a snapshot of the lifecycle counters.
func (m *ConnectionManager) Stats() LifecycleStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// State reports which handles are currently resolved.
func (m *ConnectionManager) State() LifecycleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return LifecycleState{
		Factory:     m.factory != nil,
		Connection:  m.conn != nil,
		Session:     m.sess != nil,
		Destination: m.dest != nil,
		Producer:    m.producer != nil,
		Consumer:    m.consumer != nil,
	}
}

// lockedConsumer establishes the consumer under the lock and hands the
// handle back so the caller can wait on it without holding the lock.
func (m *ConnectionManager) lockedConsumer(ctx context.Context) (Consumer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureConsumer(ctx); err != nil {
		return nil, err
	}
	return m.consumer, nil
}

func (m *ConnectionManager) recordReceived(msg contracts.Message) {
	if msg == nil {
		return
	}
	m.mu.Lock()
	m.stats.MessagesReceived++
	m.mu.Unlock()
	m.logger.Debug("message received", "id", msg.GetID(), "kind", msg.GetKind())
}

// finishMapMessage transmits the pending builder's message and ends the
// builder session. Requires that b is still pending; a builder superseded
// by a newer StartMapMessage or orphaned by Close fails the check. On a
// send failure the builder stays pending so the caller may retry.
func (m *ConnectionManager) finishMapMessage(ctx context.Context, b *MapMessageBuilder, msg *contracts.MapMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != b {
		panic(&UsageError{Op: "Send on invalidated builder"})
	}
	if err := m.send(ctx, msg); err != nil {
		return err
	}
	m.pending = nil
	return nil
}
