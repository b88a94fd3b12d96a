package memory

import (
	"sync"
)

const defaultQueueDepth = 128

var (
	brokersMu sync.Mutex
	brokers   = map[string]*Broker{}
)

// brokerFor returns the process-wide broker registered under name,
// creating it on first use.
func brokerFor(name string) *Broker {
	brokersMu.Lock()
	defer brokersMu.Unlock()
	b, ok := brokers[name]
	if !ok {
		b = NewBroker()
		brokers[name] = b
	}
	return b
}

// Broker is a set of named in-memory queues.
type Broker struct {
	mu     sync.Mutex
	queues map[string]chan []byte
}

// NewBroker creates an empty broker detached from the process-wide
// registry, for tests that want full isolation.
func NewBroker() *Broker {
	return &Broker{queues: make(map[string]chan []byte)}
}

// queue returns the channel behind name, creating it on first use.
func (b *Broker) queue(name string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[name]
	if !ok {
		q = make(chan []byte, defaultQueueDepth)
		b.queues[name] = q
	}
	return q
}

// QueueDepth reports how many messages are parked in the named queue.
func (b *Broker) QueueDepth(name string) int {
	return len(b.queue(name))
}
