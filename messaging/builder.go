package messaging

import (
	"context"
	"sync"

	"github.com/glimte/mqlink-go/contracts"
)

type builderState int

const (
	builderUnstarted builderState = iota
	builderBuilding
	builderDone
	builderStale
)

// MapMessageBuilder composes one map message between StartMapMessage and
// Send. Add methods return the builder so calls chain. Using a builder out
// of order panics with *UsageError: before StartMapMessage, after a
// successful Send, or after the owning manager invalidated it by starting
// a newer builder or closing the link.
//
// A builder belongs to one goroutine at a time.
type MapMessageBuilder struct {
	mu      sync.Mutex
	state   builderState
	manager *ConnectionManager
	msg     *contracts.MapMessage
}

func newMapMessageBuilder(m *ConnectionManager) *MapMessageBuilder {
	return &MapMessageBuilder{
		state:   builderBuilding,
		manager: m,
		msg:     contracts.NewMapMessage(),
	}
}

// AddString stores a string entry under key.
func (b *MapMessageBuilder) AddString(key, value string) *MapMessageBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustBeBuilding("AddString")
	b.msg.SetString(key, value)
	return b
}

// AddInt stores an integer entry under key.
func (b *MapMessageBuilder) AddInt(key string, value int64) *MapMessageBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustBeBuilding("AddInt")
	b.msg.SetInt(key, value)
	return b
}

// AddStringMap stores every entry of values. Keys are unique, so a later
// add overwrites an earlier one and iteration order does not matter.
func (b *MapMessageBuilder) AddStringMap(values map[string]string) *MapMessageBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustBeBuilding("AddStringMap")
	for k, v := range values {
		b.msg.SetString(k, v)
	}
	return b
}

// Send transmits the accumulated message, empty or not, and ends the
// builder session. After a successful Send the builder is spent. On a
// transport failure the builder stays valid so the caller may retry or
// abandon it.
func (b *MapMessageBuilder) Send(ctx context.Context) error {
	msg := b.beginSend()
	if err := b.manager.finishMapMessage(ctx, b, msg); err != nil {
		return err
	}

	b.mu.Lock()
	b.state = builderDone
	b.mu.Unlock()
	return nil
}

func (b *MapMessageBuilder) beginSend() *contracts.MapMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustBeBuilding("Send")
	return b.msg
}

// invalidate marks the builder unusable. The manager calls it when a newer
// builder replaces this one or the link closes.
func (b *MapMessageBuilder) invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == builderBuilding {
		b.state = builderStale
	}
}

// mustBeBuilding requires b.mu to be held. It panics unless the builder is
// in its composing window.
func (b *MapMessageBuilder) mustBeBuilding(op string) {
	switch b.state {
	case builderBuilding:
	case builderUnstarted:
		panic(&UsageError{Op: op + " before StartMapMessage"})
	case builderDone:
		panic(&UsageError{Op: op + " after Send"})
	default:
		panic(&UsageError{Op: op + " on invalidated builder"})
	}
}
