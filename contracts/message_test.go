package contracts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBaseMessage(t *testing.T) {
	t.Run("NewBaseMessage creates valid message", func(t *testing.T) {
		msg := NewBaseMessage(KindText)

		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, KindText, msg.Kind)
		assert.NotZero(t, msg.Timestamp)
		assert.Empty(t, msg.CorrelationID)

		// Verify ID is valid UUID
		_, err := uuid.Parse(msg.ID)
		assert.NoError(t, err)
	})

	t.Run("BaseMessage implements Message interface", func(t *testing.T) {
		base := NewBaseMessage(KindMap)

		assert.Equal(t, base.ID, base.GetID())
		assert.Equal(t, base.Kind, base.GetKind())
		assert.Equal(t, base.Timestamp, base.GetTimestamp())
		assert.Equal(t, base.CorrelationID, base.GetCorrelationID())

		corrID := uuid.New().String()
		base.SetCorrelationID(corrID)
		assert.Equal(t, corrID, base.GetCorrelationID())
	})
}

func TestTextMessage(t *testing.T) {
	t.Run("NewTextMessage carries the payload", func(t *testing.T) {
		msg := NewTextMessage("hello")

		assert.Equal(t, "hello", msg.Text)
		assert.Equal(t, KindText, msg.GetKind())
		assert.NotEmpty(t, msg.GetID())

		var m Message = msg
		assert.Equal(t, msg.ID, m.GetID())
	})
}

func TestBytesMessage(t *testing.T) {
	t.Run("NewBytesMessage carries data and content type", func(t *testing.T) {
		msg := NewBytesMessage([]byte{0x1, 0x2, 0x3}, "application/octet-stream")

		assert.Equal(t, []byte{0x1, 0x2, 0x3}, msg.Data)
		assert.Equal(t, "application/octet-stream", msg.ContentType)
		assert.Equal(t, KindBytes, msg.GetKind())
	})
}

func TestMapMessage(t *testing.T) {
	t.Run("NewMapMessage starts empty", func(t *testing.T) {
		msg := NewMapMessage()

		assert.Equal(t, 0, msg.Len())
		assert.Equal(t, KindMap, msg.GetKind())
	})

	t.Run("typed entries are stored and retrieved", func(t *testing.T) {
		msg := NewMapMessage()
		msg.SetString("name", "alice")
		msg.SetInt("age", 34)

		name, ok := msg.GetString("name")
		assert.True(t, ok)
		assert.Equal(t, "alice", name)

		age, ok := msg.GetInt("age")
		assert.True(t, ok)
		assert.Equal(t, int64(34), age)
	})

	t.Run("setting an existing key replaces its value", func(t *testing.T) {
		msg := NewMapMessage()
		msg.SetInt("count", 1)
		msg.SetInt("count", 2)
		msg.SetString("count", "two")

		assert.Equal(t, 1, msg.Len())
		s, ok := msg.GetString("count")
		assert.True(t, ok)
		assert.Equal(t, "two", s)

		_, ok = msg.GetInt("count")
		assert.False(t, ok, "entry was replaced by a string")
	})

	t.Run("typed getters reject mismatched kinds", func(t *testing.T) {
		msg := NewMapMessage()
		msg.SetString("key", "value")

		_, ok := msg.GetInt("key")
		assert.False(t, ok)
		_, ok = msg.GetString("missing")
		assert.False(t, ok)
	})

	t.Run("SetValue on zero value allocates the entry map", func(t *testing.T) {
		var msg MapMessage
		msg.SetString("k", "v")

		v, ok := msg.GetString("k")
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	})
}
