package contracts

import (
	"time"
)

// Kind identifies the payload shape of a message.
type Kind string

const (
	// KindText marks a message carrying a plain string payload.
	KindText Kind = "text"
	// KindMap marks a message carrying typed key/value entries.
	KindMap Kind = "map"
	// KindBytes marks a message carrying an opaque byte payload.
	KindBytes Kind = "bytes"
)

// Message is the base interface for all messages
type Message interface {
	GetID() string
	GetTimestamp() time.Time
	GetKind() Kind
	GetCorrelationID() string
	SetCorrelationID(correlationID string)
}

// TextMessage carries a plain string payload
type TextMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// NewTextMessage creates a text message with generated ID and current timestamp
func NewTextMessage(text string) *TextMessage {
	return &TextMessage{
		BaseMessage: NewBaseMessage(KindText),
		Text:        text,
	}
}

// BytesMessage carries an opaque byte payload together with its content type
type BytesMessage struct {
	BaseMessage
	Data        []byte `json:"data"`
	ContentType string `json:"contentType,omitempty"`
}

// NewBytesMessage creates a bytes message with generated ID and current timestamp
func NewBytesMessage(data []byte, contentType string) *BytesMessage {
	return &BytesMessage{
		BaseMessage: NewBaseMessage(KindBytes),
		Data:        data,
		ContentType: contentType,
	}
}
