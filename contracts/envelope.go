package contracts

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope wraps messages for transport. Routing fields are duplicated out
// of the body so transports can inspect them without decoding the payload.
type Envelope struct {
	ID            string            `json:"id"`
	Kind          Kind              `json:"kind"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlationId,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	Body          json.RawMessage   `json:"body"`
}

// Seal wraps a message in an envelope ready for transport.
func Seal(msg Message) (*Envelope, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("seal %s message: %w", msg.GetKind(), err)
	}
	return &Envelope{
		ID:            msg.GetID(),
		Kind:          msg.GetKind(),
		Timestamp:     msg.GetTimestamp(),
		CorrelationID: msg.GetCorrelationID(),
		Body:          body,
	}, nil
}

// Open reconstructs the concrete message held in the envelope body.
func (e *Envelope) Open() (Message, error) {
	switch e.Kind {
	case KindText:
		var m TextMessage
		if err := json.Unmarshal(e.Body, &m); err != nil {
			return nil, fmt.Errorf("open text message %s: %w", e.ID, err)
		}
		return &m, nil
	case KindMap:
		var m MapMessage
		if err := json.Unmarshal(e.Body, &m); err != nil {
			return nil, fmt.Errorf("open map message %s: %w", e.ID, err)
		}
		return &m, nil
	case KindBytes:
		var m BytesMessage
		if err := json.Unmarshal(e.Body, &m); err != nil {
			return nil, fmt.Errorf("open bytes message %s: %w", e.ID, err)
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("open envelope %s: %w: %q", e.ID, ErrUnknownKind, e.Kind)
	}
}

// Encode renders the envelope as JSON bytes for the wire.
func (e *Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope %s: %w", e.ID, err)
	}
	return data, nil
}

// DecodeEnvelope parses envelope bytes produced by Encode.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &e, nil
}
