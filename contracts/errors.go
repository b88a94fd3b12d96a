package contracts

import (
	"errors"
)

var (
	// ErrUnknownKind indicates an envelope whose kind tag is not recognized.
	ErrUnknownKind = errors.New("unknown message kind")

	// ErrUnknownValueKind indicates a map entry whose type tag is not recognized.
	ErrUnknownValueKind = errors.New("unknown value kind")

	// ErrNilMessage indicates an attempt to seal a nil message.
	ErrNilMessage = errors.New("nil message")
)
