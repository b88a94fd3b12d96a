package messaging

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProvider indicates a broker URL whose scheme has no registered provider.
	ErrNoProvider = errors.New("no provider registered for scheme")

	// ErrNameNotFound indicates a logical name missing from the directory registry.
	ErrNameNotFound = errors.New("name not found")
)

// ConfigError reports a failure to resolve configuration: a directory
// lookup miss, an unknown URL scheme or a malformed broker URL. It
// propagates to the caller untouched; there is nothing to retry.
type ConfigError struct {
	Op   string
	Name string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("config %s: %s: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransportError reports a broker interaction that failed: dialing, opening
// a session, declaring a queue, sending or receiving. It propagates to the
// caller untouched; retry policy belongs to the application.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UsageError reports a violation of the builder protocol, such as adding
// entries before StartMapMessage or after Send. It is delivered by panic:
// the program is wrong, not the environment, so the failure is immediate
// and loud.
type UsageError struct {
	Op string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %s", e.Op)
}
