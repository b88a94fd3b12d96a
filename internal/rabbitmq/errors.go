package rabbitmq

import (
	"errors"
	"net/url"
)

var (
	// ErrConnectionClosed reports use of a connection that is gone.
	ErrConnectionClosed = errors.New("rabbitmq: connection is closed")

	// ErrProducerClosed reports a send through a closed producer.
	ErrProducerClosed = errors.New("rabbitmq: producer is closed")

	// ErrConsumerClosed reports a receive on a cancelled consumer.
	ErrConsumerClosed = errors.New("rabbitmq: consumer is closed")
)

// SanitizeURL redacts the password from a broker URL so it is safe to log.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
