package messaging

import (
	"net/url"
	"sort"
	"sync"
)

// Provider creates connection factories for the URL schemes it serves.
// Transport packages register themselves at init time, following the
// database/sql driver registration convention.
type Provider interface {
	// Schemes lists the URL schemes the provider serves
	Schemes() []string

	// NewConnectionFactory builds a factory for rawURL
	NewConnectionFactory(rawURL string) (ConnectionFactory, error)
}

var (
	providersMu sync.RWMutex
	providers   = make(map[string]Provider)
)

// RegisterProvider makes a provider available under its schemes. It panics
// if a scheme is already taken, which points at a double registration.
func RegisterProvider(p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	for _, scheme := range p.Schemes() {
		if _, dup := providers[scheme]; dup {
			panic("messaging: RegisterProvider called twice for scheme " + scheme)
		}
		providers[scheme] = p
	}
}

// Schemes returns the sorted list of registered URL schemes.
func Schemes() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	list := make([]string, 0, len(providers))
	for scheme := range providers {
		list = append(list, scheme)
	}
	sort.Strings(list)
	return list
}

// OpenFactory builds a connection factory for brokerURL using the provider
// registered for its scheme.
func OpenFactory(brokerURL string) (ConnectionFactory, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, &ConfigError{Op: "parse broker url", Name: brokerURL, Err: err}
	}
	providersMu.RLock()
	p, ok := providers[u.Scheme]
	providersMu.RUnlock()
	if !ok {
		return nil, &ConfigError{Op: "open factory", Name: u.Scheme, Err: ErrNoProvider}
	}
	return p.NewConnectionFactory(brokerURL)
}
