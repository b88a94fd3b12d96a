package directory

import (
	"context"
	"sync"

	"github.com/glimte/mqlink-go/messaging"
)

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithPath sets the registry file path, overriding DefaultPath.
func WithPath(path string) ResolverOption {
	return func(r *Resolver) {
		r.path = path
	}
}

// WithFactoryName selects which registered connection factory to use.
func WithFactoryName(name string) ResolverOption {
	return func(r *Resolver) {
		r.factoryName = name
	}
}

// WithRegistry installs a pre-parsed registry, so no file is read.
func WithRegistry(reg *Registry) ResolverOption {
	return func(r *Resolver) {
		r.registry = reg
	}
}

// Resolver resolves connection factories and destinations from a registry
// file. The file is read once, on the first resolution, never at
// construction: building a resolver is free and cannot fail, and
// configuration problems surface on the first operation that needs the
// link.
type Resolver struct {
	mu          sync.Mutex
	path        string
	factoryName string
	registry    *Registry
}

// NewResolver creates a resolver. Without options it reads DefaultPath()
// and uses DefaultFactoryName.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{factoryName: DefaultFactoryName}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ConnectionFactory loads the registry if needed and opens the factory
// registered under the configured name.
func (r *Resolver) ConnectionFactory(ctx context.Context) (messaging.ConnectionFactory, error) {
	reg, err := r.load()
	if err != nil {
		return nil, err
	}
	url, err := reg.FactoryURL(r.factoryName)
	if err != nil {
		return nil, err
	}
	return messaging.OpenFactory(url)
}

// Destination translates alias through the registry and declares the
// physical queue on sess.
func (r *Resolver) Destination(ctx context.Context, sess messaging.Session, alias string) (messaging.Destination, error) {
	reg, err := r.load()
	if err != nil {
		return nil, err
	}
	name, err := reg.QueueName(alias)
	if err != nil {
		return nil, err
	}
	return sess.CreateDestination(ctx, name)
}

func (r *Resolver) load() (*Registry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registry != nil {
		return r.registry, nil
	}
	path := r.path
	if path == "" {
		path = DefaultPath()
	}
	reg, err := Load(path)
	if err != nil {
		return nil, err
	}
	r.registry = reg
	return reg, nil
}
