// Copyright 2025 Mqlink Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mqlink

import (
	"context"
	"log/slog"
	"time"

	"github.com/glimte/mqlink-go/contracts"
	"github.com/glimte/mqlink-go/directory"
	"github.com/glimte/mqlink-go/messaging"

	// The default transport. Importing it registers amqp and amqps URLs.
	_ "github.com/glimte/mqlink-go/transports/rabbitmq"
)

// Connector is the main entry point for mqlink-go: one lazily established
// link to one queue. Construction never fails and performs no I/O; the
// first send, consume or start call resolves configuration and builds the
// link, Close tears it down, and the next operation rebuilds it.
type Connector struct {
	manager *messaging.ConnectionManager
}

type connectorConfig struct {
	logger      *slog.Logger
	resolver    messaging.Resolver
	path        string
	factoryName string
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*connectorConfig)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ConnectorOption {
	return func(c *connectorConfig) {
		c.logger = logger
	}
}

// WithDirectory sets the registry file path for directory mode, overriding
// the MQLINK_DIRECTORY environment variable and the mqlink.yaml default.
func WithDirectory(path string) ConnectorOption {
	return func(c *connectorConfig) {
		c.path = path
	}
}

// WithFactoryName selects which of the registry's connection factory
// entries to use instead of "connectionFactory".
func WithFactoryName(name string) ConnectorOption {
	return func(c *connectorConfig) {
		c.factoryName = name
	}
}

// WithResolver installs a custom resolver, replacing directory or direct
// resolution entirely.
func WithResolver(resolver messaging.Resolver) ConnectorOption {
	return func(c *connectorConfig) {
		c.resolver = resolver
	}
}

// NewConnector creates a directory-mode connector for queueName. The
// queue name is a registry alias; broker endpoint and physical queue come
// from the registry file on first use.
func NewConnector(queueName string, options ...ConnectorOption) *Connector {
	cfg := applyConnectorOptions(options)
	resolver := cfg.resolver
	if resolver == nil {
		var dirOpts []directory.ResolverOption
		if cfg.path != "" {
			dirOpts = append(dirOpts, directory.WithPath(cfg.path))
		}
		if cfg.factoryName != "" {
			dirOpts = append(dirOpts, directory.WithFactoryName(cfg.factoryName))
		}
		resolver = directory.NewResolver(dirOpts...)
	}
	return newConnector(queueName, resolver, cfg)
}

// NewDirectConnector creates a direct-mode connector addressing queueName
// at brokerURL, bypassing any registry.
func NewDirectConnector(brokerURL, queueName string, options ...ConnectorOption) *Connector {
	cfg := applyConnectorOptions(options)
	resolver := cfg.resolver
	if resolver == nil {
		resolver = messaging.DirectResolver{URL: brokerURL}
	}
	return newConnector(queueName, resolver, cfg)
}

func applyConnectorOptions(options []ConnectorOption) *connectorConfig {
	cfg := &connectorConfig{logger: slog.Default()}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

func newConnector(queueName string, resolver messaging.Resolver, cfg *connectorConfig) *Connector {
	manager := messaging.NewConnectionManager(
		messaging.Config{QueueName: queueName, Resolver: resolver},
		messaging.WithLogger(cfg.logger),
	)
	return &Connector{manager: manager}
}

// SendText sends text as a single message.
func (c *Connector) SendText(ctx context.Context, text string) error {
	return c.manager.SendText(ctx, text)
}

// SendBytes sends an opaque payload. An empty contentType is sniffed from
// the data.
func (c *Connector) SendBytes(ctx context.Context, data []byte, contentType string) error {
	return c.manager.SendBytes(ctx, data, contentType)
}

// Send transmits any message.
func (c *Connector) Send(ctx context.Context, msg contracts.Message) error {
	return c.manager.Send(ctx, msg)
}

// Consume blocks until a message arrives or ctx is done.
func (c *Connector) Consume(ctx context.Context) (contracts.Message, error) {
	return c.manager.Consume(ctx)
}

// ConsumeTimeout waits up to timeout for a message; zero or less polls
// without waiting. An elapsed wait returns nil, nil.
func (c *Connector) ConsumeTimeout(ctx context.Context, timeout time.Duration) (contracts.Message, error) {
	return c.manager.ConsumeTimeout(ctx, timeout)
}

// ConsumeNoWait polls once and returns nil, nil when the queue is empty.
func (c *Connector) ConsumeNoWait(ctx context.Context) (contracts.Message, error) {
	return c.manager.ConsumeNoWait(ctx)
}

// StartMapMessage begins composing a typed key/value message.
func (c *Connector) StartMapMessage(ctx context.Context) (*messaging.MapMessageBuilder, error) {
	return c.manager.StartMapMessage(ctx)
}

// Close releases the link. It never fails and the connector stays usable:
// the next operation reconnects.
func (c *Connector) Close() {
	c.manager.Close()
}

// Stats returns a snapshot of the lifecycle counters.
func (c *Connector) Stats() messaging.LifecycleStats {
	return c.manager.Stats()
}

// State reports which handles are currently resolved.
func (c *Connector) State() messaging.LifecycleState {
	return c.manager.State()
}

// QueueName returns the configured destination name.
func (c *Connector) QueueName() string {
	return c.manager.QueueName()
}
