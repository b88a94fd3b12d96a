package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glimte/mqlink-go/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryYAML = `
connection-factories:
  connectionFactory: dirtest://broker:5672/
  secondary: dirtest://standby:5672/
queues:
  UserQueue: users
  OrderQueue: orders
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mqlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// dirtestProvider hands out a fixed factory for dirtest:// URLs.
type dirtestProvider struct {
	factory messaging.ConnectionFactory
	opened  []string
}

func (p *dirtestProvider) Schemes() []string { return []string{"dirtest"} }

func (p *dirtestProvider) NewConnectionFactory(rawURL string) (messaging.ConnectionFactory, error) {
	p.opened = append(p.opened, rawURL)
	return p.factory, nil
}

type noopFactory struct{}

func (noopFactory) CreateConnection(ctx context.Context) (messaging.Connection, error) {
	return nil, nil
}

type recordingSession struct {
	declared []string
}

func (s *recordingSession) CreateDestination(ctx context.Context, name string) (messaging.Destination, error) {
	s.declared = append(s.declared, name)
	return queueDest(name), nil
}

func (s *recordingSession) CreateProducer(ctx context.Context, dest messaging.Destination) (messaging.Producer, error) {
	return nil, nil
}

func (s *recordingSession) CreateConsumer(ctx context.Context, dest messaging.Destination) (messaging.Consumer, error) {
	return nil, nil
}

func (s *recordingSession) Close() error { return nil }

type queueDest string

func (d queueDest) Name() string { return string(d) }

var testProvider = &dirtestProvider{factory: noopFactory{}}

func init() {
	messaging.RegisterProvider(testProvider)
}

func TestLoad(t *testing.T) {
	t.Run("parses factories and queues", func(t *testing.T) {
		path := writeRegistry(t, registryYAML)

		reg, err := Load(path)
		require.NoError(t, err)

		url, err := reg.FactoryURL("connectionFactory")
		require.NoError(t, err)
		assert.Equal(t, "dirtest://broker:5672/", url)

		queue, err := reg.QueueName("UserQueue")
		require.NoError(t, err)
		assert.Equal(t, "users", queue)
	})

	t.Run("missing file is a config error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		var cfgErr *messaging.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("malformed yaml is a config error", func(t *testing.T) {
		path := writeRegistry(t, "queues: [not, a, map]")

		_, err := Load(path)
		require.Error(t, err)
		var cfgErr *messaging.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("unknown names fail with ErrNameNotFound", func(t *testing.T) {
		path := writeRegistry(t, registryYAML)
		reg, err := Load(path)
		require.NoError(t, err)

		_, err = reg.FactoryURL("tertiary")
		assert.ErrorIs(t, err, messaging.ErrNameNotFound)

		_, err = reg.QueueName("GhostQueue")
		assert.ErrorIs(t, err, messaging.ErrNameNotFound)
	})
}

func TestDefaultPath(t *testing.T) {
	t.Run("environment overrides the default", func(t *testing.T) {
		t.Setenv(EnvPath, "/etc/mqlink/registry.yaml")
		assert.Equal(t, "/etc/mqlink/registry.yaml", DefaultPath())
	})

	t.Run("falls back to the working directory file", func(t *testing.T) {
		t.Setenv(EnvPath, "")
		assert.Equal(t, DefaultFile, DefaultPath())
	})
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("construction does not touch the file", func(t *testing.T) {
		resolver := NewResolver(WithPath(filepath.Join(t.TempDir(), "absent.yaml")))
		require.NotNil(t, resolver)

		_, err := resolver.ConnectionFactory(ctx)
		assert.Error(t, err, "the missing file surfaces on first use, not construction")
	})

	t.Run("resolves the default factory name", func(t *testing.T) {
		path := writeRegistry(t, registryYAML)
		resolver := NewResolver(WithPath(path))

		factory, err := resolver.ConnectionFactory(ctx)
		require.NoError(t, err)
		assert.NotNil(t, factory)
		assert.Equal(t, "dirtest://broker:5672/", testProvider.opened[len(testProvider.opened)-1])
	})

	t.Run("WithFactoryName selects another entry", func(t *testing.T) {
		path := writeRegistry(t, registryYAML)
		resolver := NewResolver(WithPath(path), WithFactoryName("secondary"))

		_, err := resolver.ConnectionFactory(ctx)
		require.NoError(t, err)
		assert.Equal(t, "dirtest://standby:5672/", testProvider.opened[len(testProvider.opened)-1])
	})

	t.Run("registry is loaded once and memoized", func(t *testing.T) {
		path := writeRegistry(t, registryYAML)
		resolver := NewResolver(WithPath(path))

		_, err := resolver.ConnectionFactory(ctx)
		require.NoError(t, err)

		// Later resolutions must not reread the file.
		require.NoError(t, os.Remove(path))
		sess := &recordingSession{}
		dest, err := resolver.Destination(ctx, sess, "OrderQueue")
		require.NoError(t, err)
		assert.Equal(t, "orders", dest.Name())
	})

	t.Run("destination translates the alias before declaring", func(t *testing.T) {
		resolver := NewResolver(WithRegistry(&Registry{
			Queues: map[string]string{"UserQueue": "users"},
		}))
		sess := &recordingSession{}

		dest, err := resolver.Destination(ctx, sess, "UserQueue")
		require.NoError(t, err)
		assert.Equal(t, "users", dest.Name())
		assert.Equal(t, []string{"users"}, sess.declared)
	})

	t.Run("unknown alias is not declared", func(t *testing.T) {
		resolver := NewResolver(WithRegistry(&Registry{}))
		sess := &recordingSession{}

		_, err := resolver.Destination(ctx, sess, "GhostQueue")
		assert.ErrorIs(t, err, messaging.ErrNameNotFound)
		assert.Empty(t, sess.declared)
	})
}
