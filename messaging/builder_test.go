package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/glimte/mqlink-go/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProducer struct {
	mock.Mock
}

func (p *mockProducer) Send(ctx context.Context, msg contracts.Message) error {
	args := p.Called(ctx, msg)
	return args.Error(0)
}

func (p *mockProducer) Close() error {
	args := p.Called()
	return args.Error(0)
}

func assertUsagePanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		_, ok := r.(*UsageError)
		assert.True(t, ok, "panic value should be *UsageError, got %T: %v", r, r)
	}()
	fn()
}

func TestMapMessageBuilder(t *testing.T) {
	ctx := context.Background()

	t.Run("empty builder sends a zero entry map message", func(t *testing.T) {
		link := newFakeLink()
		mgr := newTestManager(link)

		b, err := mgr.StartMapMessage(ctx)
		require.NoError(t, err)
		require.NoError(t, b.Send(ctx))

		require.Len(t, link.producer.sent, 1)
		sent, ok := link.producer.sent[0].(*contracts.MapMessage)
		require.True(t, ok)
		assert.Equal(t, 0, sent.Len())
		assert.NotEmpty(t, sent.GetID())
	})

	t.Run("chained adds accumulate with last write winning", func(t *testing.T) {
		link := newFakeLink()
		mgr := newTestManager(link)

		b, err := mgr.StartMapMessage(ctx)
		require.NoError(t, err)
		err = b.AddStringMap(map[string]string{"a": "1", "b": "2"}).
			AddString("a", "3").
			Send(ctx)
		require.NoError(t, err)

		sent := link.producer.sent[0].(*contracts.MapMessage)
		assert.Equal(t, 2, sent.Len())
		a, ok := sent.GetString("a")
		require.True(t, ok)
		assert.Equal(t, "3", a)
		bv, ok := sent.GetString("b")
		require.True(t, ok)
		assert.Equal(t, "2", bv)
	})

	t.Run("AddInt keeps integer typing", func(t *testing.T) {
		link := newFakeLink()
		mgr := newTestManager(link)

		b, err := mgr.StartMapMessage(ctx)
		require.NoError(t, err)
		require.NoError(t, b.AddInt("attempts", 7).Send(ctx))

		sent := link.producer.sent[0].(*contracts.MapMessage)
		n, ok := sent.GetInt("attempts")
		require.True(t, ok)
		assert.Equal(t, int64(7), n)
	})

	t.Run("start establishes the producer lazily", func(t *testing.T) {
		link := newFakeLink()
		mgr := newTestManager(link)

		_, err := mgr.StartMapMessage(ctx)
		require.NoError(t, err)
		assert.True(t, mgr.State().Producer)
		assert.Equal(t, 1, link.sess.prodCalls)
	})

	t.Run("add before start panics", func(t *testing.T) {
		var b MapMessageBuilder
		assertUsagePanic(t, func() { b.AddString("k", "v") })
	})

	t.Run("send before start panics", func(t *testing.T) {
		var b MapMessageBuilder
		assertUsagePanic(t, func() { _ = b.Send(ctx) })
	})

	t.Run("add after send panics", func(t *testing.T) {
		link := newFakeLink()
		mgr := newTestManager(link)

		b, err := mgr.StartMapMessage(ctx)
		require.NoError(t, err)
		require.NoError(t, b.AddString("k", "v").Send(ctx))

		assertUsagePanic(t, func() { b.AddString("k2", "v2") })
	})

	t.Run("send after send panics", func(t *testing.T) {
		link := newFakeLink()
		mgr := newTestManager(link)

		b, err := mgr.StartMapMessage(ctx)
		require.NoError(t, err)
		require.NoError(t, b.Send(ctx))

		assertUsagePanic(t, func() { _ = b.Send(ctx) })
	})

	t.Run("a newer builder invalidates the previous one", func(t *testing.T) {
		link := newFakeLink()
		mgr := newTestManager(link)

		old, err := mgr.StartMapMessage(ctx)
		require.NoError(t, err)
		fresh, err := mgr.StartMapMessage(ctx)
		require.NoError(t, err)

		assertUsagePanic(t, func() { old.AddString("k", "v") })
		require.NoError(t, fresh.Send(ctx))
	})

	t.Run("close invalidates the pending builder", func(t *testing.T) {
		link := newFakeLink()
		mgr := newTestManager(link)

		b, err := mgr.StartMapMessage(ctx)
		require.NoError(t, err)
		mgr.Close()

		assertUsagePanic(t, func() { b.AddString("k", "v") })
	})

	t.Run("send failure keeps the builder alive for a retry", func(t *testing.T) {
		producer := &mockProducer{}
		var delivered contracts.Message
		producer.On("Send", mock.Anything, mock.Anything).Return(errors.New("broker hiccup")).Once()
		producer.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			delivered = args.Get(1).(contracts.Message)
		}).Return(nil).Once()

		link := newFakeLink()
		link.sess.producer = producer
		mgr := newTestManager(link)

		b, err := mgr.StartMapMessage(ctx)
		require.NoError(t, err)
		b.AddString("user", "alice")

		require.Error(t, b.Send(ctx))
		require.NoError(t, b.Send(ctx), "builder survives a transport failure")

		mapMsg, ok := delivered.(*contracts.MapMessage)
		require.True(t, ok)
		user, ok := mapMsg.GetString("user")
		require.True(t, ok)
		assert.Equal(t, "alice", user)
		producer.AssertExpectations(t)

		assertUsagePanic(t, func() { _ = b.Send(ctx) })
	})
}
