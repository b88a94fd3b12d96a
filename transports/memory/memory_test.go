package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/mqlink-go/contracts"
	"github.com/glimte/mqlink-go/messaging"
)

func openLink(t *testing.T) (messaging.Session, messaging.Destination) {
	t.Helper()
	ctx := context.Background()

	factory := NewFactory(NewBroker())
	conn, err := factory.CreateConnection(ctx)
	require.NoError(t, err)
	sess, err := conn.CreateSession(ctx)
	require.NoError(t, err)
	dest, err := sess.CreateDestination(ctx, "orders")
	require.NoError(t, err)
	return sess, dest
}

func TestProviderRegistration(t *testing.T) {
	t.Run("mem scheme is registered on import", func(t *testing.T) {
		assert.Contains(t, messaging.Schemes(), "mem")
	})

	t.Run("same URL shares a broker", func(t *testing.T) {
		url := "mem://" + uuid.NewString() + "/"

		a, err := messaging.OpenFactory(url)
		require.NoError(t, err)
		b, err := messaging.OpenFactory(url)
		require.NoError(t, err)

		assert.Same(t, a.(*Factory).Broker(), b.(*Factory).Broker())
	})

	t.Run("different hosts get different brokers", func(t *testing.T) {
		a, err := messaging.OpenFactory("mem://" + uuid.NewString() + "/")
		require.NoError(t, err)
		b, err := messaging.OpenFactory("mem://" + uuid.NewString() + "/")
		require.NoError(t, err)

		assert.NotSame(t, a.(*Factory).Broker(), b.(*Factory).Broker())
	})
}

func TestSendReceive(t *testing.T) {
	ctx := context.Background()

	t.Run("text message round trip", func(t *testing.T) {
		sess, dest := openLink(t)
		producer, err := sess.CreateProducer(ctx, dest)
		require.NoError(t, err)
		consumer, err := sess.CreateConsumer(ctx, dest)
		require.NoError(t, err)

		require.NoError(t, producer.Send(ctx, contracts.NewTextMessage("hello")))

		msg, err := consumer.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "hello", msg.(*contracts.TextMessage).Text)
	})

	t.Run("map entries keep their typing across the wire form", func(t *testing.T) {
		sess, dest := openLink(t)
		producer, err := sess.CreateProducer(ctx, dest)
		require.NoError(t, err)
		consumer, err := sess.CreateConsumer(ctx, dest)
		require.NoError(t, err)

		sent := contracts.NewMapMessage()
		sent.SetInt("count", 12)
		require.NoError(t, producer.Send(ctx, sent))

		msg, err := consumer.Receive(ctx)
		require.NoError(t, err)
		count, ok := msg.(*contracts.MapMessage).GetInt("count")
		require.True(t, ok)
		assert.Equal(t, int64(12), count)
	})

	t.Run("receive blocks until ctx is done", func(t *testing.T) {
		sess, dest := openLink(t)
		consumer, err := sess.CreateConsumer(ctx, dest)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()
		_, err = consumer.Receive(waitCtx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("no wait poll returns immediately on an empty queue", func(t *testing.T) {
		sess, dest := openLink(t)
		consumer, err := sess.CreateConsumer(ctx, dest)
		require.NoError(t, err)

		start := time.Now()
		msg, err := consumer.ReceiveNoWait(ctx)
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Nil(t, msg)
		assert.Less(t, elapsed, 50*time.Millisecond)
	})

	t.Run("queue depth tracks parked messages", func(t *testing.T) {
		broker := NewBroker()
		factory := NewFactory(broker)
		conn, err := factory.CreateConnection(ctx)
		require.NoError(t, err)
		sess, err := conn.CreateSession(ctx)
		require.NoError(t, err)
		dest, err := sess.CreateDestination(ctx, "depth")
		require.NoError(t, err)
		producer, err := sess.CreateProducer(ctx, dest)
		require.NoError(t, err)

		require.NoError(t, producer.Send(ctx, contracts.NewTextMessage("one")))
		require.NoError(t, producer.Send(ctx, contracts.NewTextMessage("two")))
		assert.Equal(t, 2, broker.QueueDepth("depth"))
	})
}

func TestClosedHandles(t *testing.T) {
	ctx := context.Background()

	t.Run("closed connection refuses sessions", func(t *testing.T) {
		factory := NewFactory(NewBroker())
		conn, err := factory.CreateConnection(ctx)
		require.NoError(t, err)
		require.NoError(t, conn.Close())

		_, err = conn.CreateSession(ctx)
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("closed producer refuses sends", func(t *testing.T) {
		sess, dest := openLink(t)
		producer, err := sess.CreateProducer(ctx, dest)
		require.NoError(t, err)
		require.NoError(t, producer.Close())

		err = producer.Send(ctx, contracts.NewTextMessage("x"))
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("closed consumer refuses receives", func(t *testing.T) {
		sess, dest := openLink(t)
		consumer, err := sess.CreateConsumer(ctx, dest)
		require.NoError(t, err)
		require.NoError(t, consumer.Close())

		_, err = consumer.ReceiveNoWait(ctx)
		assert.ErrorIs(t, err, ErrClosed)

		var transportErr *messaging.TransportError
		assert.ErrorAs(t, err, &transportErr)
	})
}
