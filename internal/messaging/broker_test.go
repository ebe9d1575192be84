package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/link-ledger/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockPubSub serves both sides of a transport and counts closes.
type mockPubSub struct {
	mockPublisher
	*mockSubscriber
}

func (m *mockPubSub) Close() error {
	return m.mockPublisher.Close()
}

func TestBroker_Shutdown(t *testing.T) {
	t.Run("closes publisher and subscriber", func(t *testing.T) {
		pub, sub := &mockPublisher{}, newMockSubscriber()
		broker := messaging.NewBroker(pub, sub, zap.NewNop())

		require.NoError(t, broker.Shutdown())
		assert.Equal(t, 1, pub.closes)
		assert.True(t, sub.closed)
	})

	t.Run("closes a shared pub/sub once", func(t *testing.T) {
		pubSub := &mockPubSub{mockSubscriber: newMockSubscriber()}
		broker := messaging.NewBroker(pubSub, pubSub, zap.NewNop())

		require.NoError(t, broker.Shutdown())
		assert.Equal(t, 1, pubSub.closes)
	})

	t.Run("second shutdown returns the first result", func(t *testing.T) {
		pub := &mockPublisher{closeErr: errors.New("close error")}
		broker := messaging.NewBroker(pub, nil, zap.NewNop())

		first := broker.Shutdown()
		second := broker.Shutdown()

		require.ErrorContains(t, first, "close error")
		assert.Equal(t, first, second)
		assert.Equal(t, 1, pub.closes)
	})
}

func TestBroker_PublishTo(t *testing.T) {
	pub := &mockPublisher{}
	broker := messaging.NewBroker(pub, nil, zap.NewNop())

	publish := messaging.PublishTo[publishTestEvent](broker, "link.redirected")
	require.NoError(t, publish(context.Background(), &publishTestEvent{Slug: "abc"}))

	assert.Equal(t, "link.redirected", pub.topic)
	assert.Equal(t, "link.redirected", pub.messages[0].Metadata.Get(messaging.MetadataTopic))
}

func TestInProcessBroker(t *testing.T) {
	t.Run("uses one pub/sub for both sides", func(t *testing.T) {
		broker := messaging.NewInProcessBroker(zap.NewNop())
		t.Cleanup(func() { _ = broker.Shutdown() })

		assert.Same(t, broker.Publisher(), broker.Subscriber())
	})

	t.Run("publishing still works after the consumer group stops", func(t *testing.T) {
		ctx := context.Background()
		broker := messaging.NewInProcessBroker(zap.NewNop())
		t.Cleanup(func() { _ = broker.Shutdown() })

		group := messaging.NewConsumerGroup("test", zap.NewNop())
		group.Add(messaging.NewConsumer(broker.Subscriber(), "link.created", noopHandler, zap.NewNop()))

		require.NoError(t, group.Start(ctx))
		require.NoError(t, group.Shutdown())

		publish := messaging.PublishTo[testEvent](broker, "link.created")

		assert.NoError(t, publish(ctx, &testEvent{Slug: "late"}))
	})

	t.Run("publishing fails once the broker is shut down", func(t *testing.T) {
		broker := messaging.NewInProcessBroker(zap.NewNop())
		require.NoError(t, broker.Shutdown())

		publish := messaging.PublishTo[testEvent](broker, "link.created")

		assert.Error(t, publish(context.Background(), &testEvent{Slug: "late"}))
	})
}
