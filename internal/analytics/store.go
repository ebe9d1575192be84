package analytics

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/link-ledger/internal/messaging"
	"go.uber.org/zap"
)

// Store persists analytics events.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveLinkRedirected(ctx context.Context, event *LinkRedirectedEvent) error
}

// RegisterConsumers adds one consumer per analytics topic to group, each
// feeding store.
func RegisterConsumers(
	group *messaging.ConsumerGroup,
	subscriber message.Subscriber,
	store Store,
	logger *zap.Logger,
) {
	group.Add(
		messaging.NewConsumer(subscriber, TopicLinkCreated, store.SaveLinkCreated, logger),
		messaging.NewConsumer(subscriber, TopicLinkRedirected, store.SaveLinkRedirected, logger),
	)
}
