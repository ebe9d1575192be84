package messaging

import (
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// Broker owns both ends of one message transport. Consumer groups and publish
// functions borrow its publisher and subscriber; only Shutdown closes them.
type Broker struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewBroker wraps a publisher and a subscriber. Either may be nil when a
// process only uses one side, and both may be the same pub/sub.
func NewBroker(publisher message.Publisher, subscriber message.Subscriber, logger *zap.Logger) *Broker {
	return &Broker{
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger,
	}
}

// NewInProcessBroker creates a broker backed by a single Go channel pub/sub.
func NewInProcessBroker(logger *zap.Logger) *Broker {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, NewZapLogger(logger))

	return NewBroker(pubSub, pubSub, logger)
}

func (b *Broker) Publisher() message.Publisher {
	return b.publisher
}

func (b *Broker) Subscriber() message.Subscriber {
	return b.subscriber
}

// PublishTo binds a typed publish function to the broker's publisher.
func PublishTo[T any](b *Broker, topic string) Publish[T] {
	return NewPublishFunc[T](b.publisher, topic)
}

// Shutdown closes the publisher and the subscriber once each. A pub/sub
// serving both sides is closed a single time. Later calls return the first
// result.
func (b *Broker) Shutdown() error {
	b.closeOnce.Do(func() {
		b.logger.Info("closing message broker")

		var errs []error

		if b.publisher != nil {
			errs = append(errs, b.publisher.Close())
		}

		if b.subscriber != nil && !b.shared() {
			errs = append(errs, b.subscriber.Close())
		}

		b.closeErr = errors.Join(errs...)
	})

	return b.closeErr
}

func (b *Broker) shared() bool {
	return any(b.publisher) == any(b.subscriber)
}
