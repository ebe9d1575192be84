package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var ErrGroupRunning = errors.New("consumer group already running")

// Runnable is a topic consumer the group can start and stop.
type Runnable interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup starts and stops a set of consumers as one unit. It never
// closes the subscriber they read from; that belongs to the Broker.
type ConsumerGroup struct {
	mu        sync.Mutex
	consumers []Runnable
	running   []Runnable
	logger    *zap.Logger
}

// NewConsumerGroup creates an empty group. name tags every log line.
func NewConsumerGroup(name string, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		logger: logger.With(zap.String("group", name)),
	}
}

func (g *ConsumerGroup) Add(consumers ...Runnable) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.consumers = append(g.consumers, consumers...)
}

// Topics lists the registered topics in registration order.
func (g *ConsumerGroup) Topics() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.topics()
}

func (g *ConsumerGroup) topics() []string {
	topics := make([]string, 0, len(g.consumers))
	for _, c := range g.consumers {
		topics = append(topics, c.Topic())
	}

	return topics
}

// Start starts the consumers in registration order. When one fails the
// consumers already running are stopped again and the group stays idle.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.running) > 0 {
		return ErrGroupRunning
	}

	for _, c := range g.consumers {
		if err := c.Start(ctx); err != nil {
			return errors.Join(fmt.Errorf("start %s consumer: %w", c.Topic(), err), g.stop())
		}

		g.running = append(g.running, c)
	}

	g.logger.Info("consumer group started", zap.Strings("topics", g.topics()))

	return nil
}

// Shutdown stops the running consumers, last started first, and joins their
// errors. It is a no-op on an idle group.
func (g *ConsumerGroup) Shutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.running) == 0 {
		return nil
	}

	g.logger.Info("stopping consumer group", zap.Int("running", len(g.running)))

	return g.stop()
}

func (g *ConsumerGroup) stop() error {
	var errs []error

	for i := len(g.running) - 1; i >= 0; i-- {
		c := g.running[i]
		if err := c.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s consumer: %w", c.Topic(), err))
		}
	}

	g.running = nil

	return errors.Join(errs...)
}
