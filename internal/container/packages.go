package container

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/link-ledger/internal/analytics"
	analyticsstore "github.com/serroba/link-ledger/internal/analytics/store"
	"github.com/serroba/link-ledger/internal/handlers"
	"github.com/serroba/link-ledger/internal/health"
	"github.com/serroba/link-ledger/internal/messaging"
	"github.com/serroba/link-ledger/internal/middleware"
	"github.com/serroba/link-ledger/internal/shortener"
	"github.com/serroba/link-ledger/internal/store"
	"go.uber.org/zap"
)

const analyticsConsumerGroup = "analytics"

func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*redis.Client, error) {
		opts := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: opts.RedisAddr}), nil
	})
}

func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*pgxpool.Pool, error) {
		opts := do.MustInvoke[*Options](i)

		pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return pool, nil
	})
}

func EventStorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (store.EventStore, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.EventStore {
		case BackendRedis:
			return store.NewRedisEventStore(do.MustInvoke[*redis.Client](i)), nil
		case BackendPostgres:
			pg := store.NewPostgresEventStore(do.MustInvoke[*pgxpool.Pool](i))
			if err := pg.EnsureSchema(context.Background()); err != nil {
				return nil, fmt.Errorf("ensure event schema: %w", err)
			}

			return pg, nil
		case BackendSQLite:
			return store.NewSQLiteEventStore(context.Background(), opts.SQLitePath)
		default:
			return shortener.NewEventLog(), nil
		}
	})
}

func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		serviceOpts := []shortener.Option{
			shortener.WithEventStore(do.MustInvoke[store.EventStore](i)),
			shortener.WithReservedSlugs(handlers.ReservedSlugs()...),
		}

		if opts.SlugPolicy == SlugPolicyRandom {
			gen, err := shortener.NewRandomGenerator(opts.SlugLength)
			if err != nil {
				return nil, err
			}

			serviceOpts = append(serviceOpts, shortener.WithSlugGenerator(gen))
		}

		if opts.StrictURLs {
			serviceOpts = append(serviceOpts, shortener.WithURLValidator(shortener.RequireAbsoluteURL))
		}

		svc := shortener.NewService(serviceOpts...)

		if err := svc.Restore(context.Background()); err != nil {
			return nil, err
		}

		logger.Info("event log restored",
			zap.String("eventStore", opts.EventStore),
			zap.Uint64("events", svc.EventCount()),
			zap.Int("links", svc.LinkCount()),
		)

		return svc, nil
	})
}

// BrokerPackage provides the analytics transport. The memory broker is one
// in-process pub/sub; the redis broker pairs a stream publisher with a stream
// subscriber in the analytics consumer group.
func BrokerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.Broker, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.Broker != BackendRedis {
			return messaging.NewInProcessBroker(logger), nil
		}

		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        client,
				ConsumerGroup: analyticsConsumerGroup,
			},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			_ = publisher.Close()

			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		return messaging.NewBroker(publisher, subscriber, logger), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers. The group is invoked
// after the broker, so the injector stops it before the broker closes.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		broker := do.MustInvoke[*messaging.Broker](i)

		group := messaging.NewConsumerGroup(analyticsConsumerGroup, logger)
		analytics.RegisterConsumers(group, broker.Subscriber(), analyticsstore.NewLog(logger), logger)

		return group, nil
	})
}

func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		svc := do.MustInvoke[*shortener.Service](i)
		broker := do.MustInvoke[*messaging.Broker](i)

		api := humachi.New(router, huma.DefaultConfig("Link Ledger", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))

		links := handlers.NewLinkHandler(
			svc,
			svc,
			opts.PublicBaseURL(),
			messaging.PublishTo[analytics.LinkCreatedEvent](broker, analytics.TopicLinkCreated),
			messaging.PublishTo[analytics.LinkRedirectedEvent](broker, analytics.TopicLinkRedirected),
			logger,
		)

		health.RegisterRoutes(api, health.NewHandler(do.MustInvoke[store.EventStore](i)))
		handlers.RegisterRoutes(api, links)

		return api, nil
	})
}
