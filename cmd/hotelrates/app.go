package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"hotelrates/internal/app/middleware"
	appoutbox "hotelrates/internal/app/outbox"
	"hotelrates/internal/app/policies"
	"hotelrates/internal/app/registry"
	"hotelrates/internal/app/services/catalog"
	"hotelrates/internal/app/uow"
	"hotelrates/internal/infra/broker/kafka"
	rediscache "hotelrates/internal/infra/cache/redis"
	"hotelrates/internal/infra/config"
	mongoinfra "hotelrates/internal/infra/db/mongo"
	ginserver "hotelrates/internal/infra/http/gin"
	"hotelrates/internal/infra/inbox"
	"hotelrates/internal/infra/obs"
	outboxinfra "hotelrates/internal/infra/outbox"
	"hotelrates/internal/infra/security"
	"hotelrates/internal/infra/storage/memory"
	"hotelrates/internal/infra/storage/s3"
)

type application struct {
	buses    registry.Buses
	catalog  *catalog.Service
	worker   *outboxinfra.Worker
	metrics  *obs.Metrics
	verifier ginserver.TokenVerifier
	checks   map[string]func(context.Context) error
	closers  []func(context.Context) error
}

type storage struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	feed        policies.ChangeFeed
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{checks: map[string]func(context.Context) error{}}
	instance := instanceID()

	var observer registry.Observer
	if cfg.MetricsEnabled {
		app.metrics = obs.NewMetrics("hotelrates")
		observer = app.metrics
	}

	st, err := app.buildStorage(ctx, cfg, logger, instance)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	app.catalog = &catalog.Service{Feed: st.feed, Logger: logger, RetryBackoff: firstBackoff(cfg.RetryBackoff)}
	if app.metrics != nil {
		app.catalog.OnChange = func(ch policies.Change) { app.metrics.CatalogChanged(ch.Collection) }
	}

	var quoteCache policies.QuoteCache = memory.NewQuoteCache()
	if cfg.RedisAddr != "" {
		client, err := rediscache.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("redis: %w", err)
		}
		cache := rediscache.NewQuoteCache(client, instance)
		quoteCache = cache
		app.checks["redis"] = cache.Ping
		app.closers = append(app.closers, func(context.Context) error { return client.Close() })
	}

	var photos policies.PhotoStore
	if cfg.PhotosEnabled() {
		store, err := s3.NewPhotoStore(s3.Options{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			app.close(logger)
			return nil, err
		}
		photos = store
		app.checks["s3"] = store.Ping
	} else {
		logger.Warn("S3_ENDPOINT not set, photo uploads disabled")
	}

	if cfg.JWTSecret != "" {
		app.verifier = security.TokenVerifier{Secret: []byte(cfg.JWTSecret), Issuer: security.DefaultIssuer}
	} else {
		logger.Warn("JWT_SECRET not set, admin endpoints will reject every request")
	}

	app.buses = registry.Build(registry.Deps{
		UoW:         st.factory,
		Outbox:      st.outbox,
		Encoder:     appoutbox.JSONEventEncoder{},
		Idempotency: st.idempotency,
		Photos:      photos,
		QuoteCache:  quoteCache,
		Catalog:     app.catalog,
		CacheTTL:    cfg.QuoteCacheTTL,
		Logger:      logger,
		Observer:    observer,
	})
	return app, nil
}

func (a *application) buildStorage(ctx context.Context, cfg config.Config, logger *slog.Logger, instance string) (storage, error) {
	if cfg.Store == config.StoreMemory {
		store := memory.NewStore()
		logger.Info("using in-memory store")
		return storage{
			factory:     memory.NewFactory(store),
			outbox:      memory.NewOutbox(logger),
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			feed:        store.Changes,
		}, nil
	}

	client, err := mongoinfra.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, fmt.Errorf("mongo: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	a.checks["mongo"] = client.Ping
	if err := client.EnsureIndexes(ctx); err != nil {
		return storage{}, fmt.Errorf("mongo indexes: %w", err)
	}
	box, err := outboxinfra.NewStore(ctx, client.DB)
	if err != nil {
		return storage{}, fmt.Errorf("outbox: %w", err)
	}
	idem, err := mongoinfra.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	if err != nil {
		return storage{}, fmt.Errorf("idempotency: %w", err)
	}
	st := storage{
		factory:     mongoinfra.Factory{DB: client.DB},
		outbox:      box,
		idempotency: idem,
		feed:        &mongoinfra.ChangeFeed{DB: client.DB, Logger: logger},
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return storage{}, fmt.Errorf("kafka producer: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
		a.worker = &outboxinfra.Worker{
			Store:       box,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      "hotelrates",
			ID:          instance,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
		if a.metrics != nil {
			a.worker.Observer = a.metrics
		}
	} else {
		logger.Warn("KAFKA_BROKERS not set, outbox events stay undelivered")
	}

	if cfg.ChangeFeed == config.FeedKafka {
		group := cfg.KafkaGroup + "-" + instance
		dedupe, err := inbox.NewStore(ctx, client.DB, group)
		if err != nil {
			return storage{}, fmt.Errorf("inbox: %w", err)
		}
		st.feed = &kafka.ChangeFeed{
			Brokers:     cfg.KafkaBrokers,
			Group:       group,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Inbox:       dedupe,
			Logger:      logger,
		}
	}
	return st, nil
}

func (a *application) server(cfg config.Config, logger *slog.Logger) *http.Server {
	h := ginserver.Handlers{
		Rooms:        ginserver.RoomHandler{Commands: a.buses.Commands, Queries: a.buses.Queries},
		Pricing:      ginserver.PricingHandler{Commands: a.buses.Commands, Queries: a.buses.Queries},
		Availability: ginserver.AvailabilityHandler{Queries: a.buses.Queries},
		Booking:      ginserver.BookingHandler{Commands: a.buses.Commands, Queries: a.buses.Queries},
		Config:       ginserver.ConfigHandler{Commands: a.buses.Commands, Queries: a.buses.Queries},
		AuthMiddleware: ginserver.AuthMiddleware{
			Verifier: a.verifier,
			Logger:   logger,
		}.Handle,
		RateLimiter: ginserver.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	mw := obs.Middleware{Logger: logger}
	if a.metrics != nil {
		h.Metrics = a.metrics.Handler()
		mw.Metrics = a.metrics
	}
	return ginserver.NewServer(cfg, mw, obs.HealthHandlers{Checks: a.checks}, h)
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

func instanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "hotelrates"
	}
	return host + "-" + uuid.NewString()[:8]
}

func firstBackoff(steps []time.Duration) time.Duration {
	if len(steps) == 0 {
		return time.Second
	}
	return steps[0]
}
