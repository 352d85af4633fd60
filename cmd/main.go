package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"conversion-analytics/internal/config"
	"conversion-analytics/internal/controller"
	"conversion-analytics/internal/db"
	httpserver "conversion-analytics/internal/http"
	"conversion-analytics/internal/identity"
	"conversion-analytics/internal/kvstore"
	"conversion-analytics/internal/logging"
	"conversion-analytics/internal/model"
	"conversion-analytics/internal/repository"
	"conversion-analytics/internal/service"
	"conversion-analytics/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Config{})
		bootLogger.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeSink := buildSink(ctx, cfg, logger)
	defer closeSink()

	durable, visit, closeKV := buildKVStores(ctx, cfg, logger)
	defer closeKV()

	resolver := identity.NewResolver(durable, visit, identity.Options{
		UserIDKey:    cfg.UserIDKey,
		SessionIDKey: cfg.SessionIDKey,
		Timeout:      cfg.KVTimeout,
	}, logger)

	worker := service.NewBatchEventWorker(repo, service.WorkerConfig{
		BufferSize:    cfg.WorkerBufferSize,
		BatchSize:     cfg.WorkerBatchSize,
		FlushInterval: cfg.WorkerFlushEvery,
		Timeout:       cfg.SinkTimeout,
		Breaker: service.BreakerConfig{
			FailureThreshold: cfg.BreakerFailureThreshold,
			OpenTimeout:      cfg.BreakerOpenTimeout,
		},
	}, logger)

	hostname, _ := os.Hostname()
	analytics := service.NewAnalyticsService(store.New(), resolver, worker, model.Environment{
		UserAgent: "conversion-analytics/" + hostname,
	}, logger)
	defer analytics.Shutdown()

	eventController := controller.NewEventController(analytics)
	server := httpserver.NewServer(cfg, eventController)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPPort).Str("mode", cfg.AppMode).Bool("sink", cfg.SinkEnabled()).Msg("starting server")
		errCh <- server.Listen(cfg.HTTPPort)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server stopped")
		}
	}

	if err := server.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
}

// buildSink returns the ClickHouse repository when configured and the
// log-only repository otherwise.
func buildSink(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.EventRepository, func()) {
	if !cfg.SinkEnabled() {
		if cfg.IsProduction() {
			logger.Warn().Msg("CLICKHOUSE_ADDR not set, events are only logged")
		}
		return repository.NewLogRepository(logger), func() {}
	}

	conn, err := db.NewConnection(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect clickhouse")
	}

	if err := db.RunMigrations(ctx, conn); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	return repository.NewEventRepository(conn), func() {
		if err := conn.Close(); err != nil {
			logger.Error().Err(err).Msg("close clickhouse")
		}
	}
}

// buildKVStores returns the durable and visit-scoped identity stores.
func buildKVStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (kvstore.Store, kvstore.Store, func()) {
	if cfg.RedisURL == "" {
		return kvstore.NewMemory(), kvstore.NewMemory(), func() {}
	}

	client, err := kvstore.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect redis")
	}

	durable := kvstore.NewRedis(client, "analytics:durable:", 0)
	visit := kvstore.NewRedis(client, "analytics:visit:", cfg.VisitTTL)

	return durable, visit, func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}
}
