package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-stream/internal/app"
	"github.com/romariotrain/video-stream/internal/config"
	"github.com/romariotrain/video-stream/internal/media/kafka"
	"github.com/romariotrain/video-stream/internal/media/outbox"
	"github.com/romariotrain/video-stream/internal/storage/postgres"
)

func main() {
	cfg, err := config.LoadStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger := app.NewLogger("publish", cfg.LogLevel, os.Stdout)
	os.Exit(app.Run("publish", logger, func(ctx context.Context) error {
		return run(ctx, cfg, logger)
	}))
}

// run relays VideoStored events from the outbox table to Kafka.
func run(ctx context.Context, cfg config.Store, logger zerolog.Logger) error {
	if !cfg.OutboxEnabled() {
		return fmt.Errorf("DATABASE_URL and KAFKA_BROKERS are required")
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer func() {
		m := producer.GetMetrics()
		logger.Info().
			Int64("published", m.MessagesPublished).
			Int64("failed", m.MessagesFailed).
			Int64("retries", m.RetriesTotal).
			Dur("avg_publish", m.AvgPublishTime).
			Msg("relay stopped")
		if err := producer.Close(); err != nil {
			logger.Error().Err(err).Msg("close producer")
		}
	}()

	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = producer.HealthCheck(healthCtx)
	cancel()
	if err != nil {
		return err
	}

	publisher, err := outbox.NewPublisher(outbox.PublisherConfig{
		Store:     postgres.NewOutboxRepo(db),
		Producer:  producer,
		Interval:  cfg.OutboxInterval,
		BatchSize: cfg.OutboxBatchSize,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	return publisher.Start(ctx)
}
