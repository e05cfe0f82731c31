// Package outbox relays events committed to the outbox table to Kafka.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-stream/internal/storage/postgres"
)

type Store interface {
	GetPending(ctx context.Context, limit int) ([]postgres.OutboxRecord, error)
	MarkProcessed(ctx context.Context, id int64) error
}

type Producer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Publisher gives at-least-once delivery: a record published but not marked
// is published again on the next tick, so consumers must be idempotent.
type Publisher struct {
	store     Store
	producer  Producer
	interval  time.Duration
	batchSize int
	logger    zerolog.Logger
}

type PublisherConfig struct {
	Store     Store
	Producer  Producer
	Interval  time.Duration
	BatchSize int
	Logger    zerolog.Logger
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("outbox store is required")
	}
	if cfg.Producer == nil {
		return nil, fmt.Errorf("kafka producer is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got: %v", cfg.Interval)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got: %d", cfg.BatchSize)
	}

	return &Publisher{
		store:     cfg.Store,
		producer:  cfg.Producer,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		logger:    cfg.Logger.With().Str("component", "outbox_publisher").Logger(),
	}, nil
}

// Start polls the outbox every interval until ctx is cancelled. A failed
// batch is logged and retried on the next tick.
func (p *Publisher) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().
		Dur("interval", p.interval).
		Int("batch_size", p.batchSize).
		Msg("outbox publisher started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Err(ctx.Err()).Msg("outbox publisher stopped")
			return ctx.Err()

		case <-ticker.C:
			if _, err := p.publishBatch(ctx); err != nil {
				p.logger.Error().Err(err).Msg("failed to publish batch")
			}
		}
	}
}

type batchResult struct {
	published int
	failed    int
	marked    int
}

func (p *Publisher) publishBatch(ctx context.Context) (batchResult, error) {
	var res batchResult

	records, err := p.store.GetPending(ctx, p.batchSize)
	if err != nil {
		return res, fmt.Errorf("get pending records: %w", err)
	}
	if len(records) == 0 {
		p.logger.Debug().Msg("no pending events to publish")
		return res, nil
	}

	for _, record := range records {
		eventLogger := p.logger.With().
			Str("event_id", record.EventID).
			Str("event_type", record.EventType).
			Str("aggregate_id", record.AggregateID).
			Int64("outbox_id", record.ID).
			Logger()

		// Keyed by video so events of one video stay on one partition.
		if err := p.producer.Publish(ctx, record.AggregateID, record.Payload); err != nil {
			eventLogger.Error().Err(err).Msg("failed to publish event to kafka")
			res.failed++
			continue
		}
		res.published++

		if err := p.store.MarkProcessed(ctx, record.ID); err != nil {
			eventLogger.Warn().Err(err).Msg("failed to mark event as processed")
			continue
		}
		res.marked++
	}

	p.logger.Info().
		Int("total", len(records)).
		Int("published", res.published).
		Int("failed", res.failed).
		Int("marked", res.marked).
		Msg("batch processing completed")

	return res, nil
}
