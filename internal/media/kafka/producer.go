package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

type ProducerConfig struct {
	Brokers      []string
	Topic        string
	MaxRetries   int
	RetryBackoff time.Duration
	WriteTimeout time.Duration
	BatchSize    int
	Async        bool
	Logger       zerolog.Logger
}

type producerMetrics struct {
	MessagesPublished atomic.Int64
	MessagesFailed    atomic.Int64
	RetriesTotal      atomic.Int64
	PublishDuration   atomic.Int64
}

type Metrics struct {
	MessagesPublished int64
	MessagesFailed    int64
	RetriesTotal      int64
	AvgPublishTime    time.Duration
}

// messageWriter is the part of *kafkago.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type dialFunc func(ctx context.Context, broker string) (io.Closer, error)

func dialBroker(ctx context.Context, broker string) (io.Closer, error) {
	return kafkago.DialContext(ctx, "tcp", broker)
}

// Producer publishes outbox payloads to one topic, keyed by aggregate id so
// all events of a video land on the same partition.
type Producer struct {
	writer  messageWriter
	dial    dialFunc
	config  ProducerConfig
	logger  zerolog.Logger
	metrics producerMetrics
	closed  atomic.Bool
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		BatchSize:    cfg.BatchSize,
		Async:        cfg.Async,
		RequiredAcks: kafkago.RequireAll,
	}
	return newProducer(cfg, w, dialBroker), nil
}

func newProducer(cfg ProducerConfig, w messageWriter, dial dialFunc) *Producer {
	return &Producer{
		writer: w,
		dial:   dial,
		config: cfg,
		logger: cfg.Logger.With().Str("component", "kafka_producer").Str("topic", cfg.Topic).Logger(),
	}
}

func validateConfig(cfg *ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("brokers list is empty")
	}
	if cfg.Topic == "" {
		return fmt.Errorf("topic is empty")
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	if cfg.RetryBackoff < 0 {
		return fmt.Errorf("retry_backoff cannot be negative")
	}
	if cfg.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout cannot be negative")
	}
	return nil
}

func setDefaults(cfg *ProducerConfig) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
}

// Publish writes one message, retrying transient errors with a linear backoff.
func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	if p.closed.Load() {
		return fmt.Errorf("kafka publish: producer is closed")
	}

	msg := kafkago.Message{Key: []byte(key), Value: value}
	start := time.Now()

	var err error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			p.metrics.RetriesTotal.Add(1)
			select {
			case <-ctx.Done():
				p.metrics.MessagesFailed.Add(1)
				return fmt.Errorf("kafka publish: %w", ctx.Err())
			case <-time.After(p.config.RetryBackoff * time.Duration(attempt)):
			}
		}

		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			p.metrics.MessagesPublished.Add(1)
			p.metrics.PublishDuration.Add(int64(time.Since(start)))
			return nil
		}
		if !isRetriableError(err) {
			break
		}
		p.logger.Warn().Err(err).Str("key", key).Int("attempt", attempt+1).Msg("kafka write failed, retrying")
	}

	p.metrics.MessagesFailed.Add(1)
	return fmt.Errorf("kafka publish: %w", err)
}

// HealthCheck succeeds as soon as one broker accepts a connection.
func (p *Producer) HealthCheck(ctx context.Context) error {
	if p.closed.Load() {
		return fmt.Errorf("kafka health: producer is closed")
	}
	var lastErr error
	for _, broker := range p.config.Brokers {
		conn, err := p.dial(ctx, broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return fmt.Errorf("kafka health: %w", lastErr)
}

func (p *Producer) GetMetrics() Metrics {
	published := p.metrics.MessagesPublished.Load()
	m := Metrics{
		MessagesPublished: published,
		MessagesFailed:    p.metrics.MessagesFailed.Load(),
		RetriesTotal:      p.metrics.RetriesTotal.Load(),
	}
	if published > 0 {
		m.AvgPublishTime = time.Duration(p.metrics.PublishDuration.Load() / published)
	}
	return m
}

func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return fmt.Errorf("kafka producer already closed")
	}
	return p.writer.Close()
}

func isRetriableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, permanent := range []string{"invalid", "too large", "authorization", "unauthorized"} {
		if strings.Contains(msg, permanent) {
			return false
		}
	}
	return true
}
