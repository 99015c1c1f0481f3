package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 100 * time.Millisecond
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig holds consumer settings.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
}

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithDLQ forwards messages that exhaust retries to dlq.
func WithDLQ(dlq DeadLetterPublisher) ConsumerOption {
	return func(c *Consumer) { c.dlq = dlq }
}

// WithIdempotency wraps the handler with IdempotentHandler.
func WithIdempotency(store IdempotencyStore) ConsumerOption {
	return func(c *Consumer) { c.handler = IdempotentHandler(store, c.handler, c.logger) }
}

// WithRetry overrides the attempt count and linear backoff step.
func WithRetry(attempts int, backoff time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if attempts > 0 {
			c.maxRetries = attempts
		}
		c.backoff = backoff
	}
}

// Consumer reads one topic in a consumer group and commits each message
// after it is handled, dead-lettered or found undecodable.
type Consumer struct {
	reader     messageReader
	topic      string
	group      string
	handler    Handler
	dlq        DeadLetterPublisher
	logger     *slog.Logger
	maxRetries int
	backoff    time.Duration
	closeOnce  sync.Once
}

// NewConsumer creates a consumer for cfg.Topic.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})
	return newConsumer(r, cfg.Topic, cfg.GroupID, handler, logger, opts...)
}

func newConsumer(r messageReader, topic, group string, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		reader:     r,
		topic:      topic,
		group:      group,
		handler:    handler,
		logger:     logger,
		maxRetries: defaultMaxRetries,
		backoff:    defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start consumes until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started",
		slog.String("topic", c.topic),
		slog.String("group", c.group),
	)
	defer c.logger.Info("consumer stopped", slog.String("topic", c.topic))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}
		consumerReceived.WithLabelValues(c.topic, c.group).Inc()

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to commit message",
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process handles msg with retries. It never returns an error: every path
// ends with the message ready to be committed.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	ctx = extractTrace(ctx, msg.Headers)

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to unmarshal event",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		c.deadLetter(ctx, msg, err)
		return
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if lastErr = c.handler(ctx, event); lastErr == nil {
			break
		}
		c.logger.WarnContext(ctx, "handler failed",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", c.maxRetries),
			slog.String("error", lastErr.Error()),
		)
		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}
	consumerDuration.WithLabelValues(c.topic, c.group).Observe(time.Since(start).Seconds())

	if lastErr != nil {
		consumerFailed.WithLabelValues(c.topic, c.group).Inc()
		c.logger.ErrorContext(ctx, "handler failed after all retries",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.Int64("offset", msg.Offset),
			slog.String("error", lastErr.Error()),
		)
		c.deadLetter(ctx, msg, lastErr)
		return
	}
	consumerProcessed.WithLabelValues(c.topic, c.group).Inc()
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.group); err != nil {
		return
	}
	consumerDLQ.WithLabelValues(c.topic, c.group).Inc()
}

// Close closes the reader. Safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
