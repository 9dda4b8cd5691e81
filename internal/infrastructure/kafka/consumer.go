package kafka

import (
	"context"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/events"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader messageReader
	logger *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: logger.Named("kafka-consumer")}
}

// Consume delivers events to handler until ctx is cancelled. Malformed messages
// and handler failures are logged and committed so one bad message cannot stall
// the partition.
func (c *Consumer) Consume(ctx context.Context, handler events.Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("fetch failed", zap.Error(err))
			continue
		}

		c.handle(ctx, msg, handler)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Warn("commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, handler events.Handler) {
	e, err := events.Parse(msg.Value)
	if err != nil {
		c.logger.Error("dropping malformed message", zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err))
		return
	}
	if err := handler(ctx, e); err != nil {
		c.logger.Error("event handler failed", zap.String("event_id", e.ID), zap.String("event_type", e.EventType), zap.Error(err))
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
