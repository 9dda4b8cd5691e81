package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/events"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes event envelopes keyed by aggregate ID, so all events of
// one order land on the same partition in order.
type Producer struct {
	writer messageWriter
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer, logger: logger.Named("kafka-producer")}
}

func (p *Producer) Publish(ctx context.Context, e *events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.AggregateID),
		Value: data,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.EventType, err)
	}
	p.logger.Debug("event published", zap.String("event_type", e.EventType), zap.String("aggregate_id", e.AggregateID))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
