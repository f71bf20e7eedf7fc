package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rl1809/campus-canteen/internal/core/domain"
)

const (
	batchTimeout = 10 * time.Millisecond
	batchSize    = 100
)

// MessageWriter is the part of *kafka.Writer the adapter needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAdapter publishes journal events as JSON, keyed by user so one user's events
// stay on one partition in order.
type KafkaAdapter struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		BatchSize:              batchSize,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaAdapter(writer MessageWriter) *KafkaAdapter {
	return &KafkaAdapter{writer: writer}
}

func (k *KafkaAdapter) Record(ctx context.Context, event domain.Event) error {
	msg, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s: %w", event.ID, err)
	}
	return nil
}

func (k *KafkaAdapter) Close() error {
	return k.writer.Close()
}

func encodeEvent(event domain.Event) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event %s: %w", event.ID, err)
	}

	key := event.UserID
	if key == "" {
		key = event.ItemID
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "kind", Value: []byte(event.Kind)},
		},
		Time: event.OccurredAt,
	}, nil
}
