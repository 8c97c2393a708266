package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

type KafkaConsumer struct {
	reader *kafka.Reader
	logger *logger.Logger
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  false,
		AllowAutoTopicCreation: true,
	}

	return &KafkaProducer{writer: writer}
}

func NewKafkaConsumer(brokers []string, topic, groupID string, logger *logger.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1 * time.Second,
		StartOffset:    kafka.LastOffset,
	})

	return &KafkaConsumer{reader: reader, logger: logger}
}

// Publish writes the event keyed by key, so events of one actor stay ordered
// within a partition.
func (p *KafkaProducer) Publish(ctx context.Context, key string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	return p.writer.WriteMessages(ctx, message)
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// Subscribe blocks until ctx is cancelled or the reader fails. Messages that
// cannot be decoded or handled are logged and skipped.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler func(context.Context, Event) error) error {
	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		var event Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			c.logger.WithError(err).WithField("offset", message.Offset).Error("Failed to unmarshal event")
			continue
		}

		if err := handler(ctx, event); err != nil {
			c.logger.WithError(err).WithField("event_type", event.Type).Error("Failed to handle event")
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
