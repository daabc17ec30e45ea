package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/amara-ai/assessment-service/internal/domain/event"
)

// KafkaPublisher implements port.EventPublisher using Kafka. Events are
// keyed by aggregate ID so all events of one assessment land in order on
// the same partition.
type KafkaPublisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a new Kafka event publisher for the topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafkago.Hash{},
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

// Publish sends domain events to Kafka.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...interface{}) error {
	messages := make([]kafkago.Message, 0, len(events))

	for _, evt := range events {
		eventType := "unknown"
		var key []byte

		switch e := evt.(type) {
		case event.AssessmentCompleted:
			eventType = e.EventType()
			key = []byte(e.AggregateID().String())
		case event.HighRiskDetected:
			eventType = e.EventType()
			key = []byte(e.AggregateID().String())
		}

		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
		}

		messages = append(messages, kafkago.Message{
			Key:   key,
			Value: payload,
			Headers: []kafkago.Header{
				{Key: "event_type", Value: []byte(eventType)},
			},
		})

		p.logger.Info("publishing event",
			slog.String("event_type", eventType),
			slog.Int("payload_size", len(payload)),
		)
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to publish events: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
