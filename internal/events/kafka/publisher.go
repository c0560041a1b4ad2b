// Package kafka publishes triage events to a Kafka broker.
package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/events/domain"
)

// Publisher sends triage events to Kafka
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish sends a stored event to the topic. Messages are keyed by ticket id
// so events for the same ticket land on the same partition in order.
func (p *Publisher) Publish(ctx context.Context, event *domain.Event) error {
	msg := kafka.Message{
		Key:   []byte(event.TicketID),
		Value: []byte(event.Payload),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}

// Close closes the Kafka writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
