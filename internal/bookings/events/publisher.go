package events

import (
	"context"
	"strconv"

	"roombook/pkg/kafka"
	"roombook/pkg/middleware"
	"roombook/pkg/model"
)

const (
	SchemaVersion = "1"
	Source        = "roombook"
)

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher turns booking events into keyed Kafka messages. Keying by room keeps
// the events of one room in order.
type KafkaPublisher struct {
	producer MessagePublisher
}

func NewKafkaPublisher(producer MessagePublisher) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(strconv.FormatInt(event.RoomID, 10)).
		WithEventType(eventType).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithValue(event).
		Build()
	if err != nil {
		return err
	}

	return p.producer.Publish(ctx, msg)
}
