package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/models"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// EventService publishes domain events to Kafka. Publishing is
// fire-and-forget: failures are logged and never surface to callers,
// so a broker outage cannot fail a request.
type EventService struct {
	writer KafkaWriter
}

// NewEventService creates a new EventService. A nil writer disables
// publishing entirely.
func NewEventService(writer KafkaWriter) *EventService {
	return &EventService{writer: writer}
}

// Publish sends a single event to the user-events topic.
func (s *EventService) Publish(ctx context.Context, event models.UserEvent) {
	if s.writer == nil {
		logger.Log.Warnw("kafka writer not configured, skipping publishing", "type", event.Type)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal event", "type", event.Type, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(uuid.NewString()),
		Value: data,
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish event", "type", event.Type, "userID", event.UserID, "error", err)
		return
	}

	logger.Log.Infow("event published", "type", event.Type, "userID", event.UserID)
}

// Close closes the underlying writer.
func (s *EventService) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
