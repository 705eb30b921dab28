package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	DayStarted     = "attendance.day.started"
	DayCompleted   = "attendance.day.completed"
	VisitCheckedIn = "visit.checked_in"
)

// Publisher emits domain events for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

// Envelope is the JSON body of every published event.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func NewEnvelope(routingKey string, data any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       routingKey,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
