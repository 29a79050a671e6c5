package messaging

import (
	"time"

	"roombooking/models"

	"github.com/google/uuid"
)

// Routing keys published on the booking exchange.
const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
)

// BookingEvent is the JSON body of every booking event.
type BookingEvent struct {
	ID         string         `json:"event_id"`
	Type       string         `json:"event_type"`
	OccurredAt time.Time      `json:"occurred_at"`
	ActorID    string         `json:"actor_id,omitempty"`
	Booking    models.Booking `json:"booking"`
}

func NewBookingEvent(eventType string, b *models.Booking, actorID string, at time.Time) BookingEvent {
	return BookingEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: at.UTC(),
		ActorID:    actorID,
		Booking:    *b,
	}
}
