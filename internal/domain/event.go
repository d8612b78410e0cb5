package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated     EventType = "booking.created"
	EventBookingCancelled   EventType = "booking.cancelled"
	EventBookingRescheduled EventType = "booking.rescheduled"
	EventBookingCompleted   EventType = "booking.completed"
)

// Event is emitted after a booking change has committed.
type Event struct {
	ID          uuid.UUID    `json:"event_id"`
	Type        EventType    `json:"event_type"`
	OccurredAt  time.Time    `json:"occurred_at"`
	Appointment Appointment  `json:"appointment"`
	Previous    *Appointment `json:"previous,omitempty"`
}

func NewEvent(t EventType, appt Appointment, previous *Appointment) Event {
	return Event{
		ID:          uuid.Must(uuid.NewV7()),
		Type:        t,
		OccurredAt:  time.Now().UTC(),
		Appointment: appt,
		Previous:    previous,
	}
}
