package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Occupies reports whether an appointment in this status holds its slot.
func (s AppointmentStatus) Occupies() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments" json:"-"`

	ID              uuid.UUID         `bun:"id,pk,type:uuid" json:"id"`
	StylistID       uuid.UUID         `bun:"stylist_id,notnull,type:uuid" json:"stylist_id"`
	ClientID        string            `bun:"client_id,notnull" json:"client_id"`
	ServiceID       uuid.UUID         `bun:"service_id,notnull,type:uuid" json:"service_id"`
	StartTime       time.Time         `bun:"start_time,notnull" json:"start_time"`
	EndTime         time.Time         `bun:"end_time,notnull" json:"end_time"`
	Status          AppointmentStatus `bun:"status,notnull" json:"status"`
	Notes           string            `bun:"notes" json:"notes,omitempty"`
	RescheduledFrom *uuid.UUID        `bun:"rescheduled_from,type:uuid,nullzero" json:"rescheduled_from,omitempty"`
	CancelledAt     *time.Time        `bun:"cancelled_at,nullzero" json:"cancelled_at,omitempty"`
	CompletedAt     *time.Time        `bun:"completed_at,nullzero" json:"completed_at,omitempty"`
	CreatedAt       time.Time         `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time         `bun:"updated_at,notnull" json:"updated_at"`
}

func (a *Appointment) Interval() TimeInterval {
	return TimeInterval{Start: a.StartTime, End: a.EndTime}
}

// Occupancy is the slot index entry held by the appointment.
func (a *Appointment) Occupancy() Occupancy {
	return Occupancy{
		RefID:     a.ID,
		StylistID: a.StylistID,
		Kind:      OccupancyAppointment,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
	}
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.Status == "" {
			a.Status = StatusConfirmed
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}
