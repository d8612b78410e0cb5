package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/masterries/AppointmentManager/internal/domain"
)

// Reader is the read side shared by repositories and transactions.
type Reader interface {
	GetStylist(ctx context.Context, id uuid.UUID) (domain.Stylist, error)
	GetService(ctx context.Context, id uuid.UUID) (domain.Service, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	GetBlock(ctx context.Context, id uuid.UUID) (domain.BlockedSlot, error)
	GetException(ctx context.Context, id uuid.UUID) (domain.CalendarException, error)

	// ListExceptions returns salon-wide exceptions and those of stylistID that
	// overlap [from, to]. A nil stylistID returns salon-wide ones only.
	ListExceptions(ctx context.Context, stylistID *uuid.UUID, from, to domain.Date) ([]domain.CalendarException, error)
	ListBusinessHours(ctx context.Context) ([]domain.BusinessHours, error)

	// ListOccupancy returns the slot index entries of stylistID overlapping window.
	ListOccupancy(ctx context.Context, stylistID uuid.UUID, window domain.TimeInterval) ([]domain.Occupancy, error)
}

// Transition moves an appointment from one status to another. The write is
// rejected with ErrStaleStatus when the stored status is not From.
type Transition struct {
	ID    uuid.UUID
	From  domain.AppointmentStatus
	To    domain.AppointmentStatus
	At    time.Time
	Notes *string
}

// Tx is a unit of work. Writes that touch a stylist's slot index are only
// valid inside that stylist's transaction.
type Tx interface {
	Reader

	// InsertAppointment stores a confirmed appointment with its slot index entry.
	// Overlap with an existing entry fails with ErrConflict, a reused id with
	// ErrIdempotencyConflict.
	InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	// TransitionAppointment applies t. Leaving confirmed for cancelled frees the slot.
	TransitionAppointment(ctx context.Context, t Transition) (domain.Appointment, error)

	InsertBlock(ctx context.Context, block domain.BlockedSlot) (domain.BlockedSlot, error)
	DeleteBlock(ctx context.Context, id uuid.UUID) error

	UpsertStylist(ctx context.Context, s domain.Stylist) (domain.Stylist, error)
	UpsertService(ctx context.Context, s domain.Service) (domain.Service, error)
	SetBusinessHours(ctx context.Context, hours []domain.BusinessHours) error
	InsertException(ctx context.Context, e domain.CalendarException) (domain.CalendarException, error)
	DeleteException(ctx context.Context, id uuid.UUID) error

	InsertClientNote(ctx context.Context, n domain.ClientNote) (domain.ClientNote, error)

	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}

type AppointmentFilter struct {
	StylistID *uuid.UUID
	ClientID  string
	Statuses  []domain.AppointmentStatus
	// From and To bound start_time; zero values are open.
	From  time.Time
	To    time.Time
	Limit int
}

type AuditFilter struct {
	ActorID    string
	EntityType string
	EntityID   string
	Limit      int
}

// ClientNoteFilter selects one stylist's notes, optionally about one client.
type ClientNoteFilter struct {
	StylistID uuid.UUID
	ClientID  string
	Limit     int
}

type Repository interface {
	Reader

	// InStylistTransaction runs fn while holding the serialization boundary of
	// stylistID. Acquisition that does not finish in time fails with ErrLockTimeout.
	InStylistTransaction(ctx context.Context, stylistID uuid.UUID, fn func(ctx context.Context, tx Tx) error) error
	// InTransaction runs fn atomically without taking a stylist boundary. It is
	// used for salon-wide writes that never touch a slot index.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, error)
	ListAuditEntries(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error)
	// ListClientNotes returns newest first.
	ListClientNotes(ctx context.Context, filter ClientNoteFilter) ([]domain.ClientNote, error)
	// ListElapsed returns confirmed appointments that ended at or before cutoff.
	ListElapsed(ctx context.Context, cutoff time.Time, limit int) ([]domain.Appointment, error)
}
