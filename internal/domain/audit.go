package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	AuditAppointmentBooked      = "appointment.booked"
	AuditAppointmentCancelled   = "appointment.cancelled"
	AuditAppointmentRescheduled = "appointment.rescheduled"
	AuditAppointmentCompleted   = "appointment.completed"
	AuditSlotBlocked            = "slot.blocked"
	AuditSlotUnblocked          = "slot.unblocked"
	AuditStylistUpserted        = "stylist.upserted"
	AuditServiceUpserted        = "service.upserted"
	AuditWorkingHoursSet        = "stylist.working_hours_set"
	AuditBusinessHoursSet       = "salon.business_hours_set"
	AuditExceptionAdded         = "calendar.exception_added"
	AuditExceptionRemoved       = "calendar.exception_removed"
	AuditClientNoteAdded        = "client_note.added"
)

// AuditEntry records who changed what. It is written in the transaction of the change.
type AuditEntry struct {
	bun.BaseModel `bun:"table:audit_log" json:"-"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	ActorID    string         `bun:"actor_id,notnull" json:"actor_id"`
	ActorRole  Role           `bun:"actor_role,notnull" json:"actor_role"`
	Action     string         `bun:"action,notnull" json:"action"`
	EntityType string         `bun:"entity_type,notnull" json:"entity_type"`
	EntityID   string         `bun:"entity_id,notnull" json:"entity_id"`
	Details    map[string]any `bun:"details,type:jsonb" json:"details,omitempty"`
	CreatedAt  time.Time      `bun:"created_at,notnull" json:"created_at"`
}

func NewAuditEntry(actor Actor, action, entityType, entityID string, details map[string]any) *AuditEntry {
	return &AuditEntry{
		ID:         uuid.Must(uuid.NewV7()),
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
}

func (e *AuditEntry) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if e.ID == uuid.Nil {
			e.ID = uuid.Must(uuid.NewV7())
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}
