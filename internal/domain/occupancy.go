package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type OccupancyKind string

const (
	OccupancyAppointment OccupancyKind = "appointment"
	OccupancyBlock       OccupancyKind = "block"
)

// Occupancy is one slot index entry. RefID points at the appointment or block holding it.
type Occupancy struct {
	bun.BaseModel `bun:"table:slot_index" json:"-"`

	RefID     uuid.UUID     `bun:"ref_id,pk,type:uuid" json:"ref_id"`
	StylistID uuid.UUID     `bun:"stylist_id,notnull,type:uuid" json:"stylist_id"`
	Kind      OccupancyKind `bun:"kind,notnull" json:"kind"`
	StartTime time.Time     `bun:"start_time,notnull" json:"start_time"`
	EndTime   time.Time     `bun:"end_time,notnull" json:"end_time"`
}

func (o Occupancy) Interval() TimeInterval {
	return TimeInterval{Start: o.StartTime, End: o.EndTime}
}

// BlockedSlot is time a stylist has taken out of their own calendar.
type BlockedSlot struct {
	bun.BaseModel `bun:"table:blocked_slots" json:"-"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	StylistID uuid.UUID `bun:"stylist_id,notnull,type:uuid" json:"stylist_id"`
	StartTime time.Time `bun:"start_time,notnull" json:"start_time"`
	EndTime   time.Time `bun:"end_time,notnull" json:"end_time"`
	Reason    string    `bun:"reason" json:"reason,omitempty"`
	CreatedBy string    `bun:"created_by,notnull" json:"created_by"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

func (b *BlockedSlot) Interval() TimeInterval {
	return TimeInterval{Start: b.StartTime, End: b.EndTime}
}

func (b *BlockedSlot) Occupancy() Occupancy {
	return Occupancy{
		RefID:     b.ID,
		StylistID: b.StylistID,
		Kind:      OccupancyBlock,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}

func (b *BlockedSlot) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if b.ID == uuid.Nil {
			b.ID = uuid.Must(uuid.NewV7())
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}
