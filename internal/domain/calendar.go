package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CalendarException overrides the weekly template for an inclusive date range.
// A nil StylistID makes it salon-wide.
type CalendarException struct {
	bun.BaseModel `bun:"table:calendar_exceptions" json:"-"`

	ID        uuid.UUID    `bun:"id,pk,type:uuid" json:"id"`
	StylistID *uuid.UUID   `bun:"stylist_id,type:uuid,nullzero" json:"stylist_id,omitempty"`
	StartDate Date         `bun:"start_date,type:date,notnull" json:"start_date"`
	EndDate   Date         `bun:"end_date,type:date,notnull" json:"end_date"`
	Closed    bool         `bun:"closed,notnull" json:"closed"`
	Hours     []ClockRange `bun:"hours,type:jsonb" json:"hours,omitempty"`
	Reason    string       `bun:"reason" json:"reason,omitempty"`
	CreatedAt time.Time    `bun:"created_at,notnull" json:"created_at"`
}

func (e *CalendarException) Global() bool {
	return e.StylistID == nil
}

func (e *CalendarException) Covers(d Date) bool {
	return !d.Before(e.StartDate) && !d.After(e.EndDate)
}

func (e *CalendarException) AppliesTo(stylistID uuid.UUID) bool {
	return e.StylistID == nil || *e.StylistID == stylistID
}

func (e *CalendarException) BeforeAppendModel(ctx context.Context, query bun.Query) error {
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

// BusinessHours is the salon's opening window for one weekday.
type BusinessHours struct {
	bun.BaseModel `bun:"table:business_hours" json:"-"`

	Weekday     time.Weekday `bun:"weekday,pk" json:"weekday"`
	OpenMinute  int          `bun:"open_minute,notnull" json:"open_minute"`
	CloseMinute int          `bun:"close_minute,notnull" json:"close_minute"`
	Closed      bool         `bun:"closed,notnull" json:"closed"`
}

func (b BusinessHours) Range() ClockRange {
	return ClockRange{Start: b.OpenMinute, End: b.CloseMinute}
}
