package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Stylist struct {
	bun.BaseModel `bun:"table:stylists" json:"-"`

	ID           uuid.UUID   `bun:"id,pk,type:uuid" json:"id"`
	UserID       string      `bun:"user_id,notnull" json:"user_id"`
	Name         string      `bun:"name,notnull" json:"name"`
	WorkingHours WeeklyHours `bun:"working_hours,type:jsonb,notnull" json:"working_hours"`
	Active       bool        `bun:"active,notnull" json:"active"`
	CreatedAt    time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time   `bun:"updated_at,notnull" json:"updated_at"`
}

func (s *Stylist) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampModel(&s.ID, &s.CreatedAt, &s.UpdatedAt, query)
	return nil
}

type Service struct {
	bun.BaseModel `bun:"table:services" json:"-"`

	ID              uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name            string    `bun:"name,notnull" json:"name"`
	DurationMinutes int       `bun:"duration_minutes,notnull" json:"duration_minutes"`
	Active          bool      `bun:"active,notnull" json:"active"`
	CreatedAt       time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

func (s *Service) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampModel(&s.ID, &s.CreatedAt, &s.UpdatedAt, query)
	return nil
}

// stampModel fills ids and timestamps on insert. Upserts go through InsertQuery too.
func stampModel(id *uuid.UUID, createdAt, updatedAt *time.Time, query bun.Query) {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if *id == uuid.Nil {
			*id = uuid.Must(uuid.NewV7())
		}
		if createdAt.IsZero() {
			*createdAt = now
		}
		*updatedAt = now
	case *bun.UpdateQuery:
		*updatedAt = now
	}
}
