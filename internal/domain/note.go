package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ClientNote is a stylist's private note about a client. Clients never see them.
type ClientNote struct {
	bun.BaseModel `bun:"table:client_notes" json:"-"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	StylistID uuid.UUID `bun:"stylist_id,notnull,type:uuid" json:"stylist_id"`
	ClientID  string    `bun:"client_id,notnull" json:"client_id"`
	Note      string    `bun:"note,notnull" json:"note"`
	AuthorID  string    `bun:"author_id,notnull" json:"author_id"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

func (n *ClientNote) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampModel(&n.ID, &n.CreatedAt, &n.UpdatedAt, query)
	return nil
}
