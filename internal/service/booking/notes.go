package booking

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/store"
)

const noteSummaryRunes = 50

type ClientNoteInput struct {
	Actor     domain.Actor `json:"-" validate:"-"`
	StylistID uuid.UUID    `json:"stylist_id" validate:"required"`
	ClientID  string       `json:"client_id" validate:"required,max=128"`
	Note      string       `json:"note" validate:"required,max=4000"`
}

// AddClientNote records a stylist's private note about a client. It is written
// inside the stylist's boundary like every other write to that stylist.
func (s *Service) AddClientNote(ctx context.Context, in ClientNoteInput) (note domain.ClientNote, err error) {
	ctx, span := s.startSpan(ctx, "AddClientNote", attribute.String("stylist.id", in.StylistID.String()))
	defer func() { endSpan(span, err) }()

	in.ClientID = strings.TrimSpace(in.ClientID)
	in.Note = strings.TrimSpace(in.Note)
	if err := s.check(in); err != nil {
		return domain.ClientNote{}, err
	}
	st, err := loadStylist(ctx, s.repo, in.StylistID)
	if err != nil {
		return domain.ClientNote{}, err
	}
	if err := canAccessClientNotes(in.Actor, st); err != nil {
		return domain.ClientNote{}, err
	}

	err = s.repo.InStylistTransaction(ctx, in.StylistID, func(ctx context.Context, tx store.Tx) error {
		saved, err := tx.InsertClientNote(ctx, domain.ClientNote{
			ID:        uuid.Must(uuid.NewV7()),
			StylistID: in.StylistID,
			ClientID:  in.ClientID,
			Note:      in.Note,
			AuthorID:  in.Actor.UserID,
		})
		if err != nil {
			return err
		}
		note = saved
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditClientNoteAdded, "client_note", saved.ID.String(), map[string]any{
			"stylist_id":   saved.StylistID.String(),
			"client_id":    saved.ClientID,
			"note_summary": summarize(saved.Note),
		}))
	})
	if err != nil {
		return domain.ClientNote{}, translate(err)
	}
	return note, nil
}

type ClientNotesQuery struct {
	Actor     domain.Actor `json:"-" validate:"-"`
	StylistID uuid.UUID    `json:"stylist_id" validate:"required"`
	ClientID  string       `json:"client_id" validate:"max=128"`
	Limit     int          `json:"limit" validate:"gte=0,lte=500"`
}

// ListClientNotes returns a stylist's notes, newest first.
func (s *Service) ListClientNotes(ctx context.Context, in ClientNotesQuery) ([]domain.ClientNote, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	st, err := loadStylist(ctx, s.repo, in.StylistID)
	if err != nil {
		return nil, err
	}
	if err := canAccessClientNotes(in.Actor, st); err != nil {
		return nil, err
	}
	filter := store.ClientNoteFilter{
		StylistID: in.StylistID,
		ClientID:  strings.TrimSpace(in.ClientID),
		Limit:     in.Limit,
	}
	if filter.Limit == 0 {
		filter.Limit = maxListLimit
	}
	notes, err := s.repo.ListClientNotes(ctx, filter)
	if err != nil {
		return nil, translate(err)
	}
	return notes, nil
}

func summarize(note string) string {
	r := []rune(note)
	if len(r) <= noteSummaryRunes {
		return note
	}
	return string(r[:noteSummaryRunes]) + "..."
}
