package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/masterries/AppointmentManager/internal/availability"
	"github.com/masterries/AppointmentManager/internal/calendar"
	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/slotindex"
	"github.com/masterries/AppointmentManager/internal/store"
)

type BookInput struct {
	Actor          domain.Actor `json:"-" validate:"-"`
	StylistID      uuid.UUID    `json:"stylist_id" validate:"required"`
	ServiceID      uuid.UUID    `json:"service_id" validate:"required"`
	ClientID       string       `json:"client_id" validate:"required,max=128"`
	Start          time.Time    `json:"start" validate:"required"`
	Notes          string       `json:"notes" validate:"max=1000"`
	IdempotencyKey string       `json:"idempotency_key" validate:"max=256"`
}

// Book reserves [Start, Start+service duration) on the stylist's calendar.
// Every check runs again inside the stylist's serialization boundary, so the
// result never depends on an earlier availability query.
func (s *Service) Book(ctx context.Context, in BookInput) (appt domain.Appointment, err error) {
	ctx, span := s.startSpan(ctx, "Book",
		attribute.String("stylist.id", in.StylistID.String()),
		attribute.String("service.id", in.ServiceID.String()),
	)
	defer func() { endSpan(span, err) }()

	in.ClientID = strings.TrimSpace(in.ClientID)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	if err := s.check(in); err != nil {
		return domain.Appointment{}, err
	}
	if err := requireActor(in.Actor); err != nil {
		return domain.Appointment{}, err
	}

	st, err := loadStylist(ctx, s.repo, in.StylistID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := canBook(in.Actor, in.ClientID, st); err != nil {
		return domain.Appointment{}, err
	}

	req := bookingRequest{
		id:        uuid.Must(uuid.NewV7()),
		stylistID: in.StylistID,
		serviceID: in.ServiceID,
		clientID:  in.ClientID,
		start:     in.Start.UTC(),
		notes:     in.Notes,
	}
	if in.IdempotencyKey != "" {
		req.id = idempotentID(in.ClientID, in.IdempotencyKey)
	}

	var replayed bool
	err = s.repo.InStylistTransaction(ctx, st.ID, func(ctx context.Context, tx store.Tx) error {
		if in.IdempotencyKey != "" {
			existing, err := tx.GetAppointment(ctx, req.id)
			switch {
			case err == nil:
				if !req.matches(existing) {
					return newError(KindIdempotencyConflict, "idempotency key was used for a different booking").withAppointment(existing.ID)
				}
				appt, replayed = existing, true
				return nil
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
		}

		booked, err := s.commitBooking(ctx, tx, req)
		if err != nil {
			return err
		}
		appt = booked
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditAppointmentBooked, "appointment", booked.ID.String(), map[string]any{
			"stylist_id": booked.StylistID.String(),
			"service_id": booked.ServiceID.String(),
			"client_id":  booked.ClientID,
			"start_time": booked.StartTime,
			"end_time":   booked.EndTime,
		}))
	})
	if err != nil {
		return domain.Appointment{}, translate(err)
	}

	if replayed {
		s.log.InfoContext(ctx, "booking replayed", slog.String("appointment_id", appt.ID.String()))
		return appt, nil
	}
	s.log.InfoContext(ctx, "appointment booked",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("stylist_id", appt.StylistID.String()),
		slog.Time("start_time", appt.StartTime),
	)
	s.emit(ctx, domain.NewEvent(domain.EventBookingCreated, appt, nil))
	return appt, nil
}

// idempotentID derives a stable appointment id from the client and its key.
func idempotentID(clientID, key string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("salon:book:"+clientID+":"+key))
}

type bookingRequest struct {
	id              uuid.UUID
	stylistID       uuid.UUID
	serviceID       uuid.UUID
	clientID        string
	start           time.Time
	notes           string
	rescheduledFrom *uuid.UUID
}

func (r bookingRequest) matches(a domain.Appointment) bool {
	return a.StylistID == r.stylistID &&
		a.ServiceID == r.serviceID &&
		a.ClientID == r.clientID &&
		a.StartTime.Equal(r.start)
}

// commitBooking is the validate-then-insert step shared by Book and Reschedule.
// It must run inside the stylist's transaction.
func (s *Service) commitBooking(ctx context.Context, tx store.Tx, req bookingRequest) (domain.Appointment, error) {
	st, err := loadStylist(ctx, tx, req.stylistID)
	if err != nil {
		return domain.Appointment{}, err
	}
	svc, err := loadService(ctx, tx, req.serviceID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := requireBookable(st, svc); err != nil {
		return domain.Appointment{}, err
	}

	candidate := domain.NewInterval(req.start, svc.Duration())
	if err := s.checkStart(st.ID, candidate); err != nil {
		return domain.Appointment{}, err
	}
	if err := s.checkHours(ctx, tx, st, candidate); err != nil {
		return domain.Appointment{}, err
	}

	idx, err := s.loadIndex(ctx, tx, st.ID, s.dayWindow(candidate))
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := slotTaken(st.ID, candidate, idx); err != nil {
		return domain.Appointment{}, err
	}

	saved, err := tx.InsertAppointment(ctx, domain.Appointment{
		ID:              req.id,
		StylistID:       st.ID,
		ClientID:        req.clientID,
		ServiceID:       svc.ID,
		StartTime:       candidate.Start,
		EndTime:         candidate.End,
		Status:          domain.StatusConfirmed,
		Notes:           req.notes,
		RescheduledFrom: req.rescheduledFrom,
	})
	if errors.Is(err, store.ErrConflict) {
		// The exclusion constraint caught what the index did not see.
		return domain.Appointment{}, newError(KindSlotTaken, "requested time overlaps an existing booking").
			withStylist(st.ID).withInterval(candidate)
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	return saved, nil
}

// checkStart rejects misaligned and past starts. Misaligned starts are never rounded.
func (s *Service) checkStart(stylistID uuid.UUID, iv domain.TimeInterval) error {
	if !availability.Aligned(iv.Start, s.loc, s.granularity) {
		return newError(KindInvalidAlignment, "start %s is not on a %s boundary", iv.Start.In(s.loc).Format("15:04:05"), s.granularity).
			withStylist(stylistID).withInterval(iv)
	}
	if iv.Start.Before(s.now()) {
		return newError(KindPastStart, "start %s is in the past", iv.Start.In(s.loc).Format(time.RFC3339)).
			withStylist(stylistID).withInterval(iv)
	}
	return nil
}

func (s *Service) checkHours(ctx context.Context, r store.Reader, st domain.Stylist, iv domain.TimeInterval) error {
	date := domain.DateOf(iv.Start, s.loc)
	hours, err := s.resolveHours(ctx, r, st, date)
	if err != nil {
		return err
	}
	for _, h := range hours {
		if h.Contains(iv) {
			return nil
		}
	}
	return newError(KindOutsideBusinessHours, "requested time is outside %s's hours on %s", st.Name, date).
		withStylist(st.ID).withInterval(iv)
}

func (s *Service) resolveHours(ctx context.Context, r store.Reader, st domain.Stylist, date domain.Date) ([]domain.TimeInterval, error) {
	exceptions, err := r.ListExceptions(ctx, &st.ID, date, date)
	if err != nil {
		return nil, err
	}
	business, err := r.ListBusinessHours(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.Resolve(calendar.Rules{
		StylistID:     st.ID,
		Template:      st.WorkingHours,
		Exceptions:    exceptions,
		BusinessHours: business,
		Location:      s.loc,
	}, date), nil
}

// dayWindow is the local day of iv.Start, stretched to cover iv.
func (s *Service) dayWindow(iv domain.TimeInterval) domain.TimeInterval {
	w := domain.DateOf(iv.Start, s.loc).Bounds(s.loc)
	if iv.End.After(w.End) {
		w.End = iv.End
	}
	return w
}

func (s *Service) loadIndex(ctx context.Context, r store.Reader, stylistID uuid.UUID, window domain.TimeInterval) (*slotindex.Index, error) {
	entries, err := r.ListOccupancy(ctx, stylistID, window)
	if err != nil {
		return nil, err
	}
	return slotindex.Build(entries)
}

func slotTaken(stylistID uuid.UUID, iv domain.TimeInterval, idx *slotindex.Index) error {
	conflicts := idx.Conflicts(iv)
	if len(conflicts) == 0 {
		return nil
	}
	e := newError(KindSlotTaken, "requested time overlaps %d existing booking(s)", len(conflicts)).
		withStylist(stylistID).withInterval(iv)
	for _, c := range conflicts {
		e.ConflictsWith = append(e.ConflictsWith, c.RefID)
	}
	return e
}

type BlockInput struct {
	Actor     domain.Actor `json:"-" validate:"-"`
	StylistID uuid.UUID    `json:"stylist_id" validate:"required"`
	Start     time.Time    `json:"start" validate:"required"`
	End       time.Time    `json:"end" validate:"required"`
	Reason    string       `json:"reason" validate:"max=500"`
}

// Block takes time out of a stylist's calendar through the same conflict check as a booking.
func (s *Service) Block(ctx context.Context, in BlockInput) (block domain.BlockedSlot, err error) {
	ctx, span := s.startSpan(ctx, "Block", attribute.String("stylist.id", in.StylistID.String()))
	defer func() { endSpan(span, err) }()

	if err := s.check(in); err != nil {
		return domain.BlockedSlot{}, err
	}
	iv := domain.TimeInterval{Start: in.Start.UTC(), End: in.End.UTC()}
	if !iv.Valid() {
		return domain.BlockedSlot{}, validationError("end must be after start")
	}
	if err := requireActor(in.Actor); err != nil {
		return domain.BlockedSlot{}, err
	}

	st, err := loadStylist(ctx, s.repo, in.StylistID)
	if err != nil {
		return domain.BlockedSlot{}, err
	}
	if err := canManageCalendar(in.Actor, st); err != nil {
		return domain.BlockedSlot{}, err
	}
	if !availability.Aligned(iv.End, s.loc, s.granularity) {
		return domain.BlockedSlot{}, newError(KindInvalidAlignment, "end is not on a %s boundary", s.granularity).
			withStylist(st.ID).withInterval(iv)
	}
	if err := s.checkStart(st.ID, iv); err != nil {
		return domain.BlockedSlot{}, err
	}

	err = s.repo.InStylistTransaction(ctx, st.ID, func(ctx context.Context, tx store.Tx) error {
		idx, err := s.loadIndex(ctx, tx, st.ID, iv)
		if err != nil {
			return err
		}
		if err := slotTaken(st.ID, iv, idx); err != nil {
			return err
		}
		saved, err := tx.InsertBlock(ctx, domain.BlockedSlot{
			ID:        uuid.Must(uuid.NewV7()),
			StylistID: st.ID,
			StartTime: iv.Start,
			EndTime:   iv.End,
			Reason:    strings.TrimSpace(in.Reason),
			CreatedBy: in.Actor.UserID,
		})
		if errors.Is(err, store.ErrConflict) {
			return newError(KindSlotTaken, "requested time overlaps an existing booking").withStylist(st.ID).withInterval(iv)
		}
		if err != nil {
			return err
		}
		block = saved
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditSlotBlocked, "blocked_slot", saved.ID.String(), map[string]any{
			"stylist_id": st.ID.String(),
			"start_time": saved.StartTime,
			"end_time":   saved.EndTime,
			"reason":     saved.Reason,
		}))
	})
	if err != nil {
		return domain.BlockedSlot{}, translate(err)
	}
	s.log.InfoContext(ctx, "slot blocked",
		slog.String("block_id", block.ID.String()),
		slog.String("stylist_id", st.ID.String()),
	)
	return block, nil
}

type UnblockInput struct {
	Actor   domain.Actor `json:"-" validate:"-"`
	BlockID uuid.UUID    `json:"block_id" validate:"required"`
}

func (s *Service) Unblock(ctx context.Context, in UnblockInput) (block domain.BlockedSlot, err error) {
	ctx, span := s.startSpan(ctx, "Unblock", attribute.String("block.id", in.BlockID.String()))
	defer func() { endSpan(span, err) }()

	if err := s.check(in); err != nil {
		return domain.BlockedSlot{}, err
	}
	if err := requireActor(in.Actor); err != nil {
		return domain.BlockedSlot{}, err
	}

	block, err = s.repo.GetBlock(ctx, in.BlockID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.BlockedSlot{}, newError(KindNotFound, "blocked slot %s not found", in.BlockID)
	}
	if err != nil {
		return domain.BlockedSlot{}, translate(err)
	}
	st, err := loadStylist(ctx, s.repo, block.StylistID)
	if err != nil {
		return domain.BlockedSlot{}, err
	}
	if err := canManageCalendar(in.Actor, st); err != nil {
		return domain.BlockedSlot{}, err
	}

	err = s.repo.InStylistTransaction(ctx, st.ID, func(ctx context.Context, tx store.Tx) error {
		if err := tx.DeleteBlock(ctx, block.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return newError(KindNotFound, "blocked slot %s not found", block.ID)
			}
			return err
		}
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditSlotUnblocked, "blocked_slot", block.ID.String(), map[string]any{
			"stylist_id": st.ID.String(),
		}))
	})
	if err != nil {
		return domain.BlockedSlot{}, translate(err)
	}
	return block, nil
}
