package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/masterries/AppointmentManager/internal/availability"
	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/store"
)

// EffectiveHours returns the stylist's working windows on date after
// exceptions and salon hours are applied.
func (s *Service) EffectiveHours(ctx context.Context, stylistID uuid.UUID, date domain.Date) (hours []domain.TimeInterval, err error) {
	ctx, span := s.startSpan(ctx, "EffectiveHours", attribute.String("stylist.id", stylistID.String()))
	defer func() { endSpan(span, err) }()

	if date.IsZero() {
		return nil, validationError("date is required")
	}
	st, err := loadStylist(ctx, s.repo, stylistID)
	if err != nil {
		return nil, err
	}
	hours, err = s.resolveHours(ctx, s.repo, st, date)
	if err != nil {
		return nil, translate(err)
	}
	return hours, nil
}

// Occupied lists the merged busy intervals of the stylist on date.
func (s *Service) Occupied(ctx context.Context, stylistID uuid.UUID, date domain.Date) (busy []domain.TimeInterval, err error) {
	ctx, span := s.startSpan(ctx, "Occupied", attribute.String("stylist.id", stylistID.String()))
	defer func() { endSpan(span, err) }()

	if date.IsZero() {
		return nil, validationError("date is required")
	}
	if _, err := loadStylist(ctx, s.repo, stylistID); err != nil {
		return nil, err
	}
	window := date.Bounds(s.loc)
	idx, err := s.loadIndex(ctx, s.repo, stylistID, window)
	if err != nil {
		return nil, translate(err)
	}
	return idx.Occupied(window), nil
}

// AvailableSlots lists bookable start times for a service on date. The answer
// is advisory; Book checks everything again.
func (s *Service) AvailableSlots(ctx context.Context, stylistID, serviceID uuid.UUID, date domain.Date) (slots []domain.TimeInterval, err error) {
	ctx, span := s.startSpan(ctx, "AvailableSlots",
		attribute.String("stylist.id", stylistID.String()),
		attribute.String("service.id", serviceID.String()),
		attribute.String("date", date.String()),
	)
	defer func() {
		span.SetAttributes(attribute.Int("slots.count", len(slots)))
		endSpan(span, err)
	}()

	if date.IsZero() {
		return nil, validationError("date is required")
	}
	st, err := loadStylist(ctx, s.repo, stylistID)
	if err != nil {
		return nil, err
	}
	svc, err := loadService(ctx, s.repo, serviceID)
	if err != nil {
		return nil, err
	}
	if err := requireBookable(st, svc); err != nil {
		return nil, err
	}

	hours, err := s.resolveHours(ctx, s.repo, st, date)
	if err != nil {
		return nil, translate(err)
	}
	if len(hours) == 0 {
		return []domain.TimeInterval{}, nil
	}

	// Resolved hours never leave the local day.
	day := date.Bounds(s.loc)
	idx, err := s.loadIndex(ctx, s.repo, st.ID, day)
	if err != nil {
		return nil, translate(err)
	}

	slots = availability.Slots(availability.Query{
		Hours:       hours,
		Occupied:    idx.Occupied(day),
		Duration:    svc.Duration(),
		Granularity: s.granularity,
		DayStart:    day.Start,
		NotBefore:   s.now(),
	})
	if slots == nil {
		slots = []domain.TimeInterval{}
	}
	return slots, nil
}

// GetAppointment is visible to the client, the owning stylist and admins.
func (s *Service) GetAppointment(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Appointment, error) {
	if err := requireActor(actor); err != nil {
		return domain.Appointment{}, err
	}
	appt, err := loadAppointment(ctx, s.repo, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	st, err := loadStylist(ctx, s.repo, appt.StylistID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := canTouchAppointment(actor, appt, st); err != nil {
		return domain.Appointment{}, err
	}
	return appt, nil
}

type ListInput struct {
	Actor     domain.Actor               `json:"-" validate:"-"`
	StylistID *uuid.UUID                 `json:"stylist_id,omitempty"`
	ClientID  string                     `json:"client_id" validate:"max=128"`
	Statuses  []domain.AppointmentStatus `json:"statuses"`
	From      time.Time                  `json:"from"`
	To        time.Time                  `json:"to"`
	Limit     int                        `json:"limit" validate:"gte=0,lte=500"`
}

// ListAppointments narrows the filter to what the actor may see: clients get
// their own appointments, stylists those on their calendar.
func (s *Service) ListAppointments(ctx context.Context, in ListInput) ([]domain.Appointment, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if err := requireActor(in.Actor); err != nil {
		return nil, err
	}
	for _, st := range in.Statuses {
		if !st.Valid() {
			return nil, validationErrorf("unknown status %q", st)
		}
	}
	if !in.From.IsZero() && !in.To.IsZero() && !in.From.Before(in.To) {
		return nil, validationError("from must be before to")
	}

	filter := store.AppointmentFilter{
		StylistID: in.StylistID,
		ClientID:  strings.TrimSpace(in.ClientID),
		Statuses:  in.Statuses,
		From:      in.From,
		To:        in.To,
		Limit:     in.Limit,
	}
	if filter.Limit == 0 {
		filter.Limit = maxListLimit
	}

	switch in.Actor.Role {
	case domain.RoleAdmin:
	case domain.RoleClient:
		if filter.ClientID != "" && filter.ClientID != in.Actor.UserID {
			return nil, newError(KindUnauthorized, "clients can only list their own appointments")
		}
		filter.ClientID = in.Actor.UserID
	case domain.RoleStylist:
		if in.StylistID == nil {
			return nil, validationError("stylist_id is required")
		}
		st, err := loadStylist(ctx, s.repo, *in.StylistID)
		if err != nil {
			return nil, err
		}
		if !ownsStylist(in.Actor, st) {
			return nil, newError(KindUnauthorized, "stylists can only list their own calendar").withStylist(st.ID)
		}
	default:
		return nil, newError(KindUnauthorized, "unknown role %q", in.Actor.Role)
	}

	appts, err := s.repo.ListAppointments(ctx, filter)
	if err != nil {
		return nil, translate(err)
	}
	return appts, nil
}

// ListAuditLog is admin only.
func (s *Service) ListAuditLog(ctx context.Context, actor domain.Actor, filter store.AuditFilter) ([]domain.AuditEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	entries, err := s.repo.ListAuditEntries(ctx, filter)
	if err != nil {
		return nil, translate(err)
	}
	return entries, nil
}
