package booking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/store"
)

// Calendar rule writes. Stylist-scoped ones run inside the stylist's boundary
// so they never interleave with a booking on that calendar. Existing
// appointments are kept when hours shrink around them.

type StylistInput struct {
	Actor        domain.Actor       `json:"-" validate:"-"`
	ID           uuid.UUID          `json:"id"`
	UserID       string             `json:"user_id" validate:"required,max=128"`
	Name         string             `json:"name" validate:"required,max=200"`
	WorkingHours domain.WeeklyHours `json:"working_hours"`
	Active       bool               `json:"active"`
}

// UpsertStylist creates the stylist when ID is zero and replaces it otherwise.
func (s *Service) UpsertStylist(ctx context.Context, in StylistInput) (st domain.Stylist, err error) {
	ctx, span := s.startSpan(ctx, "UpsertStylist")
	defer func() { endSpan(span, err) }()

	in.UserID = strings.TrimSpace(in.UserID)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return domain.Stylist{}, err
	}
	if err := in.WorkingHours.Validate(); err != nil {
		return domain.Stylist{}, validationError(err.Error())
	}
	if err := requireAdmin(in.Actor); err != nil {
		return domain.Stylist{}, err
	}

	write := func(ctx context.Context, tx store.Tx) error {
		saved, err := tx.UpsertStylist(ctx, domain.Stylist{
			ID:           in.ID,
			UserID:       in.UserID,
			Name:         in.Name,
			WorkingHours: in.WorkingHours,
			Active:       in.Active,
		})
		if err != nil {
			return err
		}
		st = saved
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditStylistUpserted, "stylist", saved.ID.String(), map[string]any{
			"name":   saved.Name,
			"active": saved.Active,
		}))
	}
	if in.ID == uuid.Nil {
		err = s.repo.InTransaction(ctx, write)
	} else {
		if _, err := loadStylist(ctx, s.repo, in.ID); err != nil {
			return domain.Stylist{}, err
		}
		err = s.repo.InStylistTransaction(ctx, in.ID, write)
	}
	if err != nil {
		return domain.Stylist{}, translate(err)
	}
	return st, nil
}

type ServiceInput struct {
	Actor           domain.Actor `json:"-" validate:"-"`
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name" validate:"required,max=200"`
	DurationMinutes int          `json:"duration_minutes" validate:"gte=1,lte=1440"`
	Active          bool         `json:"active"`
}

// UpsertService changes the catalog. A new duration applies to bookings made afterwards.
func (s *Service) UpsertService(ctx context.Context, in ServiceInput) (svc domain.Service, err error) {
	ctx, span := s.startSpan(ctx, "UpsertService")
	defer func() { endSpan(span, err) }()

	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return domain.Service{}, err
	}
	if err := requireAdmin(in.Actor); err != nil {
		return domain.Service{}, err
	}
	if in.ID != uuid.Nil {
		if _, err := loadService(ctx, s.repo, in.ID); err != nil {
			return domain.Service{}, err
		}
	}

	err = s.repo.InTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		saved, err := tx.UpsertService(ctx, domain.Service{
			ID:              in.ID,
			Name:            in.Name,
			DurationMinutes: in.DurationMinutes,
			Active:          in.Active,
		})
		if err != nil {
			return err
		}
		svc = saved
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditServiceUpserted, "service", saved.ID.String(), map[string]any{
			"name":             saved.Name,
			"duration_minutes": saved.DurationMinutes,
			"active":           saved.Active,
		}))
	})
	if err != nil {
		return domain.Service{}, translate(err)
	}
	return svc, nil
}

type WorkingHoursInput struct {
	Actor     domain.Actor       `json:"-" validate:"-"`
	StylistID uuid.UUID          `json:"stylist_id" validate:"required"`
	Hours     domain.WeeklyHours `json:"hours"`
}

func (s *Service) SetWorkingHours(ctx context.Context, in WorkingHoursInput) (st domain.Stylist, err error) {
	ctx, span := s.startSpan(ctx, "SetWorkingHours", attribute.String("stylist.id", in.StylistID.String()))
	defer func() { endSpan(span, err) }()

	if err := s.check(in); err != nil {
		return domain.Stylist{}, err
	}
	if err := in.Hours.Validate(); err != nil {
		return domain.Stylist{}, validationError(err.Error())
	}
	if err := requireActor(in.Actor); err != nil {
		return domain.Stylist{}, err
	}
	current, err := loadStylist(ctx, s.repo, in.StylistID)
	if err != nil {
		return domain.Stylist{}, err
	}
	if err := canManageCalendar(in.Actor, current); err != nil {
		return domain.Stylist{}, err
	}

	err = s.repo.InStylistTransaction(ctx, in.StylistID, func(ctx context.Context, tx store.Tx) error {
		cur, err := loadStylist(ctx, tx, in.StylistID)
		if err != nil {
			return err
		}
		cur.WorkingHours = in.Hours
		saved, err := tx.UpsertStylist(ctx, cur)
		if err != nil {
			return err
		}
		st = saved
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditWorkingHoursSet, "stylist", saved.ID.String(), map[string]any{
			"hours": in.Hours,
		}))
	})
	if err != nil {
		return domain.Stylist{}, translate(err)
	}
	return st, nil
}

type BusinessHoursInput struct {
	Actor domain.Actor           `json:"-" validate:"-"`
	Days  []domain.BusinessHours `json:"days"`
}

// SetBusinessHours replaces the salon's weekly opening hours. Weekdays left
// out carry no salon-wide limit.
func (s *Service) SetBusinessHours(ctx context.Context, in BusinessHoursInput) (days []domain.BusinessHours, err error) {
	ctx, span := s.startSpan(ctx, "SetBusinessHours")
	defer func() { endSpan(span, err) }()

	seen := make(map[time.Weekday]bool, len(in.Days))
	for _, d := range in.Days {
		if d.Weekday < time.Sunday || d.Weekday > time.Saturday {
			return nil, validationErrorf("invalid weekday %d", d.Weekday)
		}
		if seen[d.Weekday] {
			return nil, validationErrorf("%s is listed twice", d.Weekday)
		}
		seen[d.Weekday] = true
		if !d.Closed && !d.Range().Valid() {
			return nil, validationErrorf("invalid hours %s on %s", d.Range(), d.Weekday)
		}
	}
	if err := requireAdmin(in.Actor); err != nil {
		return nil, err
	}

	days = append([]domain.BusinessHours(nil), in.Days...)
	sort.Slice(days, func(i, j int) bool { return days[i].Weekday < days[j].Weekday })

	err = s.repo.InTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.SetBusinessHours(ctx, days); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditBusinessHoursSet, "business_hours", "salon", map[string]any{
			"days": len(days),
		}))
	})
	if err != nil {
		return nil, translate(err)
	}
	return days, nil
}

type ExceptionInput struct {
	Actor domain.Actor `json:"-" validate:"-"`
	// StylistID nil makes the exception salon-wide (admin only).
	StylistID *uuid.UUID          `json:"stylist_id,omitempty"`
	StartDate domain.Date         `json:"start_date"`
	EndDate   domain.Date         `json:"end_date"`
	Closed    bool                `json:"closed"`
	Hours     []domain.ClockRange `json:"hours"`
	Reason    string              `json:"reason" validate:"max=500"`
}

func (in *ExceptionInput) normalize() error {
	if in.StartDate.IsZero() {
		return validationError("start_date is required")
	}
	if in.EndDate.IsZero() {
		in.EndDate = in.StartDate
	}
	if in.EndDate.Before(in.StartDate) {
		return validationError("end_date must not be before start_date")
	}
	if in.StylistID != nil && *in.StylistID == uuid.Nil {
		in.StylistID = nil
	}
	if in.Closed {
		in.Hours = nil
		return nil
	}
	if len(in.Hours) == 0 {
		return validationError("hours are required unless the exception closes the day")
	}
	for _, r := range in.Hours {
		if !r.Valid() {
			return validationErrorf("invalid hours %s", r)
		}
	}
	return nil
}

func (s *Service) AddCalendarException(ctx context.Context, in ExceptionInput) (exc domain.CalendarException, err error) {
	ctx, span := s.startSpan(ctx, "AddCalendarException")
	defer func() { endSpan(span, err) }()

	if err := s.check(in); err != nil {
		return domain.CalendarException{}, err
	}
	if err := in.normalize(); err != nil {
		return domain.CalendarException{}, err
	}

	write := func(ctx context.Context, tx store.Tx) error {
		saved, err := tx.InsertException(ctx, domain.CalendarException{
			ID:        uuid.Must(uuid.NewV7()),
			StylistID: in.StylistID,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			Closed:    in.Closed,
			Hours:     in.Hours,
			Reason:    strings.TrimSpace(in.Reason),
		})
		if err != nil {
			return err
		}
		exc = saved
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditExceptionAdded, "calendar_exception", saved.ID.String(), map[string]any{
			"stylist_id": stylistRef(saved.StylistID),
			"start_date": saved.StartDate.String(),
			"end_date":   saved.EndDate.String(),
			"closed":     saved.Closed,
		}))
	}

	if err := s.runCalendarWrite(ctx, in.Actor, in.StylistID, write); err != nil {
		return domain.CalendarException{}, err
	}
	return exc, nil
}

type RemoveExceptionInput struct {
	Actor       domain.Actor `json:"-" validate:"-"`
	ExceptionID uuid.UUID    `json:"exception_id" validate:"required"`
}

func (s *Service) RemoveCalendarException(ctx context.Context, in RemoveExceptionInput) (exc domain.CalendarException, err error) {
	ctx, span := s.startSpan(ctx, "RemoveCalendarException", attribute.String("exception.id", in.ExceptionID.String()))
	defer func() { endSpan(span, err) }()

	if err := s.check(in); err != nil {
		return domain.CalendarException{}, err
	}
	exc, err = s.repo.GetException(ctx, in.ExceptionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.CalendarException{}, newError(KindNotFound, "calendar exception %s not found", in.ExceptionID)
	}
	if err != nil {
		return domain.CalendarException{}, translate(err)
	}

	write := func(ctx context.Context, tx store.Tx) error {
		if err := tx.DeleteException(ctx, exc.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return newError(KindNotFound, "calendar exception %s not found", exc.ID)
			}
			return err
		}
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditExceptionRemoved, "calendar_exception", exc.ID.String(), map[string]any{
			"stylist_id": stylistRef(exc.StylistID),
		}))
	}
	if err := s.runCalendarWrite(ctx, in.Actor, exc.StylistID, write); err != nil {
		return domain.CalendarException{}, err
	}
	return exc, nil
}

// runCalendarWrite authorizes and runs an exception write in the right boundary:
// the stylist's for stylist exceptions, a plain transaction for salon-wide ones.
func (s *Service) runCalendarWrite(ctx context.Context, actor domain.Actor, stylistID *uuid.UUID, fn func(ctx context.Context, tx store.Tx) error) error {
	if stylistID == nil {
		if err := requireAdmin(actor); err != nil {
			return err
		}
		return translate(s.repo.InTransaction(ctx, fn))
	}
	if err := requireActor(actor); err != nil {
		return err
	}
	st, err := loadStylist(ctx, s.repo, *stylistID)
	if err != nil {
		return err
	}
	if err := canManageCalendar(actor, st); err != nil {
		return err
	}
	return translate(s.repo.InStylistTransaction(ctx, st.ID, fn))
}

func stylistRef(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
