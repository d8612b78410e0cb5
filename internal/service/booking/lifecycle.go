package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/store"
)

type CancelInput struct {
	Actor         domain.Actor `json:"-" validate:"-"`
	AppointmentID uuid.UUID    `json:"appointment_id" validate:"required"`
	Reason        string       `json:"reason" validate:"max=500"`
}

// Cancel frees the appointment's slot. Only confirmed appointments can be cancelled.
func (s *Service) Cancel(ctx context.Context, in CancelInput) (appt domain.Appointment, err error) {
	ctx, span := s.startSpan(ctx, "Cancel", attribute.String("appointment.id", in.AppointmentID.String()))
	defer func() { endSpan(span, err) }()

	if err := s.check(in); err != nil {
		return domain.Appointment{}, err
	}
	if err := requireActor(in.Actor); err != nil {
		return domain.Appointment{}, err
	}
	current, err := loadAppointment(ctx, s.repo, in.AppointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}

	err = s.repo.InStylistTransaction(ctx, current.StylistID, func(ctx context.Context, tx store.Tx) error {
		cur, err := s.loadChangeable(ctx, tx, in.Actor, in.AppointmentID, "cancelled")
		if err != nil {
			return err
		}
		cancelled, err := tx.TransitionAppointment(ctx, store.Transition{
			ID:   cur.ID,
			From: domain.StatusConfirmed,
			To:   domain.StatusCancelled,
			At:   s.now().UTC(),
		})
		if err != nil {
			return err
		}
		appt = cancelled
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditAppointmentCancelled, "appointment", cur.ID.String(), map[string]any{
			"stylist_id": cur.StylistID.String(),
			"start_time": cur.StartTime,
			"reason":     strings.TrimSpace(in.Reason),
		}))
	})
	if err != nil {
		return domain.Appointment{}, translate(err)
	}

	s.log.InfoContext(ctx, "appointment cancelled", slog.String("appointment_id", appt.ID.String()))
	s.emit(ctx, domain.NewEvent(domain.EventBookingCancelled, appt, nil))
	return appt, nil
}

type RescheduleInput struct {
	Actor         domain.Actor `json:"-" validate:"-"`
	AppointmentID uuid.UUID    `json:"appointment_id" validate:"required"`
	NewStart      time.Time    `json:"new_start" validate:"required"`
}

// Reschedule cancels the appointment and books its replacement with the same
// stylist, service and client in one transaction. If the new time is refused
// the original stays confirmed.
func (s *Service) Reschedule(ctx context.Context, in RescheduleInput) (appt domain.Appointment, err error) {
	ctx, span := s.startSpan(ctx, "Reschedule", attribute.String("appointment.id", in.AppointmentID.String()))
	defer func() { endSpan(span, err) }()

	if err := s.check(in); err != nil {
		return domain.Appointment{}, err
	}
	if err := requireActor(in.Actor); err != nil {
		return domain.Appointment{}, err
	}
	current, err := loadAppointment(ctx, s.repo, in.AppointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}

	var previous domain.Appointment
	err = s.repo.InStylistTransaction(ctx, current.StylistID, func(ctx context.Context, tx store.Tx) error {
		cur, err := s.loadChangeable(ctx, tx, in.Actor, in.AppointmentID, "rescheduled")
		if err != nil {
			return err
		}
		cancelled, err := tx.TransitionAppointment(ctx, store.Transition{
			ID:   cur.ID,
			From: domain.StatusConfirmed,
			To:   domain.StatusCancelled,
			At:   s.now().UTC(),
		})
		if err != nil {
			return err
		}
		previous = cancelled

		oldID := cur.ID
		booked, err := s.commitBooking(ctx, tx, bookingRequest{
			id:              uuid.Must(uuid.NewV7()),
			stylistID:       cur.StylistID,
			serviceID:       cur.ServiceID,
			clientID:        cur.ClientID,
			start:           in.NewStart.UTC(),
			notes:           cur.Notes,
			rescheduledFrom: &oldID,
		})
		if err != nil {
			return err
		}
		appt = booked
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditAppointmentRescheduled, "appointment", booked.ID.String(), map[string]any{
			"rescheduled_from": oldID.String(),
			"old_start_time":   cur.StartTime,
			"new_start_time":   booked.StartTime,
		}))
	})
	if err != nil {
		return domain.Appointment{}, translate(err)
	}

	s.log.InfoContext(ctx, "appointment rescheduled",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("rescheduled_from", previous.ID.String()),
	)
	s.emit(ctx, domain.NewEvent(domain.EventBookingRescheduled, appt, &previous))
	return appt, nil
}

// loadChangeable re-reads the appointment under the stylist lock and checks
// that actor may still cancel or move it.
func (s *Service) loadChangeable(ctx context.Context, tx store.Tx, actor domain.Actor, id uuid.UUID, verb string) (domain.Appointment, error) {
	cur, err := loadAppointment(ctx, tx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	st, err := loadStylist(ctx, tx, cur.StylistID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := canTouchAppointment(actor, cur, st); err != nil {
		return domain.Appointment{}, err
	}
	if cur.Status != domain.StatusConfirmed {
		return domain.Appointment{}, newError(KindInvalidState, "a %s appointment cannot be %s", cur.Status, verb).
			withAppointment(cur.ID).withStylist(cur.StylistID)
	}
	if !actor.IsAdmin() && !s.now().Before(cur.StartTime) {
		return domain.Appointment{}, newError(KindInvalidState, "appointment has already started and can only be %s by an administrator", verb).
			withAppointment(cur.ID).withStylist(cur.StylistID)
	}
	return cur, nil
}

type CompleteInput struct {
	Actor         domain.Actor `json:"-" validate:"-"`
	AppointmentID uuid.UUID    `json:"appointment_id" validate:"required"`
	Notes         *string      `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// Complete marks a started appointment as done. The slot stays occupied.
func (s *Service) Complete(ctx context.Context, in CompleteInput) (appt domain.Appointment, err error) {
	ctx, span := s.startSpan(ctx, "Complete", attribute.String("appointment.id", in.AppointmentID.String()))
	defer func() { endSpan(span, err) }()

	if err := s.check(in); err != nil {
		return domain.Appointment{}, err
	}
	if err := requireActor(in.Actor); err != nil {
		return domain.Appointment{}, err
	}
	current, err := loadAppointment(ctx, s.repo, in.AppointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}

	err = s.repo.InStylistTransaction(ctx, current.StylistID, func(ctx context.Context, tx store.Tx) error {
		cur, err := loadAppointment(ctx, tx, in.AppointmentID)
		if err != nil {
			return err
		}
		st, err := loadStylist(ctx, tx, cur.StylistID)
		if err != nil {
			return err
		}
		if err := canManageCalendar(in.Actor, st); err != nil {
			return err
		}
		if cur.Status != domain.StatusConfirmed {
			return newError(KindInvalidState, "a %s appointment cannot be completed", cur.Status).withAppointment(cur.ID)
		}
		now := s.now().UTC()
		if now.Before(cur.StartTime) {
			return newError(KindInvalidState, "appointment has not started yet").withAppointment(cur.ID)
		}
		done, err := tx.TransitionAppointment(ctx, store.Transition{
			ID:    cur.ID,
			From:  domain.StatusConfirmed,
			To:    domain.StatusCompleted,
			At:    now,
			Notes: in.Notes,
		})
		if err != nil {
			return err
		}
		appt = done
		return tx.AppendAudit(ctx, *domain.NewAuditEntry(in.Actor, domain.AuditAppointmentCompleted, "appointment", cur.ID.String(), nil))
	})
	if err != nil {
		return domain.Appointment{}, translate(err)
	}

	s.emit(ctx, domain.NewEvent(domain.EventBookingCompleted, appt, nil))
	return appt, nil
}

const sweepBatch = 200

// CompleteElapsed completes confirmed appointments that ended at or before now.
// Appointments changed concurrently are skipped. It returns how many were completed.
func (s *Service) CompleteElapsed(ctx context.Context, now time.Time) (n int, err error) {
	ctx, span := s.startSpan(ctx, "CompleteElapsed")
	defer func() {
		span.SetAttributes(attribute.Int("booking.completed", n))
		endSpan(span, err)
	}()

	due, err := s.repo.ListElapsed(ctx, now.UTC(), sweepBatch)
	if err != nil {
		return 0, translate(err)
	}

	var errs []error
	for _, a := range due {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		var done domain.Appointment
		err := s.repo.InStylistTransaction(ctx, a.StylistID, func(ctx context.Context, tx store.Tx) error {
			var err error
			done, err = tx.TransitionAppointment(ctx, store.Transition{
				ID:   a.ID,
				From: domain.StatusConfirmed,
				To:   domain.StatusCompleted,
				At:   a.EndTime,
			})
			if err != nil {
				return err
			}
			return tx.AppendAudit(ctx, *domain.NewAuditEntry(domain.System, domain.AuditAppointmentCompleted, "appointment", a.ID.String(), map[string]any{
				"sweep": true,
			}))
		})
		if errors.Is(err, store.ErrStaleStatus) {
			continue
		}
		if err != nil {
			s.log.WarnContext(ctx, "completion sweep failed for appointment",
				slog.String("appointment_id", a.ID.String()),
				slog.String("err", err.Error()),
			)
			errs = append(errs, err)
			continue
		}
		n++
		s.emit(ctx, domain.NewEvent(domain.EventBookingCompleted, done, nil))
	}
	if len(errs) > 0 {
		return n, translate(errors.Join(errs...))
	}
	return n, nil
}
