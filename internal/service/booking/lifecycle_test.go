package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/store"
)

func TestCancel_FreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.mustBook(t, client, "client-1", at(10, 0))

	cancelled, err := f.svc.Cancel(ctx, CancelInput{Actor: client, AppointmentID: appt.ID, Reason: "sick"})
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("cancelled = %+v, want status cancelled with cancelled_at", cancelled)
	}
	if busy := f.occupied(t, monday); len(busy) != 0 {
		t.Fatalf("occupied after cancel = %v, want none", busy)
	}
	if f.events.last().Type != domain.EventBookingCancelled {
		t.Fatalf("last event = %s, want %s", f.events.last().Type, domain.EventBookingCancelled)
	}

	f.mustBook(t, admin, "client-2", at(10, 0))

	_, err = f.svc.Cancel(ctx, CancelInput{Actor: client, AppointmentID: appt.ID})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second cancel err = %v, want ErrInvalidState", err)
	}
}

func TestCancel_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.mustBook(t, client, "client-1", at(10, 0))

	tests := []struct {
		name  string
		actor domain.Actor
		want  error
	}{
		{"other client", domain.Actor{UserID: "client-2", Role: domain.RoleClient}, ErrUnauthorized},
		{"other stylist", otherStylist, ErrUnauthorized},
		{"anonymous", domain.Actor{}, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Cancel(ctx, CancelInput{Actor: tt.actor, AppointmentID: appt.ID})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := f.svc.Cancel(ctx, CancelInput{Actor: stylistActor, AppointmentID: appt.ID}); err != nil {
		t.Fatalf("owning stylist cancel error: %v", err)
	}
}

func TestCancel_StartedAppointmentNeedsAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.mustBook(t, client, "client-1", at(10, 0))
	f.clock.Set(at(10, 30))

	_, err := f.svc.Cancel(ctx, CancelInput{Actor: client, AppointmentID: appt.ID})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("client cancel err = %v, want ErrInvalidState", err)
	}
	if _, err := f.svc.Cancel(ctx, CancelInput{Actor: admin, AppointmentID: appt.ID}); err != nil {
		t.Fatalf("admin cancel error: %v", err)
	}
}

func TestCancel_UnknownAppointment(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Cancel(context.Background(), CancelInput{Actor: admin, AppointmentID: uuid.New()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReschedule_MovesAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orig := f.mustBook(t, client, "client-1", at(10, 0))

	moved, err := f.svc.Reschedule(ctx, RescheduleInput{Actor: client, AppointmentID: orig.ID, NewStart: at(14, 0)})
	if err != nil {
		t.Fatalf("Reschedule error: %v", err)
	}
	if moved.ID == orig.ID {
		t.Fatalf("rescheduled appointment kept id %s", orig.ID)
	}
	if moved.RescheduledFrom == nil || *moved.RescheduledFrom != orig.ID {
		t.Fatalf("rescheduled_from = %v, want %s", moved.RescheduledFrom, orig.ID)
	}
	if !moved.StartTime.Equal(at(14, 0)) || !moved.EndTime.Equal(at(15, 0)) {
		t.Fatalf("moved interval = %s, want 14:00-15:00", moved.Interval())
	}

	old, err := f.svc.GetAppointment(ctx, client, orig.ID)
	if err != nil {
		t.Fatalf("GetAppointment error: %v", err)
	}
	if old.Status != domain.StatusCancelled {
		t.Fatalf("old status = %q, want %q", old.Status, domain.StatusCancelled)
	}

	assertIntervals(t, f.occupied(t, monday), []domain.TimeInterval{{Start: at(14, 0), End: at(15, 0)}})

	ev := f.events.last()
	if ev.Type != domain.EventBookingRescheduled || ev.Previous == nil || ev.Previous.ID != orig.ID {
		t.Fatalf("last event = %+v, want %s with previous %s", ev, domain.EventBookingRescheduled, orig.ID)
	}
}

func TestReschedule_OverlappingItselfIsAllowed(t *testing.T) {
	f := newFixture(t)
	orig := f.mustBook(t, client, "client-1", at(10, 0))

	moved, err := f.svc.Reschedule(context.Background(), RescheduleInput{Actor: client, AppointmentID: orig.ID, NewStart: at(10, 30)})
	if err != nil {
		t.Fatalf("Reschedule error: %v", err)
	}
	assertIntervals(t, f.occupied(t, monday), []domain.TimeInterval{moved.Interval()})
}

func TestReschedule_FailureKeepsOriginal(t *testing.T) {
	tests := []struct {
		name     string
		newStart time.Time
		want     error
	}{
		{"slot taken", at(14, 30), ErrSlotTaken},
		{"outside hours", at(16, 30), ErrOutsideBusinessHours},
		{"misaligned", at(11, 10), ErrInvalidAlignment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			orig := f.mustBook(t, client, "client-1", at(10, 0))
			other := f.mustBook(t, admin, "client-2", at(14, 0))

			_, err := f.svc.Reschedule(ctx, RescheduleInput{Actor: client, AppointmentID: orig.ID, NewStart: tt.newStart})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}

			still, err := f.svc.GetAppointment(ctx, admin, orig.ID)
			if err != nil {
				t.Fatalf("GetAppointment error: %v", err)
			}
			if still.Status != domain.StatusConfirmed {
				t.Fatalf("original status = %q, want %q", still.Status, domain.StatusConfirmed)
			}
			assertIntervals(t, f.occupied(t, monday), []domain.TimeInterval{orig.Interval(), other.Interval()})

			all, err := f.svc.ListAppointments(ctx, ListInput{Actor: admin})
			if err != nil {
				t.Fatalf("ListAppointments error: %v", err)
			}
			if len(all) != 2 {
				t.Fatalf("appointments = %d, want 2", len(all))
			}
			if f.events.last().Type != domain.EventBookingCreated {
				t.Fatalf("last event = %s, want no reschedule event", f.events.last().Type)
			}
		})
	}
}

func TestReschedule_CancelledAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orig := f.mustBook(t, client, "client-1", at(10, 0))
	if _, err := f.svc.Cancel(ctx, CancelInput{Actor: client, AppointmentID: orig.ID}); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	_, err := f.svc.Reschedule(ctx, RescheduleInput{Actor: client, AppointmentID: orig.ID, NewStart: at(12, 0)})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.mustBook(t, client, "client-1", at(10, 0))

	_, err := f.svc.Complete(ctx, CompleteInput{Actor: stylistActor, AppointmentID: appt.ID})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("early complete err = %v, want ErrInvalidState", err)
	}

	f.clock.Set(at(10, 30))
	_, err = f.svc.Complete(ctx, CompleteInput{Actor: client, AppointmentID: appt.ID})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("client complete err = %v, want ErrUnauthorized", err)
	}

	notes := "used the new dye"
	done, err := f.svc.Complete(ctx, CompleteInput{Actor: stylistActor, AppointmentID: appt.ID, Notes: &notes})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if done.Status != domain.StatusCompleted || done.Notes != notes || done.CompletedAt == nil {
		t.Fatalf("completed = %+v", done)
	}
	assertIntervals(t, f.occupied(t, monday), []domain.TimeInterval{appt.Interval()})

	_, err = f.svc.Cancel(ctx, CancelInput{Actor: admin, AppointmentID: appt.ID})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel completed err = %v, want ErrInvalidState", err)
	}
	if f.events.last().Type != domain.EventBookingCompleted {
		t.Fatalf("last event = %s, want %s", f.events.last().Type, domain.EventBookingCompleted)
	}
}

func TestCompleteElapsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustBook(t, client, "client-1", at(10, 0))
	f.mustBook(t, client, "client-1", at(12, 0))
	late := f.mustBook(t, client, "client-1", at(16, 0))

	n, err := f.svc.CompleteElapsed(ctx, at(13, 0))
	if err != nil {
		t.Fatalf("CompleteElapsed error: %v", err)
	}
	if n != 2 {
		t.Fatalf("completed = %d, want 2", n)
	}

	n, err = f.svc.CompleteElapsed(ctx, at(13, 0))
	if err != nil || n != 0 {
		t.Fatalf("second sweep = %d, %v; want 0, nil", n, err)
	}

	f.clock.Set(at(18, 0))
	NewSweeper(f.svc, SweeperConfig{Interval: time.Hour}).sweep(ctx)

	got, err := f.svc.GetAppointment(ctx, admin, late.ID)
	if err != nil {
		t.Fatalf("GetAppointment error: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.CompletedAt == nil || !got.CompletedAt.Equal(late.EndTime) {
		t.Fatalf("late appointment = %+v, want completed at its end", got)
	}

	entries, err := f.svc.ListAuditLog(ctx, admin, store.AuditFilter{ActorID: domain.System.UserID})
	if err != nil {
		t.Fatalf("ListAuditLog error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("system audit entries = %d, want 3", len(entries))
	}
}
