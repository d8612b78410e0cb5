package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/slotindex"
	"github.com/masterries/AppointmentManager/internal/store"
)

func TestAvailableSlots_SkipsOccupiedTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustBook(t, client, "client-1", at(10, 0))
	if _, err := f.svc.Block(ctx, BlockInput{Actor: stylistActor, StylistID: f.stylist.ID, Start: at(13, 0), End: at(14, 0)}); err != nil {
		t.Fatalf("Block error: %v", err)
	}

	slots, err := f.svc.AvailableSlots(ctx, f.stylist.ID, f.service.ID, monday)
	if err != nil {
		t.Fatalf("AvailableSlots error: %v", err)
	}
	// 09:00, 11:00-12:00 every 15 minutes, 14:00-16:00 every 15 minutes.
	if len(slots) != 1+5+9 {
		t.Fatalf("slots = %d, want 15: %v", len(slots), slots)
	}
	if !slots[0].Start.Equal(at(9, 0)) || !slots[1].Start.Equal(at(11, 0)) || !slots[len(slots)-1].Start.Equal(at(16, 0)) {
		t.Fatalf("slots = %v", slots)
	}

	entries, err := f.store.ListOccupancy(ctx, f.stylist.ID, monday.Bounds(f.svc.Location()))
	if err != nil {
		t.Fatalf("ListOccupancy error: %v", err)
	}
	idx, err := slotindex.Build(entries)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	for _, s := range slots {
		if idx.WouldConflict(s) {
			t.Fatalf("offered slot %s conflicts with the index", s)
		}
	}
}

func TestAvailableSlots_EverySlotIsBookable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustBook(t, client, "client-1", at(12, 0))

	slots, err := f.svc.AvailableSlots(ctx, f.stylist.ID, f.service.ID, monday)
	if err != nil {
		t.Fatalf("AvailableSlots error: %v", err)
	}
	for _, s := range slots {
		appt, err := f.svc.Book(ctx, f.bookInput(admin, "client-2", s.Start))
		if err != nil {
			t.Fatalf("Book(%s) error: %v", s, err)
		}
		if _, err := f.svc.Cancel(ctx, CancelInput{Actor: admin, AppointmentID: appt.ID}); err != nil {
			t.Fatalf("Cancel error: %v", err)
		}
	}
}

func TestAvailableSlots_HidesPastStarts(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(at(15, 10))

	slots, err := f.svc.AvailableSlots(context.Background(), f.stylist.ID, f.service.ID, monday)
	if err != nil {
		t.Fatalf("AvailableSlots error: %v", err)
	}
	want := []domain.TimeInterval{
		{Start: at(15, 15), End: at(16, 15)},
		{Start: at(15, 30), End: at(16, 30)},
		{Start: at(15, 45), End: at(16, 45)},
		{Start: at(16, 0), End: at(17, 0)},
	}
	assertIntervals(t, slots, want)
}

func TestAvailableSlots_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AvailableSlots(ctx, uuid.New(), f.service.ID, monday); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown stylist err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.AvailableSlots(ctx, f.stylist.ID, uuid.New(), monday); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown service err = %v, want ErrNotFound", err)
	}
	var vErr *ValidationError
	if _, err := f.svc.AvailableSlots(ctx, f.stylist.ID, f.service.ID, domain.Date{}); !errors.As(err, &vErr) {
		t.Fatalf("zero date err = %v, want *ValidationError", err)
	}

	slots, err := f.svc.AvailableSlots(ctx, f.stylist.ID, f.service.ID, sunday)
	if err != nil {
		t.Fatalf("AvailableSlots error: %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Fatalf("sunday slots = %v, want empty", slots)
	}
}

func TestEffectiveHours_ExceptionsAndSalonHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	own, err := f.svc.AddCalendarException(ctx, ExceptionInput{
		Actor:     stylistActor,
		StylistID: &f.stylist.ID,
		StartDate: monday,
		Hours:     []domain.ClockRange{{Start: 12 * 60, End: 15 * 60}},
		Reason:    "training in the morning",
	})
	if err != nil {
		t.Fatalf("AddCalendarException error: %v", err)
	}
	if _, err := f.svc.SetBusinessHours(ctx, BusinessHoursInput{
		Actor: admin,
		Days:  []domain.BusinessHours{{Weekday: time.Monday, OpenMinute: 10 * 60, CloseMinute: 16 * 60}},
	}); err != nil {
		t.Fatalf("SetBusinessHours error: %v", err)
	}
	if _, err := f.svc.AddCalendarException(ctx, ExceptionInput{Actor: admin, StartDate: tuesday, Closed: true, Reason: "holiday"}); err != nil {
		t.Fatalf("AddCalendarException error: %v", err)
	}

	hours, err := f.svc.EffectiveHours(ctx, f.stylist.ID, monday)
	if err != nil {
		t.Fatalf("EffectiveHours error: %v", err)
	}
	assertIntervals(t, hours, []domain.TimeInterval{{Start: at(12, 0), End: at(15, 0)}})

	hours, err = f.svc.EffectiveHours(ctx, f.stylist.ID, tuesday)
	if err != nil {
		t.Fatalf("EffectiveHours error: %v", err)
	}
	if len(hours) != 0 {
		t.Fatalf("tuesday hours = %v, want none", hours)
	}

	_, err = f.svc.Book(ctx, f.bookInput(client, "client-1", at(10, 0)))
	if !errors.Is(err, ErrOutsideBusinessHours) {
		t.Fatalf("err = %v, want ErrOutsideBusinessHours", err)
	}

	if _, err := f.svc.RemoveCalendarException(ctx, RemoveExceptionInput{Actor: stylistActor, ExceptionID: own.ID}); err != nil {
		t.Fatalf("RemoveCalendarException error: %v", err)
	}
	hours, err = f.svc.EffectiveHours(ctx, f.stylist.ID, monday)
	if err != nil {
		t.Fatalf("EffectiveHours error: %v", err)
	}
	assertIntervals(t, hours, []domain.TimeInterval{{Start: at(10, 0), End: at(16, 0)}})
	f.mustBook(t, client, "client-1", at(10, 0))

	if _, err := f.svc.EffectiveHours(ctx, uuid.New(), monday); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown stylist err = %v, want ErrNotFound", err)
	}
}

func TestListAppointments_Scoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustBook(t, client, "client-1", at(10, 0))
	f.mustBook(t, admin, "client-2", at(12, 0))

	mine, err := f.svc.ListAppointments(ctx, ListInput{Actor: client})
	if err != nil {
		t.Fatalf("ListAppointments error: %v", err)
	}
	if len(mine) != 1 || mine[0].ClientID != "client-1" {
		t.Fatalf("client list = %+v, want only client-1", mine)
	}

	if _, err := f.svc.ListAppointments(ctx, ListInput{Actor: client, ClientID: "client-2"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("foreign client err = %v, want ErrUnauthorized", err)
	}

	calendar, err := f.svc.ListAppointments(ctx, ListInput{Actor: stylistActor, StylistID: &f.stylist.ID})
	if err != nil {
		t.Fatalf("ListAppointments error: %v", err)
	}
	if len(calendar) != 2 || !calendar[0].StartTime.Before(calendar[1].StartTime) {
		t.Fatalf("stylist list = %+v, want both appointments in order", calendar)
	}

	if _, err := f.svc.ListAppointments(ctx, ListInput{Actor: otherStylist, StylistID: &f.stylist.ID}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("other stylist err = %v, want ErrUnauthorized", err)
	}
	var vErr *ValidationError
	if _, err := f.svc.ListAppointments(ctx, ListInput{Actor: stylistActor}); !errors.As(err, &vErr) {
		t.Fatalf("missing stylist err = %v, want *ValidationError", err)
	}
	if _, err := f.svc.ListAppointments(ctx, ListInput{Actor: admin, Statuses: []domain.AppointmentStatus{"pending"}}); !errors.As(err, &vErr) {
		t.Fatalf("bad status err = %v, want *ValidationError", err)
	}
}

func TestGetAppointment_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.mustBook(t, client, "client-1", at(10, 0))

	for _, actor := range []domain.Actor{client, stylistActor, admin} {
		if _, err := f.svc.GetAppointment(ctx, actor, appt.ID); err != nil {
			t.Fatalf("GetAppointment(%s) error: %v", actor.UserID, err)
		}
	}
	stranger := domain.Actor{UserID: "client-9", Role: domain.RoleClient}
	if _, err := f.svc.GetAppointment(ctx, stranger, appt.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger err = %v, want ErrUnauthorized", err)
	}
}

func TestListAuditLog_AdminOnly(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.ListAuditLog(context.Background(), stylistActor, store.AuditFilter{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
