package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	schedulingv1 "github.com/masterries/AppointmentManager/internal/api/schedulingv1"
	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/service/booking"
)

type fakeBookingService struct {
	availableSlotsFn func(ctx context.Context, stylistID, serviceID uuid.UUID, date domain.Date) ([]domain.TimeInterval, error)
	bookFn           func(ctx context.Context, in booking.BookInput) (domain.Appointment, error)
	cancelFn         func(ctx context.Context, in booking.CancelInput) (domain.Appointment, error)
	listFn           func(ctx context.Context, in booking.ListInput) ([]domain.Appointment, error)
}

func (f *fakeBookingService) AvailableSlots(ctx context.Context, stylistID, serviceID uuid.UUID, date domain.Date) ([]domain.TimeInterval, error) {
	if f.availableSlotsFn == nil {
		panic("AvailableSlots not configured")
	}
	return f.availableSlotsFn(ctx, stylistID, serviceID, date)
}

func (f *fakeBookingService) EffectiveHours(ctx context.Context, stylistID uuid.UUID, date domain.Date) ([]domain.TimeInterval, error) {
	panic("EffectiveHours not configured")
}

func (f *fakeBookingService) Occupied(ctx context.Context, stylistID uuid.UUID, date domain.Date) ([]domain.TimeInterval, error) {
	panic("Occupied not configured")
}

func (f *fakeBookingService) Book(ctx context.Context, in booking.BookInput) (domain.Appointment, error) {
	if f.bookFn == nil {
		panic("Book not configured")
	}
	return f.bookFn(ctx, in)
}

func (f *fakeBookingService) Block(ctx context.Context, in booking.BlockInput) (domain.BlockedSlot, error) {
	panic("Block not configured")
}

func (f *fakeBookingService) Unblock(ctx context.Context, in booking.UnblockInput) (domain.BlockedSlot, error) {
	panic("Unblock not configured")
}

func (f *fakeBookingService) Cancel(ctx context.Context, in booking.CancelInput) (domain.Appointment, error) {
	if f.cancelFn == nil {
		panic("Cancel not configured")
	}
	return f.cancelFn(ctx, in)
}

func (f *fakeBookingService) Reschedule(ctx context.Context, in booking.RescheduleInput) (domain.Appointment, error) {
	panic("Reschedule not configured")
}

func (f *fakeBookingService) Complete(ctx context.Context, in booking.CompleteInput) (domain.Appointment, error) {
	panic("Complete not configured")
}

func (f *fakeBookingService) GetAppointment(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Appointment, error) {
	panic("GetAppointment not configured")
}

func (f *fakeBookingService) ListAppointments(ctx context.Context, in booking.ListInput) ([]domain.Appointment, error) {
	if f.listFn == nil {
		panic("ListAppointments not configured")
	}
	return f.listFn(ctx, in)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIdempotencyKey_ReadsHeadersAndTrims(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("idempotency-key", "  abc  "))
	if got := idempotencyKey(ctx); got != "abc" {
		t.Fatalf("idempotencyKey = %q, want %q", got, "abc")
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-idempotency-key", "xyz"))
	if got := idempotencyKey(ctx); got != "xyz" {
		t.Fatalf("idempotencyKey = %q, want %q", got, "xyz")
	}
}

func TestBook_RejectsMalformedRequests(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{}, quietLogger())

	tests := []struct {
		name string
		req  *schedulingv1.BookRequest
	}{
		{"nil request", nil},
		{"bad stylist id", &schedulingv1.BookRequest{StylistID: "nope", ServiceID: uuid.NewString()}},
		{"nil service id", &schedulingv1.BookRequest{StylistID: uuid.NewString(), ServiceID: uuid.Nil.String()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.Book(context.Background(), tt.req)
			if status.Code(err) != codes.InvalidArgument {
				t.Fatalf("code = %s, want %s", status.Code(err), codes.InvalidArgument)
			}
		})
	}
}

func TestBook_PassesActorAndIdempotencyKey(t *testing.T) {
	var got booking.BookInput
	srv := NewBookingServer(&fakeBookingService{
		bookFn: func(ctx context.Context, in booking.BookInput) (domain.Appointment, error) {
			got = in
			return domain.Appointment{ID: uuid.MustParse("00000000-0000-0000-0000-000000000010"), Status: domain.StatusConfirmed}, nil
		},
	}, quietLogger())

	actor := domain.Actor{UserID: "client-1", Role: domain.RoleClient}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("idempotency-key", "k1"))
	ctx = WithActor(ctx, actor)
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	resp, err := srv.Book(ctx, &schedulingv1.BookRequest{
		StylistID: uuid.NewString(),
		ServiceID: uuid.NewString(),
		ClientID:  "client-1",
		Start:     start,
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if got.IdempotencyKey != "k1" {
		t.Fatalf("idempotency key = %q, want %q", got.IdempotencyKey, "k1")
	}
	if got.Actor != actor {
		t.Fatalf("actor = %+v, want %+v", got.Actor, actor)
	}
	if !got.Start.Equal(start) {
		t.Fatalf("start = %v, want %v", got.Start, start)
	}
	if resp.Appointment.Status != "confirmed" {
		t.Fatalf("status = %q, want confirmed", resp.Appointment.Status)
	}
}

func TestBook_SlotTakenCarriesDetails(t *testing.T) {
	stylistID := uuid.New()
	other := uuid.New()
	iv := domain.TimeInterval{
		Start: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC),
	}
	srv := NewBookingServer(&fakeBookingService{
		bookFn: func(ctx context.Context, in booking.BookInput) (domain.Appointment, error) {
			return domain.Appointment{}, &booking.Error{
				Kind:          booking.KindSlotTaken,
				Message:       "slot taken",
				StylistID:     stylistID,
				Interval:      &iv,
				ConflictsWith: []uuid.UUID{other},
			}
		},
	}, quietLogger())

	_, err := srv.Book(context.Background(), &schedulingv1.BookRequest{StylistID: stylistID.String(), ServiceID: uuid.NewString()})
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.FailedPrecondition)
	}
	info, ok := ErrorInfo(err)
	if !ok {
		t.Fatalf("missing ErrorInfo detail")
	}
	if info.Reason != string(booking.KindSlotTaken) {
		t.Fatalf("reason = %q, want %q", info.Reason, booking.KindSlotTaken)
	}
	if info.Metadata["stylist_id"] != stylistID.String() {
		t.Fatalf("stylist_id = %q, want %q", info.Metadata["stylist_id"], stylistID)
	}
	if info.Metadata["conflicts_with"] != other.String() {
		t.Fatalf("conflicts_with = %q, want %q", info.Metadata["conflicts_with"], other)
	}
	if info.Metadata["start"] != "2026-01-05T10:00:00Z" {
		t.Fatalf("start = %q", info.Metadata["start"])
	}
}

func TestStatusError_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"slot taken", booking.ErrSlotTaken, codes.FailedPrecondition},
		{"outside hours", booking.ErrOutsideBusinessHours, codes.FailedPrecondition},
		{"alignment", booking.ErrInvalidAlignment, codes.InvalidArgument},
		{"state", booking.ErrInvalidState, codes.FailedPrecondition},
		{"unauthorized", booking.ErrUnauthorized, codes.PermissionDenied},
		{"not found", booking.ErrNotFound, codes.NotFound},
		{"timeout", booking.ErrTimeout, codes.Unavailable},
		{"idempotency", booking.ErrIdempotencyConflict, codes.AlreadyExists},
		{"validation", &booking.ValidationError{}, codes.InvalidArgument},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"cancelled", context.Canceled, codes.Canceled},
		{"infrastructure", errors.New("connection reset"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := statusError(quietLogger(), "op", tt.err)
			if status.Code(err) != tt.want {
				t.Fatalf("code = %s, want %s", status.Code(err), tt.want)
			}
		})
	}
}

func TestStatusError_InternalHidesCause(t *testing.T) {
	err := statusError(quietLogger(), "op", errors.New("password=hunter2"))
	if msg := status.Convert(err).Message(); msg != "internal error" {
		t.Fatalf("message = %q, want %q", msg, "internal error")
	}
}

func TestStatusError_TimeoutSuggestsRetry(t *testing.T) {
	err := statusError(quietLogger(), "op", booking.ErrTimeout)

	var retry *errdetails.RetryInfo
	for _, d := range status.Convert(err).Details() {
		if r, ok := d.(*errdetails.RetryInfo); ok {
			retry = r
		}
	}
	if retry == nil {
		t.Fatalf("missing RetryInfo detail")
	}
	if got := retry.GetRetryDelay().AsDuration(); got != retryAfter {
		t.Fatalf("retry delay = %v, want %v", got, retryAfter)
	}
}

func TestListAppointments_MapsFilters(t *testing.T) {
	stylistID := uuid.New()
	from := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	var got booking.ListInput
	srv := NewBookingServer(&fakeBookingService{
		listFn: func(ctx context.Context, in booking.ListInput) ([]domain.Appointment, error) {
			got = in
			return []domain.Appointment{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		},
	}, quietLogger())

	resp, err := srv.ListAppointments(context.Background(), &schedulingv1.ListAppointmentsRequest{
		StylistID: stylistID.String(),
		Statuses:  []string{"confirmed"},
		From:      &from,
		Limit:     20,
	})
	if err != nil {
		t.Fatalf("ListAppointments error: %v", err)
	}
	if len(resp.Appointments) != 2 {
		t.Fatalf("appointments = %d, want 2", len(resp.Appointments))
	}
	if got.StylistID == nil || *got.StylistID != stylistID {
		t.Fatalf("stylist filter = %v, want %v", got.StylistID, stylistID)
	}
	if len(got.Statuses) != 1 || got.Statuses[0] != domain.StatusConfirmed {
		t.Fatalf("statuses = %v", got.Statuses)
	}
	if !got.From.Equal(from) || !got.To.IsZero() || got.Limit != 20 {
		t.Fatalf("window = %v..%v limit %d", got.From, got.To, got.Limit)
	}
}

func TestAvailableSlots_RejectsBadDate(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{}, quietLogger())
	_, err := srv.AvailableSlots(context.Background(), &schedulingv1.AvailableSlotsRequest{
		StylistID: uuid.NewString(),
		ServiceID: uuid.NewString(),
		Date:      "05/01/2026",
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.InvalidArgument)
	}
}
