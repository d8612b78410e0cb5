// Package booking is the scheduling core: availability queries, the booking
// coordinator and the appointment lifecycle, each running against a
// store.Repository that provides per-stylist serialization.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/store"
)

const (
	tracerName = "github.com/masterries/AppointmentManager/internal/service/booking"

	DefaultGranularity = 15 * time.Minute
	maxListLimit       = 500
)

// Publisher receives events after their transaction committed. Implementations
// must not block the caller.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event)
}

type Options struct {
	// Location is the salon time zone; dates and alignment are evaluated in it.
	Location    *time.Location
	Granularity time.Duration
	Publisher   Publisher
	Log         *slog.Logger
	Now         func() time.Time
}

type Service struct {
	repo        store.Repository
	loc         *time.Location
	granularity time.Duration
	publisher   Publisher
	log         *slog.Logger
	now         func() time.Time
	validate    *validator.Validate
	tracer      trace.Tracer
}

func NewService(repo store.Repository, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Granularity <= 0 {
		opts.Granularity = DefaultGranularity
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Publisher == nil {
		opts.Publisher = discardPublisher{}
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Service{
		repo:        repo,
		loc:         opts.Location,
		granularity: opts.Granularity,
		publisher:   opts.Publisher,
		log:         opts.Log.With(slog.String("component", "booking")),
		now:         opts.Now,
		validate:    v,
		tracer:      otel.Tracer(tracerName),
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) Granularity() time.Duration {
	return s.granularity
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, domain.Event) {}

func (s *Service) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return fromValidator(err)
	}
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "booking."+name, trace.WithAttributes(attrs...))
}

// endSpan records domain rejections as span events and infrastructure failures as errors.
func endSpan(span trace.Span, err error) {
	if err != nil {
		var bErr *Error
		var vErr *ValidationError
		if errors.As(err, &bErr) {
			span.SetAttributes(attribute.String("booking.rejection", string(bErr.Kind)))
		} else if !errors.As(err, &vErr) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

func (s *Service) emit(ctx context.Context, ev domain.Event) {
	s.publisher.Publish(context.WithoutCancel(ctx), ev)
}

// loadStylist returns NOT_FOUND for an unknown id.
func loadStylist(ctx context.Context, r store.Reader, id uuid.UUID) (domain.Stylist, error) {
	st, err := r.GetStylist(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Stylist{}, newError(KindNotFound, "stylist %s not found", id).withStylist(id)
	}
	if err != nil {
		return domain.Stylist{}, translate(err)
	}
	return st, nil
}

func loadService(ctx context.Context, r store.Reader, id uuid.UUID) (domain.Service, error) {
	svc, err := r.GetService(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Service{}, newError(KindNotFound, "service %s not found", id)
	}
	if err != nil {
		return domain.Service{}, translate(err)
	}
	return svc, nil
}

func loadAppointment(ctx context.Context, r store.Reader, id uuid.UUID) (domain.Appointment, error) {
	appt, err := r.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Appointment{}, newError(KindNotFound, "appointment %s not found", id).withAppointment(id)
	}
	if err != nil {
		return domain.Appointment{}, translate(err)
	}
	return appt, nil
}

func requireBookable(st domain.Stylist, svc domain.Service) error {
	if !st.Active {
		return newError(KindInvalidReference, "stylist %s is not accepting bookings", st.ID).withStylist(st.ID)
	}
	if !svc.Active {
		return newError(KindInvalidReference, "service %s is no longer offered", svc.ID)
	}
	if svc.DurationMinutes <= 0 {
		return newError(KindInvalidReference, "service %s has no duration", svc.ID)
	}
	return nil
}
