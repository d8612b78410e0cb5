package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/store"
)

type Kind string

const (
	KindInvalidReference     Kind = "INVALID_REFERENCE"
	KindOutsideBusinessHours Kind = "OUTSIDE_BUSINESS_HOURS"
	KindSlotTaken            Kind = "SLOT_TAKEN"
	KindInvalidAlignment     Kind = "INVALID_ALIGNMENT"
	KindInvalidState         Kind = "INVALID_STATE"
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindTimeout              Kind = "TIMEOUT"
	KindNotFound             Kind = "NOT_FOUND"
	KindPastStart            Kind = "PAST_START"
	KindIdempotencyConflict  Kind = "IDEMPOTENCY_CONFLICT"
)

// Error is a domain rejection. It carries enough context for a caller to
// explain the refusal without another round trip.
type Error struct {
	Kind          Kind
	Message       string
	StylistID     uuid.UUID
	AppointmentID uuid.UUID
	Interval      *domain.TimeInterval
	ConflictsWith []uuid.UUID

	err error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return strings.ToLower(string(e.Kind))
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, booking.ErrSlotTaken).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidReference     = &Error{Kind: KindInvalidReference}
	ErrOutsideBusinessHours = &Error{Kind: KindOutsideBusinessHours}
	ErrSlotTaken            = &Error{Kind: KindSlotTaken}
	ErrInvalidAlignment     = &Error{Kind: KindInvalidAlignment}
	ErrInvalidState         = &Error{Kind: KindInvalidState}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrTimeout              = &Error{Kind: KindTimeout}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrPastStart            = &Error{Kind: KindPastStart}
	ErrIdempotencyConflict  = &Error{Kind: KindIdempotencyConflict}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) withStylist(id uuid.UUID) *Error {
	e.StylistID = id
	return e
}

func (e *Error) withInterval(iv domain.TimeInterval) *Error {
	e.Interval = &iv
	return e
}

func (e *Error) withAppointment(id uuid.UUID) *Error {
	e.AppointmentID = id
	return e
}

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// fromValidator turns struct tag failures into a single ValidationError.
func fromValidator(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return validationError(err.Error())
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return validationError(strings.Join(msgs, "; "))
}

// translate maps store and context failures onto the error taxonomy. Anything
// it does not recognise is an infrastructure failure and is wrapped as such.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var bErr *Error
	var vErr *ValidationError
	switch {
	case errors.As(err, &bErr), errors.As(err, &vErr):
		return err
	case errors.Is(err, store.ErrLockTimeout), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "stylist calendar is busy, try again", err: err}
	case errors.Is(err, store.ErrIdempotencyConflict):
		return &Error{Kind: KindIdempotencyConflict, Message: "idempotency key was used for a different request", err: err}
	case errors.Is(err, store.ErrConflict):
		return &Error{Kind: KindSlotTaken, Message: "requested time overlaps an existing booking", err: err}
	case errors.Is(err, store.ErrStaleStatus):
		return &Error{Kind: KindInvalidState, Message: "appointment changed concurrently", err: err}
	case errors.Is(err, store.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: "not found", err: err}
	}
	return fmt.Errorf("booking: %w", err)
}
