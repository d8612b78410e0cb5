package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/masterries/AppointmentManager/internal/service/booking"
)

const errorDomain = "scheduling.salon"

// retryAfter is the backoff suggested when a stylist's calendar stayed locked.
const retryAfter = 250 * time.Millisecond

var kindCodes = map[booking.Kind]codes.Code{
	booking.KindInvalidReference:     codes.FailedPrecondition,
	booking.KindOutsideBusinessHours: codes.FailedPrecondition,
	booking.KindSlotTaken:            codes.FailedPrecondition,
	booking.KindInvalidAlignment:     codes.InvalidArgument,
	booking.KindInvalidState:         codes.FailedPrecondition,
	booking.KindUnauthorized:         codes.PermissionDenied,
	booking.KindTimeout:              codes.Unavailable,
	booking.KindNotFound:             codes.NotFound,
	booking.KindPastStart:            codes.FailedPrecondition,
	booking.KindIdempotencyConflict:  codes.AlreadyExists,
}

// statusError converts a service error into a gRPC status and logs it at a
// level matching who is at fault.
func statusError(log *slog.Logger, msg string, err error, attrs ...any) error {
	var bErr *booking.Error
	if errors.As(err, &bErr) {
		code, ok := kindCodes[bErr.Kind]
		if !ok {
			code = codes.FailedPrecondition
		}
		args := append([]any{slog.String("kind", string(bErr.Kind)), slog.String("reason", bErr.Error())}, attrs...)
		if bErr.Kind == booking.KindTimeout {
			log.Warn(msg+" timed out", args...)
		} else {
			log.Info(msg+" rejected", args...)
		}
		return withDetails(status.New(code, bErr.Error()), bErr)
	}

	var vErr *booking.ValidationError
	if errors.As(err, &vErr) {
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.InvalidArgument, vErr.Error())
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn(msg+" deadline exceeded", attrs...)
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	log.Error(msg+" failed", append([]any{slog.Any("err", err)}, attrs...)...)
	return status.Error(codes.Internal, "internal error")
}

func withDetails(st *status.Status, e *booking.Error) error {
	md := map[string]string{}
	if e.StylistID != uuid.Nil {
		md["stylist_id"] = e.StylistID.String()
	}
	if e.AppointmentID != uuid.Nil {
		md["appointment_id"] = e.AppointmentID.String()
	}
	if e.Interval != nil {
		md["start"] = e.Interval.Start.UTC().Format(time.RFC3339)
		md["end"] = e.Interval.End.UTC().Format(time.RFC3339)
	}
	if len(e.ConflictsWith) > 0 {
		ids := make([]string, 0, len(e.ConflictsWith))
		for _, id := range e.ConflictsWith {
			ids = append(ids, id.String())
		}
		md["conflicts_with"] = strings.Join(ids, ",")
	}

	info := &errdetails.ErrorInfo{Reason: string(e.Kind), Domain: errorDomain, Metadata: md}
	var (
		detailed *status.Status
		err      error
	)
	if e.Kind == booking.KindTimeout {
		detailed, err = st.WithDetails(info, &errdetails.RetryInfo{RetryDelay: durationpb.New(retryAfter)})
	} else {
		detailed, err = st.WithDetails(info)
	}
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// ErrorInfo extracts the domain details from a status returned by this server.
func ErrorInfo(err error) (*errdetails.ErrorInfo, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return nil, false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info, true
		}
	}
	return nil, false
}
