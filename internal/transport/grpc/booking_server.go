package grpc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	schedulingv1 "github.com/masterries/AppointmentManager/internal/api/schedulingv1"
	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/service/booking"
)

type BookingServer struct {
	schedulingv1.UnimplementedBookingServiceServer

	svc bookingService
	log *slog.Logger
}

type bookingService interface {
	AvailableSlots(ctx context.Context, stylistID, serviceID uuid.UUID, date domain.Date) ([]domain.TimeInterval, error)
	EffectiveHours(ctx context.Context, stylistID uuid.UUID, date domain.Date) ([]domain.TimeInterval, error)
	Occupied(ctx context.Context, stylistID uuid.UUID, date domain.Date) ([]domain.TimeInterval, error)
	Book(ctx context.Context, in booking.BookInput) (domain.Appointment, error)
	Block(ctx context.Context, in booking.BlockInput) (domain.BlockedSlot, error)
	Unblock(ctx context.Context, in booking.UnblockInput) (domain.BlockedSlot, error)
	Cancel(ctx context.Context, in booking.CancelInput) (domain.Appointment, error)
	Reschedule(ctx context.Context, in booking.RescheduleInput) (domain.Appointment, error)
	Complete(ctx context.Context, in booking.CompleteInput) (domain.Appointment, error)
	GetAppointment(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Appointment, error)
	ListAppointments(ctx context.Context, in booking.ListInput) ([]domain.Appointment, error)
}

func NewBookingServer(svc bookingService, log *slog.Logger) *BookingServer {
	if log == nil {
		log = slog.Default()
	}
	return &BookingServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.booking")),
	}
}

func nilRequest(log *slog.Logger) error {
	log.Warn("invalid request", slog.String("reason", "nil_request"))
	return status.Error(codes.InvalidArgument, "request is required")
}

func invalidArgument(log *slog.Logger, reason string, err error) error {
	log.Warn("invalid request", slog.String("reason", reason), slog.Any("err", err))
	return status.Error(codes.InvalidArgument, err.Error())
}

func (s *BookingServer) AvailableSlots(ctx context.Context, req *schedulingv1.AvailableSlotsRequest) (*schedulingv1.AvailableSlotsResponse, error) {
	log := s.log.With(slog.String("rpc", "AvailableSlots"))

	if req == nil {
		return nil, nilRequest(log)
	}
	stylistID, err := parseID("stylist_id", req.StylistID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}
	serviceID, err := parseID("service_id", req.ServiceID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, invalidArgument(log, "invalid_date", err)
	}

	slots, err := s.svc.AvailableSlots(ctx, stylistID, serviceID, date)
	if err != nil {
		return nil, statusError(log, "available slots", err, slog.String("stylist_id", stylistID.String()), slog.String("date", date.String()))
	}

	log.Debug("slots listed", slog.String("stylist_id", stylistID.String()), slog.String("date", date.String()), slog.Int("count", len(slots)))
	return &schedulingv1.AvailableSlotsResponse{Slots: toWireIntervals(slots)}, nil
}

func (s *BookingServer) EffectiveHours(ctx context.Context, req *schedulingv1.EffectiveHoursRequest) (*schedulingv1.EffectiveHoursResponse, error) {
	log := s.log.With(slog.String("rpc", "EffectiveHours"))

	if req == nil {
		return nil, nilRequest(log)
	}
	stylistID, err := parseID("stylist_id", req.StylistID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, invalidArgument(log, "invalid_date", err)
	}

	hours, err := s.svc.EffectiveHours(ctx, stylistID, date)
	if err != nil {
		return nil, statusError(log, "effective hours", err, slog.String("stylist_id", stylistID.String()))
	}
	busy, err := s.svc.Occupied(ctx, stylistID, date)
	if err != nil {
		return nil, statusError(log, "occupied", err, slog.String("stylist_id", stylistID.String()))
	}

	return &schedulingv1.EffectiveHoursResponse{
		Hours:    toWireIntervals(hours),
		Occupied: toWireIntervals(busy),
	}, nil
}

func (s *BookingServer) Book(ctx context.Context, req *schedulingv1.BookRequest) (*schedulingv1.BookResponse, error) {
	log := s.log.With(slog.String("rpc", "Book"))

	if req == nil {
		return nil, nilRequest(log)
	}
	stylistID, err := parseID("stylist_id", req.StylistID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}
	serviceID, err := parseID("service_id", req.ServiceID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	appt, err := s.svc.Book(ctx, booking.BookInput{
		Actor:          ActorFromContext(ctx),
		StylistID:      stylistID,
		ServiceID:      serviceID,
		ClientID:       req.ClientID,
		Start:          req.Start,
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey(ctx),
	})
	if err != nil {
		return nil, statusError(log, "booking", err,
			slog.String("stylist_id", stylistID.String()),
			slog.String("client_id", req.ClientID),
			slog.Time("start", req.Start),
		)
	}

	log.Info(
		"appointment booked",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("stylist_id", appt.StylistID.String()),
		slog.Time("start_time", appt.StartTime),
		slog.String("request_id", RequestIDFromContext(ctx)),
	)
	return &schedulingv1.BookResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *BookingServer) Block(ctx context.Context, req *schedulingv1.BlockRequest) (*schedulingv1.BlockResponse, error) {
	log := s.log.With(slog.String("rpc", "Block"))

	if req == nil {
		return nil, nilRequest(log)
	}
	stylistID, err := parseID("stylist_id", req.StylistID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	block, err := s.svc.Block(ctx, booking.BlockInput{
		Actor:     ActorFromContext(ctx),
		StylistID: stylistID,
		Start:     req.Start,
		End:       req.End,
		Reason:    req.Reason,
	})
	if err != nil {
		return nil, statusError(log, "block", err, slog.String("stylist_id", stylistID.String()))
	}

	log.Info("slot blocked", slog.String("block_id", block.ID.String()), slog.String("stylist_id", stylistID.String()))
	return &schedulingv1.BlockResponse{Block: toWireBlock(block)}, nil
}

func (s *BookingServer) Unblock(ctx context.Context, req *schedulingv1.UnblockRequest) (*schedulingv1.UnblockResponse, error) {
	log := s.log.With(slog.String("rpc", "Unblock"))

	if req == nil {
		return nil, nilRequest(log)
	}
	id, err := parseID("block_id", req.BlockID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	block, err := s.svc.Unblock(ctx, booking.UnblockInput{Actor: ActorFromContext(ctx), BlockID: id})
	if err != nil {
		return nil, statusError(log, "unblock", err, slog.String("block_id", id.String()))
	}

	log.Info("slot unblocked", slog.String("block_id", id.String()))
	return &schedulingv1.UnblockResponse{Block: toWireBlock(block)}, nil
}

func (s *BookingServer) Cancel(ctx context.Context, req *schedulingv1.CancelRequest) (*schedulingv1.CancelResponse, error) {
	log := s.log.With(slog.String("rpc", "Cancel"))

	if req == nil {
		return nil, nilRequest(log)
	}
	id, err := parseID("appointment_id", req.AppointmentID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	appt, err := s.svc.Cancel(ctx, booking.CancelInput{Actor: ActorFromContext(ctx), AppointmentID: id, Reason: req.Reason})
	if err != nil {
		return nil, statusError(log, "cancel", err, slog.String("appointment_id", id.String()))
	}

	log.Info("appointment cancelled", slog.String("appointment_id", id.String()))
	return &schedulingv1.CancelResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *BookingServer) Reschedule(ctx context.Context, req *schedulingv1.RescheduleRequest) (*schedulingv1.RescheduleResponse, error) {
	log := s.log.With(slog.String("rpc", "Reschedule"))

	if req == nil {
		return nil, nilRequest(log)
	}
	id, err := parseID("appointment_id", req.AppointmentID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	appt, err := s.svc.Reschedule(ctx, booking.RescheduleInput{
		Actor:         ActorFromContext(ctx),
		AppointmentID: id,
		NewStart:      req.NewStart,
	})
	if err != nil {
		return nil, statusError(log, "reschedule", err, slog.String("appointment_id", id.String()), slog.Time("new_start", req.NewStart))
	}

	log.Info(
		"appointment rescheduled",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("rescheduled_from", id.String()),
		slog.Time("start_time", appt.StartTime),
	)
	return &schedulingv1.RescheduleResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *BookingServer) Complete(ctx context.Context, req *schedulingv1.CompleteRequest) (*schedulingv1.CompleteResponse, error) {
	log := s.log.With(slog.String("rpc", "Complete"))

	if req == nil {
		return nil, nilRequest(log)
	}
	id, err := parseID("appointment_id", req.AppointmentID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	appt, err := s.svc.Complete(ctx, booking.CompleteInput{Actor: ActorFromContext(ctx), AppointmentID: id, Notes: req.Notes})
	if err != nil {
		return nil, statusError(log, "complete", err, slog.String("appointment_id", id.String()))
	}

	log.Info("appointment completed", slog.String("appointment_id", id.String()))
	return &schedulingv1.CompleteResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *BookingServer) GetAppointment(ctx context.Context, req *schedulingv1.GetAppointmentRequest) (*schedulingv1.GetAppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "GetAppointment"))

	if req == nil {
		return nil, nilRequest(log)
	}
	id, err := parseID("appointment_id", req.AppointmentID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	appt, err := s.svc.GetAppointment(ctx, ActorFromContext(ctx), id)
	if err != nil {
		return nil, statusError(log, "get appointment", err, slog.String("appointment_id", id.String()))
	}
	return &schedulingv1.GetAppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *BookingServer) ListAppointments(ctx context.Context, req *schedulingv1.ListAppointmentsRequest) (*schedulingv1.ListAppointmentsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAppointments"))

	if req == nil {
		return nil, nilRequest(log)
	}
	stylistID, err := parseOptionalID("stylist_id", req.StylistID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	in := booking.ListInput{
		Actor:     ActorFromContext(ctx),
		StylistID: stylistID,
		ClientID:  req.ClientID,
		Limit:     req.Limit,
	}
	for _, st := range req.Statuses {
		in.Statuses = append(in.Statuses, domain.AppointmentStatus(st))
	}
	if req.From != nil {
		in.From = *req.From
	}
	if req.To != nil {
		in.To = *req.To
	}

	appts, err := s.svc.ListAppointments(ctx, in)
	if err != nil {
		return nil, statusError(log, "list appointments", err)
	}

	out := make([]schedulingv1.Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, toWireAppointment(a))
	}

	log.Debug("appointments listed", slog.Int("count", len(out)), slog.Time("from", in.From), slog.Time("to", in.To))
	return &schedulingv1.ListAppointmentsResponse{Appointments: out}, nil
}
