package grpc

import (
	"context"
	"log/slog"

	schedulingv1 "github.com/masterries/AppointmentManager/internal/api/schedulingv1"
	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/service/booking"
	"github.com/masterries/AppointmentManager/internal/store"
)

type CatalogServer struct {
	schedulingv1.UnimplementedCatalogServiceServer

	svc catalogService
	log *slog.Logger
}

type catalogService interface {
	UpsertStylist(ctx context.Context, in booking.StylistInput) (domain.Stylist, error)
	UpsertService(ctx context.Context, in booking.ServiceInput) (domain.Service, error)
	SetWorkingHours(ctx context.Context, in booking.WorkingHoursInput) (domain.Stylist, error)
	SetBusinessHours(ctx context.Context, in booking.BusinessHoursInput) ([]domain.BusinessHours, error)
	AddCalendarException(ctx context.Context, in booking.ExceptionInput) (domain.CalendarException, error)
	RemoveCalendarException(ctx context.Context, in booking.RemoveExceptionInput) (domain.CalendarException, error)
	ListAuditLog(ctx context.Context, actor domain.Actor, filter store.AuditFilter) ([]domain.AuditEntry, error)
	AddClientNote(ctx context.Context, in booking.ClientNoteInput) (domain.ClientNote, error)
	ListClientNotes(ctx context.Context, q booking.ClientNotesQuery) ([]domain.ClientNote, error)
}

func NewCatalogServer(svc catalogService, log *slog.Logger) *CatalogServer {
	if log == nil {
		log = slog.Default()
	}
	return &CatalogServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.catalog")),
	}
}

func (s *CatalogServer) UpsertStylist(ctx context.Context, req *schedulingv1.UpsertStylistRequest) (*schedulingv1.UpsertStylistResponse, error) {
	log := s.log.With(slog.String("rpc", "UpsertStylist"))

	if req == nil {
		return nil, nilRequest(log)
	}
	in := booking.StylistInput{
		Actor:  ActorFromContext(ctx),
		UserID: req.UserID,
		Name:   req.Name,
		Active: req.Active,
	}
	if id, err := parseOptionalID("id", req.ID); err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	} else if id != nil {
		in.ID = *id
	}
	hours, err := parseWorkingHours(req.WorkingHours)
	if err != nil {
		return nil, invalidArgument(log, "invalid_hours", err)
	}
	in.WorkingHours = hours

	st, err := s.svc.UpsertStylist(ctx, in)
	if err != nil {
		return nil, statusError(log, "upsert stylist", err, slog.String("user_id", req.UserID))
	}

	log.Info("stylist saved", slog.String("stylist_id", st.ID.String()), slog.Bool("active", st.Active))
	return &schedulingv1.UpsertStylistResponse{Stylist: toWireStylist(st)}, nil
}

func (s *CatalogServer) UpsertService(ctx context.Context, req *schedulingv1.UpsertServiceRequest) (*schedulingv1.UpsertServiceResponse, error) {
	log := s.log.With(slog.String("rpc", "UpsertService"))

	if req == nil {
		return nil, nilRequest(log)
	}
	in := booking.ServiceInput{
		Actor:           ActorFromContext(ctx),
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Active:          req.Active,
	}
	if id, err := parseOptionalID("id", req.ID); err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	} else if id != nil {
		in.ID = *id
	}

	svc, err := s.svc.UpsertService(ctx, in)
	if err != nil {
		return nil, statusError(log, "upsert service", err)
	}

	log.Info("service saved", slog.String("service_id", svc.ID.String()), slog.Int("duration_minutes", svc.DurationMinutes))
	return &schedulingv1.UpsertServiceResponse{Service: toWireService(svc)}, nil
}

func (s *CatalogServer) SetWorkingHours(ctx context.Context, req *schedulingv1.SetWorkingHoursRequest) (*schedulingv1.SetWorkingHoursResponse, error) {
	log := s.log.With(slog.String("rpc", "SetWorkingHours"))

	if req == nil {
		return nil, nilRequest(log)
	}
	stylistID, err := parseID("stylist_id", req.StylistID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}
	hours, err := parseWorkingHours(req.Hours)
	if err != nil {
		return nil, invalidArgument(log, "invalid_hours", err)
	}

	st, err := s.svc.SetWorkingHours(ctx, booking.WorkingHoursInput{Actor: ActorFromContext(ctx), StylistID: stylistID, Hours: hours})
	if err != nil {
		return nil, statusError(log, "set working hours", err, slog.String("stylist_id", stylistID.String()))
	}

	log.Info("working hours set", slog.String("stylist_id", stylistID.String()))
	return &schedulingv1.SetWorkingHoursResponse{Stylist: toWireStylist(st)}, nil
}

func (s *CatalogServer) SetBusinessHours(ctx context.Context, req *schedulingv1.SetBusinessHoursRequest) (*schedulingv1.SetBusinessHoursResponse, error) {
	log := s.log.With(slog.String("rpc", "SetBusinessHours"))

	if req == nil {
		return nil, nilRequest(log)
	}
	days, err := parseBusinessDays(req.Days)
	if err != nil {
		return nil, invalidArgument(log, "invalid_hours", err)
	}

	saved, err := s.svc.SetBusinessHours(ctx, booking.BusinessHoursInput{Actor: ActorFromContext(ctx), Days: days})
	if err != nil {
		return nil, statusError(log, "set business hours", err)
	}

	log.Info("business hours set", slog.Int("days", len(saved)))
	return &schedulingv1.SetBusinessHoursResponse{Days: toWireBusinessDays(saved)}, nil
}

func (s *CatalogServer) AddCalendarException(ctx context.Context, req *schedulingv1.AddCalendarExceptionRequest) (*schedulingv1.AddCalendarExceptionResponse, error) {
	log := s.log.With(slog.String("rpc", "AddCalendarException"))

	if req == nil {
		return nil, nilRequest(log)
	}
	stylistID, err := parseOptionalID("stylist_id", req.StylistID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, invalidArgument(log, "invalid_date", err)
	}
	var end domain.Date
	if req.EndDate != "" {
		if end, err = parseDate("end_date", req.EndDate); err != nil {
			return nil, invalidArgument(log, "invalid_date", err)
		}
	}
	hours, err := parseClockRanges(req.Hours)
	if err != nil {
		return nil, invalidArgument(log, "invalid_hours", err)
	}

	exc, err := s.svc.AddCalendarException(ctx, booking.ExceptionInput{
		Actor:     ActorFromContext(ctx),
		StylistID: stylistID,
		StartDate: start,
		EndDate:   end,
		Closed:    req.Closed,
		Hours:     hours,
		Reason:    req.Reason,
	})
	if err != nil {
		return nil, statusError(log, "add calendar exception", err, slog.String("start_date", start.String()))
	}

	log.Info(
		"calendar exception added",
		slog.String("exception_id", exc.ID.String()),
		slog.Bool("global", exc.Global()),
		slog.String("start_date", exc.StartDate.String()),
		slog.String("end_date", exc.EndDate.String()),
	)
	return &schedulingv1.AddCalendarExceptionResponse{Exception: toWireException(exc)}, nil
}

func (s *CatalogServer) RemoveCalendarException(ctx context.Context, req *schedulingv1.RemoveCalendarExceptionRequest) (*schedulingv1.RemoveCalendarExceptionResponse, error) {
	log := s.log.With(slog.String("rpc", "RemoveCalendarException"))

	if req == nil {
		return nil, nilRequest(log)
	}
	id, err := parseID("exception_id", req.ExceptionID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	exc, err := s.svc.RemoveCalendarException(ctx, booking.RemoveExceptionInput{Actor: ActorFromContext(ctx), ExceptionID: id})
	if err != nil {
		return nil, statusError(log, "remove calendar exception", err, slog.String("exception_id", id.String()))
	}

	log.Info("calendar exception removed", slog.String("exception_id", id.String()))
	return &schedulingv1.RemoveCalendarExceptionResponse{Exception: toWireException(exc)}, nil
}

func (s *CatalogServer) ListAuditLog(ctx context.Context, req *schedulingv1.ListAuditLogRequest) (*schedulingv1.ListAuditLogResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAuditLog"))

	if req == nil {
		return nil, nilRequest(log)
	}

	entries, err := s.svc.ListAuditLog(ctx, ActorFromContext(ctx), store.AuditFilter{
		ActorID:    req.ActorID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, statusError(log, "list audit log", err)
	}

	out := make([]schedulingv1.AuditEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toWireAuditEntry(e))
	}
	return &schedulingv1.ListAuditLogResponse{Entries: out}, nil
}

func (s *CatalogServer) AddClientNote(ctx context.Context, req *schedulingv1.AddClientNoteRequest) (*schedulingv1.AddClientNoteResponse, error) {
	log := s.log.With(slog.String("rpc", "AddClientNote"))

	if req == nil {
		return nil, nilRequest(log)
	}
	stylistID, err := parseID("stylist_id", req.StylistID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	n, err := s.svc.AddClientNote(ctx, booking.ClientNoteInput{
		Actor:     ActorFromContext(ctx),
		StylistID: stylistID,
		ClientID:  req.ClientID,
		Note:      req.Note,
	})
	if err != nil {
		return nil, statusError(log, "add client note", err, slog.String("stylist_id", stylistID.String()))
	}

	log.Info("client note added", slog.String("note_id", n.ID.String()), slog.String("stylist_id", stylistID.String()))
	return &schedulingv1.AddClientNoteResponse{Note: toWireClientNote(n)}, nil
}

func (s *CatalogServer) ListClientNotes(ctx context.Context, req *schedulingv1.ListClientNotesRequest) (*schedulingv1.ListClientNotesResponse, error) {
	log := s.log.With(slog.String("rpc", "ListClientNotes"))

	if req == nil {
		return nil, nilRequest(log)
	}
	stylistID, err := parseID("stylist_id", req.StylistID)
	if err != nil {
		return nil, invalidArgument(log, "invalid_uuid", err)
	}

	notes, err := s.svc.ListClientNotes(ctx, booking.ClientNotesQuery{
		Actor:     ActorFromContext(ctx),
		StylistID: stylistID,
		ClientID:  req.ClientID,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, statusError(log, "list client notes", err, slog.String("stylist_id", stylistID.String()))
	}

	out := make([]schedulingv1.ClientNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, toWireClientNote(n))
	}
	return &schedulingv1.ListClientNotesResponse{Notes: out}, nil
}
