package notify

import (
	"context"
	"log/slog"

	"github.com/masterries/AppointmentManager/internal/domain"
)

// LogSender writes events to the log. It is used when no brokers are configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{log: log.With(slog.String("component", "notify.log"))}
}

func (s *LogSender) Send(ctx context.Context, ev domain.Event) error {
	s.log.InfoContext(ctx, "booking event",
		slog.String("event_id", ev.ID.String()),
		slog.String("event_type", string(ev.Type)),
		slog.String("appointment_id", ev.Appointment.ID.String()),
		slog.String("stylist_id", ev.Appointment.StylistID.String()),
		slog.String("client_id", ev.Appointment.ClientID),
		slog.Time("start_time", ev.Appointment.StartTime),
	)
	return nil
}
