package grpc

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	schedulingv1 "github.com/masterries/AppointmentManager/internal/api/schedulingv1"
	"github.com/masterries/AppointmentManager/internal/domain"
)

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%s must be a UUID", field)
	}
	return id, nil
}

// parseOptionalID treats an empty string as "not set".
func parseOptionalID(field, raw string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseDate(field, raw string) (domain.Date, error) {
	d, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, fmt.Errorf("%s must be YYYY-MM-DD", field)
	}
	return d, nil
}

func parseWeekday(raw string) (time.Weekday, error) {
	want := strings.ToLower(strings.TrimSpace(raw))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.ToLower(wd.String()) == want {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

func parseClockRange(raw string) (domain.ClockRange, error) {
	from, to, ok := strings.Cut(raw, "-")
	if !ok {
		return domain.ClockRange{}, fmt.Errorf("hours %q must look like 09:00-17:00", raw)
	}
	start, err := domain.ParseClock(from)
	if err != nil {
		return domain.ClockRange{}, err
	}
	end, err := domain.ParseClock(to)
	if err != nil {
		return domain.ClockRange{}, err
	}
	return domain.ClockRange{Start: start, End: end}, nil
}

func parseClockRanges(raw []string) ([]domain.ClockRange, error) {
	out := make([]domain.ClockRange, 0, len(raw))
	for _, r := range raw {
		cr, err := parseClockRange(r)
		if err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, nil
}

func formatClockRanges(ranges []domain.ClockRange) []string {
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, r.String())
	}
	return out
}

func parseWorkingHours(in schedulingv1.WorkingHours) (domain.WeeklyHours, error) {
	out := make(domain.WeeklyHours, len(in))
	for day, ranges := range in {
		wd, err := parseWeekday(day)
		if err != nil {
			return nil, err
		}
		crs, err := parseClockRanges(ranges)
		if err != nil {
			return nil, err
		}
		out[wd] = append(out[wd], crs...)
	}
	return out, nil
}

func toWireWorkingHours(w domain.WeeklyHours) schedulingv1.WorkingHours {
	out := make(schedulingv1.WorkingHours, len(w))
	for wd, ranges := range w {
		if len(ranges) == 0 {
			continue
		}
		out[strings.ToLower(wd.String())] = formatClockRanges(ranges)
	}
	return out
}

func parseBusinessDays(in []schedulingv1.BusinessDay) ([]domain.BusinessHours, error) {
	out := make([]domain.BusinessHours, 0, len(in))
	for _, d := range in {
		wd, err := parseWeekday(d.Weekday)
		if err != nil {
			return nil, err
		}
		bh := domain.BusinessHours{Weekday: wd, Closed: d.Closed}
		if !d.Closed {
			if bh.OpenMinute, err = domain.ParseClock(d.Open); err != nil {
				return nil, err
			}
			if bh.CloseMinute, err = domain.ParseClock(d.Close); err != nil {
				return nil, err
			}
		}
		out = append(out, bh)
	}
	return out, nil
}

func toWireBusinessDays(days []domain.BusinessHours) []schedulingv1.BusinessDay {
	out := make([]schedulingv1.BusinessDay, 0, len(days))
	for _, d := range days {
		wd := schedulingv1.BusinessDay{Weekday: strings.ToLower(d.Weekday.String()), Closed: d.Closed}
		if !d.Closed {
			wd.Open = domain.FormatClock(d.OpenMinute)
			wd.Close = domain.FormatClock(d.CloseMinute)
		}
		out = append(out, wd)
	}
	return out
}

func toWireIntervals(ivs []domain.TimeInterval) []schedulingv1.Interval {
	out := make([]schedulingv1.Interval, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, schedulingv1.Interval{Start: iv.Start, End: iv.End})
	}
	return out
}

func toWireAppointment(a domain.Appointment) schedulingv1.Appointment {
	out := schedulingv1.Appointment{
		ID:          a.ID.String(),
		StylistID:   a.StylistID.String(),
		ServiceID:   a.ServiceID.String(),
		ClientID:    a.ClientID,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		Status:      string(a.Status),
		Notes:       a.Notes,
		CancelledAt: a.CancelledAt,
		CompletedAt: a.CompletedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.RescheduledFrom != nil {
		out.RescheduledFrom = a.RescheduledFrom.String()
	}
	return out
}

func toWireBlock(b domain.BlockedSlot) schedulingv1.BlockedSlot {
	return schedulingv1.BlockedSlot{
		ID:        b.ID.String(),
		StylistID: b.StylistID.String(),
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Reason:    b.Reason,
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt,
	}
}

func toWireStylist(s domain.Stylist) schedulingv1.Stylist {
	return schedulingv1.Stylist{
		ID:           s.ID.String(),
		UserID:       s.UserID,
		Name:         s.Name,
		WorkingHours: toWireWorkingHours(s.WorkingHours),
		Active:       s.Active,
	}
}

func toWireService(s domain.Service) schedulingv1.Service {
	return schedulingv1.Service{
		ID:              s.ID.String(),
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		Active:          s.Active,
	}
}

func toWireException(e domain.CalendarException) schedulingv1.CalendarException {
	out := schedulingv1.CalendarException{
		ID:        e.ID.String(),
		StartDate: e.StartDate.String(),
		EndDate:   e.EndDate.String(),
		Closed:    e.Closed,
		Reason:    e.Reason,
	}
	if e.StylistID != nil {
		out.StylistID = e.StylistID.String()
	}
	if len(e.Hours) > 0 {
		out.Hours = formatClockRanges(e.Hours)
	}
	return out
}

func toWireAuditEntry(e domain.AuditEntry) schedulingv1.AuditEntry {
	return schedulingv1.AuditEntry{
		ID:         e.ID.String(),
		ActorID:    e.ActorID,
		ActorRole:  string(e.ActorRole),
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}

func toWireClientNote(n domain.ClientNote) schedulingv1.ClientNote {
	return schedulingv1.ClientNote{
		ID:        n.ID.String(),
		StylistID: n.StylistID.String(),
		ClientID:  n.ClientID,
		Note:      n.Note,
		AuthorID:  n.AuthorID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
