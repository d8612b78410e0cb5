// Package calendar turns working-hour templates, calendar exceptions and salon
// opening hours into the effective bookable hours of a stylist on a date.
package calendar

import (
	"time"

	"github.com/google/uuid"

	"github.com/masterries/AppointmentManager/internal/domain"
)

// Rules is everything needed to resolve one stylist's hours.
type Rules struct {
	StylistID     uuid.UUID
	Template      domain.WeeklyHours
	Exceptions    []domain.CalendarException
	BusinessHours []domain.BusinessHours
	Location      *time.Location
}

type override struct {
	matched bool
	closed  bool
	hours   []domain.ClockRange
}

func collect(exceptions []domain.CalendarException, date domain.Date, keep func(*domain.CalendarException) bool) override {
	var o override
	for i := range exceptions {
		e := &exceptions[i]
		if !keep(e) || !e.Covers(date) {
			continue
		}
		o.matched = true
		if e.Closed {
			o.closed = true
			continue
		}
		o.hours = append(o.hours, e.Hours...)
	}
	return o
}

// Resolve returns the merged, ordered effective hours for date.
//
// Order of precedence: a salon-wide closure empties the day; a stylist
// exception replaces the weekly template; salon-wide hour overrides and the
// salon's opening hours for the weekday then clamp what is left. When several
// exceptions of one scope match, a closure wins over hours, and hours are
// unioned.
func Resolve(r Rules, date domain.Date) []domain.TimeInterval {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}

	global := collect(r.Exceptions, date, func(e *domain.CalendarException) bool {
		return e.Global()
	})
	if global.closed {
		return nil
	}

	own := collect(r.Exceptions, date, func(e *domain.CalendarException) bool {
		return !e.Global() && *e.StylistID == r.StylistID
	})

	var hours []domain.TimeInterval
	switch {
	case own.closed:
		return nil
	case own.matched:
		hours = domain.ExpandRanges(own.hours, date, loc)
	default:
		hours = r.Template.On(date, loc)
	}

	if global.matched {
		hours = domain.IntersectIntervals(hours, domain.ExpandRanges(global.hours, date, loc))
	}

	for _, bh := range r.BusinessHours {
		if bh.Weekday != date.Weekday() {
			continue
		}
		if bh.Closed {
			return nil
		}
		hours = domain.IntersectIntervals(hours, []domain.TimeInterval{bh.Range().On(date, loc)})
	}

	if len(hours) == 0 {
		return nil
	}
	return domain.MergeIntervals(hours)
}

// ClosedGlobally reports whether a salon-wide closure covers date.
func ClosedGlobally(exceptions []domain.CalendarException, date domain.Date) bool {
	return collect(exceptions, date, func(e *domain.CalendarException) bool {
		return e.Global()
	}).closed
}
