// Package availability computes bookable start times from effective hours and
// occupied intervals. Results are advisory; the booking path re-checks.
package availability

import (
	"time"

	"github.com/masterries/AppointmentManager/internal/domain"
)

type Query struct {
	Hours       []domain.TimeInterval
	Occupied    []domain.TimeInterval
	Duration    time.Duration
	Granularity time.Duration
	// DayStart is local midnight of the date; starts are aligned to it.
	DayStart time.Time
	// NotBefore drops starts in the past.
	NotBefore time.Time
}

// Slots returns every aligned start whose [start, start+Duration) fits inside
// a gap of Hours minus Occupied, in ascending order.
func Slots(q Query) []domain.TimeInterval {
	if q.Duration <= 0 || q.Granularity <= 0 {
		return nil
	}

	var slots []domain.TimeInterval
	for _, gap := range domain.SubtractIntervals(q.Hours, q.Occupied) {
		if gap.Duration() < q.Duration {
			continue
		}
		for s := alignUp(gap.Start, q.DayStart, q.Granularity); !s.Add(q.Duration).After(gap.End); s = s.Add(q.Granularity) {
			if s.Before(q.NotBefore) {
				continue
			}
			slots = append(slots, domain.NewInterval(s, q.Duration))
		}
	}
	return slots
}

// Aligned reports whether t sits on the granularity grid of its local day.
func Aligned(t time.Time, loc *time.Location, granularity time.Duration) bool {
	if granularity <= 0 {
		return true
	}
	dayStart := domain.DateOf(t, loc).At(0, loc)
	return t.Sub(dayStart)%granularity == 0
}

func alignUp(t, dayStart time.Time, granularity time.Duration) time.Time {
	offset := t.Sub(dayStart)
	if rem := offset % granularity; rem != 0 {
		if rem < 0 {
			rem += granularity
		}
		return t.Add(granularity - rem)
	}
	return t
}
