// Package slotindex keeps a stylist's occupied intervals in start order so that
// conflict checks cost O(log n + k).
package slotindex

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/masterries/AppointmentManager/internal/domain"
)

var (
	ErrOverlap   = errors.New("slotindex: interval overlaps an existing entry")
	ErrInvalid   = errors.New("slotindex: interval start must be before end")
	ErrDuplicate = errors.New("slotindex: reference already indexed")
)

// Index holds non-overlapping entries sorted by start. Because entries never
// overlap, their ends are sorted too, which is what the binary searches rely on.
// An Index is not safe for concurrent use; callers own the locking.
type Index struct {
	entries []domain.Occupancy
	// starts maps a RefID to its entry's start, the sort key of entries.
	starts map[uuid.UUID]time.Time
}

func New() *Index {
	return &Index{starts: make(map[uuid.UUID]time.Time)}
}

// Build indexes entries loaded from storage. Entries that would overlap an
// earlier one are rejected with ErrOverlap.
func Build(entries []domain.Occupancy) (*Index, error) {
	sorted := make([]domain.Occupancy, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	starts := make(map[uuid.UUID]time.Time, len(sorted))
	for i := range sorted {
		if !sorted[i].Interval().Valid() {
			return nil, ErrInvalid
		}
		if i > 0 && sorted[i].StartTime.Before(sorted[i-1].EndTime) {
			return nil, ErrOverlap
		}
		if _, dup := starts[sorted[i].RefID]; dup {
			return nil, ErrDuplicate
		}
		starts[sorted[i].RefID] = sorted[i].StartTime
	}
	return &Index{entries: sorted, starts: starts}, nil
}

// Clone returns an independent copy of x.
func (x *Index) Clone() *Index {
	c := &Index{
		entries: make([]domain.Occupancy, len(x.entries)),
		starts:  make(map[uuid.UUID]time.Time, len(x.starts)),
	}
	copy(c.entries, x.entries)
	for id, start := range x.starts {
		c.starts[id] = start
	}
	return c
}

func (x *Index) Len() int {
	return len(x.entries)
}

// firstEndingAfter returns the position of the first entry whose end is after t.
func (x *Index) firstEndingAfter(t domain.TimeInterval) int {
	return sort.Search(len(x.entries), func(i int) bool {
		return x.entries[i].EndTime.After(t.Start)
	})
}

func (x *Index) WouldConflict(iv domain.TimeInterval) bool {
	i := x.firstEndingAfter(iv)
	return i < len(x.entries) && x.entries[i].StartTime.Before(iv.End)
}

// Conflicts returns every entry overlapping iv, in start order.
func (x *Index) Conflicts(iv domain.TimeInterval) []domain.Occupancy {
	var out []domain.Occupancy
	for i := x.firstEndingAfter(iv); i < len(x.entries) && x.entries[i].StartTime.Before(iv.End); i++ {
		out = append(out, x.entries[i])
	}
	return out
}

// Occupied returns the busy parts of window, merged and sorted.
func (x *Index) Occupied(window domain.TimeInterval) []domain.TimeInterval {
	conflicts := x.Conflicts(window)
	out := make([]domain.TimeInterval, 0, len(conflicts))
	for _, c := range conflicts {
		busy := c.Interval()
		if busy.Start.Before(window.Start) {
			busy.Start = window.Start
		}
		if busy.End.After(window.End) {
			busy.End = window.End
		}
		out = append(out, busy)
	}
	return domain.MergeIntervals(out)
}

func (x *Index) Insert(o domain.Occupancy) error {
	iv := o.Interval()
	if !iv.Valid() {
		return ErrInvalid
	}
	if _, ok := x.starts[o.RefID]; ok {
		return ErrDuplicate
	}
	i := x.firstEndingAfter(iv)
	if i < len(x.entries) && x.entries[i].StartTime.Before(iv.End) {
		return ErrOverlap
	}
	x.entries = append(x.entries, domain.Occupancy{})
	copy(x.entries[i+1:], x.entries[i:])
	x.entries[i] = o
	if x.starts == nil {
		x.starts = make(map[uuid.UUID]time.Time)
	}
	x.starts[o.RefID] = o.StartTime
	return nil
}

// Remove drops the entry for refID and reports whether it was present.
func (x *Index) Remove(refID uuid.UUID) (domain.Occupancy, bool) {
	i := x.find(refID)
	if i < 0 {
		return domain.Occupancy{}, false
	}
	o := x.entries[i]
	x.entries = append(x.entries[:i], x.entries[i+1:]...)
	delete(x.starts, refID)
	return o, true
}

func (x *Index) Get(refID uuid.UUID) (domain.Occupancy, bool) {
	if i := x.find(refID); i >= 0 {
		return x.entries[i], true
	}
	return domain.Occupancy{}, false
}

// Entries returns a copy of all entries in start order.
func (x *Index) Entries() []domain.Occupancy {
	out := make([]domain.Occupancy, len(x.entries))
	copy(out, x.entries)
	return out
}

// find locates refID by binary search on its start. Starts are unique
// because entries never overlap.
func (x *Index) find(refID uuid.UUID) int {
	start, ok := x.starts[refID]
	if !ok {
		return -1
	}
	i := sort.Search(len(x.entries), func(i int) bool {
		return !x.entries[i].StartTime.Before(start)
	})
	if i < len(x.entries) && x.entries[i].RefID == refID {
		return i
	}
	return -1
}
