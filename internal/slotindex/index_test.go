package slotindex

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/masterries/AppointmentManager/internal/domain"
)

var day = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func entry(startMin, endMin int) domain.Occupancy {
	return domain.Occupancy{
		RefID:     uuid.New(),
		Kind:      domain.OccupancyAppointment,
		StartTime: day.Add(time.Duration(startMin) * time.Minute),
		EndTime:   day.Add(time.Duration(endMin) * time.Minute),
	}
}

func window(startMin, endMin int) domain.TimeInterval {
	return domain.TimeInterval{
		Start: day.Add(time.Duration(startMin) * time.Minute),
		End:   day.Add(time.Duration(endMin) * time.Minute),
	}
}

func TestIndex_AbutmentIsNotConflict(t *testing.T) {
	x := New()
	if err := x.Insert(entry(600, 660)); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if x.WouldConflict(window(660, 720)) {
		t.Fatalf("interval starting at previous end must not conflict")
	}
	if x.WouldConflict(window(540, 600)) {
		t.Fatalf("interval ending at next start must not conflict")
	}
	if err := x.Insert(entry(660, 720)); err != nil {
		t.Fatalf("Insert abutting error: %v", err)
	}
	if !x.WouldConflict(window(659, 661)) {
		t.Fatalf("interval spanning the boundary must conflict")
	}
}

func TestIndex_InsertRejectsOverlap(t *testing.T) {
	x := New()
	if err := x.Insert(entry(600, 660)); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := x.Insert(entry(630, 690)); !errors.Is(err, ErrOverlap) {
		t.Fatalf("Insert overlap err = %v, want ErrOverlap", err)
	}
	if err := x.Insert(entry(700, 700)); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Insert empty err = %v, want ErrInvalid", err)
	}
	if x.Len() != 1 {
		t.Fatalf("Len = %d, want 1", x.Len())
	}
}

func TestIndex_ConflictsReturnsEveryOverlap(t *testing.T) {
	a, b, c := entry(540, 600), entry(630, 660), entry(700, 760)
	x, err := Build([]domain.Occupancy{c, a, b})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	got := x.Conflicts(window(590, 710))
	if len(got) != 3 {
		t.Fatalf("len(conflicts) = %d, want 3", len(got))
	}
	if got[0].RefID != a.RefID || got[1].RefID != b.RefID || got[2].RefID != c.RefID {
		t.Fatalf("conflicts not in start order")
	}

	if got := x.Conflicts(window(600, 630)); len(got) != 0 {
		t.Fatalf("gap conflicts = %v, want none", got)
	}
}

func TestIndex_BuildRejectsOverlappingRows(t *testing.T) {
	_, err := Build([]domain.Occupancy{entry(540, 600), entry(590, 620)})
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("Build err = %v, want ErrOverlap", err)
	}
}

func TestIndex_RemoveFreesInterval(t *testing.T) {
	x := New()
	e := entry(600, 660)
	if err := x.Insert(e); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if _, ok := x.Remove(e.RefID); !ok {
		t.Fatalf("Remove reported missing entry")
	}
	if x.WouldConflict(e.Interval()) {
		t.Fatalf("interval still conflicts after removal")
	}
	if _, ok := x.Remove(e.RefID); ok {
		t.Fatalf("second Remove should report missing entry")
	}
}

func TestIndex_OccupiedClipsAndMerges(t *testing.T) {
	x, err := Build([]domain.Occupancy{entry(500, 560), entry(560, 600), entry(700, 800)})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	got := x.Occupied(window(540, 720))
	if len(got) != 2 {
		t.Fatalf("len(occupied) = %d, want 2 (%v)", len(got), got)
	}
	if !got[0].Start.Equal(window(540, 600).Start) || !got[0].End.Equal(window(540, 600).End) {
		t.Fatalf("occupied[0] = %s, want %s", got[0], window(540, 600))
	}
	if !got[1].End.Equal(window(700, 720).End) {
		t.Fatalf("occupied[1] = %s, want %s", got[1], window(700, 720))
	}
}

// The binary search must agree with a linear scan on arbitrary layouts.
func TestIndex_WouldConflictMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := New()
	var all []domain.Occupancy
	for i := 0; i < 200; i++ {
		start := rng.Intn(1400)
		e := entry(start, start+5+rng.Intn(30))
		if err := x.Insert(e); err == nil {
			all = append(all, e)
		}
	}

	for i := 0; i < 2000; i++ {
		start := rng.Intn(1440)
		w := window(start, start+1+rng.Intn(60))
		want := false
		for _, e := range all {
			if e.Interval().Overlaps(w) {
				want = true
				break
			}
		}
		if got := x.WouldConflict(w); got != want {
			t.Fatalf("WouldConflict(%s) = %v, want %v", w, got, want)
		}
	}
}

func TestIndex_GetAndRemoveFollowInsertOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	x := New()
	live := map[uuid.UUID]domain.Occupancy{}
	for i := 0; i < 300; i++ {
		start := rng.Intn(1400)
		e := entry(start, start+5+rng.Intn(20))
		if err := x.Insert(e); err == nil {
			live[e.RefID] = e
		}
		if i%3 == 0 {
			for id := range live {
				if _, ok := x.Remove(id); !ok {
					t.Fatalf("Remove(%s) reported missing entry", id)
				}
				delete(live, id)
				break
			}
		}
	}

	if x.Len() != len(live) {
		t.Fatalf("Len = %d, want %d", x.Len(), len(live))
	}
	for id, want := range live {
		got, ok := x.Get(id)
		if !ok || got != want {
			t.Fatalf("Get(%s) = %+v, %v; want %+v", id, got, ok, want)
		}
	}
	if _, ok := x.Get(uuid.New()); ok {
		t.Fatalf("Get found an unknown ref")
	}
}

func TestIndex_BuildRejectsDuplicateRef(t *testing.T) {
	a := entry(600, 660)
	b := entry(700, 760)
	b.RefID = a.RefID
	if _, err := Build([]domain.Occupancy{a, b}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestIndex_CloneIsIndependent(t *testing.T) {
	a := entry(600, 660)
	x, err := Build([]domain.Occupancy{a})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	c := x.Clone()

	if _, ok := c.Remove(a.RefID); !ok {
		t.Fatalf("clone is missing the entry")
	}
	if err := c.Insert(entry(800, 860)); err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	if x.Len() != 1 {
		t.Fatalf("original Len = %d, want 1", x.Len())
	}
	if _, ok := x.Get(a.RefID); !ok {
		t.Fatalf("original lost entry after clone was changed")
	}
	if x.WouldConflict(window(800, 860)) {
		t.Fatalf("clone insert leaked into original")
	}
}
