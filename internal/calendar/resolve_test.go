package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/masterries/AppointmentManager/internal/domain"
)

var (
	stylistID = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	otherID   = uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
	monday    = domain.Date{Year: 2026, Month: time.January, Day: 5}
)

func hm(h, m int) int { return h*60 + m }

func baseRules() Rules {
	return Rules{
		StylistID: stylistID,
		Template: domain.WeeklyHours{
			time.Monday: {
				{Start: hm(9, 0), End: hm(12, 0)},
				{Start: hm(13, 0), End: hm(17, 0)},
			},
		},
		Location: time.UTC,
	}
}

func localIv(d domain.Date, startMin, endMin int) domain.TimeInterval {
	return domain.TimeInterval{Start: d.At(startMin, time.UTC), End: d.At(endMin, time.UTC)}
}

func TestResolve_TemplateOnly(t *testing.T) {
	got := Resolve(baseRules(), monday)
	want := []domain.TimeInterval{localIv(monday, hm(9, 0), hm(12, 0)), localIv(monday, hm(13, 0), hm(17, 0))}
	assertHours(t, got, want)

	if got := Resolve(baseRules(), monday.AddDays(1)); len(got) != 0 {
		t.Fatalf("tuesday hours = %v, want closed", got)
	}
}

func TestResolve_Precedence(t *testing.T) {
	sid := stylistID
	oid := otherID
	tests := []struct {
		name       string
		exceptions []domain.CalendarException
		business   []domain.BusinessHours
		want       []domain.TimeInterval
	}{
		{
			name:       "global closure wins over stylist hours",
			exceptions: []domain.CalendarException{{StartDate: monday, EndDate: monday, Closed: true}, {StylistID: &sid, StartDate: monday, EndDate: monday, Hours: []domain.ClockRange{{Start: hm(8, 0), End: hm(20, 0)}}}},
		},
		{
			name:       "stylist closure",
			exceptions: []domain.CalendarException{{StylistID: &sid, StartDate: monday.AddDays(-2), EndDate: monday.AddDays(2), Closed: true}},
		},
		{
			name:       "other stylist exception ignored",
			exceptions: []domain.CalendarException{{StylistID: &oid, StartDate: monday, EndDate: monday, Closed: true}},
			want:       []domain.TimeInterval{localIv(monday, hm(9, 0), hm(12, 0)), localIv(monday, hm(13, 0), hm(17, 0))},
		},
		{
			name:       "stylist hours replace template",
			exceptions: []domain.CalendarException{{StylistID: &sid, StartDate: monday, EndDate: monday, Hours: []domain.ClockRange{{Start: hm(10, 0), End: hm(14, 0)}}}},
			want:       []domain.TimeInterval{localIv(monday, hm(10, 0), hm(14, 0))},
		},
		{
			name: "stylist hours union, closure among them wins",
			exceptions: []domain.CalendarException{
				{StylistID: &sid, StartDate: monday, EndDate: monday, Hours: []domain.ClockRange{{Start: hm(10, 0), End: hm(11, 0)}}},
				{StylistID: &sid, StartDate: monday, EndDate: monday, Closed: true},
			},
		},
		{
			name: "stylist hours union",
			exceptions: []domain.CalendarException{
				{StylistID: &sid, StartDate: monday, EndDate: monday, Hours: []domain.ClockRange{{Start: hm(10, 0), End: hm(11, 0)}}},
				{StylistID: &sid, StartDate: monday, EndDate: monday, Hours: []domain.ClockRange{{Start: hm(11, 0), End: hm(12, 0)}}},
			},
			want: []domain.TimeInterval{localIv(monday, hm(10, 0), hm(12, 0))},
		},
		{
			name:       "global hours clamp",
			exceptions: []domain.CalendarException{{StartDate: monday, EndDate: monday, Hours: []domain.ClockRange{{Start: hm(11, 0), End: hm(14, 0)}}}},
			want:       []domain.TimeInterval{localIv(monday, hm(11, 0), hm(12, 0)), localIv(monday, hm(13, 0), hm(14, 0))},
		},
		{
			name:     "business hours clamp",
			business: []domain.BusinessHours{{Weekday: time.Monday, OpenMinute: hm(10, 0), CloseMinute: hm(16, 0)}},
			want:     []domain.TimeInterval{localIv(monday, hm(10, 0), hm(12, 0)), localIv(monday, hm(13, 0), hm(16, 0))},
		},
		{
			name:     "business hours for another weekday ignored",
			business: []domain.BusinessHours{{Weekday: time.Tuesday, Closed: true}},
			want:     []domain.TimeInterval{localIv(monday, hm(9, 0), hm(12, 0)), localIv(monday, hm(13, 0), hm(17, 0))},
		},
		{
			name:     "business closed weekday",
			business: []domain.BusinessHours{{Weekday: time.Monday, Closed: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := baseRules()
			r.Exceptions = tt.exceptions
			r.BusinessHours = tt.business
			assertHours(t, Resolve(r, monday), tt.want)
		})
	}
}

func TestResolve_UsesSalonTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	r := baseRules()
	r.Location = loc

	got := Resolve(r, monday)
	if len(got) != 2 {
		t.Fatalf("len(hours) = %d, want 2", len(got))
	}
	if got[0].Start.UTC().Hour() != 8 {
		t.Fatalf("09:00 Berlin = %v UTC, want 08:00", got[0].Start.UTC())
	}
}

func TestClosedGlobally(t *testing.T) {
	exceptions := []domain.CalendarException{{StartDate: monday, EndDate: monday.AddDays(1), Closed: true}}
	if !ClosedGlobally(exceptions, monday.AddDays(1)) {
		t.Fatalf("expected closure on inclusive end date")
	}
	if ClosedGlobally(exceptions, monday.AddDays(2)) {
		t.Fatalf("closure leaked past end date")
	}
}

func assertHours(t *testing.T, got, want []domain.TimeInterval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len(hours) = %d, want %d (got %v)", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("hours[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
