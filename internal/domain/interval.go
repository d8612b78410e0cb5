package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeInterval is the half-open range [Start, End).
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start time.Time, d time.Duration) TimeInterval {
	return TimeInterval{Start: start, End: start.Add(d)}
}

func (iv TimeInterval) Valid() bool {
	return iv.Start.Before(iv.End)
}

func (iv TimeInterval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether the intersection of the two ranges is non-empty.
// Intervals that only share an endpoint do not overlap.
func (iv TimeInterval) Overlaps(o TimeInterval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

func (iv TimeInterval) Contains(o TimeInterval) bool {
	return !o.Start.Before(iv.Start) && !o.End.After(iv.End)
}

func (iv TimeInterval) UTC() TimeInterval {
	return TimeInterval{Start: iv.Start.UTC(), End: iv.End.UTC()}
}

func (iv TimeInterval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}

// SortIntervals orders by start, then end.
func SortIntervals(ivs []TimeInterval) {
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Start.Equal(ivs[j].Start) {
			return ivs[i].End.Before(ivs[j].End)
		}
		return ivs[i].Start.Before(ivs[j].Start)
	})
}

// MergeIntervals returns a sorted copy where overlapping and abutting ranges are joined.
func MergeIntervals(ivs []TimeInterval) []TimeInterval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]TimeInterval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.Valid() {
			sorted = append(sorted, iv)
		}
	}
	SortIntervals(sorted)

	out := make([]TimeInterval, 0, len(sorted))
	for _, iv := range sorted {
		if n := len(out); n > 0 && !iv.Start.After(out[n-1].End) {
			if iv.End.After(out[n-1].End) {
				out[n-1].End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// IntersectIntervals returns the pairwise intersection of two interval sets.
func IntersectIntervals(a, b []TimeInterval) []TimeInterval {
	a = MergeIntervals(a)
	b = MergeIntervals(b)

	var out []TimeInterval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start.After(start) {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End.Before(end) {
			end = b[j].End
		}
		if start.Before(end) {
			out = append(out, TimeInterval{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// SubtractIntervals removes every range in cut from base.
func SubtractIntervals(base, cut []TimeInterval) []TimeInterval {
	base = MergeIntervals(base)
	cut = MergeIntervals(cut)

	var out []TimeInterval
	j := 0
	for _, b := range base {
		cursor := b.Start
		for j < len(cut) && !cut[j].End.After(cursor) {
			j++
		}
		for k := j; k < len(cut) && cut[k].Start.Before(b.End); k++ {
			if cut[k].Start.After(cursor) {
				out = append(out, TimeInterval{Start: cursor, End: cut[k].Start})
			}
			if cut[k].End.After(cursor) {
				cursor = cut[k].End
			}
		}
		if cursor.Before(b.End) {
			out = append(out, TimeInterval{Start: cursor, End: b.End})
		}
	}
	return out
}

// Date is a calendar day in the salon's time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// DateFromTime takes the calendar fields of t as-is, for values read from DATE columns.
func DateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, errors.New("date must be formatted as YYYY-MM-DD")
	}
	return DateFromTime(t), nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// Time returns midnight UTC of the day, the representation used for DATE columns.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) AddDays(n int) Date {
	return DateFromTime(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

// At returns the instant minute minutes after local midnight. Minute 1440 is the next midnight.
func (d Date) At(minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, minute/60, minute%60, 0, 0, loc)
}

// Bounds returns [local midnight, next local midnight).
func (d Date) Bounds(loc *time.Location) TimeInterval {
	return TimeInterval{Start: d.At(0, loc), End: d.AddDays(1).At(0, loc)}
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as a DATE literal.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateFromTime(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into domain.Date", src)
	}
}

// MinutesPerDay bounds ClockRange values; an End of MinutesPerDay means midnight at the end of the day.
const MinutesPerDay = 24 * 60

// ClockRange is a wall-clock window within one day, in minutes after midnight.
type ClockRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r ClockRange) Valid() bool {
	return r.Start >= 0 && r.End <= MinutesPerDay && r.Start < r.End
}

func (r ClockRange) On(d Date, loc *time.Location) TimeInterval {
	return TimeInterval{Start: d.At(r.Start, loc), End: d.At(r.End, loc)}
}

func (r ClockRange) String() string {
	return FormatClock(r.Start) + "-" + FormatClock(r.End)
}

// ParseClock parses "HH:MM" into minutes after midnight. "24:00" is accepted.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return h*60 + m, nil
}

func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// WeeklyHours maps a weekday to its open windows. A missing or empty weekday is closed.
type WeeklyHours map[time.Weekday][]ClockRange

func (w WeeklyHours) Validate() error {
	for wd, ranges := range w {
		if wd < time.Sunday || wd > time.Saturday {
			return fmt.Errorf("invalid weekday %d", wd)
		}
		for _, r := range ranges {
			if !r.Valid() {
				return fmt.Errorf("invalid hours %s on %s", r, wd)
			}
		}
	}
	return nil
}

// On expands the template for one date.
func (w WeeklyHours) On(d Date, loc *time.Location) []TimeInterval {
	return ExpandRanges(w[d.Weekday()], d, loc)
}

// ExpandRanges places clock ranges on a date and merges them.
func ExpandRanges(ranges []ClockRange, d Date, loc *time.Location) []TimeInterval {
	out := make([]TimeInterval, 0, len(ranges))
	for _, r := range ranges {
		if r.Valid() {
			out = append(out, r.On(d, loc))
		}
	}
	return MergeIntervals(out)
}
