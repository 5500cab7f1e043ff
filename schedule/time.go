package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// DAY - Calendar day at day granularity (the engine's unit of matching)
// =============================================================================

// Day is a calendar day, normalized to midnight UTC. All recurrence
// matching and lesson deduplication happens at day granularity.
type Day struct {
	t time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates a timestamp to its calendar day.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

func Today() Day { return DayOf(time.Now().UTC()) }

// ParseDay parses "2006-01-02".
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// Comparison
func (d Day) Before(other Day) bool        { return d.t.Before(other.t) }
func (d Day) After(other Day) bool         { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool         { return d.t.Equal(other.t) }
func (d Day) BeforeOrEqual(other Day) bool { return !d.After(other) }
func (d Day) AfterOrEqual(other Day) bool  { return !d.Before(other) }

// Arithmetic and properties
func (d Day) AddDays(n int) Day       { return Day{t: d.t.AddDate(0, 0, n)} }
func (d Day) Weekday() time.Weekday   { return d.t.Weekday() }
func (d Day) Time() time.Time         { return d.t }
func (d Day) IsZero() bool            { return d.t.IsZero() }
func (d Day) String() string          { return d.t.Format("2006-01-02") }

// At combines the day with a time-of-day into a timestamp.
func (d Day) At(c ClockTime) time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), c.Hour, c.Minute, 0, 0, time.UTC)
}

// =============================================================================
// WINDOW - Inclusive day range for timeline queries
// =============================================================================

// Window is an inclusive [From, To] day range.
type Window struct {
	From Day
	To   Day
}

func (w Window) Valid() bool { return w.From.BeforeOrEqual(w.To) }

func (w Window) Contains(d Day) bool {
	return d.AfterOrEqual(w.From) && d.BeforeOrEqual(w.To)
}

// Days returns every day in the window, in order.
func (w Window) Days() []Day {
	var days []Day
	for d := w.From; d.BeforeOrEqual(w.To); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (w Window) String() string {
	return "[" + w.From.String() + ", " + w.To.String() + "]"
}

// =============================================================================
// MONTH - Payroll/finance period token ("2006-01")
// =============================================================================

// Month is a calendar month. It is both the payroll period key and the
// finance aggregation bucket.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month { return Month{Year: t.Year(), Month: t.Month()} }

func CurrentMonth() Month { return MonthOf(time.Now().UTC()) }

// ParseMonth parses the period token "2006-01".
func ParseMonth(s string) (Month, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Month{}, fmt.Errorf("invalid period %q: want YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Month{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	mon, err := strconv.Atoi(parts[1])
	if err != nil || mon < 1 || mon > 12 {
		return Month{}, fmt.Errorf("invalid period %q: month out of range", s)
	}
	return Month{Year: year, Month: time.Month(mon)}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Window returns the inclusive day range the month spans.
func (m Month) Window() Window {
	first := NewDay(m.Year, m.Month, 1)
	last := Day{t: time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
	return Window{From: first, To: last}
}

func (m Month) Contains(d Day) bool { return m.Window().Contains(d) }

// AddMonths steps the period forward or backward.
func (m Month) AddMonths(n int) Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return MonthOf(t)
}

// =============================================================================
// CLOCK TIME - Local time-of-day for template start/end
// =============================================================================

// ClockTime is a time-of-day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses "15:04".
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) TotalMinutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) Before(other ClockTime) bool {
	return c.TotalMinutes() < other.TotalMinutes()
}

func (c ClockTime) IsZero() bool { return c.Hour == 0 && c.Minute == 0 }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }
