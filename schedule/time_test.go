package schedule

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-01-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Errorf("2025-01-06 is a Monday, got %v", d.Weekday())
	}
	if _, err := ParseDay("06.01.2025"); err == nil {
		t.Error("expected error for wrong format")
	}
}

func TestDayOfTruncates(t *testing.T) {
	d := DayOf(time.Date(2025, time.March, 15, 23, 45, 0, 0, time.UTC))
	if !d.Equal(NewDay(2025, time.March, 15)) {
		t.Errorf("expected truncation to 2025-03-15, got %s", d)
	}
}

func TestMonthWindow(t *testing.T) {
	w := Month{Year: 2025, Month: time.February}.Window()
	if !w.From.Equal(NewDay(2025, time.February, 1)) {
		t.Errorf("expected Feb 1 start, got %s", w.From)
	}
	if !w.To.Equal(NewDay(2025, time.February, 28)) {
		t.Errorf("expected Feb 28 end, got %s", w.To)
	}

	leap := Month{Year: 2024, Month: time.February}.Window()
	if !leap.To.Equal(NewDay(2024, time.February, 29)) {
		t.Errorf("expected leap Feb 29 end, got %s", leap.To)
	}
}

func TestMonthParseAndString(t *testing.T) {
	m, err := ParseMonth("2025-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.String() != "2025-03" {
		t.Errorf("round trip mismatch: %s", m)
	}

	for _, bad := range []string{"2025", "2025-13", "2025-00", "march"} {
		if _, err := ParseMonth(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestMonthAddMonths(t *testing.T) {
	m := Month{Year: 2025, Month: time.January}
	if got := m.AddMonths(-1); got != (Month{Year: 2024, Month: time.December}) {
		t.Errorf("expected 2024-12, got %s", got)
	}
	if got := m.AddMonths(12); got != (Month{Year: 2026, Month: time.January}) {
		t.Errorf("expected 2026-01, got %s", got)
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("16:45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Hour != 16 || c.Minute != 45 {
		t.Errorf("expected 16:45, got %s", c)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Error("expected error for invalid hour")
	}
}
