/*
template.go - Weekly recurrence rule

PURPOSE:
  ScheduleTemplate is the recurrence rule occurrences are derived from:
  a weekday set, a start/end time-of-day, and a validity window. A group
  owns zero or more templates; several templates may cover the same
  weekday (each yields its own occurrence, no overlap merging).

WEEKDAY ENCODING:
  WeekdaySet is a bitmask over time.Weekday (Sunday=0..Saturday=6).
  Every producer and consumer of recurrence data goes through this type;
  nothing re-derives day indices on its own.

VALIDITY:
  A template applies to day d when ValidFrom <= d and (ValidTo is unset
  or d <= ValidTo), compared at day granularity. ValidTo is inclusive
  through end-of-day.

SEE ALSO:
  - expander.go: Turns templates into occurrences for a window
*/
package schedule

import (
	"encoding/json"
	"sort"
	"time"
)

// =============================================================================
// WEEKDAY SET
// =============================================================================

// WeekdaySet is a set of weekdays encoded as a bitmask over
// time.Weekday. The zero value is the empty set (invalid on a template).
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func (s WeekdaySet) With(d time.Weekday) WeekdaySet { return s | 1<<uint(d) }
func (s WeekdaySet) Has(d time.Weekday) bool        { return s&(1<<uint(d)) != 0 }
func (s WeekdaySet) Empty() bool                    { return s == 0 }

// Weekdays returns the members in Sunday..Saturday order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// MarshalJSON encodes the set as a sorted array of integers 0..6, the
// same representation the store and the API use.
func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	ints := make([]int, 0, 7)
	for _, d := range s.Weekdays() {
		ints = append(ints, int(d))
	}
	sort.Ints(ints)
	return json.Marshal(ints)
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	var set WeekdaySet
	for _, i := range ints {
		if i < 0 || i > 6 {
			return &ValidationError{Field: "weekdays", Reason: "weekday out of range 0..6"}
		}
		set = set.With(time.Weekday(i))
	}
	*s = set
	return nil
}

// =============================================================================
// SCHEDULE TEMPLATE
// =============================================================================

// ScheduleTemplate is a weekly-repeating rule owned by a group.
// Invariants: Weekdays is non-empty; when End is set, Start < End.
type ScheduleTemplate struct {
	ID        TemplateID
	GroupID   GroupID
	Weekdays  WeekdaySet
	Start     ClockTime
	End       ClockTime // zero value = unset, duration falls back to default
	ValidFrom Day
	ValidTo   *Day // nil = open-ended
	CreatedAt time.Time
}

// Validate checks the template invariants.
func (t ScheduleTemplate) Validate() error {
	if t.GroupID == "" {
		return &ValidationError{Field: "group_id", Reason: "required"}
	}
	if t.Weekdays.Empty() {
		return &ValidationError{Field: "weekdays", Reason: "at least one weekday required"}
	}
	if !t.End.IsZero() && !t.Start.Before(t.End) {
		return &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	if t.ValidFrom.IsZero() {
		return &ValidationError{Field: "valid_from", Reason: "required"}
	}
	if t.ValidTo != nil && t.ValidTo.Before(t.ValidFrom) {
		return &ValidationError{Field: "valid_to", Reason: "must not precede valid_from"}
	}
	return nil
}

// AppliesOn reports whether the template produces an occurrence on day d:
// d must fall inside the validity window and d's weekday must be in the set.
func (t ScheduleTemplate) AppliesOn(d Day) bool {
	if d.Before(t.ValidFrom) {
		return false
	}
	if t.ValidTo != nil && d.After(*t.ValidTo) {
		return false
	}
	return t.Weekdays.Has(d.Weekday())
}

// DurationMinutes derives the occurrence duration from End - Start,
// falling back to the default when End is unset.
func (t ScheduleTemplate) DurationMinutes() int {
	if t.End.IsZero() {
		return DefaultDurationMinutes
	}
	minutes := t.End.TotalMinutes() - t.Start.TotalMinutes()
	if minutes <= 0 {
		return DefaultDurationMinutes
	}
	return minutes
}

// Occurrence synthesizes the virtual occurrence for day d.
// Callers must have checked AppliesOn first.
func (t ScheduleTemplate) Occurrence(d Day) Occurrence {
	return Occurrence{
		GroupID:         t.GroupID,
		StartsAt:        d.At(t.Start),
		DurationMinutes: t.DurationMinutes(),
	}
}
