/*
Package schedule provides the recurring lesson scheduling engine.

PURPOSE:
  This package contains the domain types and algorithms for projecting
  weekly recurrence templates into concrete calendar occurrences,
  reconciling them with already-persisted lessons, and materializing a
  derived occurrence into a durable lesson when attendance is taken.

KEY CONCEPTS IN THIS FILE (types.go):
  - Group/Teacher/Student: The directory entities the engine schedules for
  - Lesson: A persisted occurrence (store-assigned id, attendance rows)
  - Occurrence: Tagged union of a persisted Lesson and a derived
    (virtual) occurrence that exists only in a timeline response
  - Attendance: Per-student record attached to a persisted Lesson

DESIGN PRINCIPLES:
  1. Virtual occurrences carry NO identity. They are addressed by
     (group, date) and regenerated per request. A virtual occurrence is
     an Occurrence whose Lesson pointer is nil, never a Lesson with a
     sentinel id.
  2. Precision: decimal.Decimal for money-like values (hourly rates).
  3. Type safety: distinct string ID types prevent mixing identifiers.
  4. One weekday enumeration: time.Weekday (Sunday=0..Saturday=6) is
     used everywhere recurrence is encoded or decoded. No package may
     re-derive its own day indexing.

SEE ALSO:
  - template.go: ScheduleTemplate, the weekly recurrence rule
  - expander.go: Template-to-occurrence expansion
  - reconciler.go: Merge of virtual and persisted occurrences
  - materializer.go: Virtual-to-persisted conversion
*/
package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	GroupID    string
	TeacherID  string
	StudentID  string
	LessonID   string
	TemplateID string
)

// =============================================================================
// DIRECTORY ENTITIES
// =============================================================================

// Teacher is the subset of the user record the engine needs: identity
// and the hourly rate payroll multiplies against.
type Teacher struct {
	ID         TeacherID
	Name       string
	HourlyRate decimal.Decimal
	CreatedAt  time.Time
}

// Group is a set of students meeting on a recurring schedule.
// Inactive groups are excluded from expansion and profitability.
type Group struct {
	ID        GroupID
	Name      string
	TeacherID TeacherID
	Active    bool
	CreatedAt time.Time
}

type Student struct {
	ID        StudentID
	Name      string
	Active    bool
	CreatedAt time.Time
}

// =============================================================================
// LESSON - Persisted occurrence
// =============================================================================

// Lesson is a materialized occurrence. Identity is immutable once
// created; Completed transitions false->true only, when attendance is
// recorded. Materialized marks lessons created from a virtual
// occurrence (the store enforces one materialized lesson per group and
// calendar day).
type Lesson struct {
	ID              LessonID
	GroupID         GroupID
	StartsAt        time.Time
	DurationMinutes int
	Topic           string
	Completed       bool
	Materialized    bool
	Attendance      []Attendance
	CreatedAt       time.Time
}

// Day returns the calendar day the lesson falls on.
func (l Lesson) Day() Day { return DayOf(l.StartsAt) }

// DefaultDurationMinutes is used when no template end time is available
// to derive a duration from.
const DefaultDurationMinutes = 60

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
)

// ValidAttendanceStatus reports whether s is one of the known statuses.
func ValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceExcused:
		return true
	}
	return false
}

// Attendance is a per-student row attached to a persisted Lesson.
type Attendance struct {
	LessonID  LessonID
	StudentID StudentID
	Status    AttendanceStatus
	Grade     *int
	Comment   string
}

// AttendanceRecord is the write-side shape: what a caller submits when
// capturing attendance, before a lesson id necessarily exists.
type AttendanceRecord struct {
	StudentID StudentID
	Status    AttendanceStatus
	Grade     *int
	Comment   string
}

// =============================================================================
// OCCURRENCE - Tagged union of persisted and derived
// =============================================================================

// Occurrence is one scheduled instance of a group meeting. For a
// persisted occurrence Lesson is non-nil and carries the authoritative
// data. For a derived (virtual) occurrence Lesson is nil and the
// occurrence is addressed by (GroupID, StartsAt) alone.
type Occurrence struct {
	GroupID         GroupID
	StartsAt        time.Time
	DurationMinutes int
	Lesson          *Lesson
}

// Virtual reports whether the occurrence is derived rather than persisted.
func (o Occurrence) Virtual() bool { return o.Lesson == nil }

// Day returns the calendar day of the occurrence.
func (o Occurrence) Day() Day { return DayOf(o.StartsAt) }

// RealOccurrence wraps a persisted lesson as an occurrence.
func RealOccurrence(l Lesson) Occurrence {
	lesson := l
	return Occurrence{
		GroupID:         l.GroupID,
		StartsAt:        l.StartsAt,
		DurationMinutes: l.DurationMinutes,
		Lesson:          &lesson,
	}
}
