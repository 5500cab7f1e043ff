/*
materializer.go - Virtual-to-persisted conversion on attendance capture

PURPOSE:
  When attendance is submitted against a virtual occurrence, the
  materializer creates the durable lesson plus its attendance rows in
  one store transaction. When attendance targets a persisted lesson, it
  upserts the rows in place and marks the lesson completed.

IDENTITY:
  The write is keyed by either a lesson id (persisted) or by
  (group, date) (virtual). Virtual occurrences never carry ids.

DURATION:
  The lesson duration is derived from the template that still produces
  the occurrence (end - start), falling back to the default when no
  matching template is found. A missing template does not reject the
  write: attendance already happened in the real world and the record
  wins over the rule.

RACES:
  Two concurrent materializations of the same (group, day) resolve at
  the store's uniqueness constraint; the loser gets ErrDuplicateLesson.
*/
package schedule

import (
	"context"
	"time"
)

// Materializer converts occurrences into persisted, completed lessons.
type Materializer struct {
	Store LessonStore
}

func NewMaterializer(store LessonStore) *Materializer {
	return &Materializer{Store: store}
}

// MaterializeInput identifies the target occurrence and carries the
// attendance rows to persist with it.
type MaterializeInput struct {
	// LessonID targets a persisted lesson. Empty for virtual occurrences.
	LessonID LessonID

	// GroupID and StartsAt identify a virtual occurrence.
	GroupID  GroupID
	StartsAt time.Time

	Records []AttendanceRecord
}

// RecordAttendance persists attendance for a real or virtual
// occurrence. For virtual targets the lesson row and every attendance
// row are written in one transaction; on failure nothing persists.
func (m *Materializer) RecordAttendance(ctx context.Context, in MaterializeInput) (Lesson, error) {
	if err := validateRecords(in.Records); err != nil {
		return Lesson{}, err
	}

	if in.LessonID != "" {
		return m.completeExisting(ctx, in)
	}
	return m.materialize(ctx, in)
}

func (m *Materializer) completeExisting(ctx context.Context, in MaterializeInput) (Lesson, error) {
	if _, err := m.Store.GetLesson(ctx, in.LessonID); err != nil {
		return Lesson{}, err
	}
	if err := m.Store.UpsertAttendance(ctx, in.LessonID, in.Records); err != nil {
		return Lesson{}, err
	}
	return m.Store.GetLesson(ctx, in.LessonID)
}

func (m *Materializer) materialize(ctx context.Context, in MaterializeInput) (Lesson, error) {
	if in.GroupID == "" {
		return Lesson{}, &ValidationError{Field: "group_id", Reason: "required for virtual occurrence"}
	}
	if in.StartsAt.IsZero() {
		return Lesson{}, &ValidationError{Field: "date", Reason: "required for virtual occurrence"}
	}

	lesson := Lesson{
		GroupID:         in.GroupID,
		StartsAt:        in.StartsAt,
		DurationMinutes: m.durationFor(ctx, in.GroupID, DayOf(in.StartsAt)),
		Completed:       true,
		Materialized:    true,
	}

	return m.Store.MaterializeLesson(ctx, lesson, in.Records)
}

// durationFor finds a template still producing the occurrence and takes
// its duration; default otherwise.
func (m *Materializer) durationFor(ctx context.Context, groupID GroupID, day Day) int {
	templates, err := m.Store.ListTemplates(ctx, Filter{GroupID: groupID})
	if err != nil {
		return DefaultDurationMinutes
	}
	for _, t := range templates {
		if t.AppliesOn(day) {
			return t.DurationMinutes()
		}
	}
	return DefaultDurationMinutes
}

func validateRecords(records []AttendanceRecord) error {
	for _, r := range records {
		if r.StudentID == "" {
			return &ValidationError{Field: "student_id", Reason: "required"}
		}
		if !ValidAttendanceStatus(r.Status) {
			return &ValidationError{Field: "status", Reason: "must be present, absent or excused"}
		}
	}
	return nil
}
