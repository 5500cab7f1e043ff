/*
store.go - Persistence interfaces for the scheduling engine

PURPOSE:
  Defines the contract between the engine and the recurrence store.
  Implementations: store/sqlite (production), schedule/store (in-memory
  for tests and dev).

ATOMICITY CONTRACT:
  MaterializeLesson is the one scheduling write requiring all-or-nothing
  semantics: the lesson row and every attendance row persist together or
  not at all. A partial write would make the day look materialized with
  incomplete data and corrupt the payroll timeline.

UNIQUENESS CONTRACT:
  Implementations enforce at most one MATERIALIZED lesson per
  (group, calendar day) and return ErrDuplicateLesson on violation.
  Explicitly created lessons are not constrained; the reconciler keeps
  all of them and synthesizes nothing for such days.
*/
package schedule

import "context"

// =============================================================================
// FILTERS
// =============================================================================

// Filter narrows templates and lessons to one teacher's groups or to a
// single group. Zero value = no filtering.
type Filter struct {
	TeacherID TeacherID
	GroupID   GroupID
}

func (f Filter) Empty() bool { return f.TeacherID == "" && f.GroupID == "" }

// MatchesGroup applies the filter against a group record.
func (f Filter) MatchesGroup(g Group) bool {
	if f.GroupID != "" && g.ID != f.GroupID {
		return false
	}
	if f.TeacherID != "" && g.TeacherID != f.TeacherID {
		return false
	}
	return true
}

// =============================================================================
// TIMELINE STORE - Reads the expander and reconciler depend on
// =============================================================================

// TimelineStore supplies the template, group, and lesson sets a
// timeline query reads. Reads happen once per request with the store's
// default isolation; no cross-request locking.
type TimelineStore interface {
	// ListTemplates returns templates whose owning group passes the filter.
	ListTemplates(ctx context.Context, filter Filter) ([]ScheduleTemplate, error)

	// ListGroups returns all groups (active and inactive).
	ListGroups(ctx context.Context) ([]Group, error)

	// ListLessons returns persisted lessons in the window, with their
	// attendance rows, ordered by StartsAt ascending.
	ListLessons(ctx context.Context, filter Filter, window Window) ([]Lesson, error)
}

// =============================================================================
// LESSON STORE - Writes for materialization and explicit scheduling
// =============================================================================

// LessonStore extends TimelineStore with the lesson write operations.
type LessonStore interface {
	TimelineStore

	// GetLesson returns one lesson with attendance, or ErrLessonNotFound.
	GetLesson(ctx context.Context, id LessonID) (Lesson, error)

	// CreateLesson persists an explicitly scheduled lesson and assigns
	// its id.
	CreateLesson(ctx context.Context, lesson Lesson) (Lesson, error)

	// MaterializeLesson atomically persists a lesson plus its attendance
	// rows. Returns ErrDuplicateLesson if a materialized lesson already
	// exists for the same (group, calendar day).
	MaterializeLesson(ctx context.Context, lesson Lesson, records []AttendanceRecord) (Lesson, error)

	// UpsertAttendance replaces or inserts attendance rows for an
	// existing lesson and marks it completed.
	UpsertAttendance(ctx context.Context, id LessonID, records []AttendanceRecord) error
}
