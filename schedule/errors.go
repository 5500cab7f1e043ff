/*
errors.go - Centralized error types for the scheduling engine

PURPOSE:
  All engine error types in one place. Consumers (payroll, finance,
  API handlers) wrap or inspect these with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Validation errors - rejected before any store mutation
  2. Not-found errors - distinct from validation, never a silent no-op
  3. Conflict errors - uniqueness violations (materialization races)

SEE ALSO:
  - materializer.go: Returns ErrDuplicateLesson on materialization races
  - api/handlers.go: Maps these to HTTP status codes
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrGroupNotFound is returned when a referenced group doesn't exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrTeacherNotFound is returned when a referenced teacher doesn't exist.
	ErrTeacherNotFound = errors.New("teacher not found")

	// ErrStudentNotFound is returned when a referenced student doesn't exist.
	ErrStudentNotFound = errors.New("student not found")

	// ErrLessonNotFound is returned when attendance is submitted against a
	// lesson id that doesn't exist.
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrTemplateNotFound is returned when a referenced template doesn't exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrSalaryNotFound is returned on payroll update/delete for a
	// (teacher, period) with no salary record.
	ErrSalaryNotFound = errors.New("salary record not found")

	// ErrDuplicateLesson is returned when materialization would create a
	// second materialized lesson for the same (group, calendar day).
	// Expected under concurrent attendance submission; the first writer wins.
	ErrDuplicateLesson = errors.New("lesson already materialized for group and day")

	// ErrInvalidWindow is returned for a query window whose end precedes
	// its start.
	ErrInvalidWindow = errors.New("invalid window: end before start")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError rejects bad input before any store mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// DuplicateLessonError reports which persisted lesson blocked a
// materialization attempt.
type DuplicateLessonError struct {
	GroupID  GroupID
	Day      Day
	Existing LessonID
}

func (e *DuplicateLessonError) Error() string {
	return fmt.Sprintf("lesson already materialized for group %s on %s (lesson: %s)",
		e.GroupID, e.Day, e.Existing)
}

func (e *DuplicateLessonError) Unwrap() error { return ErrDuplicateLesson }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrTeacherNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrSalaryNotFound)
}

// IsValidation reports whether the error is a client input problem.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidWindow)
}

// IsConflict reports whether the error is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateLesson)
}
