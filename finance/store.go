package finance

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/schedule"
)

// Store is the persistence the finance aggregator depends on.
// Aggregation pushes the sums into the store; only the group snapshot
// pulls row sets out.
type Store interface {
	// SumPaidPayments returns the sum of paid payments dated in the month.
	SumPaidPayments(ctx context.Context, month schedule.Month) (decimal.Decimal, error)

	// SumExpenses returns the sum of all expenses dated in the month.
	SumExpenses(ctx context.Context, month schedule.Month) (decimal.Decimal, error)

	// SumPaidPaymentsByStudents restricts the paid-payment sum to the
	// given students (current group members).
	SumPaidPaymentsByStudents(ctx context.Context, studentIDs []schedule.StudentID, month schedule.Month) (decimal.Decimal, error)

	ListGroups(ctx context.Context) ([]schedule.Group, error)
	GetTeacher(ctx context.Context, id schedule.TeacherID) (schedule.Teacher, error)

	// ListGroupMembers returns the students CURRENTLY in the group.
	ListGroupMembers(ctx context.Context, groupID schedule.GroupID) ([]schedule.StudentID, error)

	// ListLessons returns persisted lessons for the filter and window.
	ListLessons(ctx context.Context, filter schedule.Filter, window schedule.Window) ([]schedule.Lesson, error)
}
