package payroll

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/schedule"
)

// Store is the persistence the payroll aggregator depends on. The
// lesson reads are the same timeline the calendar consumers see.
type Store interface {
	ListTeachers(ctx context.Context) ([]schedule.Teacher, error)
	GetTeacher(ctx context.Context, id schedule.TeacherID) (schedule.Teacher, error)

	// ListLessons returns persisted lessons for the filter and window.
	ListLessons(ctx context.Context, filter schedule.Filter, window schedule.Window) ([]schedule.Lesson, error)

	// GetSalary returns the salary row for (teacher, period), or
	// schedule.ErrSalaryNotFound.
	GetSalary(ctx context.Context, teacherID schedule.TeacherID, period schedule.Month) (Salary, error)

	// CreateSalaryWithExpense persists both rows atomically: either the
	// salary and its paired expense commit together, or neither does.
	CreateSalaryWithExpense(ctx context.Context, salary Salary, expense Expense) error

	// UpdateSalaryAmount corrects the amount of the (teacher, period)
	// salary row. The paired expense is NOT updated.
	UpdateSalaryAmount(ctx context.Context, teacherID schedule.TeacherID, period schedule.Month, amount decimal.Decimal) error

	// DeleteSalary removes the (teacher, period) salary row. The paired
	// expense is NOT removed.
	DeleteSalary(ctx context.Context, teacherID schedule.TeacherID, period schedule.Month) error
}
