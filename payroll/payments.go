/*
payments.go - Recording, correcting, and deleting salary payments

FAILURE MODES:
  - missing teacher / period / non-positive amount -> ValidationError,
    rejected before any store mutation
  - unknown teacher -> ErrTeacherNotFound
  - update/delete with no salary row -> ErrSalaryNotFound
  - any transactional failure rolls back both paired writes
*/
package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/schedule"
)

// PayInput records a salary payment.
type PayInput struct {
	TeacherID schedule.TeacherID
	Period    schedule.Month
	Amount    decimal.Decimal
}

// Pay records the payment: one Salary row (paid=true) and one Expense
// row (category "Salary", dated now) in a single transaction. A salary
// without its expense, or vice versa, must never persist.
func (a *Aggregator) Pay(ctx context.Context, in PayInput) (Salary, error) {
	if in.TeacherID == "" {
		return Salary{}, &schedule.ValidationError{Field: "teacher_id", Reason: "required"}
	}
	if in.Period == (schedule.Month{}) {
		return Salary{}, &schedule.ValidationError{Field: "period", Reason: "required"}
	}
	if !in.Amount.IsPositive() {
		return Salary{}, &schedule.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	teacher, err := a.Store.GetTeacher(ctx, in.TeacherID)
	if err != nil {
		return Salary{}, err
	}

	now := time.Now().UTC()
	salary := Salary{
		TeacherID: teacher.ID,
		Period:    in.Period,
		Amount:    in.Amount,
		Paid:      true,
	}
	expense := Expense{
		Amount:   in.Amount,
		Category: ExpenseCategorySalary,
		// Content-level link to the salary row: no foreign key exists.
		Description: SalaryExpenseDescription(teacher.ID, in.Period),
		Date:        now,
	}

	if err := a.Store.CreateSalaryWithExpense(ctx, salary, expense); err != nil {
		return Salary{}, err
	}
	return salary, nil
}

// UpdateAmount corrects a recorded salary amount. The paired expense
// row is left untouched; nothing links the two beyond the description.
func (a *Aggregator) UpdateAmount(ctx context.Context, teacherID schedule.TeacherID, period schedule.Month, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &schedule.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if _, err := a.Store.GetSalary(ctx, teacherID, period); err != nil {
		return err
	}
	return a.Store.UpdateSalaryAmount(ctx, teacherID, period, amount)
}

// Delete removes the salary row for (teacher, period). The paired
// expense row is left untouched.
func (a *Aggregator) Delete(ctx context.Context, teacherID schedule.TeacherID, period schedule.Month) error {
	if _, err := a.Store.GetSalary(ctx, teacherID, period); err != nil {
		return err
	}
	return a.Store.DeleteSalary(ctx, teacherID, period)
}

// SalaryExpenseDescription is the content-level link embedded in the
// paired expense row.
func SalaryExpenseDescription(teacherID schedule.TeacherID, period schedule.Month) string {
	return fmt.Sprintf("Salary payment: teacher %s, period %s", teacherID, period)
}
