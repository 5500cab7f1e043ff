/*
Package payroll computes teacher compensation from the materialized
lesson timeline and records payments as paired ledger rows.

PURPOSE:
  For a pay period (calendar month) the aggregator reports, per teacher,
  the completed-lesson count, hours worked, the salary those hours imply
  at the teacher's hourly rate, and the payment status against any
  recorded salary row.

PAIRED WRITES:
  Recording a payment creates a Salary row (paid=true) and an Expense
  row (category "Salary") in ONE transaction. The two rows are linked by
  content only - the expense description embeds the teacher id and
  period, there is no foreign key. Updating or deleting a salary
  deliberately does NOT touch the paired expense; callers adjust it
  manually. This asymmetry is a known limitation of the payment model.

KEY CONCEPTS:
  - Salary: at most one authoritative row per (teacher, period) in
    normal operation; the store does not enforce uniqueness
  - Status: UNPAID (no row), PENDING (row, paid=false), PAID (row,
    paid=true - the stored amount is reported, not the recalculation)

SEE ALSO:
  - aggregator.go: Report computation
  - payments.go: Pay / update / delete operations
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/schedule"
)

type (
	SalaryID  string
	ExpenseID string
)

// ExpenseCategorySalary tags the expense row a salary payment creates.
const ExpenseCategorySalary = "Salary"

// Salary is a recorded payment (or pending payment) for one teacher
// and one period.
type Salary struct {
	ID        SalaryID
	TeacherID schedule.TeacherID
	Period    schedule.Month
	Amount    decimal.Decimal
	Paid      bool
	CreatedAt time.Time
}

// Expense is a cash outflow. Salary payments always produce one with
// category "Salary"; other categories arrive via manual entry.
type Expense struct {
	ID          ExpenseID
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
	CreatedAt   time.Time
}

// Status of a teacher's compensation for a period.
type Status string

const (
	StatusUnpaid  Status = "UNPAID"
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

// TeacherReport is one row of the payroll report.
type TeacherReport struct {
	Teacher schedule.Teacher
	Period  schedule.Month

	LessonCount      int
	HoursWorked      decimal.Decimal
	CalculatedSalary decimal.Decimal

	Status Status

	// Amount is what the dashboard shows: the stored salary amount once
	// paid, the recalculated figure otherwise. The two can diverge if
	// lessons are edited after payment; that drift is surfaced, not
	// silently reconciled.
	Amount decimal.Decimal
}
