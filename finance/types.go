/*
Package finance produces income/expense rollups from the same lesson
timeline payroll consumes, plus payment and expense records.

REPORTS:
  - Monthly series: trailing N months of paid income, expenses, profit
  - Group snapshot: current-month profitability per active group,
    sorted by profit descending

KNOWN APPROXIMATIONS (kept, not corrected):
  Group income counts paid payments of CURRENT group members. A student
  in two groups inflates both groups' attributed income; a student who
  left takes their history along. These are documented approximations
  of the product, not defects for this package to fix silently.
*/
package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/schedule"
)

type PaymentID string

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentPending  PaymentStatus = "pending"
	PaymentOverdue  PaymentStatus = "overdue"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentType string

const (
	PaymentMonthly PaymentType = "monthly"
	PaymentOneTime PaymentType = "one_time"
)

// Payment is a student income record.
type Payment struct {
	ID        PaymentID
	StudentID schedule.StudentID
	Amount    decimal.Decimal
	Status    PaymentStatus
	Type      PaymentType
	Period    schedule.Month
	Date      time.Time
	CreatedAt time.Time
}

// MonthlyReport is one bucket of the trailing income/expense series.
type MonthlyReport struct {
	Month   schedule.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
	Profit  decimal.Decimal
}

// GroupProfit is the current-month profitability of one active group.
type GroupProfit struct {
	Group   schedule.Group
	Teacher schedule.Teacher
	Income  decimal.Decimal
	Cost    decimal.Decimal
	Profit  decimal.Decimal
}
