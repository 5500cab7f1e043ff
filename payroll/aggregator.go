/*
aggregator.go - Per-period payroll computation

ARITHMETIC:
  hoursWorked     = sum(durationMinutes) / 60 over completed lessons of
                    the teacher's groups dated within the period
  calculatedSalary = round(hoursWorked * hourlyRate)

  Decimal arithmetic throughout; the only rounding is the final
  half-up round to a whole amount.
*/
package payroll

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/schedule"
)

var sixty = decimal.NewFromInt(60)

// Aggregator produces payroll reports from the lesson timeline.
type Aggregator struct {
	Store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{Store: store}
}

// Report computes one TeacherReport per teacher for the pay period.
func (a *Aggregator) Report(ctx context.Context, period schedule.Month) ([]TeacherReport, error) {
	teachers, err := a.Store.ListTeachers(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]TeacherReport, 0, len(teachers))
	for _, t := range teachers {
		report, err := a.reportFor(ctx, t, period)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// ReportFor computes the report for a single teacher.
func (a *Aggregator) ReportFor(ctx context.Context, teacherID schedule.TeacherID, period schedule.Month) (TeacherReport, error) {
	teacher, err := a.Store.GetTeacher(ctx, teacherID)
	if err != nil {
		return TeacherReport{}, err
	}
	return a.reportFor(ctx, teacher, period)
}

func (a *Aggregator) reportFor(ctx context.Context, teacher schedule.Teacher, period schedule.Month) (TeacherReport, error) {
	lessons, err := a.Store.ListLessons(ctx, schedule.Filter{TeacherID: teacher.ID}, period.Window())
	if err != nil {
		return TeacherReport{}, err
	}

	count := 0
	minutes := int64(0)
	for _, l := range lessons {
		if !l.Completed {
			continue
		}
		count++
		minutes += int64(l.DurationMinutes)
	}

	hours := decimal.NewFromInt(minutes).Div(sixty)
	calculated := hours.Mul(teacher.HourlyRate).Round(0)

	report := TeacherReport{
		Teacher:          teacher,
		Period:           period,
		LessonCount:      count,
		HoursWorked:      hours,
		CalculatedSalary: calculated,
		Status:           StatusUnpaid,
		Amount:           calculated,
	}

	salary, err := a.Store.GetSalary(ctx, teacher.ID, period)
	switch {
	case err == nil && salary.Paid:
		report.Status = StatusPaid
		// The stored amount is authoritative once paid, even if lessons
		// were edited afterwards.
		report.Amount = salary.Amount
	case err == nil:
		report.Status = StatusPending
	case schedule.IsNotFound(err):
		// No record yet: UNPAID with the recalculated figure.
	default:
		return TeacherReport{}, err
	}

	return report, nil
}
