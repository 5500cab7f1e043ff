/*
aggregator.go - Monthly series and per-group profitability

GROUP COST MODEL:
  Cost of a group for the month is the teacher cost of its completed
  lessons: sum(durationMinutes) / 60 * hourlyRate. Decimal arithmetic,
  no rounding (reports render as-is).
*/
package finance

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/schedule"
)

var sixty = decimal.NewFromInt(60)

// Aggregator produces the finance rollups.
type Aggregator struct {
	Store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{Store: store}
}

// MonthlySeries returns the trailing `months` buckets ending at
// `current`, oldest first.
func (a *Aggregator) MonthlySeries(ctx context.Context, current schedule.Month, months int) ([]MonthlyReport, error) {
	if months < 1 {
		return nil, &schedule.ValidationError{Field: "months", Reason: "must be at least 1"}
	}

	series := make([]MonthlyReport, 0, months)
	for i := months - 1; i >= 0; i-- {
		month := current.AddMonths(-i)

		income, err := a.Store.SumPaidPayments(ctx, month)
		if err != nil {
			return nil, err
		}
		expense, err := a.Store.SumExpenses(ctx, month)
		if err != nil {
			return nil, err
		}

		series = append(series, MonthlyReport{
			Month:   month,
			Income:  income,
			Expense: expense,
			Profit:  income.Sub(expense),
		})
	}
	return series, nil
}

// GroupSnapshot computes current-month profitability for every active
// group, sorted by profit descending.
func (a *Aggregator) GroupSnapshot(ctx context.Context, current schedule.Month) ([]GroupProfit, error) {
	groups, err := a.Store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := make([]GroupProfit, 0, len(groups))
	for _, g := range groups {
		if !g.Active {
			continue
		}
		profit, err := a.groupProfit(ctx, g, current)
		if err != nil {
			return nil, err
		}
		snapshot = append(snapshot, profit)
	}

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Profit.GreaterThan(snapshot[j].Profit)
	})
	return snapshot, nil
}

func (a *Aggregator) groupProfit(ctx context.Context, g schedule.Group, month schedule.Month) (GroupProfit, error) {
	teacher, err := a.Store.GetTeacher(ctx, g.TeacherID)
	if err != nil {
		return GroupProfit{}, err
	}

	// Income: paid payments of current members. Membership is read as
	// of now, not as of the payment date.
	members, err := a.Store.ListGroupMembers(ctx, g.ID)
	if err != nil {
		return GroupProfit{}, err
	}
	income := decimal.Zero
	if len(members) > 0 {
		income, err = a.Store.SumPaidPaymentsByStudents(ctx, members, month)
		if err != nil {
			return GroupProfit{}, err
		}
	}

	// Cost: teacher time on the group's completed lessons this month.
	lessons, err := a.Store.ListLessons(ctx, schedule.Filter{GroupID: g.ID}, month.Window())
	if err != nil {
		return GroupProfit{}, err
	}
	minutes := int64(0)
	for _, l := range lessons {
		if l.Completed {
			minutes += int64(l.DurationMinutes)
		}
	}
	cost := decimal.NewFromInt(minutes).Div(sixty).Mul(teacher.HourlyRate)

	return GroupProfit{
		Group:   g,
		Teacher: teacher,
		Income:  income,
		Cost:    cost,
		Profit:  income.Sub(cost),
	}, nil
}
