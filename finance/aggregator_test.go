package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/finance"
	"github.com/tutoria/lesson-engine/payroll"
	"github.com/tutoria/lesson-engine/schedule"
	"github.com/tutoria/lesson-engine/schedule/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func month(year int, m time.Month) schedule.Month {
	return schedule.Month{Year: year, Month: m}
}

func midMonth(m schedule.Month) time.Time {
	return schedule.NewDay(m.Year, m.Month, 15).Time()
}

type fixture struct {
	m   *store.Memory
	agg *finance.Aggregator
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := store.NewMemory()
	return &fixture{m: m, agg: finance.NewAggregator(m), ctx: context.Background()}
}

func (f *fixture) teacher(t *testing.T, id schedule.TeacherID, rate int64) {
	t.Helper()
	if _, err := f.m.SaveTeacher(f.ctx, schedule.Teacher{
		ID: id, Name: string(id), HourlyRate: decimal.NewFromInt(rate),
	}); err != nil {
		t.Fatalf("failed to save teacher: %v", err)
	}
}

func (f *fixture) group(t *testing.T, id schedule.GroupID, teacherID schedule.TeacherID, active bool, members ...schedule.StudentID) {
	t.Helper()
	if _, err := f.m.SaveGroup(f.ctx, schedule.Group{
		ID: id, Name: string(id), TeacherID: teacherID, Active: active,
	}); err != nil {
		t.Fatalf("failed to save group: %v", err)
	}
	for _, sid := range members {
		if _, err := f.m.SaveStudent(f.ctx, schedule.Student{ID: sid, Name: string(sid), Active: true}); err != nil {
			t.Fatalf("failed to save student: %v", err)
		}
		if err := f.m.AddGroupMember(f.ctx, id, sid); err != nil {
			t.Fatalf("failed to add member: %v", err)
		}
	}
}

func (f *fixture) paidPayment(t *testing.T, studentID schedule.StudentID, amount int64, m schedule.Month) {
	t.Helper()
	if _, err := f.m.CreatePayment(f.ctx, finance.Payment{
		StudentID: studentID,
		Amount:    decimal.NewFromInt(amount),
		Status:    finance.PaymentPaid,
		Type:      finance.PaymentMonthly,
		Period:    m,
		Date:      midMonth(m),
	}); err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}
}

func (f *fixture) expense(t *testing.T, amount int64, m schedule.Month) {
	t.Helper()
	if _, err := f.m.CreateExpense(f.ctx, payroll.Expense{
		Amount:   decimal.NewFromInt(amount),
		Category: "Rent",
		Date:     midMonth(m),
	}); err != nil {
		t.Fatalf("failed to create expense: %v", err)
	}
}

func (f *fixture) completedLesson(t *testing.T, groupID schedule.GroupID, day schedule.Day, minutes int) {
	t.Helper()
	if _, err := f.m.CreateLesson(f.ctx, schedule.Lesson{
		GroupID:         groupID,
		StartsAt:        day.At(schedule.ClockTime{Hour: 10}),
		DurationMinutes: minutes,
		Completed:       true,
	}); err != nil {
		t.Fatalf("failed to create lesson: %v", err)
	}
}

// =============================================================================
// MONTHLY SERIES TESTS
// =============================================================================

func TestMonthlySeries_OldestFirstWithProfit(t *testing.T) {
	// GIVEN: Payments and expenses spread over three months
	// WHEN: Asking for a 3-month series ending 2025-03
	// THEN: Buckets are oldest first, profit = income - expense per bucket

	f := newFixture(t)
	f.teacher(t, "t1", 1000)
	f.group(t, "g1", "t1", true, "s1")

	jan, feb, mar := month(2025, time.January), month(2025, time.February), month(2025, time.March)
	f.paidPayment(t, "s1", 8000, jan)
	f.expense(t, 3000, jan)
	f.paidPayment(t, "s1", 5000, feb)
	f.expense(t, 6000, mar)

	series, err := f.agg.MonthlySeries(f.ctx, mar, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(series))
	}

	wantMonths := []schedule.Month{jan, feb, mar}
	wantProfit := []int64{5000, 5000, -6000}
	for i, bucket := range series {
		if bucket.Month != wantMonths[i] {
			t.Errorf("bucket %d: expected month %s, got %s", i, wantMonths[i], bucket.Month)
		}
		if !bucket.Profit.Equal(decimal.NewFromInt(wantProfit[i])) {
			t.Errorf("bucket %d: expected profit %d, got %s", i, wantProfit[i], bucket.Profit)
		}
	}
}

func TestMonthlySeries_PendingPaymentsExcluded(t *testing.T) {
	// Income counts paid payments only.

	f := newFixture(t)
	f.teacher(t, "t1", 1000)
	f.group(t, "g1", "t1", true, "s1")

	jan := month(2025, time.January)
	f.paidPayment(t, "s1", 8000, jan)
	if _, err := f.m.CreatePayment(f.ctx, finance.Payment{
		StudentID: "s1",
		Amount:    decimal.NewFromInt(9999),
		Status:    finance.PaymentPending,
		Type:      finance.PaymentMonthly,
		Period:    jan,
		Date:      midMonth(jan),
	}); err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}

	series, err := f.agg.MonthlySeries(f.ctx, jan, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !series[0].Income.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("expected income 8000 (pending excluded), got %s", series[0].Income)
	}
}

func TestMonthlySeries_InvalidMonths(t *testing.T) {
	f := newFixture(t)
	for _, n := range []int{0, -3} {
		if _, err := f.agg.MonthlySeries(f.ctx, month(2025, time.March), n); !schedule.IsValidation(err) {
			t.Errorf("months=%d: expected validation error, got %v", n, err)
		}
	}
}

// =============================================================================
// GROUP SNAPSHOT TESTS
// =============================================================================

func TestGroupSnapshot_ProfitPerGroupSortedDescending(t *testing.T) {
	// GIVEN: Two active groups. g1: 8000 income, 2h at 1000/h cost.
	//        g2: 3000 income, 4h at 1500/h cost.
	// WHEN: Taking the snapshot
	// THEN: g1 (profit 6000) before g2 (profit -3000)

	f := newFixture(t)
	f.teacher(t, "t1", 1000)
	f.teacher(t, "t2", 1500)
	f.group(t, "g1", "t1", true, "s1")
	f.group(t, "g2", "t2", true, "s2")

	jan := month(2025, time.January)
	f.paidPayment(t, "s1", 8000, jan)
	f.paidPayment(t, "s2", 3000, jan)
	f.completedLesson(t, "g1", schedule.NewDay(2025, time.January, 6), 60)
	f.completedLesson(t, "g1", schedule.NewDay(2025, time.January, 13), 60)
	for day := 6; day <= 27; day += 7 {
		f.completedLesson(t, "g2", schedule.NewDay(2025, time.January, day), 60)
	}

	snapshot, err := f.agg.GroupSnapshot(f.ctx, jan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(snapshot))
	}

	if snapshot[0].Group.ID != "g1" {
		t.Fatalf("expected g1 first (highest profit), got %s", snapshot[0].Group.ID)
	}
	if !snapshot[0].Profit.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("g1: expected profit 6000, got %s", snapshot[0].Profit)
	}
	if !snapshot[1].Cost.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("g2: expected cost 6000, got %s", snapshot[1].Cost)
	}
	if !snapshot[1].Profit.Equal(decimal.NewFromInt(-3000)) {
		t.Errorf("g2: expected profit -3000, got %s", snapshot[1].Profit)
	}
}

func TestGroupSnapshot_InactiveGroupSkipped(t *testing.T) {
	f := newFixture(t)
	f.teacher(t, "t1", 1000)
	f.group(t, "g1", "t1", true, "s1")
	f.group(t, "g2", "t1", false, "s2")

	snapshot, err := f.agg.GroupSnapshot(f.ctx, month(2025, time.January))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].Group.ID != "g1" {
		t.Fatalf("expected only g1 in snapshot, got %d entries", len(snapshot))
	}
}

func TestGroupSnapshot_NoMembersMeansZeroIncome(t *testing.T) {
	// A group with no current members attributes no income, even when
	// payments exist.

	f := newFixture(t)
	f.teacher(t, "t1", 1000)
	f.group(t, "g1", "t1", true)
	if _, err := f.m.SaveStudent(f.ctx, schedule.Student{ID: "s1", Name: "s1", Active: true}); err != nil {
		t.Fatalf("failed to save student: %v", err)
	}
	jan := month(2025, time.January)
	f.paidPayment(t, "s1", 8000, jan)

	snapshot, err := f.agg.GroupSnapshot(f.ctx, jan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snapshot[0].Income.IsZero() {
		t.Errorf("expected zero income for memberless group, got %s", snapshot[0].Income)
	}
}

func TestGroupSnapshot_SharedStudentCountedInBothGroups(t *testing.T) {
	// A student in two groups inflates both groups' attributed income.

	f := newFixture(t)
	f.teacher(t, "t1", 1000)
	f.group(t, "g1", "t1", true, "s1")
	f.group(t, "g2", "t1", true)
	if err := f.m.AddGroupMember(f.ctx, "g2", "s1"); err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	jan := month(2025, time.January)
	f.paidPayment(t, "s1", 5000, jan)

	snapshot, err := f.agg.GroupSnapshot(f.ctx, jan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(snapshot))
	}
	for _, gp := range snapshot {
		if !gp.Income.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("group %s: expected income 5000, got %s", gp.Group.ID, gp.Income)
		}
	}
}

func TestGroupSnapshot_UncompletedLessonsFree(t *testing.T) {
	// Scheduled-but-untaught lessons carry no cost.

	f := newFixture(t)
	f.teacher(t, "t1", 1000)
	f.group(t, "g1", "t1", true, "s1")

	if _, err := f.m.CreateLesson(f.ctx, schedule.Lesson{
		GroupID:         "g1",
		StartsAt:        time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("failed to create lesson: %v", err)
	}

	snapshot, err := f.agg.GroupSnapshot(f.ctx, month(2025, time.January))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snapshot[0].Cost.IsZero() {
		t.Errorf("expected zero cost, got %s", snapshot[0].Cost)
	}
}
