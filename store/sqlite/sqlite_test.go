package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/finance"
	"github.com/tutoria/lesson-engine/payroll"
	"github.com/tutoria/lesson-engine/schedule"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedDirectory(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.SaveTeacher(ctx, schedule.Teacher{
		ID: "t1", Name: "Anna", HourlyRate: decimal.NewFromInt(2000),
	}); err != nil {
		t.Fatalf("failed to save teacher: %v", err)
	}
	if _, err := s.SaveGroup(ctx, schedule.Group{
		ID: "g1", Name: "Math A1", TeacherID: "t1", Active: true,
	}); err != nil {
		t.Fatalf("failed to save group: %v", err)
	}
	if _, err := s.SaveStudent(ctx, schedule.Student{
		ID: "s1", Name: "Dasha", Active: true,
	}); err != nil {
		t.Fatalf("failed to save student: %v", err)
	}
}

func TestTeacherRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveTeacher(ctx, schedule.Teacher{
		ID: "t1", Name: "Anna", HourlyRate: decimal.RequireFromString("1999.50"),
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.GetTeacher(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Anna" {
		t.Errorf("expected Anna, got %s", got.Name)
	}
	if !got.HourlyRate.Equal(decimal.RequireFromString("1999.50")) {
		t.Errorf("rate mismatch: %s", got.HourlyRate)
	}

	if _, err := s.GetTeacher(ctx, "missing"); !errors.Is(err, schedule.ErrTeacherNotFound) {
		t.Errorf("expected ErrTeacherNotFound, got %v", err)
	}
}

func TestGroupRequiresTeacher(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SaveGroup(context.Background(), schedule.Group{
		ID: "g1", Name: "Orphan", TeacherID: "missing", Active: true,
	})
	if !errors.Is(err, schedule.ErrTeacherNotFound) {
		t.Fatalf("expected ErrTeacherNotFound, got %v", err)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	seedDirectory(t, s)
	ctx := context.Background()

	validTo := schedule.NewDay(2025, time.June, 30)
	saved, err := s.SaveTemplate(ctx, schedule.ScheduleTemplate{
		GroupID:   "g1",
		Weekdays:  schedule.NewWeekdaySet(time.Monday, time.Wednesday),
		Start:     schedule.ClockTime{Hour: 10},
		End:       schedule.ClockTime{Hour: 11, Minute: 30},
		ValidFrom: schedule.NewDay(2025, time.January, 1),
		ValidTo:   &validTo,
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	templates, err := s.ListTemplates(ctx, schedule.Filter{GroupID: "g1"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(templates))
	}
	got := templates[0]
	if got.ID != saved.ID {
		t.Errorf("id mismatch: %s vs %s", got.ID, saved.ID)
	}
	if !got.Weekdays.Has(time.Monday) || !got.Weekdays.Has(time.Wednesday) || got.Weekdays.Has(time.Friday) {
		t.Errorf("weekdays mismatch: %v", got.Weekdays.Weekdays())
	}
	if got.DurationMinutes() != 90 {
		t.Errorf("expected 90 minutes, got %d", got.DurationMinutes())
	}
	if got.ValidTo == nil || !got.ValidTo.Equal(validTo) {
		t.Errorf("valid_to mismatch: %v", got.ValidTo)
	}

	// Filter by a different teacher finds nothing.
	templates, err = s.ListTemplates(ctx, schedule.Filter{TeacherID: "someone-else"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("expected no templates for unknown teacher, got %d", len(templates))
	}
}

func TestMaterializeLesson_AtomicWithAttendance(t *testing.T) {
	s := newTestStore(t)
	seedDirectory(t, s)
	ctx := context.Background()

	grade := 4
	lesson, err := s.MaterializeLesson(ctx, schedule.Lesson{
		GroupID:         "g1",
		StartsAt:        time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 90,
		Completed:       true,
		Materialized:    true,
	}, []schedule.AttendanceRecord{
		{StudentID: "s1", Status: schedule.AttendancePresent, Grade: &grade, Comment: "good work"},
	})
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}

	got, err := s.GetLesson(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Completed || !got.Materialized {
		t.Errorf("expected completed+materialized, got %+v", got)
	}
	if len(got.Attendance) != 1 {
		t.Fatalf("expected 1 attendance row, got %d", len(got.Attendance))
	}
	row := got.Attendance[0]
	if row.StudentID != "s1" || row.Status != schedule.AttendancePresent {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.Grade == nil || *row.Grade != 4 {
		t.Errorf("expected grade 4, got %v", row.Grade)
	}
}

func TestMaterializeLesson_DuplicateDayRejected(t *testing.T) {
	// The partial unique index holds even across different times of day.

	s := newTestStore(t)
	seedDirectory(t, s)
	ctx := context.Background()

	first := schedule.Lesson{
		GroupID:         "g1",
		StartsAt:        time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Completed:       true,
		Materialized:    true,
	}
	if _, err := s.MaterializeLesson(ctx, first, nil); err != nil {
		t.Fatalf("first materialize failed: %v", err)
	}

	second := first
	second.StartsAt = time.Date(2025, time.January, 6, 15, 0, 0, 0, time.UTC)
	_, err := s.MaterializeLesson(ctx, second, nil)
	if !errors.Is(err, schedule.ErrDuplicateLesson) {
		t.Fatalf("expected ErrDuplicateLesson, got %v", err)
	}

	// Non-materialized lessons on the same day are still allowed.
	if _, err := s.CreateLesson(ctx, schedule.Lesson{
		GroupID:         "g1",
		StartsAt:        time.Date(2025, time.January, 6, 18, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("explicit lesson on occupied day failed: %v", err)
	}
}

func TestListLessons_WindowAndFilter(t *testing.T) {
	s := newTestStore(t)
	seedDirectory(t, s)
	ctx := context.Background()

	days := []int{5, 10, 25}
	for _, d := range days {
		if _, err := s.CreateLesson(ctx, schedule.Lesson{
			GroupID:         "g1",
			StartsAt:        time.Date(2025, time.January, d, 10, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
			Completed:       true,
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	lessons, err := s.ListLessons(ctx, schedule.Filter{TeacherID: "t1"}, schedule.Window{
		From: schedule.NewDay(2025, time.January, 10),
		To:   schedule.NewDay(2025, time.January, 25),
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lessons) != 2 {
		t.Fatalf("expected 2 lessons in window, got %d", len(lessons))
	}
	if !lessons[0].StartsAt.Before(lessons[1].StartsAt) {
		t.Error("expected chronological order")
	}

	lessons, err = s.ListLessons(ctx, schedule.Filter{GroupID: "other"}, schedule.Window{
		From: schedule.NewDay(2025, time.January, 1),
		To:   schedule.NewDay(2025, time.January, 31),
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lessons) != 0 {
		t.Errorf("expected no lessons for unknown group, got %d", len(lessons))
	}
}

func TestUpsertAttendance_ReplacesAndCompletes(t *testing.T) {
	s := newTestStore(t)
	seedDirectory(t, s)
	ctx := context.Background()

	lesson, err := s.CreateLesson(ctx, schedule.Lesson{
		GroupID:         "g1",
		StartsAt:        time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.UpsertAttendance(ctx, lesson.ID, []schedule.AttendanceRecord{
		{StudentID: "s1", Status: schedule.AttendanceAbsent},
	}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := s.UpsertAttendance(ctx, lesson.ID, []schedule.AttendanceRecord{
		{StudentID: "s1", Status: schedule.AttendanceExcused, Comment: "doctor's note"},
	}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := s.GetLesson(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Completed {
		t.Error("expected lesson marked completed")
	}
	if len(got.Attendance) != 1 {
		t.Fatalf("expected 1 row after replace, got %d", len(got.Attendance))
	}
	if got.Attendance[0].Status != schedule.AttendanceExcused {
		t.Errorf("expected excused, got %s", got.Attendance[0].Status)
	}

	if err := s.UpsertAttendance(ctx, "missing", nil); !errors.Is(err, schedule.ErrLessonNotFound) {
		t.Errorf("expected ErrLessonNotFound, got %v", err)
	}
}

func TestCreateSalaryWithExpense_RollsBackTogether(t *testing.T) {
	// GIVEN: An expense id that already exists
	// WHEN: The paired write hits the duplicate on its second insert
	// THEN: The salary row is rolled back too

	s := newTestStore(t)
	seedDirectory(t, s)
	ctx := context.Background()

	existing, err := s.CreateExpense(ctx, payroll.Expense{
		Amount: decimal.NewFromInt(100), Category: "Rent", Date: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed expense failed: %v", err)
	}

	period := schedule.Month{Year: 2025, Month: time.January}
	err = s.CreateSalaryWithExpense(ctx,
		payroll.Salary{TeacherID: "t1", Period: period, Amount: decimal.NewFromInt(6000), Paid: true},
		payroll.Expense{ID: existing.ID, Amount: decimal.NewFromInt(6000), Category: payroll.ExpenseCategorySalary, Date: time.Now().UTC()},
	)
	if err == nil {
		t.Fatal("expected duplicate expense id to fail")
	}

	if _, err := s.GetSalary(ctx, "t1", period); !errors.Is(err, schedule.ErrSalaryNotFound) {
		t.Errorf("expected salary rolled back, got %v", err)
	}
}

func TestSalaryLifecycle(t *testing.T) {
	s := newTestStore(t)
	seedDirectory(t, s)
	ctx := context.Background()
	period := schedule.Month{Year: 2025, Month: time.January}

	if err := s.CreateSalaryWithExpense(ctx,
		payroll.Salary{TeacherID: "t1", Period: period, Amount: decimal.NewFromInt(6000), Paid: true},
		payroll.Expense{Amount: decimal.NewFromInt(6000), Category: payroll.ExpenseCategorySalary, Date: time.Now().UTC()},
	); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	got, err := s.GetSalary(ctx, "t1", period)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Paid || !got.Amount.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("unexpected salary: %+v", got)
	}

	if err := s.UpdateSalaryAmount(ctx, "t1", period, decimal.NewFromInt(6500)); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, _ = s.GetSalary(ctx, "t1", period)
	if !got.Amount.Equal(decimal.NewFromInt(6500)) {
		t.Errorf("expected 6500 after update, got %s", got.Amount)
	}

	if err := s.DeleteSalary(ctx, "t1", period); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetSalary(ctx, "t1", period); !errors.Is(err, schedule.ErrSalaryNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := s.DeleteSalary(ctx, "t1", period); !errors.Is(err, schedule.ErrSalaryNotFound) {
		t.Errorf("expected not found for second delete, got %v", err)
	}
}

func TestFinanceSums(t *testing.T) {
	s := newTestStore(t)
	seedDirectory(t, s)
	ctx := context.Background()
	jan := schedule.Month{Year: 2025, Month: time.January}

	seedPayment := func(amount int64, status finance.PaymentStatus, day int) {
		t.Helper()
		_, err := s.CreatePayment(ctx, finance.Payment{
			StudentID: "s1",
			Amount:    decimal.NewFromInt(amount),
			Status:    status,
			Type:      finance.PaymentMonthly,
			Period:    jan,
			Date:      time.Date(2025, time.January, day, 12, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("seed payment failed: %v", err)
		}
	}
	seedPayment(8000, finance.PaymentPaid, 10)
	seedPayment(5000, finance.PaymentPaid, 20)
	seedPayment(9999, finance.PaymentPending, 15)

	income, err := s.SumPaidPayments(ctx, jan)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !income.Equal(decimal.NewFromInt(13000)) {
		t.Errorf("expected 13000, got %s", income)
	}

	byStudent, err := s.SumPaidPaymentsByStudents(ctx, []schedule.StudentID{"s1"}, jan)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !byStudent.Equal(income) {
		t.Errorf("expected per-student sum %s, got %s", income, byStudent)
	}

	none, err := s.SumPaidPaymentsByStudents(ctx, nil, jan)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !none.IsZero() {
		t.Errorf("expected zero for empty student list, got %s", none)
	}
}
