// Package store provides an in-memory store implementation
// (tests and dev). Production uses store/sqlite.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/finance"
	"github.com/tutoria/lesson-engine/payroll"
	"github.com/tutoria/lesson-engine/schedule"
)

// =============================================================================
// MEMORY STORE - Implements schedule.LessonStore, payroll.Store, finance.Store
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	teachers  map[schedule.TeacherID]schedule.Teacher
	students  map[schedule.StudentID]schedule.Student
	groups    map[schedule.GroupID]schedule.Group
	members   map[schedule.GroupID][]schedule.StudentID
	templates map[schedule.TemplateID]schedule.ScheduleTemplate
	lessons   map[schedule.LessonID]*schedule.Lesson
	salaries  []payroll.Salary
	expenses  []payroll.Expense
	payments  []finance.Payment
}

func NewMemory() *Memory {
	return &Memory{
		teachers:  make(map[schedule.TeacherID]schedule.Teacher),
		students:  make(map[schedule.StudentID]schedule.Student),
		groups:    make(map[schedule.GroupID]schedule.Group),
		members:   make(map[schedule.GroupID][]schedule.StudentID),
		templates: make(map[schedule.TemplateID]schedule.ScheduleTemplate),
		lessons:   make(map[schedule.LessonID]*schedule.Lesson),
	}
}

// =============================================================================
// DIRECTORY WRITES (dev/test seeding and entity endpoints)
// =============================================================================

func (m *Memory) SaveTeacher(_ context.Context, t schedule.Teacher) (schedule.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = schedule.TeacherID(uuid.NewString())
	}
	m.teachers[t.ID] = t
	return t, nil
}

func (m *Memory) SaveStudent(_ context.Context, s schedule.Student) (schedule.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = schedule.StudentID(uuid.NewString())
	}
	m.students[s.ID] = s
	return s, nil
}

func (m *Memory) SaveGroup(_ context.Context, g schedule.Group) (schedule.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teachers[g.TeacherID]; !ok {
		return schedule.Group{}, schedule.ErrTeacherNotFound
	}
	if g.ID == "" {
		g.ID = schedule.GroupID(uuid.NewString())
	}
	m.groups[g.ID] = g
	return g, nil
}

func (m *Memory) AddGroupMember(_ context.Context, groupID schedule.GroupID, studentID schedule.StudentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[groupID]; !ok {
		return schedule.ErrGroupNotFound
	}
	if _, ok := m.students[studentID]; !ok {
		return schedule.ErrStudentNotFound
	}
	for _, id := range m.members[groupID] {
		if id == studentID {
			return nil
		}
	}
	m.members[groupID] = append(m.members[groupID], studentID)
	return nil
}

func (m *Memory) SaveTemplate(_ context.Context, t schedule.ScheduleTemplate) (schedule.ScheduleTemplate, error) {
	if err := t.Validate(); err != nil {
		return schedule.ScheduleTemplate{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[t.GroupID]; !ok {
		return schedule.ScheduleTemplate{}, schedule.ErrGroupNotFound
	}
	if t.ID == "" {
		t.ID = schedule.TemplateID(uuid.NewString())
	}
	m.templates[t.ID] = t
	return t, nil
}

func (m *Memory) CreatePayment(_ context.Context, p finance.Payment) (finance.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[p.StudentID]; !ok {
		return finance.Payment{}, schedule.ErrStudentNotFound
	}
	if p.ID == "" {
		p.ID = finance.PaymentID(uuid.NewString())
	}
	m.payments = append(m.payments, p)
	return p, nil
}

func (m *Memory) CreateExpense(_ context.Context, e payroll.Expense) (payroll.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = payroll.ExpenseID(uuid.NewString())
	}
	m.expenses = append(m.expenses, e)
	return e, nil
}

func (m *Memory) ListExpenses(_ context.Context, category string, month schedule.Month) ([]payroll.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.Expense
	for _, e := range m.expenses {
		if category != "" && e.Category != category {
			continue
		}
		if !month.Contains(schedule.DayOf(e.Date)) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Reset wipes all data. Dev/scenario use only.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teachers = make(map[schedule.TeacherID]schedule.Teacher)
	m.students = make(map[schedule.StudentID]schedule.Student)
	m.groups = make(map[schedule.GroupID]schedule.Group)
	m.members = make(map[schedule.GroupID][]schedule.StudentID)
	m.templates = make(map[schedule.TemplateID]schedule.ScheduleTemplate)
	m.lessons = make(map[schedule.LessonID]*schedule.Lesson)
	m.salaries = nil
	m.expenses = nil
	m.payments = nil
	return nil
}

func (m *Memory) ListStudents(_ context.Context) ([]schedule.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// TIMELINE STORE
// =============================================================================

func (m *Memory) ListTemplates(_ context.Context, filter schedule.Filter) ([]schedule.ScheduleTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.ScheduleTemplate
	for _, t := range m.templates {
		g, ok := m.groups[t.GroupID]
		if !ok || !filter.MatchesGroup(g) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListGroups(_ context.Context) ([]schedule.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListLessons(_ context.Context, filter schedule.Filter, window schedule.Window) ([]schedule.Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.Lesson
	for _, l := range m.lessons {
		g, ok := m.groups[l.GroupID]
		if !ok || !filter.MatchesGroup(g) {
			continue
		}
		if !window.Contains(l.Day()) {
			continue
		}
		out = append(out, copyLesson(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

// =============================================================================
// LESSON STORE
// =============================================================================

func (m *Memory) GetLesson(_ context.Context, id schedule.LessonID) (schedule.Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lessons[id]
	if !ok {
		return schedule.Lesson{}, schedule.ErrLessonNotFound
	}
	return copyLesson(l), nil
}

func (m *Memory) CreateLesson(_ context.Context, lesson schedule.Lesson) (schedule.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[lesson.GroupID]; !ok {
		return schedule.Lesson{}, schedule.ErrGroupNotFound
	}
	lesson.ID = schedule.LessonID(uuid.NewString())
	stored := lesson
	m.lessons[lesson.ID] = &stored
	return lesson, nil
}

func (m *Memory) MaterializeLesson(_ context.Context, lesson schedule.Lesson, records []schedule.AttendanceRecord) (schedule.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[lesson.GroupID]; !ok {
		return schedule.Lesson{}, schedule.ErrGroupNotFound
	}

	// Uniqueness: one materialized lesson per (group, day).
	day := lesson.Day()
	for _, existing := range m.lessons {
		if existing.Materialized && existing.GroupID == lesson.GroupID && existing.Day().Equal(day) {
			return schedule.Lesson{}, &schedule.DuplicateLessonError{
				GroupID:  lesson.GroupID,
				Day:      day,
				Existing: existing.ID,
			}
		}
	}

	lesson.ID = schedule.LessonID(uuid.NewString())
	lesson.Attendance = attendanceRows(lesson.ID, records)
	stored := lesson
	m.lessons[lesson.ID] = &stored
	return copyLesson(&stored), nil
}

func (m *Memory) UpsertAttendance(_ context.Context, id schedule.LessonID, records []schedule.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lessons[id]
	if !ok {
		return schedule.ErrLessonNotFound
	}

	byStudent := make(map[schedule.StudentID]int, len(l.Attendance))
	for i, row := range l.Attendance {
		byStudent[row.StudentID] = i
	}
	for _, row := range attendanceRows(id, records) {
		if i, ok := byStudent[row.StudentID]; ok {
			l.Attendance[i] = row
			continue
		}
		l.Attendance = append(l.Attendance, row)
	}
	l.Completed = true
	return nil
}

// =============================================================================
// PAYROLL STORE
// =============================================================================

func (m *Memory) ListTeachers(_ context.Context) ([]schedule.Teacher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.Teacher, 0, len(m.teachers))
	for _, t := range m.teachers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetTeacher(_ context.Context, id schedule.TeacherID) (schedule.Teacher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.teachers[id]
	if !ok {
		return schedule.Teacher{}, schedule.ErrTeacherNotFound
	}
	return t, nil
}

func (m *Memory) GetSalary(_ context.Context, teacherID schedule.TeacherID, period schedule.Month) (payroll.Salary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.salaries {
		if s.TeacherID == teacherID && s.Period == period {
			return s, nil
		}
	}
	return payroll.Salary{}, schedule.ErrSalaryNotFound
}

func (m *Memory) CreateSalaryWithExpense(_ context.Context, salary payroll.Salary, expense payroll.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if salary.ID == "" {
		salary.ID = payroll.SalaryID(uuid.NewString())
	}
	if expense.ID == "" {
		expense.ID = payroll.ExpenseID(uuid.NewString())
	}
	// Single critical section: both rows appear together or not at all.
	m.salaries = append(m.salaries, salary)
	m.expenses = append(m.expenses, expense)
	return nil
}

func (m *Memory) UpdateSalaryAmount(_ context.Context, teacherID schedule.TeacherID, period schedule.Month, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.salaries {
		if m.salaries[i].TeacherID == teacherID && m.salaries[i].Period == period {
			m.salaries[i].Amount = amount
			return nil
		}
	}
	return schedule.ErrSalaryNotFound
}

func (m *Memory) DeleteSalary(_ context.Context, teacherID schedule.TeacherID, period schedule.Month) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.salaries {
		if m.salaries[i].TeacherID == teacherID && m.salaries[i].Period == period {
			m.salaries = append(m.salaries[:i], m.salaries[i+1:]...)
			return nil
		}
	}
	return schedule.ErrSalaryNotFound
}

// =============================================================================
// FINANCE STORE
// =============================================================================

func (m *Memory) SumPaidPayments(_ context.Context, month schedule.Month) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, p := range m.payments {
		if p.Status == finance.PaymentPaid && month.Contains(schedule.DayOf(p.Date)) {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (m *Memory) SumExpenses(_ context.Context, month schedule.Month) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.expenses {
		if month.Contains(schedule.DayOf(e.Date)) {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func (m *Memory) SumPaidPaymentsByStudents(_ context.Context, studentIDs []schedule.StudentID, month schedule.Month) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := make(map[schedule.StudentID]bool, len(studentIDs))
	for _, id := range studentIDs {
		members[id] = true
	}
	sum := decimal.Zero
	for _, p := range m.payments {
		if p.Status == finance.PaymentPaid && members[p.StudentID] && month.Contains(schedule.DayOf(p.Date)) {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (m *Memory) ListGroupMembers(_ context.Context, groupID schedule.GroupID) ([]schedule.StudentID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.groups[groupID]; !ok {
		return nil, schedule.ErrGroupNotFound
	}
	out := make([]schedule.StudentID, len(m.members[groupID]))
	copy(out, m.members[groupID])
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func attendanceRows(id schedule.LessonID, records []schedule.AttendanceRecord) []schedule.Attendance {
	rows := make([]schedule.Attendance, 0, len(records))
	for _, r := range records {
		rows = append(rows, schedule.Attendance{
			LessonID:  id,
			StudentID: r.StudentID,
			Status:    r.Status,
			Grade:     r.Grade,
			Comment:   r.Comment,
		})
	}
	return rows
}

func copyLesson(l *schedule.Lesson) schedule.Lesson {
	out := *l
	out.Attendance = make([]schedule.Attendance, len(l.Attendance))
	copy(out.Attendance, l.Attendance)
	return out
}
