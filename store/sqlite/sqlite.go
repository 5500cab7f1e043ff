/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements schedule.LessonStore, payroll.Store, and finance.Store
  using database/sql. The same patterns apply to PostgreSQL with minor
  dialect differences.

KEY TABLES:
  teachers, students, study_groups, group_members:  Directory
  templates:   Weekly recurrence rules (weekdays as a JSON int array)
  lessons:     Persisted occurrences
  attendance:  Per-student rows, unique per (lesson, student)
  salaries:    Payroll rows keyed by (teacher, period) lookups
  expenses:    Cash outflows (salary payments write here too)
  payments:    Student income records

INVARIANTS ENFORCED HERE:
  - idx_lessons_materialized_day: at most one MATERIALIZED lesson per
    (group, calendar day). Closes the concurrent-materialization race;
    the losing writer gets schedule.ErrDuplicateLesson.
  - attendance PRIMARY KEY (lesson_id, student_id): upserts replace.

ATOMIC WRITES:
  MaterializeLesson (lesson + attendance rows) and
  CreateSalaryWithExpense (salary + paired expense) each run in one
  database transaction. Partial state never persists.

CONCURRENCY:
  sync.RWMutex on top of WAL mode, the trade-off a single-process
  deployment needs. PostgreSQL would rely on database-level control.

SEE ALSO:
  - schedule/store.go: Interface contracts
  - schedule/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/finance"
	"github.com/tutoria/lesson-engine/payroll"
	"github.com/tutoria/lesson-engine/schedule"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teachers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS study_groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		teacher_id TEXT NOT NULL REFERENCES teachers(id),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_groups_teacher ON study_groups(teacher_id);

	CREATE TABLE IF NOT EXISTS group_members (
		group_id TEXT NOT NULL REFERENCES study_groups(id),
		student_id TEXT NOT NULL REFERENCES students(id),
		PRIMARY KEY (group_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES study_groups(id),
		weekdays TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT,
		valid_from TEXT NOT NULL,
		valid_to TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_templates_group ON templates(group_id);

	CREATE TABLE IF NOT EXISTS lessons (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES study_groups(id),
		starts_at TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		topic TEXT NOT NULL DEFAULT '',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		materialized BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lessons_group_date ON lessons(group_id, starts_at);
	CREATE INDEX IF NOT EXISTS idx_lessons_starts_at ON lessons(starts_at);

	-- CRITICAL: one materialized lesson per (group, calendar day).
	-- Two teachers racing to materialize the same virtual occurrence
	-- must not both create a lesson.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_lessons_materialized_day
		ON lessons(group_id, date(starts_at))
		WHERE materialized = 1;

	CREATE TABLE IF NOT EXISTS attendance (
		lesson_id TEXT NOT NULL REFERENCES lessons(id),
		student_id TEXT NOT NULL REFERENCES students(id),
		status TEXT NOT NULL,
		grade INTEGER,
		comment TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (lesson_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS salaries (
		id TEXT PRIMARY KEY,
		teacher_id TEXT NOT NULL REFERENCES teachers(id),
		period TEXT NOT NULL,
		amount TEXT NOT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_salaries_teacher_period ON salaries(teacher_id, period);

	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		amount TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date);
	CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES students(id),
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		type TEXT NOT NULL,
		period TEXT NOT NULL,
		date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_student ON payments(student_id);
	CREATE INDEX IF NOT EXISTS idx_payments_status_date ON payments(status, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) SaveTeacher(ctx context.Context, t schedule.Teacher) (schedule.Teacher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = schedule.TeacherID(uuid.NewString())
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teachers (id, name, hourly_rate, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, hourly_rate = excluded.hourly_rate`,
		t.ID, t.Name, t.HourlyRate.String(), t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return schedule.Teacher{}, fmt.Errorf("failed to save teacher: %w", err)
	}
	return t, nil
}

func (s *Store) GetTeacher(ctx context.Context, id schedule.TeacherID) (schedule.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, hourly_rate, created_at FROM teachers WHERE id = ?`, id)
	t, err := scanTeacher(row)
	if err == sql.ErrNoRows {
		return schedule.Teacher{}, schedule.ErrTeacherNotFound
	}
	return t, err
}

func (s *Store) ListTeachers(ctx context.Context) ([]schedule.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, hourly_rate, created_at FROM teachers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teachers: %w", err)
	}
	defer rows.Close()

	var out []schedule.Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) SaveStudent(ctx context.Context, st schedule.Student) (schedule.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = schedule.StudentID(uuid.NewString())
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (id, name, active, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, active = excluded.active`,
		st.ID, st.Name, st.Active, st.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return schedule.Student{}, fmt.Errorf("failed to save student: %w", err)
	}
	return st, nil
}

func (s *Store) ListStudents(ctx context.Context) ([]schedule.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, active, created_at FROM students ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var out []schedule.Student
	for rows.Next() {
		var st schedule.Student
		var createdAt string
		if err := rows.Scan(&st.ID, &st.Name, &st.Active, &createdAt); err != nil {
			return nil, err
		}
		st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) SaveGroup(ctx context.Context, g schedule.Group) (schedule.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mustExist(ctx, "teachers", string(g.TeacherID), schedule.ErrTeacherNotFound); err != nil {
		return schedule.Group{}, err
	}

	if g.ID == "" {
		g.ID = schedule.GroupID(uuid.NewString())
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO study_groups (id, name, teacher_id, active, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, teacher_id = excluded.teacher_id, active = excluded.active`,
		g.ID, g.Name, g.TeacherID, g.Active, g.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return schedule.Group{}, fmt.Errorf("failed to save group: %w", err)
	}
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]schedule.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, teacher_id, active, created_at FROM study_groups ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var out []schedule.Group
	for rows.Next() {
		var g schedule.Group
		var createdAt string
		if err := rows.Scan(&g.ID, &g.Name, &g.TeacherID, &g.Active, &createdAt); err != nil {
			return nil, err
		}
		g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) AddGroupMember(ctx context.Context, groupID schedule.GroupID, studentID schedule.StudentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mustExist(ctx, "study_groups", string(groupID), schedule.ErrGroupNotFound); err != nil {
		return err
	}
	if err := s.mustExist(ctx, "students", string(studentID), schedule.ErrStudentNotFound); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, student_id) VALUES (?, ?)
		ON CONFLICT(group_id, student_id) DO NOTHING`, groupID, studentID)
	return err
}

func (s *Store) ListGroupMembers(ctx context.Context, groupID schedule.GroupID) ([]schedule.StudentID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.mustExist(ctx, "study_groups", string(groupID), schedule.ErrGroupNotFound); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id FROM group_members WHERE group_id = ? ORDER BY student_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var out []schedule.StudentID
	for rows.Next() {
		var id schedule.StudentID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// =============================================================================
// TEMPLATES
// =============================================================================

func (s *Store) SaveTemplate(ctx context.Context, t schedule.ScheduleTemplate) (schedule.ScheduleTemplate, error) {
	if err := t.Validate(); err != nil {
		return schedule.ScheduleTemplate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mustExist(ctx, "study_groups", string(t.GroupID), schedule.ErrGroupNotFound); err != nil {
		return schedule.ScheduleTemplate{}, err
	}

	if t.ID == "" {
		t.ID = schedule.TemplateID(uuid.NewString())
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	weekdaysJSON, err := json.Marshal(t.Weekdays)
	if err != nil {
		return schedule.ScheduleTemplate{}, err
	}

	var endTime sql.NullString
	if !t.End.IsZero() {
		endTime = sql.NullString{String: t.End.String(), Valid: true}
	}
	var validTo sql.NullString
	if t.ValidTo != nil {
		validTo = sql.NullString{String: t.ValidTo.String(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, group_id, weekdays, start_time, end_time, valid_from, valid_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			group_id = excluded.group_id, weekdays = excluded.weekdays,
			start_time = excluded.start_time, end_time = excluded.end_time,
			valid_from = excluded.valid_from, valid_to = excluded.valid_to`,
		t.ID, t.GroupID, string(weekdaysJSON), t.Start.String(), endTime,
		t.ValidFrom.String(), validTo, t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return schedule.ScheduleTemplate{}, fmt.Errorf("failed to save template: %w", err)
	}
	return t, nil
}

func (s *Store) ListTemplates(ctx context.Context, filter schedule.Filter) ([]schedule.ScheduleTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT t.id, t.group_id, t.weekdays, t.start_time, t.end_time, t.valid_from, t.valid_to, t.created_at
		FROM templates t
		JOIN study_groups g ON g.id = t.group_id`
	where, args := filterClause(filter)
	query += where + " ORDER BY t.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var out []schedule.ScheduleTemplate
	for rows.Next() {
		var t schedule.ScheduleTemplate
		var weekdaysJSON, startTime, validFrom, createdAt string
		var endTime, validTo sql.NullString
		if err := rows.Scan(&t.ID, &t.GroupID, &weekdaysJSON, &startTime, &endTime,
			&validFrom, &validTo, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(weekdaysJSON), &t.Weekdays); err != nil {
			return nil, fmt.Errorf("corrupt weekdays for template %s: %w", t.ID, err)
		}
		if t.Start, err = schedule.ParseClock(startTime); err != nil {
			return nil, err
		}
		if endTime.Valid {
			if t.End, err = schedule.ParseClock(endTime.String); err != nil {
				return nil, err
			}
		}
		if t.ValidFrom, err = schedule.ParseDay(validFrom); err != nil {
			return nil, err
		}
		if validTo.Valid {
			d, err := schedule.ParseDay(validTo.String)
			if err != nil {
				return nil, err
			}
			t.ValidTo = &d
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// LESSONS
// =============================================================================

func (s *Store) GetLesson(ctx context.Context, id schedule.LessonID) (schedule.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, starts_at, duration_minutes, topic, completed, materialized, created_at
		FROM lessons WHERE id = ?`, id)

	l, err := scanLesson(row)
	if err == sql.ErrNoRows {
		return schedule.Lesson{}, schedule.ErrLessonNotFound
	}
	if err != nil {
		return schedule.Lesson{}, err
	}

	attendance, err := s.loadAttendance(ctx, []schedule.LessonID{l.ID})
	if err != nil {
		return schedule.Lesson{}, err
	}
	l.Attendance = attendance[l.ID]
	return l, nil
}

func (s *Store) ListLessons(ctx context.Context, filter schedule.Filter, window schedule.Window) ([]schedule.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT l.id, l.group_id, l.starts_at, l.duration_minutes, l.topic, l.completed, l.materialized, l.created_at
		FROM lessons l
		JOIN study_groups g ON g.id = l.group_id`
	where, args := filterClause(filter)
	// Window is inclusive through end-of-day on To.
	if where == "" {
		where = " WHERE "
	} else {
		where += " AND "
	}
	where += "l.starts_at >= ? AND l.starts_at < ?"
	args = append(args,
		window.From.Time().Format(time.RFC3339),
		window.To.AddDays(1).Time().Format(time.RFC3339))

	rows, err := s.db.QueryContext(ctx, query+where+" ORDER BY l.starts_at ASC, l.created_at ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var out []schedule.Lesson
	var ids []schedule.LessonID
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
		ids = append(ids, l.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	attendance, err := s.loadAttendance(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Attendance = attendance[out[i].ID]
	}
	return out, nil
}

func (s *Store) CreateLesson(ctx context.Context, lesson schedule.Lesson) (schedule.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mustExist(ctx, "study_groups", string(lesson.GroupID), schedule.ErrGroupNotFound); err != nil {
		return schedule.Lesson{}, err
	}

	lesson.ID = schedule.LessonID(uuid.NewString())
	lesson.CreatedAt = time.Now().UTC()
	if err := insertLesson(ctx, s.db, lesson); err != nil {
		return schedule.Lesson{}, err
	}
	return lesson, nil
}

// MaterializeLesson writes the lesson row and every attendance row in
// one transaction. Either all rows persist or none do.
func (s *Store) MaterializeLesson(ctx context.Context, lesson schedule.Lesson, records []schedule.AttendanceRecord) (schedule.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mustExist(ctx, "study_groups", string(lesson.GroupID), schedule.ErrGroupNotFound); err != nil {
		return schedule.Lesson{}, err
	}

	lesson.ID = schedule.LessonID(uuid.NewString())
	lesson.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return schedule.Lesson{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertLesson(ctx, tx, lesson); err != nil {
		if isUniqueConstraintError(err) {
			return schedule.Lesson{}, &schedule.DuplicateLessonError{
				GroupID: lesson.GroupID,
				Day:     lesson.Day(),
			}
		}
		return schedule.Lesson{}, err
	}

	lesson.Attendance = nil
	for _, r := range records {
		if err := upsertAttendanceRow(ctx, tx, lesson.ID, r); err != nil {
			return schedule.Lesson{}, err
		}
		lesson.Attendance = append(lesson.Attendance, schedule.Attendance{
			LessonID:  lesson.ID,
			StudentID: r.StudentID,
			Status:    r.Status,
			Grade:     r.Grade,
			Comment:   r.Comment,
		})
	}

	if err := tx.Commit(); err != nil {
		return schedule.Lesson{}, fmt.Errorf("failed to commit materialization: %w", err)
	}
	return lesson, nil
}

func (s *Store) UpsertAttendance(ctx context.Context, id schedule.LessonID, records []schedule.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mustExist(ctx, "lessons", string(id), schedule.ErrLessonNotFound); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if err := upsertAttendanceRow(ctx, tx, id, r); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE lessons SET completed = TRUE WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// PAYROLL
// =============================================================================

func (s *Store) GetSalary(ctx context.Context, teacherID schedule.TeacherID, period schedule.Month) (payroll.Salary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, teacher_id, period, amount, paid, created_at
		FROM salaries WHERE teacher_id = ? AND period = ?
		ORDER BY created_at ASC LIMIT 1`, teacherID, period.String())

	var sal payroll.Salary
	var periodStr, amount, createdAt string
	err := row.Scan(&sal.ID, &sal.TeacherID, &periodStr, &amount, &sal.Paid, &createdAt)
	if err == sql.ErrNoRows {
		return payroll.Salary{}, schedule.ErrSalaryNotFound
	}
	if err != nil {
		return payroll.Salary{}, err
	}
	if sal.Period, err = schedule.ParseMonth(periodStr); err != nil {
		return payroll.Salary{}, err
	}
	sal.Amount = mustDecimal(amount)
	sal.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sal, nil
}

// CreateSalaryWithExpense writes the paired rows in one transaction.
func (s *Store) CreateSalaryWithExpense(ctx context.Context, salary payroll.Salary, expense payroll.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if salary.ID == "" {
		salary.ID = payroll.SalaryID(uuid.NewString())
	}
	if expense.ID == "" {
		expense.ID = payroll.ExpenseID(uuid.NewString())
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO salaries (id, teacher_id, period, amount, paid, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		salary.ID, salary.TeacherID, salary.Period.String(), salary.Amount.String(), salary.Paid, now)
	if err != nil {
		return fmt.Errorf("failed to insert salary: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (id, amount, category, description, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Amount.String(), expense.Category, expense.Description,
		expense.Date.UTC().Format(time.RFC3339), now)
	if err != nil {
		return fmt.Errorf("failed to insert paired expense: %w", err)
	}

	return tx.Commit()
}

func (s *Store) UpdateSalaryAmount(ctx context.Context, teacherID schedule.TeacherID, period schedule.Month, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE salaries SET amount = ? WHERE teacher_id = ? AND period = ?`,
		amount.String(), teacherID, period.String())
	if err != nil {
		return err
	}
	return requireRows(res, schedule.ErrSalaryNotFound)
}

func (s *Store) DeleteSalary(ctx context.Context, teacherID schedule.TeacherID, period schedule.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM salaries WHERE teacher_id = ? AND period = ?`, teacherID, period.String())
	if err != nil {
		return err
	}
	return requireRows(res, schedule.ErrSalaryNotFound)
}

// =============================================================================
// FINANCE
// =============================================================================

func (s *Store) CreateExpense(ctx context.Context, e payroll.Expense) (payroll.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = payroll.ExpenseID(uuid.NewString())
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, amount, category, description, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Amount.String(), e.Category, e.Description,
		e.Date.UTC().Format(time.RFC3339), e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return payroll.Expense{}, fmt.Errorf("failed to insert expense: %w", err)
	}
	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context, category string, month schedule.Month) ([]payroll.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := monthBounds(month)
	query := `SELECT id, amount, category, description, date, created_at FROM expenses
		WHERE date >= ? AND date < ?`
	args := []any{from, to}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}

	rows, err := s.db.QueryContext(ctx, query+` ORDER BY date ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var out []payroll.Expense
	for rows.Next() {
		var e payroll.Expense
		var amount, date, createdAt string
		if err := rows.Scan(&e.ID, &amount, &e.Category, &e.Description, &date, &createdAt); err != nil {
			return nil, err
		}
		e.Amount = mustDecimal(amount)
		e.Date, _ = time.Parse(time.RFC3339, date)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreatePayment(ctx context.Context, p finance.Payment) (finance.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mustExist(ctx, "students", string(p.StudentID), schedule.ErrStudentNotFound); err != nil {
		return finance.Payment{}, err
	}

	if p.ID == "" {
		p.ID = finance.PaymentID(uuid.NewString())
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, student_id, amount, status, type, period, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.StudentID, p.Amount.String(), p.Status, p.Type, p.Period.String(),
		p.Date.UTC().Format(time.RFC3339), p.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return finance.Payment{}, fmt.Errorf("failed to insert payment: %w", err)
	}
	return p, nil
}

func (s *Store) SumPaidPayments(ctx context.Context, month schedule.Month) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := monthBounds(month)
	return s.sumColumn(ctx, `
		SELECT COALESCE(SUM(CAST(amount AS REAL)), 0) FROM payments
		WHERE status = ? AND date >= ? AND date < ?`,
		finance.PaymentPaid, from, to)
}

func (s *Store) SumExpenses(ctx context.Context, month schedule.Month) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := monthBounds(month)
	return s.sumColumn(ctx, `
		SELECT COALESCE(SUM(CAST(amount AS REAL)), 0) FROM expenses
		WHERE date >= ? AND date < ?`, from, to)
}

func (s *Store) SumPaidPaymentsByStudents(ctx context.Context, studentIDs []schedule.StudentID, month schedule.Month) (decimal.Decimal, error) {
	if len(studentIDs) == 0 {
		return decimal.Zero, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := monthBounds(month)
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(studentIDs)), ",")

	args := []any{finance.PaymentPaid, from, to}
	for _, id := range studentIDs {
		args = append(args, id)
	}

	return s.sumColumn(ctx, fmt.Sprintf(`
		SELECT COALESCE(SUM(CAST(amount AS REAL)), 0) FROM payments
		WHERE status = ? AND date >= ? AND date < ? AND student_id IN (%s)`, placeholders),
		args...)
}

// Reset wipes all data. Dev/scenario use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"attendance", "lessons", "templates", "group_members",
		"payments", "expenses", "salaries", "study_groups", "students", "teachers",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanTeacher(row rowScanner) (schedule.Teacher, error) {
	var t schedule.Teacher
	var rate, createdAt string
	if err := row.Scan(&t.ID, &t.Name, &rate, &createdAt); err != nil {
		return schedule.Teacher{}, err
	}
	t.HourlyRate = mustDecimal(rate)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}

func scanLesson(row rowScanner) (schedule.Lesson, error) {
	var l schedule.Lesson
	var startsAt, createdAt string
	if err := row.Scan(&l.ID, &l.GroupID, &startsAt, &l.DurationMinutes, &l.Topic,
		&l.Completed, &l.Materialized, &createdAt); err != nil {
		return schedule.Lesson{}, err
	}
	var err error
	if l.StartsAt, err = time.Parse(time.RFC3339, startsAt); err != nil {
		return schedule.Lesson{}, fmt.Errorf("corrupt starts_at for lesson %s: %w", l.ID, err)
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return l, nil
}

func insertLesson(ctx context.Context, db execer, l schedule.Lesson) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO lessons (id, group_id, starts_at, duration_minutes, topic, completed, materialized, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.GroupID, l.StartsAt.UTC().Format(time.RFC3339), l.DurationMinutes,
		l.Topic, l.Completed, l.Materialized, l.CreatedAt.Format(time.RFC3339))
	return err
}

func upsertAttendanceRow(ctx context.Context, db execer, id schedule.LessonID, r schedule.AttendanceRecord) error {
	var grade sql.NullInt64
	if r.Grade != nil {
		grade = sql.NullInt64{Int64: int64(*r.Grade), Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO attendance (lesson_id, student_id, status, grade, comment)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(lesson_id, student_id) DO UPDATE SET
			status = excluded.status, grade = excluded.grade, comment = excluded.comment`,
		id, r.StudentID, r.Status, grade, r.Comment)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

func (s *Store) loadAttendance(ctx context.Context, ids []schedule.LessonID) (map[schedule.LessonID][]schedule.Attendance, error) {
	out := make(map[schedule.LessonID][]schedule.Attendance, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT lesson_id, student_id, status, grade, comment
		FROM attendance WHERE lesson_id IN (%s)
		ORDER BY lesson_id, student_id`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a schedule.Attendance
		var grade sql.NullInt64
		if err := rows.Scan(&a.LessonID, &a.StudentID, &a.Status, &grade, &a.Comment); err != nil {
			return nil, err
		}
		if grade.Valid {
			g := int(grade.Int64)
			a.Grade = &g
		}
		out[a.LessonID] = append(out[a.LessonID], a)
	}
	return out, rows.Err()
}

// filterClause builds the WHERE fragment for queries joined against
// study_groups aliased as g.
func filterClause(filter schedule.Filter) (string, []any) {
	var conds []string
	var args []any
	if filter.GroupID != "" {
		conds = append(conds, "g.id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.TeacherID != "" {
		conds = append(conds, "g.teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) sumColumn(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var sum float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(sum), nil
}

func (s *Store) mustExist(ctx context.Context, table, id string, notFound error) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table), id).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return nil
}

func monthBounds(m schedule.Month) (string, string) {
	w := m.Window()
	return w.From.Time().Format(time.RFC3339), w.To.AddDays(1).Time().Format(time.RFC3339)
}

func requireRows(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
