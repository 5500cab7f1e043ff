/*
handlers.go - HTTP API handlers for the lesson scheduling engine

PURPOSE:
  Exposes the scheduling, attendance, payroll and finance engines via
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic.

ENDPOINTS:
  Schedule:
    GET    /api/schedule               Unified timeline (virtual + real)
    POST   /api/lessons                Schedule an explicit lesson
    POST   /api/attendance             Record attendance (materializes)

  Directory:
    GET/POST /api/teachers             Teachers
    GET/POST /api/students             Students
    GET/POST /api/groups               Study groups
    POST   /api/groups/{id}/members    Group membership
    GET/POST /api/templates            Recurrence rules

  Payroll:
    GET    /api/payroll                Monthly report, all teachers
    GET    /api/payroll/{id}           Monthly report, one teacher
    POST   /api/payroll/payments       Record salary payment
    PUT    /api/payroll/payments       Correct salary amount
    DELETE /api/payroll/payments       Delete salary record

  Finance:
    POST   /api/payments               Record student payment
    GET/POST /api/expenses             Expenses
    GET    /api/finance/summary        Trailing monthly series
    GET    /api/finance/groups         Per-group profitability

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario

ERROR HANDLING:
  Domain errors map to HTTP status via the schedule error helpers:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate materialization)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/finance"
	"github.com/tutoria/lesson-engine/payroll"
	"github.com/tutoria/lesson-engine/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence surface the API needs. Both store/sqlite
// and schedule/store (memory) satisfy it.
type Store interface {
	schedule.LessonStore
	payroll.Store
	finance.Store

	SaveTeacher(ctx context.Context, t schedule.Teacher) (schedule.Teacher, error)
	SaveStudent(ctx context.Context, s schedule.Student) (schedule.Student, error)
	ListStudents(ctx context.Context) ([]schedule.Student, error)
	SaveGroup(ctx context.Context, g schedule.Group) (schedule.Group, error)
	AddGroupMember(ctx context.Context, groupID schedule.GroupID, studentID schedule.StudentID) error
	SaveTemplate(ctx context.Context, t schedule.ScheduleTemplate) (schedule.ScheduleTemplate, error)
	CreatePayment(ctx context.Context, p finance.Payment) (finance.Payment, error)
	CreateExpense(ctx context.Context, e payroll.Expense) (payroll.Expense, error)
	ListExpenses(ctx context.Context, category string, month schedule.Month) ([]payroll.Expense, error)
	Reset(ctx context.Context) error
}

var validate = validator.New()

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        Store
	Engine       *schedule.Engine
	Materializer *schedule.Materializer
	Payroll      *payroll.Aggregator
	Finance      *finance.Aggregator

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store) *Handler {
	return &Handler{
		Store:        store,
		Engine:       schedule.NewEngine(store),
		Materializer: schedule.NewMaterializer(store),
		Payroll:      payroll.NewAggregator(store),
		Finance:      finance.NewAggregator(store),
	}
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule returns the unified timeline for a date window.
// GET /api/schedule?from=YYYY-MM-DD&to=YYYY-MM-DD[&teacher_id=][&group_id=]
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	from, err := schedule.ParseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := schedule.ParseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	filter := schedule.Filter{
		TeacherID: schedule.TeacherID(r.URL.Query().Get("teacher_id")),
		GroupID:   schedule.GroupID(r.URL.Query().Get("group_id")),
	}

	timeline, err := h.Engine.Timeline(r.Context(), filter, schedule.Window{From: from, To: to})
	if err != nil {
		writeDomainError(w, "Failed to build schedule", err)
		return
	}

	dtos := make([]OccurrenceDTO, len(timeline))
	for i, o := range timeline {
		dtos[i] = toOccurrenceDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLesson schedules an explicit one-off lesson.
// POST /api/lessons
func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	day, err := schedule.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	startsAt := day.Time()
	if req.Time != "" {
		clock, err := schedule.ParseClock(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid time (use HH:MM)", err)
			return
		}
		startsAt = day.At(clock)
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = schedule.DefaultDurationMinutes
	}

	lesson, err := h.Store.CreateLesson(r.Context(), schedule.Lesson{
		GroupID:         schedule.GroupID(req.GroupID),
		StartsAt:        startsAt,
		DurationMinutes: duration,
		Topic:           req.Topic,
	})
	if err != nil {
		writeDomainError(w, "Failed to create lesson", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLessonDTO(lesson))
}

// RecordAttendance persists attendance for a real or virtual occurrence.
// POST /api/attendance
func (h *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req RecordAttendanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	in := schedule.MaterializeInput{
		LessonID: schedule.LessonID(req.LessonID),
		GroupID:  schedule.GroupID(req.GroupID),
	}
	if req.LessonID == "" {
		if req.Date == "" {
			writeError(w, http.StatusBadRequest, "Either lesson_id or group_id+date is required", nil)
			return
		}
		day, err := schedule.ParseDay(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		in.StartsAt = day.Time()
		if req.Time != "" {
			clock, err := schedule.ParseClock(req.Time)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid time (use HH:MM)", err)
				return
			}
			in.StartsAt = day.At(clock)
		}
	}

	for _, rec := range req.Records {
		in.Records = append(in.Records, schedule.AttendanceRecord{
			StudentID: schedule.StudentID(rec.StudentID),
			Status:    schedule.AttendanceStatus(rec.Status),
			Grade:     rec.Grade,
			Comment:   rec.Comment,
		})
	}

	lesson, err := h.Materializer.RecordAttendance(r.Context(), in)
	if err != nil {
		writeDomainError(w, "Failed to record attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, toLessonDTO(lesson))
}

// =============================================================================
// DIRECTORY HANDLERS
// =============================================================================

// ListTeachers returns all teachers.
func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.Store.ListTeachers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list teachers", err)
		return
	}
	dtos := make([]TeacherDTO, len(teachers))
	for i, t := range teachers {
		dtos[i] = toTeacherDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTeacher returns a single teacher.
func (h *Handler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	t, err := h.Store.GetTeacher(r.Context(), schedule.TeacherID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get teacher", err)
		return
	}
	writeJSON(w, http.StatusOK, toTeacherDTO(t))
}

// CreateTeacher creates a new teacher.
func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req CreateTeacherRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	t, err := h.Store.SaveTeacher(r.Context(), schedule.Teacher{
		ID:         schedule.TeacherID(req.ID),
		Name:       req.Name,
		HourlyRate: decimal.NewFromFloat(req.HourlyRate),
	})
	if err != nil {
		writeDomainError(w, "Failed to create teacher", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeacherDTO(t))
}

// ListStudents returns all students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}
	dtos := make([]StudentDTO, len(students))
	for i, s := range students {
		dtos[i] = toStudentDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStudent creates a new student.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	s, err := h.Store.SaveStudent(r.Context(), schedule.Student{
		ID:     schedule.StudentID(req.ID),
		Name:   req.Name,
		Active: true,
	})
	if err != nil {
		writeDomainError(w, "Failed to create student", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentDTO(s))
}

// ListGroups returns all groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Store.ListGroups(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list groups", err)
		return
	}
	dtos := make([]GroupDTO, len(groups))
	for i, g := range groups {
		dtos[i] = toGroupDTO(g)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateGroup creates a new study group.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	g, err := h.Store.SaveGroup(r.Context(), schedule.Group{
		ID:        schedule.GroupID(req.ID),
		Name:      req.Name,
		TeacherID: schedule.TeacherID(req.TeacherID),
		Active:    true,
	})
	if err != nil {
		writeDomainError(w, "Failed to create group", err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupDTO(g))
}

// AddGroupMember adds a student to a group.
// POST /api/groups/{id}/members
func (h *Handler) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	groupID := schedule.GroupID(chi.URLParam(r, "id"))
	if err := h.Store.AddGroupMember(r.Context(), groupID, schedule.StudentID(req.StudentID)); err != nil {
		writeDomainError(w, "Failed to add member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTemplates returns recurrence rules, optionally filtered.
// GET /api/templates[?group_id=][&teacher_id=]
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	filter := schedule.Filter{
		TeacherID: schedule.TeacherID(r.URL.Query().Get("teacher_id")),
		GroupID:   schedule.GroupID(r.URL.Query().Get("group_id")),
	}
	templates, err := h.Store.ListTemplates(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list templates", err)
		return
	}
	dtos := make([]TemplateDTO, len(templates))
	for i, t := range templates {
		dtos[i] = toTemplateDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTemplate creates a recurrence rule.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	weekdays := make([]time.Weekday, len(req.Weekdays))
	for i, wd := range req.Weekdays {
		weekdays[i] = time.Weekday(wd)
	}
	start, err := schedule.ParseClock(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start time (use HH:MM)", err)
		return
	}
	var end schedule.ClockTime
	if req.End != "" {
		if end, err = schedule.ParseClock(req.End); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end time (use HH:MM)", err)
			return
		}
	}
	validFrom, err := schedule.ParseDay(req.ValidFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid valid_from (use YYYY-MM-DD)", err)
		return
	}
	var validTo *schedule.Day
	if req.ValidTo != nil {
		d, err := schedule.ParseDay(*req.ValidTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid valid_to (use YYYY-MM-DD)", err)
			return
		}
		validTo = &d
	}

	t, err := h.Store.SaveTemplate(r.Context(), schedule.ScheduleTemplate{
		GroupID:   schedule.GroupID(req.GroupID),
		Weekdays:  schedule.NewWeekdaySet(weekdays...),
		Start:     start,
		End:       end,
		ValidFrom: validFrom,
		ValidTo:   validTo,
	})
	if err != nil {
		writeDomainError(w, "Failed to create template", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateDTO(t))
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// GetPayrollReport returns the monthly report for all teachers.
// GET /api/payroll[?period=YYYY-MM]
func (h *Handler) GetPayrollReport(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	reports, err := h.Payroll.Report(r.Context(), period)
	if err != nil {
		writeDomainError(w, "Failed to build payroll report", err)
		return
	}
	dtos := make([]TeacherReportDTO, len(reports))
	for i, rep := range reports {
		dtos[i] = toTeacherReportDTO(rep)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTeacherPayroll returns the monthly report for one teacher.
// GET /api/payroll/{id}[?period=YYYY-MM]
func (h *Handler) GetTeacherPayroll(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	report, err := h.Payroll.ReportFor(r.Context(), schedule.TeacherID(chi.URLParam(r, "id")), period)
	if err != nil {
		writeDomainError(w, "Failed to build payroll report", err)
		return
	}
	writeJSON(w, http.StatusOK, toTeacherReportDTO(report))
}

// PaySalary records a salary payment with its paired expense.
// POST /api/payroll/payments
func (h *Handler) PaySalary(w http.ResponseWriter, r *http.Request) {
	var req PaySalaryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	period, err := schedule.ParseMonth(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}

	salary, err := h.Payroll.Pay(r.Context(), payroll.PayInput{
		TeacherID: schedule.TeacherID(req.TeacherID),
		Period:    period,
		Amount:    decimal.NewFromFloat(req.Amount),
	})
	if err != nil {
		writeDomainError(w, "Failed to record salary payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSalaryDTO(salary))
}

// UpdateSalary corrects a recorded salary amount.
// PUT /api/payroll/payments
func (h *Handler) UpdateSalary(w http.ResponseWriter, r *http.Request) {
	var req UpdateSalaryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	period, err := schedule.ParseMonth(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}

	err = h.Payroll.UpdateAmount(r.Context(), schedule.TeacherID(req.TeacherID), period,
		decimal.NewFromFloat(req.Amount))
	if err != nil {
		writeDomainError(w, "Failed to update salary", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSalary removes a recorded salary payment.
// DELETE /api/payroll/payments?teacher_id=&period=YYYY-MM
func (h *Handler) DeleteSalary(w http.ResponseWriter, r *http.Request) {
	teacherID := schedule.TeacherID(r.URL.Query().Get("teacher_id"))
	if teacherID == "" {
		writeError(w, http.StatusBadRequest, "teacher_id is required", nil)
		return
	}
	period, err := schedule.ParseMonth(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}

	if err := h.Payroll.Delete(r.Context(), teacherID, period); err != nil {
		writeDomainError(w, "Failed to delete salary", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// FINANCE HANDLERS
// =============================================================================

// CreatePayment records a student payment.
// POST /api/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	period, err := schedule.ParseMonth(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}
	date := time.Now().UTC()
	if req.Date != "" {
		day, err := schedule.ParseDay(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		date = day.Time()
	}

	p, err := h.Store.CreatePayment(r.Context(), finance.Payment{
		StudentID: schedule.StudentID(req.StudentID),
		Amount:    decimal.NewFromFloat(req.Amount),
		Status:    finance.PaymentStatus(req.Status),
		Type:      finance.PaymentType(req.Type),
		Period:    period,
		Date:      date,
	})
	if err != nil {
		writeDomainError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

// CreateExpense records an expense.
// POST /api/expenses
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	date := time.Now().UTC()
	if req.Date != "" {
		day, err := schedule.ParseDay(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		date = day.Time()
	}

	e, err := h.Store.CreateExpense(r.Context(), payroll.Expense{
		Amount:      decimal.NewFromFloat(req.Amount),
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		writeDomainError(w, "Failed to record expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(e))
}

// ListExpenses returns expenses for a month, optionally by category.
// GET /api/expenses[?month=YYYY-MM][&category=]
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	month := schedule.CurrentMonth()
	if v := r.URL.Query().Get("month"); v != "" {
		var err error
		if month, err = schedule.ParseMonth(v); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
			return
		}
	}

	expenses, err := h.Store.ListExpenses(r.Context(), r.URL.Query().Get("category"), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expenses", err)
		return
	}
	dtos := make([]ExpenseDTO, len(expenses))
	for i, e := range expenses {
		dtos[i] = toExpenseDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetFinanceSummary returns the trailing monthly income/expense series.
// GET /api/finance/summary[?months=N]
func (h *Handler) GetFinanceSummary(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		n := 0
		for _, c := range v {
			if c < '0' || c > '9' {
				n = -1
				break
			}
			n = n*10 + int(c-'0')
		}
		if n < 1 {
			writeError(w, http.StatusBadRequest, "months must be a positive integer", nil)
			return
		}
		months = n
	}

	series, err := h.Finance.MonthlySeries(r.Context(), schedule.CurrentMonth(), months)
	if err != nil {
		writeDomainError(w, "Failed to build finance summary", err)
		return
	}
	dtos := make([]MonthlyReportDTO, len(series))
	for i, rep := range series {
		dtos[i] = toMonthlyReportDTO(rep)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetGroupProfitability returns current-month profitability per group.
// GET /api/finance/groups
func (h *Handler) GetGroupProfitability(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Finance.GroupSnapshot(r.Context(), schedule.CurrentMonth())
	if err != nil {
		writeDomainError(w, "Failed to build group snapshot", err)
		return
	}
	dtos := make([]GroupProfitDTO, len(snapshot))
	for i, p := range snapshot {
		dtos[i] = toGroupProfitDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func parsePeriod(w http.ResponseWriter, r *http.Request) (schedule.Month, bool) {
	v := r.URL.Query().Get("period")
	if v == "" {
		return schedule.CurrentMonth(), true
	}
	period, err := schedule.ParseMonth(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return schedule.Month{}, false
	}
	return period, true
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case schedule.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case schedule.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case schedule.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
