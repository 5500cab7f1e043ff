/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through the shared validator before touching domain logic. Domain
  rules (template windows, attendance status, payment amounts) are
  enforced again in the domain packages.

MONEY:
  Amounts cross the wire as float64, converted from decimal at the
  boundary. Internal arithmetic stays decimal.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Route wiring
*/
package api

import (
	"time"

	"github.com/tutoria/lesson-engine/finance"
	"github.com/tutoria/lesson-engine/payroll"
	"github.com/tutoria/lesson-engine/schedule"
)

// =============================================================================
// DIRECTORY TYPES
// =============================================================================

// TeacherDTO represents a teacher in API responses.
type TeacherDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// CreateTeacherRequest is the request to create a teacher.
type CreateTeacherRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name" validate:"required"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
}

// StudentDTO represents a student in API responses.
type StudentDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateStudentRequest is the request to create a student.
type CreateStudentRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

// GroupDTO represents a study group in API responses.
type GroupDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeacherID string `json:"teacher_id"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateGroupRequest is the request to create a group.
type CreateGroupRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

// AddMemberRequest adds a student to a group.
type AddMemberRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// =============================================================================
// SCHEDULE TYPES
// =============================================================================

// TemplateDTO represents a recurrence rule in API responses.
type TemplateDTO struct {
	ID        string  `json:"id"`
	GroupID   string  `json:"group_id"`
	Weekdays  []int   `json:"weekdays"`
	Start     string  `json:"start"`
	End       string  `json:"end,omitempty"`
	ValidFrom string  `json:"valid_from"`
	ValidTo   *string `json:"valid_to,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// CreateTemplateRequest is the request to create a recurrence rule.
type CreateTemplateRequest struct {
	GroupID   string  `json:"group_id" validate:"required"`
	Weekdays  []int   `json:"weekdays" validate:"required,min=1,dive,gte=0,lte=6"`
	Start     string  `json:"start" validate:"required"`
	End       string  `json:"end"`
	ValidFrom string  `json:"valid_from" validate:"required"`
	ValidTo   *string `json:"valid_to,omitempty"`
}

// OccurrenceDTO is one entry of the unified schedule timeline. Virtual
// occurrences carry no lesson; persisted ones embed it.
type OccurrenceDTO struct {
	GroupID         string     `json:"group_id"`
	Date            string     `json:"date"`
	StartsAt        string     `json:"starts_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Virtual         bool       `json:"virtual"`
	Lesson          *LessonDTO `json:"lesson,omitempty"`
}

// LessonDTO represents a persisted lesson.
type LessonDTO struct {
	ID              string          `json:"id"`
	GroupID         string          `json:"group_id"`
	StartsAt        string          `json:"starts_at"`
	DurationMinutes int             `json:"duration_minutes"`
	Topic           string          `json:"topic,omitempty"`
	Completed       bool            `json:"completed"`
	Materialized    bool            `json:"materialized"`
	Attendance      []AttendanceDTO `json:"attendance,omitempty"`
}

// CreateLessonRequest is the request to schedule an explicit lesson.
type CreateLessonRequest struct {
	GroupID         string `json:"group_id" validate:"required"`
	Date            string `json:"date" validate:"required"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
	Topic           string `json:"topic"`
}

// AttendanceDTO represents one stored attendance row.
type AttendanceDTO struct {
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
	Grade     *int   `json:"grade,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

// AttendanceRecordDTO is one attendance row in a submission.
type AttendanceRecordDTO struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present absent excused"`
	Grade     *int   `json:"grade,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

// RecordAttendanceRequest submits attendance for a persisted lesson
// (lesson_id) or a virtual occurrence (group_id + date [+ time]).
type RecordAttendanceRequest struct {
	LessonID string                `json:"lesson_id,omitempty"`
	GroupID  string                `json:"group_id,omitempty"`
	Date     string                `json:"date,omitempty"`
	Time     string                `json:"time,omitempty"`
	Records  []AttendanceRecordDTO `json:"records" validate:"required,min=1,dive"`
}

// =============================================================================
// PAYROLL TYPES
// =============================================================================

// TeacherReportDTO is one row of the monthly payroll report.
type TeacherReportDTO struct {
	Teacher          TeacherDTO `json:"teacher"`
	Period           string     `json:"period"`
	LessonCount      int        `json:"lesson_count"`
	HoursWorked      float64    `json:"hours_worked"`
	CalculatedSalary float64    `json:"calculated_salary"`
	Status           string     `json:"status"`
	Amount           float64    `json:"amount"`
}

// PaySalaryRequest records a salary payment.
type PaySalaryRequest struct {
	TeacherID string  `json:"teacher_id" validate:"required"`
	Period    string  `json:"period" validate:"required"`
	Amount    float64 `json:"amount" validate:"gt=0"`
}

// UpdateSalaryRequest corrects a recorded salary amount.
type UpdateSalaryRequest struct {
	TeacherID string  `json:"teacher_id" validate:"required"`
	Period    string  `json:"period" validate:"required"`
	Amount    float64 `json:"amount" validate:"gt=0"`
}

// SalaryDTO represents a recorded salary payment.
type SalaryDTO struct {
	ID        string  `json:"id,omitempty"`
	TeacherID string  `json:"teacher_id"`
	Period    string  `json:"period"`
	Amount    float64 `json:"amount"`
	Paid      bool    `json:"paid"`
}

// =============================================================================
// FINANCE TYPES
// =============================================================================

// CreatePaymentRequest records a student payment.
type CreatePaymentRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"gt=0"`
	Status    string  `json:"status" validate:"required,oneof=paid pending overdue refunded"`
	Type      string  `json:"type" validate:"required,oneof=monthly one_time"`
	Period    string  `json:"period" validate:"required"`
	Date      string  `json:"date"`
}

// CreateExpenseRequest records an expense.
type CreateExpenseRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Category    string  `json:"category" validate:"required"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// PaymentDTO represents a student payment row.
type PaymentDTO struct {
	ID        string  `json:"id"`
	StudentID string  `json:"student_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	Type      string  `json:"type"`
	Period    string  `json:"period"`
	Date      string  `json:"date"`
}

// ExpenseDTO represents an expense row.
type ExpenseDTO struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
}

// MonthlyReportDTO is one bucket of the trailing income/expense series.
type MonthlyReportDTO struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Profit  float64 `json:"profit"`
}

// GroupProfitDTO is the current-month profitability of one group.
type GroupProfitDTO struct {
	GroupID     string  `json:"group_id"`
	GroupName   string  `json:"group_name"`
	TeacherID   string  `json:"teacher_id"`
	TeacherName string  `json:"teacher_name"`
	Income      float64 `json:"income"`
	Cost        float64 `json:"cost"`
	Profit      float64 `json:"profit"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toTeacherDTO(t schedule.Teacher) TeacherDTO {
	return TeacherDTO{
		ID:         string(t.ID),
		Name:       t.Name,
		HourlyRate: t.HourlyRate.InexactFloat64(),
		CreatedAt:  formatCreatedAt(t.CreatedAt),
	}
}

func toStudentDTO(s schedule.Student) StudentDTO {
	return StudentDTO{
		ID:        string(s.ID),
		Name:      s.Name,
		Active:    s.Active,
		CreatedAt: formatCreatedAt(s.CreatedAt),
	}
}

func toGroupDTO(g schedule.Group) GroupDTO {
	return GroupDTO{
		ID:        string(g.ID),
		Name:      g.Name,
		TeacherID: string(g.TeacherID),
		Active:    g.Active,
		CreatedAt: formatCreatedAt(g.CreatedAt),
	}
}

func toTemplateDTO(t schedule.ScheduleTemplate) TemplateDTO {
	weekdays := make([]int, 0, 7)
	for _, wd := range t.Weekdays.Weekdays() {
		weekdays = append(weekdays, int(wd))
	}
	dto := TemplateDTO{
		ID:        string(t.ID),
		GroupID:   string(t.GroupID),
		Weekdays:  weekdays,
		Start:     t.Start.String(),
		ValidFrom: t.ValidFrom.String(),
		CreatedAt: formatCreatedAt(t.CreatedAt),
	}
	if !t.End.IsZero() {
		dto.End = t.End.String()
	}
	if t.ValidTo != nil {
		s := t.ValidTo.String()
		dto.ValidTo = &s
	}
	return dto
}

func toLessonDTO(l schedule.Lesson) *LessonDTO {
	dto := &LessonDTO{
		ID:              string(l.ID),
		GroupID:         string(l.GroupID),
		StartsAt:        l.StartsAt.Format(time.RFC3339),
		DurationMinutes: l.DurationMinutes,
		Topic:           l.Topic,
		Completed:       l.Completed,
		Materialized:    l.Materialized,
	}
	for _, a := range l.Attendance {
		dto.Attendance = append(dto.Attendance, AttendanceDTO{
			StudentID: string(a.StudentID),
			Status:    string(a.Status),
			Grade:     a.Grade,
			Comment:   a.Comment,
		})
	}
	return dto
}

func toOccurrenceDTO(o schedule.Occurrence) OccurrenceDTO {
	dto := OccurrenceDTO{
		GroupID:         string(o.GroupID),
		Date:            o.Day().String(),
		StartsAt:        o.StartsAt.Format(time.RFC3339),
		DurationMinutes: o.DurationMinutes,
		Virtual:         o.Virtual(),
	}
	if o.Lesson != nil {
		dto.Lesson = toLessonDTO(*o.Lesson)
	}
	return dto
}

func toTeacherReportDTO(r payroll.TeacherReport) TeacherReportDTO {
	return TeacherReportDTO{
		Teacher:          toTeacherDTO(r.Teacher),
		Period:           r.Period.String(),
		LessonCount:      r.LessonCount,
		HoursWorked:      r.HoursWorked.InexactFloat64(),
		CalculatedSalary: r.CalculatedSalary.InexactFloat64(),
		Status:           string(r.Status),
		Amount:           r.Amount.InexactFloat64(),
	}
}

func toSalaryDTO(s payroll.Salary) SalaryDTO {
	return SalaryDTO{
		ID:        string(s.ID),
		TeacherID: string(s.TeacherID),
		Period:    s.Period.String(),
		Amount:    s.Amount.InexactFloat64(),
		Paid:      s.Paid,
	}
}

func toPaymentDTO(p finance.Payment) PaymentDTO {
	return PaymentDTO{
		ID:        string(p.ID),
		StudentID: string(p.StudentID),
		Amount:    p.Amount.InexactFloat64(),
		Status:    string(p.Status),
		Type:      string(p.Type),
		Period:    p.Period.String(),
		Date:      p.Date.Format(time.RFC3339),
	}
}

func toExpenseDTO(e payroll.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          string(e.ID),
		Amount:      e.Amount.InexactFloat64(),
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.Format(time.RFC3339),
	}
}

func toMonthlyReportDTO(r finance.MonthlyReport) MonthlyReportDTO {
	return MonthlyReportDTO{
		Month:   r.Month.String(),
		Income:  r.Income.InexactFloat64(),
		Expense: r.Expense.InexactFloat64(),
		Profit:  r.Profit.InexactFloat64(),
	}
}

func toGroupProfitDTO(p finance.GroupProfit) GroupProfitDTO {
	return GroupProfitDTO{
		GroupID:     string(p.Group.ID),
		GroupName:   p.Group.Name,
		TeacherID:   string(p.Teacher.ID),
		TeacherName: p.Teacher.Name,
		Income:      p.Income.InexactFloat64(),
		Cost:        p.Cost.InexactFloat64(),
		Profit:      p.Profit.InexactFloat64(),
	}
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
