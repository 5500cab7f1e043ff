/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the database with demo data so every feature can be explored
  without manual setup. Each scenario resets the database first.

SCENARIOS:
  semester-start:   Directory and recurrence rules only. The whole
                    timeline is virtual; nothing has been taught yet.
  running-semester: A school four weeks into the term. Past occurrences
                    are materialized with attendance, students have
                    paid, one teacher's salary is already recorded.

SEE ALSO:
  - handlers.go: Handler struct, response helpers
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/finance"
	"github.com/tutoria/lesson-engine/payroll"
	"github.com/tutoria/lesson-engine/schedule"
)

var scenarios = []ScenarioDTO{
	{
		ID:          "semester-start",
		Name:        "Semester Start",
		Description: "Teachers, groups and weekly schedules configured; no lessons taught yet",
	},
	{
		ID:          "running-semester",
		Name:        "Running Semester",
		Description: "Four weeks into the term: attendance recorded, payments in, one salary paid",
	},
}

// ListScenarios returns available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario id.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario": h.currentScenario})
}

// LoadScenario resets the database and loads the requested scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ID {
	case "semester-start":
		_, err = h.loadSchool(ctx, false)
	case "running-semester":
		_, err = h.loadSchool(ctx, true)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown scenario: %s", req.ID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ID
	writeJSON(w, http.StatusOK, map[string]string{"scenario": req.ID, "status": "loaded"})
}

// ResetDatabase wipes all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type demoSchool struct {
	Math    schedule.Group
	English schedule.Group
}

// loadSchool seeds the demo school. With history enabled it also
// materializes the past four weeks and records money movements.
func (h *Handler) loadSchool(ctx context.Context, history bool) (*demoSchool, error) {
	today := schedule.Today()
	termStart := today.AddDays(-28)

	anna, err := h.Store.SaveTeacher(ctx, schedule.Teacher{
		ID: "t-anna", Name: "Anna Petrova", HourlyRate: decimal.NewFromInt(2000),
	})
	if err != nil {
		return nil, err
	}
	boris, err := h.Store.SaveTeacher(ctx, schedule.Teacher{
		ID: "t-boris", Name: "Boris Ivanov", HourlyRate: decimal.NewFromInt(1500),
	})
	if err != nil {
		return nil, err
	}

	math, err := h.Store.SaveGroup(ctx, schedule.Group{
		ID: "g-math", Name: "Math A1", TeacherID: anna.ID, Active: true,
	})
	if err != nil {
		return nil, err
	}
	english, err := h.Store.SaveGroup(ctx, schedule.Group{
		ID: "g-english", Name: "English B2", TeacherID: boris.ID, Active: true,
	})
	if err != nil {
		return nil, err
	}

	students := []schedule.Student{
		{ID: "s-dasha", Name: "Dasha Smirnova", Active: true},
		{ID: "s-egor", Name: "Egor Volkov", Active: true},
		{ID: "s-fatima", Name: "Fatima Aliyeva", Active: true},
		{ID: "s-grisha", Name: "Grisha Orlov", Active: true},
	}
	for _, s := range students {
		if _, err := h.Store.SaveStudent(ctx, s); err != nil {
			return nil, err
		}
	}
	for _, id := range []schedule.StudentID{"s-dasha", "s-egor"} {
		if err := h.Store.AddGroupMember(ctx, math.ID, id); err != nil {
			return nil, err
		}
	}
	for _, id := range []schedule.StudentID{"s-fatima", "s-grisha", "s-dasha"} {
		if err := h.Store.AddGroupMember(ctx, english.ID, id); err != nil {
			return nil, err
		}
	}

	// Math: Mon/Wed 10:00-11:30. English: Tue/Thu 16:00-17:00.
	templates := []schedule.ScheduleTemplate{
		{
			GroupID:   math.ID,
			Weekdays:  schedule.NewWeekdaySet(time.Monday, time.Wednesday),
			Start:     schedule.ClockTime{Hour: 10},
			End:       schedule.ClockTime{Hour: 11, Minute: 30},
			ValidFrom: termStart,
		},
		{
			GroupID:   english.ID,
			Weekdays:  schedule.NewWeekdaySet(time.Tuesday, time.Thursday),
			Start:     schedule.ClockTime{Hour: 16},
			End:       schedule.ClockTime{Hour: 17},
			ValidFrom: termStart,
		},
	}
	for _, t := range templates {
		if _, err := h.Store.SaveTemplate(ctx, t); err != nil {
			return nil, err
		}
	}

	school := &demoSchool{Math: math, English: english}
	if !history {
		return school, nil
	}

	// Materialize everything the schedule produced up to yesterday by
	// walking the engine's own timeline.
	past := schedule.Window{From: termStart, To: today.AddDays(-1)}
	timeline, err := h.Engine.Timeline(ctx, schedule.Filter{}, past)
	if err != nil {
		return nil, err
	}
	memberships := map[schedule.GroupID][]schedule.StudentID{
		math.ID:    {"s-dasha", "s-egor"},
		english.ID: {"s-fatima", "s-grisha", "s-dasha"},
	}
	for i, occ := range timeline {
		if !occ.Virtual() {
			continue
		}
		records := make([]schedule.AttendanceRecord, 0, 3)
		for j, studentID := range memberships[occ.GroupID] {
			status := schedule.AttendancePresent
			if (i+j)%5 == 0 {
				status = schedule.AttendanceAbsent
			}
			records = append(records, schedule.AttendanceRecord{StudentID: studentID, Status: status})
		}
		if _, err := h.Materializer.RecordAttendance(ctx, schedule.MaterializeInput{
			GroupID:  occ.GroupID,
			StartsAt: occ.StartsAt,
			Records:  records,
		}); err != nil {
			return nil, err
		}
	}

	// Money: tuition in, rent out, last month's salary already paid.
	month := schedule.CurrentMonth()
	payments := []finance.Payment{
		{StudentID: "s-dasha", Amount: decimal.NewFromInt(8000), Status: finance.PaymentPaid, Type: finance.PaymentMonthly, Period: month, Date: today.AddDays(-10).Time()},
		{StudentID: "s-egor", Amount: decimal.NewFromInt(8000), Status: finance.PaymentPaid, Type: finance.PaymentMonthly, Period: month, Date: today.AddDays(-9).Time()},
		{StudentID: "s-fatima", Amount: decimal.NewFromInt(6000), Status: finance.PaymentPaid, Type: finance.PaymentMonthly, Period: month, Date: today.AddDays(-8).Time()},
		{StudentID: "s-grisha", Amount: decimal.NewFromInt(6000), Status: finance.PaymentPending, Type: finance.PaymentMonthly, Period: month, Date: today.AddDays(-2).Time()},
	}
	for _, p := range payments {
		if _, err := h.Store.CreatePayment(ctx, p); err != nil {
			return nil, err
		}
	}
	if _, err := h.Store.CreateExpense(ctx, payroll.Expense{
		Amount:      decimal.NewFromInt(12000),
		Category:    "Rent",
		Description: "Classroom rent",
		Date:        today.AddDays(-15).Time(),
	}); err != nil {
		return nil, err
	}

	if _, err := h.Payroll.Pay(ctx, payroll.PayInput{
		TeacherID: boris.ID,
		Period:    month.AddMonths(-1),
		Amount:    decimal.NewFromInt(9000),
	}); err != nil {
		return nil, err
	}
	return school, nil
}
