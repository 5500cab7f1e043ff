package schedule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutoria/lesson-engine/schedule"
	"github.com/tutoria/lesson-engine/schedule/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func seedGroup(t *testing.T, m *store.Memory, groupID schedule.GroupID, active bool) schedule.Group {
	t.Helper()
	ctx := context.Background()

	teacher, err := m.SaveTeacher(ctx, schedule.Teacher{
		ID:         schedule.TeacherID("teacher-" + string(groupID)),
		Name:       "Teacher " + string(groupID),
		HourlyRate: decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("failed to save teacher: %v", err)
	}

	g, err := m.SaveGroup(ctx, schedule.Group{
		ID:        groupID,
		Name:      string(groupID),
		TeacherID: teacher.ID,
		Active:    active,
	})
	if err != nil {
		t.Fatalf("failed to save group: %v", err)
	}
	return g
}

func seedTemplate(t *testing.T, m *store.Memory, tpl schedule.ScheduleTemplate) schedule.ScheduleTemplate {
	t.Helper()
	saved, err := m.SaveTemplate(context.Background(), tpl)
	if err != nil {
		t.Fatalf("failed to save template: %v", err)
	}
	return saved
}

func window(from, to schedule.Day) schedule.Window {
	return schedule.Window{From: from, To: to}
}

// =============================================================================
// EXPANSION TESTS
// =============================================================================

func TestExpand_WeeklyTemplate_OneOccurrencePerMatchingDay(t *testing.T) {
	// GIVEN: Mon/Wed 10:00-11:00 template valid from 2025-01-01
	// WHEN: Expanding the week of 2025-01-06 (Mon) .. 2025-01-12 (Sun)
	// THEN: Exactly Mon 10:00 and Wed 10:00, 60 minutes each

	m := store.NewMemory()
	seedGroup(t, m, "g1", true)
	seedTemplate(t, m, schedule.ScheduleTemplate{
		GroupID:   "g1",
		Weekdays:  schedule.NewWeekdaySet(time.Monday, time.Wednesday),
		Start:     schedule.ClockTime{Hour: 10},
		End:       schedule.ClockTime{Hour: 11},
		ValidFrom: schedule.NewDay(2025, time.January, 1),
	})

	expander := &schedule.Expander{Store: m}
	occs, err := expander.Expand(context.Background(), schedule.Filter{},
		window(schedule.NewDay(2025, time.January, 6), schedule.NewDay(2025, time.January, 12)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occs))
	}
	wantStarts := []time.Time{
		time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 8, 10, 0, 0, 0, time.UTC),
	}
	for i, occ := range occs {
		if !occ.StartsAt.Equal(wantStarts[i]) {
			t.Errorf("occurrence %d: expected start %v, got %v", i, wantStarts[i], occ.StartsAt)
		}
		if occ.DurationMinutes != 60 {
			t.Errorf("occurrence %d: expected 60 minutes, got %d", i, occ.DurationMinutes)
		}
		if !occ.Virtual() {
			t.Errorf("occurrence %d: expected virtual", i)
		}
	}
}

func TestExpand_ValidityWindowClipsOccurrences(t *testing.T) {
	// GIVEN: Daily template valid 2025-03-10 .. 2025-03-12
	// WHEN: Expanding 2025-03-08 .. 2025-03-15
	// THEN: Only the three days inside the validity range appear

	m := store.NewMemory()
	seedGroup(t, m, "g1", true)
	validTo := schedule.NewDay(2025, time.March, 12)
	seedTemplate(t, m, schedule.ScheduleTemplate{
		GroupID: "g1",
		Weekdays: schedule.NewWeekdaySet(time.Sunday, time.Monday, time.Tuesday,
			time.Wednesday, time.Thursday, time.Friday, time.Saturday),
		Start:     schedule.ClockTime{Hour: 9},
		ValidFrom: schedule.NewDay(2025, time.March, 10),
		ValidTo:   &validTo,
	})

	expander := &schedule.Expander{Store: m}
	occs, err := expander.Expand(context.Background(), schedule.Filter{},
		window(schedule.NewDay(2025, time.March, 8), schedule.NewDay(2025, time.March, 15)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occs))
	}
	if got := occs[0].Day(); !got.Equal(schedule.NewDay(2025, time.March, 10)) {
		t.Errorf("expected first occurrence on 2025-03-10, got %s", got)
	}
	if got := occs[2].Day(); !got.Equal(schedule.NewDay(2025, time.March, 12)) {
		t.Errorf("expected last occurrence on 2025-03-12, got %s", got)
	}
}

func TestExpand_InactiveGroupProducesNothing(t *testing.T) {
	// GIVEN: A template whose group is inactive
	// WHEN: Expanding a window that would match
	// THEN: No occurrences

	m := store.NewMemory()
	seedGroup(t, m, "g1", false)
	seedTemplate(t, m, schedule.ScheduleTemplate{
		GroupID:   "g1",
		Weekdays:  schedule.NewWeekdaySet(time.Monday),
		Start:     schedule.ClockTime{Hour: 10},
		ValidFrom: schedule.NewDay(2025, time.January, 1),
	})

	expander := &schedule.Expander{Store: m}
	occs, err := expander.Expand(context.Background(), schedule.Filter{},
		window(schedule.NewDay(2025, time.January, 6), schedule.NewDay(2025, time.January, 12)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("expected no occurrences for inactive group, got %d", len(occs))
	}
}

func TestExpand_FilterByTeacher(t *testing.T) {
	// GIVEN: Two groups with different teachers, one template each
	// WHEN: Expanding with a teacher filter
	// THEN: Only that teacher's group appears

	m := store.NewMemory()
	g1 := seedGroup(t, m, "g1", true)
	seedGroup(t, m, "g2", true)
	for _, gid := range []schedule.GroupID{"g1", "g2"} {
		seedTemplate(t, m, schedule.ScheduleTemplate{
			GroupID:   gid,
			Weekdays:  schedule.NewWeekdaySet(time.Monday),
			Start:     schedule.ClockTime{Hour: 10},
			ValidFrom: schedule.NewDay(2025, time.January, 1),
		})
	}

	expander := &schedule.Expander{Store: m}
	occs, err := expander.Expand(context.Background(),
		schedule.Filter{TeacherID: g1.TeacherID},
		window(schedule.NewDay(2025, time.January, 6), schedule.NewDay(2025, time.January, 12)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(occs) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occs))
	}
	if occs[0].GroupID != "g1" {
		t.Errorf("expected occurrence for g1, got %s", occs[0].GroupID)
	}
}

func TestExpand_InvalidWindowRejected(t *testing.T) {
	// GIVEN: A window whose end precedes its start
	// WHEN: Expanding
	// THEN: ErrInvalidWindow

	m := store.NewMemory()
	expander := &schedule.Expander{Store: m}

	_, err := expander.Expand(context.Background(), schedule.Filter{},
		window(schedule.NewDay(2025, time.January, 12), schedule.NewDay(2025, time.January, 6)))
	if !errors.Is(err, schedule.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if !schedule.IsValidation(err) {
		t.Errorf("expected IsValidation to be true")
	}
}

func TestExpandTemplates_MultipleTemplatesSameDay(t *testing.T) {
	// GIVEN: Two templates of the same group both matching Monday
	// WHEN: Expanding one Monday
	// THEN: Two occurrences, no overlap merging, day-major ordering

	morning := schedule.ScheduleTemplate{
		GroupID:   "g1",
		Weekdays:  schedule.NewWeekdaySet(time.Monday),
		Start:     schedule.ClockTime{Hour: 9},
		ValidFrom: schedule.NewDay(2025, time.January, 1),
	}
	evening := schedule.ScheduleTemplate{
		GroupID:   "g1",
		Weekdays:  schedule.NewWeekdaySet(time.Monday),
		Start:     schedule.ClockTime{Hour: 18},
		ValidFrom: schedule.NewDay(2025, time.January, 1),
	}

	occs := schedule.ExpandTemplates([]schedule.ScheduleTemplate{morning, evening},
		window(schedule.NewDay(2025, time.January, 6), schedule.NewDay(2025, time.January, 6)))

	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occs))
	}
	if occs[0].StartsAt.Hour() != 9 || occs[1].StartsAt.Hour() != 18 {
		t.Errorf("expected template input order within a day, got %v then %v",
			occs[0].StartsAt, occs[1].StartsAt)
	}
}

func TestExpandTemplates_DefaultDurationWithoutEnd(t *testing.T) {
	// GIVEN: A template with no end time
	// WHEN: Expanding
	// THEN: Occurrence uses the default duration

	tpl := schedule.ScheduleTemplate{
		GroupID:   "g1",
		Weekdays:  schedule.NewWeekdaySet(time.Friday),
		Start:     schedule.ClockTime{Hour: 14, Minute: 30},
		ValidFrom: schedule.NewDay(2025, time.January, 1),
	}

	occs := schedule.ExpandTemplates([]schedule.ScheduleTemplate{tpl},
		window(schedule.NewDay(2025, time.January, 10), schedule.NewDay(2025, time.January, 10)))

	if len(occs) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occs))
	}
	if occs[0].DurationMinutes != schedule.DefaultDurationMinutes {
		t.Errorf("expected default duration %d, got %d",
			schedule.DefaultDurationMinutes, occs[0].DurationMinutes)
	}
}
