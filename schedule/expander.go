/*
expander.go - Recurrence-to-occurrence expansion

PURPOSE:
  Enumerates the calendar days of a query window and yields one virtual
  occurrence per (template, matching day). This is the projection step
  of the timeline: it knows nothing about persisted lessons.

ALGORITHM:
  For each day d in [window.From, window.To]:
    For each template t (owning group active, filter passed):
      - validity: t.ValidFrom <= d and (t.ValidTo unset or d <= t.ValidTo)
      - weekday: d's weekday is in t.Weekdays
      - both pass -> occurrence at d + t.Start, duration from t

  A group with several templates matching the same day produces several
  occurrences. No overlap merging.

SEE ALSO:
  - reconciler.go: Drops virtuals that shadow persisted lessons
  - engine.go: Composes store reads, expansion, and reconciliation
*/
package schedule

import "context"

// ExpandTemplates projects templates into virtual occurrences over a
// window. Templates must already be filtered to active groups; the
// function is pure and ordering is (day, template input order).
func ExpandTemplates(templates []ScheduleTemplate, window Window) []Occurrence {
	var out []Occurrence
	for d := window.From; d.BeforeOrEqual(window.To); d = d.AddDays(1) {
		for _, t := range templates {
			if t.AppliesOn(d) {
				out = append(out, t.Occurrence(d))
			}
		}
	}
	return out
}

// Expander loads templates and groups and runs the expansion.
type Expander struct {
	Store TimelineStore
}

// Expand returns the virtual occurrences implied by all templates
// matching the filter, clipped to the window. Templates of inactive
// groups are excluded.
func (e *Expander) Expand(ctx context.Context, filter Filter, window Window) ([]Occurrence, error) {
	if !window.Valid() {
		return nil, ErrInvalidWindow
	}

	templates, err := e.Store.ListTemplates(ctx, filter)
	if err != nil {
		return nil, err
	}
	groups, err := e.Store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	active := make(map[GroupID]bool, len(groups))
	for _, g := range groups {
		if g.Active && filter.MatchesGroup(g) {
			active[g.ID] = true
		}
	}

	eligible := templates[:0:0]
	for _, t := range templates {
		if active[t.GroupID] {
			eligible = append(eligible, t)
		}
	}

	return ExpandTemplates(eligible, window), nil
}
