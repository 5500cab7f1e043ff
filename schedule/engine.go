/*
engine.go - Timeline assembly

PURPOSE:
  The read path consumers call: one request loads templates, groups,
  and lessons, expands the templates, and reconciles. The three
  consumers (teacher calendar, attendance capture, payroll aggregation)
  all see the same merged timeline.

CONSISTENCY:
  Reads happen once per request with the store's default isolation. A
  template edited mid-request can produce an inconsistent (but not
  unsafe) view for that one response.
*/
package schedule

import "context"

// Engine assembles the merged occurrence timeline.
type Engine struct {
	Store TimelineStore
}

func NewEngine(store TimelineStore) *Engine {
	return &Engine{Store: store}
}

// Timeline returns the merged, chronologically sorted occurrence set
// for the window and filter.
func (e *Engine) Timeline(ctx context.Context, filter Filter, window Window) ([]Occurrence, error) {
	expander := &Expander{Store: e.Store}
	virtual, err := expander.Expand(ctx, filter, window)
	if err != nil {
		return nil, err
	}

	lessons, err := e.Store.ListLessons(ctx, filter, window)
	if err != nil {
		return nil, err
	}

	return Reconcile(virtual, lessons), nil
}
