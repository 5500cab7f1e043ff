/*
reconciler.go - Merge of virtual and persisted occurrences

PURPOSE:
  Produces the single chronological timeline consumers see: persisted
  lessons plus the virtual occurrences that are not shadowed by one.

DEDUP RULE:
  A virtual occurrence for (group, day) is dropped iff ANY persisted
  lesson exists for the same group on the same calendar day. The match
  is day-truncated, not exact-time: a teacher starting late must not
  produce a phantom duplicate. If several persisted lessons share a
  group/day (possible via explicit scheduling), all are kept and no
  virtual is synthesized for that day.

ORDERING:
  Ascending by occurrence timestamp; ties keep input order (persisted
  before virtual, then source order). Sort is stable.
*/
package schedule

import "sort"

type dayKey struct {
	Group GroupID
	Day   Day
}

// Reconcile merges virtual occurrences with persisted lessons into one
// chronologically sorted timeline with no (group, day) duplicates.
func Reconcile(virtual []Occurrence, lessons []Lesson) []Occurrence {
	occupied := make(map[dayKey]bool, len(lessons))

	merged := make([]Occurrence, 0, len(lessons)+len(virtual))
	for _, l := range lessons {
		occupied[dayKey{Group: l.GroupID, Day: l.Day()}] = true
		merged = append(merged, RealOccurrence(l))
	}

	for _, v := range virtual {
		if occupied[dayKey{Group: v.GroupID, Day: v.Day()}] {
			continue
		}
		merged = append(merged, v)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartsAt.Before(merged[j].StartsAt)
	})
	return merged
}
