// Package record defines the two record kinds the tracker stores — logged
// activities and planned schedule entries — and the conversion between
// records and the column-name keyed rows of the record store.
package record

import (
	"fmt"
	"time"
)

// Priorities is the closed set of life-area categories offered by the
// input surfaces. The engine treats priority as an opaque grouping string;
// stored data may contain values outside this set.
var Priorities = []string{
	"Career",
	"Music",
	"Fitness",
	"Relationship",
	"Philosophy",
	"Finance",
}

// Recurrence kinds for schedule templates.
const (
	RecurrenceOneTime = "One-time"
	RecurrenceDaily   = "Daily"
	RecurrenceWeekly  = "Weekly"
)

// StatusPending is the initial status of every expanded schedule row.
// Schedule rows are never mutated to reflect completion; adherence is
// computed by joining the two record streams.
const StatusPending = "Pending"

// ActivityRecord is a completed, timestamped activity. Immutable once
// stored.
type ActivityRecord struct {
	Timestamp     time.Time
	Priority      string
	Description   string
	DurationHours float64
	Remarks       string
}

// ScheduleEntry is a planned activity on a calendar date. Date is midnight
// of the day in the canonical zone; TimeOfDay is an optional "15:04" hint
// and plays no part in any computation.
type ScheduleEntry struct {
	Date                 time.Time
	TimeOfDay            string
	Priority             string
	PlannedActivity      string
	PlannedDurationHours float64
	Recurrence           string
	Status               string
	BatchID              string
}

// ValidPriority reports whether p is one of the offered categories. Input
// surfaces use this; the analytics engine never does.
func ValidPriority(p string) bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// ValidRecurrence reports whether kind is a known recurrence kind.
func ValidRecurrence(kind string) bool {
	switch kind {
	case RecurrenceOneTime, RecurrenceDaily, RecurrenceWeekly:
		return true
	}
	return false
}

// MissingColumnError reports a store row lacking an expected column.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}
