package analytics

import (
	"fmt"
	"time"

	"github.com/kalambet/priotrack/internal/record"
	"github.com/kalambet/priotrack/internal/timeutil"
)

// Window is a trailing time window anchored at the canonical-zone current
// instant.
type Window int

const (
	WindowAll Window = iota
	WindowLast7Days
	WindowLast30Days
	WindowLast90Days
)

// ParseWindow maps the query-parameter form ("7d", "30d", "90d", "all" or
// empty) to a Window.
func ParseWindow(s string) (Window, error) {
	switch s {
	case "", "all":
		return WindowAll, nil
	case "7d":
		return WindowLast7Days, nil
	case "30d":
		return WindowLast30Days, nil
	case "90d":
		return WindowLast90Days, nil
	}
	return WindowAll, fmt.Errorf("unknown window %q (want 7d, 30d, 90d, or all)", s)
}

func (w Window) String() string {
	switch w {
	case WindowLast7Days:
		return "7d"
	case WindowLast30Days:
		return "30d"
	case WindowLast90Days:
		return "90d"
	}
	return "all"
}

func (w Window) days() int {
	switch w {
	case WindowLast7Days:
		return 7
	case WindowLast30Days:
		return 30
	case WindowLast90Days:
		return 90
	}
	return 0
}

// cutoff returns the earliest calendar day (inclusive) inside the window.
// Comparisons are at day granularity.
func (w Window) cutoff(now time.Time) (time.Time, bool) {
	d := w.days()
	if d == 0 {
		return time.Time{}, false
	}
	return timeutil.DateOf(now.AddDate(0, 0, -d)), true
}

// FilterActivities keeps records whose calendar day falls inside the
// window ending at now.
func FilterActivities(records []record.ActivityRecord, now time.Time, w Window) []record.ActivityRecord {
	cut, bounded := w.cutoff(now)
	if !bounded {
		return records
	}
	kept := make([]record.ActivityRecord, 0, len(records))
	for _, rec := range records {
		if !timeutil.DateOf(rec.Timestamp).Before(cut) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// FilterSchedule keeps entries whose date falls inside the window ending
// at now. The reconciler filters its two inputs independently with this
// and FilterActivities before joining; an entry and its matching actual
// must each fall inside the window to be counted.
func FilterSchedule(entries []record.ScheduleEntry, now time.Time, w Window) []record.ScheduleEntry {
	cut, bounded := w.cutoff(now)
	if !bounded {
		return entries
	}
	kept := make([]record.ScheduleEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Date.Before(cut) {
			kept = append(kept, entry)
		}
	}
	return kept
}
