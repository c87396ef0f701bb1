// Package planner expands a single schedule template into the concrete
// schedule rows to persist. One user action can produce many rows; the
// rows share a batch ID so the action stays traceable in the store.
package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/priotrack/internal/record"
	"github.com/kalambet/priotrack/internal/timeutil"
)

// dailySpanDays is how many days ahead a Daily template schedules,
// starting from the current canonical-zone date inclusive.
const dailySpanDays = 7

// Template is one user submission on the schedule form.
type Template struct {
	Date                 time.Time // One-time: the single target date
	TimeOfDay            string    // optional "15:04" hint, stored verbatim
	Priority             string
	PlannedActivity      string
	PlannedDurationHours float64
	Recurrence           string
	Weekday              string    // Weekly: "Monday" .. "Sunday"
	StartDate            time.Time // Weekly: range start, inclusive
	EndDate              time.Time // Weekly: range end, inclusive
}

// Expand produces the schedule rows for the template. now anchors Daily
// expansion; all rows share the template's priority, activity, and
// duration, start Pending, and carry a fresh batch ID.
func Expand(tmpl Template, now time.Time) ([]record.ScheduleEntry, error) {
	if tmpl.PlannedDurationHours < 0 {
		return nil, fmt.Errorf("planned duration must be non-negative, got %v", tmpl.PlannedDurationHours)
	}

	var dates []time.Time
	switch tmpl.Recurrence {
	case record.RecurrenceOneTime:
		if tmpl.Date.IsZero() {
			return nil, fmt.Errorf("one-time schedule requires a date")
		}
		dates = []time.Time{timeutil.DateOf(tmpl.Date)}

	case record.RecurrenceDaily:
		start := timeutil.DateOf(now)
		for i := 0; i < dailySpanDays; i++ {
			dates = append(dates, start.AddDate(0, 0, i))
		}

	case record.RecurrenceWeekly:
		weekday, err := parseWeekday(tmpl.Weekday)
		if err != nil {
			return nil, err
		}
		if tmpl.StartDate.IsZero() || tmpl.EndDate.IsZero() {
			return nil, fmt.Errorf("weekly schedule requires start and end dates")
		}
		start := timeutil.DateOf(tmpl.StartDate)
		end := timeutil.DateOf(tmpl.EndDate)
		if end.Before(start) {
			return nil, fmt.Errorf("end date %s before start date %s",
				timeutil.DateKey(end), timeutil.DateKey(start))
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if d.Weekday() == weekday {
				dates = append(dates, d)
			}
		}

	default:
		return nil, fmt.Errorf("unknown recurrence kind %q", tmpl.Recurrence)
	}

	batchID := uuid.New().String()
	entries := make([]record.ScheduleEntry, 0, len(dates))
	for _, date := range dates {
		entries = append(entries, record.ScheduleEntry{
			Date:                 date,
			TimeOfDay:            tmpl.TimeOfDay,
			Priority:             tmpl.Priority,
			PlannedActivity:      tmpl.PlannedActivity,
			PlannedDurationHours: tmpl.PlannedDurationHours,
			Recurrence:           tmpl.Recurrence,
			Status:               record.StatusPending,
			BatchID:              batchID,
		})
	}
	return entries, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
