// Package analytics is the engine that turns flat record sets into KPIs,
// streaks, and plan-vs-actual reconciliations. Everything here is a pure
// function over in-memory records: no I/O, no clocks except those passed
// in, no display formatting.
package analytics

import (
	"errors"
	"sort"
	"time"

	"github.com/kalambet/priotrack/internal/record"
	"github.com/kalambet/priotrack/internal/timeutil"
)

// ErrInsufficientData is returned when a result requires at least one
// record and the input set is empty.
var ErrInsufficientData = errors.New("insufficient data")

// KPIs are the headline numbers of the dashboard.
type KPIs struct {
	TotalHours     float64 `json:"total_hours"`
	AvgHoursPerDay float64 `json:"avg_hours_per_day"`
	// PriorityAverages maps each priority to its mean hours per day,
	// averaged only over days that have at least one entry for that
	// priority. This is deliberately not priority_total / span_days.
	PriorityAverages   map[string]float64 `json:"priority_averages"`
	MostActivePriority string             `json:"most_active_priority"`
}

// ComputeKPIs computes the headline numbers over a set of activity
// records. It fails with ErrInsufficientData on an empty set, since the
// date span and the most active priority are undefined there.
func ComputeKPIs(records []record.ActivityRecord) (KPIs, error) {
	if len(records) == 0 {
		return KPIs{}, ErrInsufficientData
	}

	var total float64
	minDay := timeutil.DateOf(records[0].Timestamp)
	maxDay := minDay

	// Per-(day, priority) duration sums, and per-priority totals for the
	// most-active pick.
	type dayPriority struct{ day, priority string }
	dayTotals := make(map[dayPriority]float64)
	priorityTotals := make(map[string]float64)
	var priorityOrder []string

	for _, rec := range records {
		total += rec.DurationHours

		day := timeutil.DateOf(rec.Timestamp)
		if day.Before(minDay) {
			minDay = day
		}
		if day.After(maxDay) {
			maxDay = day
		}

		key := dayPriority{day: timeutil.DateKey(day), priority: rec.Priority}
		dayTotals[key] += rec.DurationHours

		if _, seen := priorityTotals[rec.Priority]; !seen {
			priorityOrder = append(priorityOrder, rec.Priority)
		}
		priorityTotals[rec.Priority] += rec.DurationHours
	}

	spanDays := int(utcMidnight(maxDay).Sub(utcMidnight(minDay)).Hours()/24) + 1

	// Mean of per-day totals, per priority, over days with data only.
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for key, hours := range dayTotals {
		sums[key.priority] += hours
		counts[key.priority]++
	}
	averages := make(map[string]float64, len(sums))
	for priority, sum := range sums {
		averages[priority] = sum / float64(counts[priority])
	}

	// Greatest total wins; ties break to the first priority encountered in
	// input order, keeping the result deterministic.
	mostActive := priorityOrder[0]
	for _, priority := range priorityOrder[1:] {
		if priorityTotals[priority] > priorityTotals[mostActive] {
			mostActive = priority
		}
	}

	return KPIs{
		TotalHours:         total,
		AvgHoursPerDay:     total / float64(spanDays),
		PriorityAverages:   averages,
		MostActivePriority: mostActive,
	}, nil
}

// utcMidnight re-anchors a calendar day in UTC so day subtraction is
// exact even when the canonical zone shifts for DST.
func utcMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyTotal is one day's summed hours, for the daily trend view.
type DailyTotal struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// DailyTotals sums duration per calendar day, sorted ascending by date.
// An empty input yields an empty slice.
func DailyTotals(records []record.ActivityRecord) []DailyTotal {
	byDay := make(map[string]float64)
	for _, rec := range records {
		byDay[timeutil.DateKey(rec.Timestamp)] += rec.DurationHours
	}

	totals := make([]DailyTotal, 0, len(byDay))
	for day, hours := range byDay {
		totals = append(totals, DailyTotal{Date: day, Hours: hours})
	}
	// Date keys are "2006-01-02", so lexical order is chronological.
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date < totals[j].Date })
	return totals
}
