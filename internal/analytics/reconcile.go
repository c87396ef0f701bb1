package analytics

import (
	"math"
	"sort"

	"github.com/kalambet/priotrack/internal/record"
	"github.com/kalambet/priotrack/internal/timeutil"
)

// ComparisonRow is one (date, priority) pair of the plan-vs-actual full
// outer join. A pair present only in the schedule has ActualHours 0; one
// present only in the log has PlannedHours 0.
type ComparisonRow struct {
	Date         string  `json:"date"`
	Priority     string  `json:"priority"`
	PlannedHours float64 `json:"planned_hours"`
	ActualHours  float64 `json:"actual_hours"`
	Difference   float64 `json:"difference"`
	// CompletionRate is actual/planned as a percentage, rounded to two
	// decimals. Rows with zero planned hours get 0 by convention rather
	// than dividing by zero.
	CompletionRate float64 `json:"completion_rate"`
}

// PriorityKPI aggregates the joined rows of one priority.
type PriorityKPI struct {
	Priority            string  `json:"priority"`
	TotalPlannedHours   float64 `json:"total_planned_hours"`
	TotalActualHours    float64 `json:"total_actual_hours"`
	TotalDifference     float64 `json:"total_difference"`
	PercentageDeviation float64 `json:"percentage_deviation"`
}

// Reconciliation is the full plan-vs-actual view.
type Reconciliation struct {
	Rows                  []ComparisonRow `json:"rows"`
	ByPriority            []PriorityKPI   `json:"by_priority"`
	TotalPlannedHours     float64         `json:"total_planned_hours"`
	TotalActualHours      float64         `json:"total_actual_hours"`
	OverallCompletionRate float64         `json:"overall_completion_rate"`
}

// Reconcile joins schedule entries and activity records on (calendar date,
// priority). Callers window-filter both inputs beforehand; Reconcile never
// consults a clock.
func Reconcile(entries []record.ScheduleEntry, activities []record.ActivityRecord) Reconciliation {
	type joinKey struct{ date, priority string }

	planned := make(map[joinKey]float64)
	actual := make(map[joinKey]float64)
	for _, entry := range entries {
		key := joinKey{date: timeutil.DateKey(entry.Date), priority: entry.Priority}
		planned[key] += entry.PlannedDurationHours
	}
	for _, act := range activities {
		key := joinKey{date: timeutil.DateKey(act.Timestamp), priority: act.Priority}
		actual[key] += act.DurationHours
	}

	keys := make(map[joinKey]struct{}, len(planned)+len(actual))
	for key := range planned {
		keys[key] = struct{}{}
	}
	for key := range actual {
		keys[key] = struct{}{}
	}

	rows := make([]ComparisonRow, 0, len(keys))
	for key := range keys {
		row := ComparisonRow{
			Date:         key.date,
			Priority:     key.priority,
			PlannedHours: planned[key],
			ActualHours:  actual[key],
		}
		row.Difference = row.ActualHours - row.PlannedHours
		if row.PlannedHours > 0 {
			row.CompletionRate = round2(row.ActualHours / row.PlannedHours * 100)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Priority < rows[j].Priority
	})

	// Per-priority aggregates over the joined rows.
	byPriority := make(map[string]*PriorityKPI)
	var priorityOrder []string
	for _, row := range rows {
		kpi, ok := byPriority[row.Priority]
		if !ok {
			kpi = &PriorityKPI{Priority: row.Priority}
			byPriority[row.Priority] = kpi
			priorityOrder = append(priorityOrder, row.Priority)
		}
		kpi.TotalPlannedHours += row.PlannedHours
		kpi.TotalActualHours += row.ActualHours
		kpi.TotalDifference += row.Difference
	}
	sort.Strings(priorityOrder)

	result := Reconciliation{Rows: rows}
	for _, priority := range priorityOrder {
		kpi := byPriority[priority]
		if kpi.TotalPlannedHours != 0 {
			kpi.PercentageDeviation = round2(kpi.TotalDifference / kpi.TotalPlannedHours * 100)
		}
		result.ByPriority = append(result.ByPriority, *kpi)
		result.TotalPlannedHours += kpi.TotalPlannedHours
		result.TotalActualHours += kpi.TotalActualHours
	}
	if result.TotalPlannedHours > 0 {
		result.OverallCompletionRate = round2(result.TotalActualHours / result.TotalPlannedHours * 100)
	}
	return result
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
