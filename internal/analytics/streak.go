package analytics

import (
	"sort"
	"time"

	"github.com/kalambet/priotrack/internal/record"
	"github.com/kalambet/priotrack/internal/timeutil"
)

// Streak describes consecutive-day activity runs for one priority.
// Current is the length of the streak ending at the latest date with data;
// it is deliberately not reduced to zero when that date is in the past
// (no gap-to-today check).
type Streak struct {
	Current      int       `json:"current_streak_days"`
	Max          int       `json:"max_streak_days"`
	LastActivity time.Time `json:"last_activity_date"`
}

// Streaks computes per-priority streaks over a set of activity records.
// An empty input yields an empty map, never an error.
func Streaks(records []record.ActivityRecord) map[string]Streak {
	// Distinct activity days per priority.
	days := make(map[string]map[string]time.Time)
	for _, rec := range records {
		day := timeutil.DateOf(rec.Timestamp)
		key := timeutil.DateKey(day)
		if days[rec.Priority] == nil {
			days[rec.Priority] = make(map[string]time.Time)
		}
		days[rec.Priority][key] = day
	}

	streaks := make(map[string]Streak, len(days))
	for priority, daySet := range days {
		sorted := make([]time.Time, 0, len(daySet))
		for _, day := range daySet {
			sorted = append(sorted, day)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

		current, max := 1, 1
		for i := 1; i < len(sorted); i++ {
			if sorted[i].Equal(sorted[i-1].AddDate(0, 0, 1)) {
				current++
				if current > max {
					max = current
				}
			} else {
				current = 1
			}
		}

		streaks[priority] = Streak{
			Current:      current,
			Max:          max,
			LastActivity: sorted[len(sorted)-1],
		}
	}
	return streaks
}
