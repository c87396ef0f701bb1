package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/priotrack/internal/record"
)

func TestParseWindow(t *testing.T) {
	cases := map[string]Window{
		"":    WindowAll,
		"all": WindowAll,
		"7d":  WindowLast7Days,
		"30d": WindowLast30Days,
		"90d": WindowLast90Days,
	}
	for input, want := range cases {
		got, err := ParseWindow(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := ParseWindow("2w")
	assert.Error(t, err)
}

func TestFilterActivities(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, ist)
	records := []record.ActivityRecord{
		activity("2025-03-14", 9, "Career", 1), // inside
		activity("2025-03-08", 9, "Career", 1), // exactly on the cutoff day
		activity("2025-03-07", 9, "Career", 1), // outside
	}

	kept := FilterActivities(records, now, WindowLast7Days)
	require.Len(t, kept, 2)

	all := FilterActivities(records, now, WindowAll)
	assert.Len(t, all, 3)
}

// TestFilterInputsIndependently documents the asymmetry of filtering the
// two sets before the join: a schedule entry outside the window loses its
// matching actual row's planned side even though the pair refers to the
// same day.
func TestFilterInputsIndependently(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, ist)

	entries := []record.ScheduleEntry{
		planned("2025-03-01", "Career", 2), // outside 7d window
	}
	activities := []record.ActivityRecord{
		activity("2025-03-14", 9, "Career", 2), // inside
	}

	result := Reconcile(
		FilterSchedule(entries, now, WindowLast7Days),
		FilterActivities(activities, now, WindowLast7Days),
	)

	require.Len(t, result.Rows, 1)
	assert.InDelta(t, 0.0, result.Rows[0].PlannedHours, 1e-9)
	assert.InDelta(t, 2.0, result.Rows[0].ActualHours, 1e-9)
}

func TestFilterSchedule(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, ist)
	entries := []record.ScheduleEntry{
		planned("2025-03-20", "Career", 1), // future entries stay in window
		planned("2025-02-01", "Career", 1),
	}

	kept := FilterSchedule(entries, now, WindowLast30Days)
	require.Len(t, kept, 1)
	assert.Equal(t, entries[0].Date, kept[0].Date)
}
