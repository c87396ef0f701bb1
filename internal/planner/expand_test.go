package planner

import (
	"testing"
	"time"

	"github.com/kalambet/priotrack/internal/record"
	"github.com/kalambet/priotrack/internal/timeutil"
)

var ist = mustLoad("Asia/Kolkata")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func day(s string) time.Time {
	d, err := time.ParseInLocation("2006-01-02", s, ist)
	if err != nil {
		panic(err)
	}
	return d
}

func TestExpandOneTime(t *testing.T) {
	entries, err := Expand(Template{
		Date:                 day("2025-02-01"),
		Priority:             "Career",
		PlannedActivity:      "Deep work",
		PlannedDurationHours: 2,
		Recurrence:           record.RecurrenceOneTime,
	}, day("2025-01-15"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if timeutil.DateKey(e.Date) != "2025-02-01" {
		t.Errorf("unexpected date %s", timeutil.DateKey(e.Date))
	}
	if e.Status != record.StatusPending {
		t.Errorf("expected Pending, got %q", e.Status)
	}
	if e.BatchID == "" {
		t.Error("expected non-empty batch ID")
	}
}

// TestExpandDaily checks that a daily template yields 7 consecutive rows
// starting from the current date, inclusive.
func TestExpandDaily(t *testing.T) {
	now := day("2025-01-15").Add(13 * time.Hour) // mid-afternoon

	entries, err := Expand(Template{
		Priority:             "Fitness",
		PlannedDurationHours: 1,
		Recurrence:           record.RecurrenceDaily,
	}, now)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if len(entries) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(entries))
	}
	for i, e := range entries {
		want := timeutil.DateKey(day("2025-01-15").AddDate(0, 0, i))
		if timeutil.DateKey(e.Date) != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, timeutil.DateKey(e.Date))
		}
	}
}

// TestExpandWeekly checks that Mondays between 2025-01-06 (a Monday) and
// 2025-01-20 (a Monday) produce exactly three rows.
func TestExpandWeekly(t *testing.T) {
	entries, err := Expand(Template{
		Priority:             "Music",
		PlannedDurationHours: 1.5,
		Recurrence:           record.RecurrenceWeekly,
		Weekday:              "Monday",
		StartDate:            day("2025-01-06"),
		EndDate:              day("2025-01-20"),
	}, day("2025-01-01"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	want := []string{"2025-01-06", "2025-01-13", "2025-01-20"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if timeutil.DateKey(e.Date) != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], timeutil.DateKey(e.Date))
		}
	}
}

func TestExpandSharedBatchID(t *testing.T) {
	entries, err := Expand(Template{
		Priority:             "Fitness",
		PlannedDurationHours: 1,
		Recurrence:           record.RecurrenceDaily,
	}, day("2025-01-15"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	for _, e := range entries[1:] {
		if e.BatchID != entries[0].BatchID {
			t.Error("expanded rows do not share a batch ID")
		}
	}
}

func TestExpandErrors(t *testing.T) {
	cases := []struct {
		name string
		tmpl Template
	}{
		{"unknown recurrence", Template{Recurrence: "Monthly"}},
		{"one-time without date", Template{Recurrence: record.RecurrenceOneTime}},
		{"weekly bad weekday", Template{Recurrence: record.RecurrenceWeekly, Weekday: "Mondy", StartDate: day("2025-01-06"), EndDate: day("2025-01-20")}},
		{"weekly end before start", Template{Recurrence: record.RecurrenceWeekly, Weekday: "Monday", StartDate: day("2025-01-20"), EndDate: day("2025-01-06")}},
		{"negative duration", Template{Recurrence: record.RecurrenceOneTime, Date: day("2025-01-06"), PlannedDurationHours: -1}},
	}

	for _, tc := range cases {
		if _, err := Expand(tc.tmpl, day("2025-01-01")); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

// TestExpandWeeklyNoMatch checks an empty expansion when no day in the
// range matches.
func TestExpandWeeklyNoMatch(t *testing.T) {
	entries, err := Expand(Template{
		Priority:             "Music",
		PlannedDurationHours: 1,
		Recurrence:           record.RecurrenceWeekly,
		Weekday:              "Sunday",
		StartDate:            day("2025-01-06"), // Monday
		EndDate:              day("2025-01-10"), // Friday
	}, day("2025-01-01"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}
