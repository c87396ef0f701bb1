package record

import (
	"errors"
	"testing"
	"time"

	"github.com/kalambet/priotrack/internal/timeutil"
)

func newNorm(t *testing.T) *timeutil.Normalizer {
	t.Helper()
	n, err := timeutil.NewNormalizer("Asia/Kolkata")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return n
}

func TestActivityFromRow(t *testing.T) {
	n := newNorm(t)

	row := map[string]string{
		"Timestamp":            "2025-03-10 08:30:00",
		"Priority":             "Fitness",
		"Activity_Description": "Morning run",
		"Duration":             "1.5",
		"Remarks":              "felt good",
	}

	rec, err := ActivityFromRow(row, n)
	if err != nil {
		t.Fatalf("ActivityFromRow: %v", err)
	}
	if rec.Priority != "Fitness" || rec.Description != "Morning run" || rec.Remarks != "felt good" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.DurationHours != 1.5 {
		t.Errorf("expected duration 1.5, got %v", rec.DurationHours)
	}
	if timeutil.DateKey(rec.Timestamp) != "2025-03-10" {
		t.Errorf("unexpected timestamp %v", rec.Timestamp)
	}
}

func TestActivityFromRowMissingColumn(t *testing.T) {
	n := newNorm(t)

	row := map[string]string{
		"Timestamp": "2025-03-10 08:30:00",
		"Priority":  "Fitness",
		// no Duration column at all
	}

	_, err := ActivityFromRow(row, n)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if missing.Column != "Duration" {
		t.Errorf("expected Duration, got %q", missing.Column)
	}
}

func TestActivityFromRowMalformedTimestamp(t *testing.T) {
	n := newNorm(t)

	row := map[string]string{
		"Timestamp": "last tuesday",
		"Priority":  "Career",
		"Duration":  "2",
	}

	_, err := ActivityFromRow(row, n)
	if !errors.Is(err, timeutil.ErrMalformedTimestamp) {
		t.Fatalf("expected ErrMalformedTimestamp, got %v", err)
	}
}

func TestActivityFromRowNegativeDuration(t *testing.T) {
	n := newNorm(t)

	row := map[string]string{
		"Timestamp": "2025-03-10 08:30:00",
		"Priority":  "Career",
		"Duration":  "-1",
	}

	if _, err := ActivityFromRow(row, n); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestScheduleFromRow(t *testing.T) {
	n := newNorm(t)

	row := map[string]string{
		"Date":             "2025-02-01",
		"Time":             "07:00",
		"Priority":         "Career",
		"Planned_Activity": "Deep work",
		"Planned_Duration": "2",
		"Recurrence":       RecurrenceOneTime,
		"Status":           StatusPending,
		"Batch_ID":         "b-1",
	}

	entry, err := ScheduleFromRow(row, n)
	if err != nil {
		t.Fatalf("ScheduleFromRow: %v", err)
	}
	if entry.PlannedDurationHours != 2 || entry.Priority != "Career" || entry.BatchID != "b-1" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Date.Hour() != 0 {
		t.Errorf("date not truncated to midnight: %v", entry.Date)
	}
}

// TestActivityRowRoundTrip appends via Row() and parses the result back,
// checking priority, duration, and description survive and the timestamp
// represents the same instant.
func TestActivityRowRoundTrip(t *testing.T) {
	n := newNorm(t)

	ts, err := n.ParseTimestamp("2025-03-10 08:30:00")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	orig := ActivityRecord{
		Timestamp:     ts,
		Priority:      "Music",
		Description:   "Piano practice",
		DurationHours: 0.75,
		Remarks:       "scales",
	}

	values := orig.Row()
	row := make(map[string]string, len(ActivityColumns))
	for i, col := range ActivityColumns {
		row[col] = values[i]
	}

	got, err := ActivityFromRow(row, n)
	if err != nil {
		t.Fatalf("ActivityFromRow: %v", err)
	}
	if got.Priority != orig.Priority || got.Description != orig.Description || got.DurationHours != orig.DurationHours {
		t.Errorf("round-trip mismatch: got %+v want %+v", got, orig)
	}
	if !got.Timestamp.Equal(orig.Timestamp) {
		t.Errorf("instant changed in round-trip: %v -> %v", orig.Timestamp, got.Timestamp)
	}
}

func TestParseActivitiesSkipsBadRows(t *testing.T) {
	n := newNorm(t)

	rows := []map[string]string{
		{"Timestamp": "2025-03-10 08:30:00", "Priority": "Fitness", "Duration": "1"},
		{"Timestamp": "garbage", "Priority": "Fitness", "Duration": "1"},
		{"Timestamp": "2025-03-11 09:00:00", "Priority": "Career", "Duration": "2"},
	}

	records, errs := ParseActivities(rows, n)
	if len(records) != 2 {
		t.Fatalf("expected 2 surviving records, got %d", len(records))
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 row error, got %d", len(errs))
	}
	if errs[0].Index != 1 {
		t.Errorf("expected error on row index 1, got %d", errs[0].Index)
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range Priorities {
		if !ValidPriority(p) {
			t.Errorf("%q should be valid", p)
		}
	}
	if ValidPriority("Gardening") {
		t.Error("unknown priority accepted")
	}
}

func TestValidRecurrence(t *testing.T) {
	for _, k := range []string{RecurrenceOneTime, RecurrenceDaily, RecurrenceWeekly} {
		if !ValidRecurrence(k) {
			t.Errorf("%q should be valid", k)
		}
	}
	if ValidRecurrence("Monthly") {
		t.Error("unknown recurrence accepted")
	}
}

func TestScheduleRowOrder(t *testing.T) {
	entry := ScheduleEntry{
		Date:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Priority:   "Career",
		Recurrence: RecurrenceOneTime,
		Status:     StatusPending,
	}
	values := entry.Row()
	if len(values) != len(ScheduleColumns) {
		t.Fatalf("row length %d != column count %d", len(values), len(ScheduleColumns))
	}
	if values[0] != "2025-02-01" {
		t.Errorf("expected date first, got %q", values[0])
	}
	if values[6] != StatusPending {
		t.Errorf("expected status at index 6, got %q", values[6])
	}
}
