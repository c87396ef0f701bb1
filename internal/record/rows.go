package record

import (
	"fmt"
	"strconv"

	"github.com/kalambet/priotrack/internal/timeutil"
)

// Column names of the two logical tables, in the fixed append order. The
// names mirror the header row of the original spreadsheet deployment.
var (
	ActivityColumns = []string{"Timestamp", "Priority", "Activity_Description", "Duration", "Remarks"}
	ScheduleColumns = []string{"Date", "Time", "Priority", "Planned_Activity", "Planned_Duration", "Recurrence", "Status", "Batch_ID"}
)

// TimestampLayout is the wall-clock layout activity timestamps are written
// with. It carries no zone; the canonical zone is implied.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the layout schedule dates are written with.
const DateLayout = "2006-01-02"

// RowError ties a parse failure to the row it occurred on, so a bad row
// can be reported without blocking the rest of the load.
type RowError struct {
	Index int // zero-based position in the scanned table
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index+1, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ActivityFromRow parses one column-keyed store row into an ActivityRecord,
// normalizing the timestamp into the canonical zone.
func ActivityFromRow(row map[string]string, norm *timeutil.Normalizer) (ActivityRecord, error) {
	rawTS, ok := row["Timestamp"]
	if !ok {
		return ActivityRecord{}, &MissingColumnError{Column: "Timestamp"}
	}
	ts, err := norm.ParseTimestamp(rawTS)
	if err != nil {
		return ActivityRecord{}, err
	}

	dur, err := durationFromRow(row, "Duration")
	if err != nil {
		return ActivityRecord{}, err
	}

	priority, ok := row["Priority"]
	if !ok {
		return ActivityRecord{}, &MissingColumnError{Column: "Priority"}
	}

	return ActivityRecord{
		Timestamp:     ts,
		Priority:      priority,
		Description:   row["Activity_Description"],
		DurationHours: dur,
		Remarks:       row["Remarks"],
	}, nil
}

// ScheduleFromRow parses one column-keyed store row into a ScheduleEntry.
func ScheduleFromRow(row map[string]string, norm *timeutil.Normalizer) (ScheduleEntry, error) {
	rawDate, ok := row["Date"]
	if !ok {
		return ScheduleEntry{}, &MissingColumnError{Column: "Date"}
	}
	date, err := norm.ParseDate(rawDate)
	if err != nil {
		return ScheduleEntry{}, err
	}

	dur, err := durationFromRow(row, "Planned_Duration")
	if err != nil {
		return ScheduleEntry{}, err
	}

	priority, ok := row["Priority"]
	if !ok {
		return ScheduleEntry{}, &MissingColumnError{Column: "Priority"}
	}

	return ScheduleEntry{
		Date:                 date,
		TimeOfDay:            row["Time"],
		Priority:             priority,
		PlannedActivity:      row["Planned_Activity"],
		PlannedDurationHours: dur,
		Recurrence:           row["Recurrence"],
		Status:               row["Status"],
		BatchID:              row["Batch_ID"],
	}, nil
}

func durationFromRow(row map[string]string, column string) (float64, error) {
	raw, ok := row[column]
	if !ok {
		return 0, &MissingColumnError{Column: column}
	}
	if raw == "" {
		return 0, nil
	}
	dur, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", column, raw, err)
	}
	if dur < 0 {
		return 0, fmt.Errorf("%s must be non-negative, got %v", column, dur)
	}
	return dur, nil
}

// Row renders the record as positional values in ActivityColumns order.
func (a ActivityRecord) Row() []string {
	return []string{
		a.Timestamp.Format(TimestampLayout),
		a.Priority,
		a.Description,
		formatHours(a.DurationHours),
		a.Remarks,
	}
}

// Row renders the entry as positional values in ScheduleColumns order.
func (s ScheduleEntry) Row() []string {
	return []string{
		s.Date.Format(DateLayout),
		s.TimeOfDay,
		s.Priority,
		s.PlannedActivity,
		formatHours(s.PlannedDurationHours),
		s.Recurrence,
		s.Status,
		s.BatchID,
	}
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// ParseActivities parses a full table scan. Rows that fail to parse are
// skipped and reported; the surviving records are returned in scan order.
func ParseActivities(rows []map[string]string, norm *timeutil.Normalizer) ([]ActivityRecord, []RowError) {
	records := make([]ActivityRecord, 0, len(rows))
	var errs []RowError
	for i, row := range rows {
		rec, err := ActivityFromRow(row, norm)
		if err != nil {
			errs = append(errs, RowError{Index: i, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

// ParseSchedule parses a full schedule table scan with the same skip-and-
// report policy as ParseActivities.
func ParseSchedule(rows []map[string]string, norm *timeutil.Normalizer) ([]ScheduleEntry, []RowError) {
	entries := make([]ScheduleEntry, 0, len(rows))
	var errs []RowError
	for i, row := range rows {
		entry, err := ScheduleFromRow(row, norm)
		if err != nil {
			errs = append(errs, RowError{Index: i, Err: err})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, errs
}
