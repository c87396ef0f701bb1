package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kalambet/priotrack/internal/analytics"
	"github.com/kalambet/priotrack/internal/planner"
	"github.com/kalambet/priotrack/internal/record"
	"github.com/kalambet/priotrack/internal/store"
	"github.com/kalambet/priotrack/internal/timeutil"
)

type AddScheduleRequest struct {
	Date                 string  `json:"date"`
	Time                 string  `json:"time"`
	Priority             string  `json:"priority"`
	PlannedActivity      string  `json:"planned_activity"`
	PlannedDurationHours float64 `json:"planned_duration_hours"`
	Recurrence           string  `json:"recurrence"`
	Weekday              string  `json:"weekday"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
}

type scheduleJSON struct {
	Date                 string  `json:"date"`
	Time                 string  `json:"time,omitempty"`
	Priority             string  `json:"priority"`
	PlannedActivity      string  `json:"planned_activity"`
	PlannedDurationHours float64 `json:"planned_duration_hours"`
	Recurrence           string  `json:"recurrence"`
	Status               string  `json:"status"`
	BatchID              string  `json:"batch_id,omitempty"`
}

func scheduleToJSON(e record.ScheduleEntry) scheduleJSON {
	return scheduleJSON{
		Date:                 timeutil.DateKey(e.Date),
		Time:                 e.TimeOfDay,
		Priority:             e.Priority,
		PlannedActivity:      e.PlannedActivity,
		PlannedDurationHours: e.PlannedDurationHours,
		Recurrence:           e.Recurrence,
		Status:               e.Status,
		BatchID:              e.BatchID,
	}
}

func handleAddSchedule(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req AddScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if !record.ValidPriority(req.Priority) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown priority %q", req.Priority)
			return
		}
		if req.PlannedActivity == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "planned_activity is required")
			return
		}
		if !record.ValidRecurrence(req.Recurrence) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown recurrence %q", req.Recurrence)
			return
		}

		tmpl := planner.Template{
			TimeOfDay:            req.Time,
			Priority:             req.Priority,
			PlannedActivity:      req.PlannedActivity,
			PlannedDurationHours: req.PlannedDurationHours,
			Recurrence:           req.Recurrence,
			Weekday:              req.Weekday,
		}

		var err error
		if tmpl.Date, err = parseOptionalDate(deps, req.Date); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid date: %v", err)
			return
		}
		if tmpl.StartDate, err = parseOptionalDate(deps, req.StartDate); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid start_date: %v", err)
			return
		}
		if tmpl.EndDate, err = parseOptionalDate(deps, req.EndDate); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid end_date: %v", err)
			return
		}

		entries, err := planner.Expand(tmpl, deps.now())
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		if len(entries) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error",
				"no %s falls between %s and %s", req.Weekday, req.StartDate, req.EndDate)
			return
		}

		for _, e := range entries {
			if err := deps.Store.Append(store.TableSchedule, e.Row()); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to store schedule entry: %v", err)
				return
			}
		}

		out := make([]scheduleJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, scheduleToJSON(e))
		}
		writeJSON(w, map[string]any{
			"status":   "scheduled",
			"batch_id": entries[0].BatchID,
			"entries":  out,
		})
	}
}

func parseOptionalDate(deps AppDeps, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return deps.Norm.ParseDate(raw)
}

func handleListSchedule(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		win, err := windowParam(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		entries, warnings, err := deps.loadSchedule()
		if err != nil {
			storeError(w, err, "failed to load schedule")
			return
		}

		now := deps.now()
		if r.URL.Query().Get("date") == "today" {
			today := timeutil.DateKey(now)
			kept := entries[:0]
			for _, e := range entries {
				if timeutil.DateKey(e.Date) == today {
					kept = append(kept, e)
				}
			}
			entries = kept
		} else {
			entries = analytics.FilterSchedule(entries, now, win)
		}

		out := make([]scheduleJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, scheduleToJSON(e))
		}
		writeJSON(w, map[string]any{
			"entries":  out,
			"warnings": warningStrings(warnings),
		})
	}
}
