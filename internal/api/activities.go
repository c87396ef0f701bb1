package api

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/kalambet/priotrack/internal/analytics"
	"github.com/kalambet/priotrack/internal/record"
	"github.com/kalambet/priotrack/internal/store"
)

type LogActivityRequest struct {
	Timestamp     string  `json:"timestamp"`
	Priority      string  `json:"priority"`
	Description   string  `json:"description"`
	DurationHours float64 `json:"duration_hours"`
	Remarks       string  `json:"remarks"`
	// FromTimer takes the duration from the session timer instead of the
	// request, and resets the timer once the activity is stored.
	FromTimer bool `json:"from_timer"`
}

type activityJSON struct {
	Timestamp     string  `json:"timestamp"`
	Priority      string  `json:"priority"`
	Description   string  `json:"description"`
	DurationHours float64 `json:"duration_hours"`
	Remarks       string  `json:"remarks,omitempty"`
}

func activityToJSON(a record.ActivityRecord) activityJSON {
	return activityJSON{
		Timestamp:     a.Timestamp.Format(record.TimestampLayout),
		Priority:      a.Priority,
		Description:   a.Description,
		DurationHours: a.DurationHours,
		Remarks:       a.Remarks,
	}
}

func handleLogActivity(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req LogActivityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if !record.ValidPriority(req.Priority) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown priority %q", req.Priority)
			return
		}
		if req.Description == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "description is required")
			return
		}

		now := deps.now()

		duration := req.DurationHours
		if req.FromTimer {
			duration = math.Round(deps.Timer.Elapsed(now)/3600*100) / 100
		}
		if duration < 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "duration must be non-negative")
			return
		}

		ts := now
		if req.Timestamp != "" {
			parsed, err := deps.Norm.ParseTimestamp(req.Timestamp)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid timestamp: %v", err)
				return
			}
			ts = parsed
		}

		rec := record.ActivityRecord{
			Timestamp:     ts,
			Priority:      req.Priority,
			Description:   req.Description,
			DurationHours: duration,
			Remarks:       req.Remarks,
		}
		if err := deps.Store.Append(store.TableActivityLog, rec.Row()); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to store activity: %v", err)
			return
		}

		if req.FromTimer {
			deps.Timer.Reset()
		}

		writeJSON(w, map[string]any{
			"status":   "logged",
			"activity": activityToJSON(rec),
		})
	}
}

func handleListActivities(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		win, err := windowParam(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		records, warnings, err := deps.loadActivities()
		if err != nil {
			storeError(w, err, "failed to load activities")
			return
		}

		records = analytics.FilterActivities(records, deps.now(), win)

		out := make([]activityJSON, 0, len(records))
		for _, rec := range records {
			out = append(out, activityToJSON(rec))
		}
		writeJSON(w, map[string]any{
			"activities": out,
			"warnings":   warningStrings(warnings),
		})
	}
}
