package api

import (
	"errors"
	"net/http"
	"sort"

	"github.com/kalambet/priotrack/internal/analytics"
	"github.com/kalambet/priotrack/internal/record"
	"github.com/kalambet/priotrack/internal/store"
)

func handleKPIs(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		win, err := windowParam(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		records, _, err := deps.loadActivities()
		if err != nil {
			storeError(w, err, "failed to load activities")
			return
		}
		records = analytics.FilterActivities(records, deps.now(), win)

		kpis, err := analytics.ComputeKPIs(records)
		if errors.Is(err, analytics.ErrInsufficientData) {
			httpError(w, http.StatusNotFound, "not_found", "no activity data in window %q", win)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}
		writeJSON(w, kpis)
	}
}

func handleStreaks(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		win, err := windowParam(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		records, _, err := deps.loadActivities()
		if err != nil {
			storeError(w, err, "failed to load activities")
			return
		}
		records = analytics.FilterActivities(records, deps.now(), win)

		writeJSON(w, analytics.Streaks(records))
	}
}

func handlePlanVsActual(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		win, err := windowParam(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		snap := deps.loadSnapshot()
		if err := snap.err(); err != nil {
			storeError(w, err, "failed to load records")
			return
		}

		now := deps.now()
		entries := analytics.FilterSchedule(snap.schedule, now, win)
		activities := analytics.FilterActivities(snap.activities, now, win)

		writeJSON(w, analytics.Reconcile(entries, activities))
	}
}

// Report is the whole dashboard in one response. Sections fail
// independently: a section that cannot be computed carries an error string
// while the rest render.
type Report struct {
	Window           string                      `json:"window"`
	KPIs             *analytics.KPIs             `json:"kpis,omitempty"`
	KPIsError        string                      `json:"kpis_error,omitempty"`
	Streaks          map[string]analytics.Streak `json:"streaks,omitempty"`
	StreaksError     string                      `json:"streaks_error,omitempty"`
	PlanVsActual     *analytics.Reconciliation   `json:"plan_vs_actual,omitempty"`
	PlanVsActualErr  string                      `json:"plan_vs_actual_error,omitempty"`
	DailyTotals      []analytics.DailyTotal      `json:"daily_totals,omitempty"`
	RecentActivities []activityJSON              `json:"recent_activities,omitempty"`
	Warnings         []string                    `json:"warnings,omitempty"`
}

const recentActivityCount = 5

func handleReport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		win, err := windowParam(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		snap := deps.loadSnapshot()
		now := deps.now()

		rep := Report{Window: win.String()}
		rep.Warnings = append(warningStrings(snap.activityWarn), warningStrings(snap.scheduleWarn)...)

		if snap.activityErr != nil {
			msg := "activity log unavailable: " + snap.activityErr.Error()
			rep.KPIsError = msg
			rep.StreaksError = msg
		} else {
			activities := analytics.FilterActivities(snap.activities, now, win)

			if kpis, err := analytics.ComputeKPIs(activities); err != nil {
				rep.KPIsError = err.Error()
			} else {
				rep.KPIs = &kpis
			}
			rep.Streaks = analytics.Streaks(activities)
			rep.DailyTotals = analytics.DailyTotals(activities)
			rep.RecentActivities = recentActivities(activities)
		}

		switch {
		case snap.scheduleErr != nil:
			rep.PlanVsActualErr = "schedule unavailable: " + snap.scheduleErr.Error()
		case snap.activityErr != nil:
			rep.PlanVsActualErr = "activity log unavailable: " + snap.activityErr.Error()
		default:
			rec := analytics.Reconcile(
				analytics.FilterSchedule(snap.schedule, now, win),
				analytics.FilterActivities(snap.activities, now, win),
			)
			rep.PlanVsActual = &rec
		}

		writeJSON(w, rep)
	}
}

// recentActivities returns up to recentActivityCount records, most recent
// first.
func recentActivities(records []record.ActivityRecord) []activityJSON {
	sorted := make([]record.ActivityRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if len(sorted) > recentActivityCount {
		sorted = sorted[:recentActivityCount]
	}
	out := make([]activityJSON, 0, len(sorted))
	for _, rec := range sorted {
		out = append(out, activityToJSON(rec))
	}
	return out
}

func storeError(w http.ResponseWriter, err error, context string) {
	if errors.Is(err, store.ErrUnavailable) {
		httpError(w, http.StatusServiceUnavailable, "api_error", "%s: %v", context, err)
		return
	}
	httpError(w, http.StatusInternalServerError, "api_error", "%s: %v", context, err)
}
