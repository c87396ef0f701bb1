// Package api exposes the tracker over a local HTTP surface: logging
// activities, planning schedules, reading analytics, and driving the
// session timer. Handlers are closures over an AppDeps struct so tests can
// wire in-memory stores and fixed clocks.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/priotrack/internal/analytics"
	"github.com/kalambet/priotrack/internal/store"
	"github.com/kalambet/priotrack/internal/timer"
	"github.com/kalambet/priotrack/internal/timeutil"
)

const maxRequestBodySize = 1 << 20 // 1MB

type AppDeps struct {
	Store *store.Store
	Norm  *timeutil.Normalizer
	Timer *timer.Session
	Token string
	Now   func() time.Time // optional; defaults to the canonical-zone clock
}

func (d AppDeps) now() time.Time {
	if d.Now != nil {
		return d.Norm.Normalize(d.Now())
	}
	return d.Norm.Now()
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth(deps))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/activities", handleLogActivity(deps))
		r.Get("/activities", handleListActivities(deps))
		r.Post("/schedule", handleAddSchedule(deps))
		r.Get("/schedule", handleListSchedule(deps))
		r.Get("/kpis", handleKPIs(deps))
		r.Get("/streaks", handleStreaks(deps))
		r.Get("/plan-vs-actual", handlePlanVsActual(deps))
		r.Get("/report", handleReport(deps))
		r.Post("/timer/start", handleTimerStart(deps))
		r.Post("/timer/stop", handleTimerStop(deps))
		r.Post("/timer/reset", handleTimerReset(deps))
		r.Get("/timer", handleTimerState(deps))
	})

	return r
}

func handleHealth(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// windowParam parses the ?window= query parameter, defaulting to all-time.
func windowParam(r *http.Request) (analytics.Window, error) {
	return analytics.ParseWindow(r.URL.Query().Get("window"))
}
