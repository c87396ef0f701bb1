package api

import "net/http"

func handleTimerStart(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := deps.now()
		deps.Timer.Start(now)
		writeJSON(w, deps.Timer.Snapshot(now))
	}
}

func handleTimerStop(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := deps.now()
		deps.Timer.Stop(now)
		writeJSON(w, deps.Timer.Snapshot(now))
	}
}

func handleTimerReset(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Timer.Reset()
		writeJSON(w, deps.Timer.Snapshot(deps.now()))
	}
}

func handleTimerState(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, deps.Timer.Snapshot(deps.now()))
	}
}
