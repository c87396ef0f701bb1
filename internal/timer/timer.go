// Package timer holds the session activity timer used to pre-fill logged
// durations. The session is an explicit object fed now-instants by its
// caller — never ambient global state — so accumulated time survives any
// number of recomputation passes and stays testable.
package timer

import (
	"fmt"
	"sync"
	"time"
)

// Session is the timer state: whether it is running, when the current run
// started, and the seconds accumulated across previous runs.
type Session struct {
	mu          sync.Mutex
	running     bool
	startedAt   time.Time
	accumulated float64 // seconds from completed runs
}

// State is a read-only snapshot of the session.
type State struct {
	Running        bool    `json:"running"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	ElapsedHours   float64 `json:"elapsed_hours"`
	Display        string  `json:"display"`
}

// Start begins a run. Starting an already-running session is a no-op.
func (s *Session) Start(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.startedAt = now
}

// Stop ends the current run, folding its duration into the accumulated
// total. Stopping an idle session is a no-op.
func (s *Session) Stop(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.accumulated += now.Sub(s.startedAt).Seconds()
	s.running = false
	s.startedAt = time.Time{}
}

// Reset clears the session, running or not.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.startedAt = time.Time{}
	s.accumulated = 0
}

// Elapsed returns the total elapsed seconds: accumulated time plus the
// in-flight run if one is active. Reading does not change the session.
func (s *Session) Elapsed(now time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := s.accumulated
	if s.running {
		elapsed += now.Sub(s.startedAt).Seconds()
	}
	return elapsed
}

// Snapshot returns the session state at now.
func (s *Session) Snapshot(now time.Time) State {
	elapsed := s.Elapsed(now)
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	return State{
		Running:        running,
		ElapsedSeconds: elapsed,
		ElapsedHours:   elapsed / 3600,
		Display:        FormatHHMMSS(elapsed),
	}
}

// FormatHHMMSS renders seconds as HH:MM:SS.
func FormatHHMMSS(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
