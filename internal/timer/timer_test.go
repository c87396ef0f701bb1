package timer

import (
	"testing"
	"time"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestStartStopAccumulates(t *testing.T) {
	var s Session

	s.Start(base)
	s.Stop(base.Add(90 * time.Second))

	if got := s.Elapsed(base.Add(10 * time.Minute)); got != 90 {
		t.Errorf("expected 90s, got %v", got)
	}
}

// TestElapsedWhileRunning checks reading elapsed time mid-run includes the
// in-flight segment without mutating the session.
func TestElapsedWhileRunning(t *testing.T) {
	var s Session

	s.Start(base)
	if got := s.Elapsed(base.Add(30 * time.Second)); got != 30 {
		t.Errorf("expected 30s mid-run, got %v", got)
	}
	// A later read sees more time; the earlier read lost nothing.
	if got := s.Elapsed(base.Add(60 * time.Second)); got != 60 {
		t.Errorf("expected 60s mid-run, got %v", got)
	}
}

// TestMultipleRunsAccumulate checks stop/start cycles fold every run into
// the total.
func TestMultipleRunsAccumulate(t *testing.T) {
	var s Session

	s.Start(base)
	s.Stop(base.Add(60 * time.Second))
	s.Start(base.Add(5 * time.Minute))
	s.Stop(base.Add(5*time.Minute + 30*time.Second))

	if got := s.Elapsed(base.Add(time.Hour)); got != 90 {
		t.Errorf("expected 90s over two runs, got %v", got)
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	var s Session

	s.Start(base)
	s.Start(base.Add(20 * time.Second)) // must not restart the run
	s.Stop(base.Add(60 * time.Second))

	if got := s.Elapsed(base.Add(time.Hour)); got != 60 {
		t.Errorf("expected 60s, got %v", got)
	}
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	var s Session

	s.Stop(base)
	if got := s.Elapsed(base); got != 0 {
		t.Errorf("expected 0s, got %v", got)
	}
}

func TestReset(t *testing.T) {
	var s Session

	s.Start(base)
	s.Stop(base.Add(45 * time.Second))
	s.Reset()

	if got := s.Elapsed(base.Add(time.Hour)); got != 0 {
		t.Errorf("expected 0s after reset, got %v", got)
	}
	state := s.Snapshot(base.Add(time.Hour))
	if state.Running {
		t.Error("expected idle after reset")
	}
}

func TestSnapshot(t *testing.T) {
	var s Session

	s.Start(base)
	state := s.Snapshot(base.Add(90 * time.Minute))

	if !state.Running {
		t.Error("expected running")
	}
	if state.ElapsedHours != 1.5 {
		t.Errorf("expected 1.5h, got %v", state.ElapsedHours)
	}
	if state.Display != "01:30:00" {
		t.Errorf("expected 01:30:00, got %s", state.Display)
	}
}

func TestFormatHHMMSS(t *testing.T) {
	cases := map[float64]string{
		0:       "00:00:00",
		59:      "00:00:59",
		61:      "00:01:01",
		3661:    "01:01:01",
		86400:   "24:00:00",
		5025.75: "01:23:45",
	}
	for seconds, want := range cases {
		if got := FormatHHMMSS(seconds); got != want {
			t.Errorf("FormatHHMMSS(%v) = %s, want %s", seconds, got, want)
		}
	}
}
