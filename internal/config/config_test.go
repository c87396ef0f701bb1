package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeBackend is an in-memory test double for the Backend interface.
type fakeBackend struct {
	strings map[string]string
	ints    map[string]int
}

func (f *fakeBackend) GetString(key string) (string, bool, error) {
	v, ok := f.strings[key]
	return v, ok, nil
}

func (f *fakeBackend) GetInt(key string) (int, bool, error) {
	v, ok := f.ints[key]
	return v, ok, nil
}

func (f *fakeBackend) SetString(key, val string) error {
	if f.strings == nil {
		f.strings = make(map[string]string)
	}
	f.strings[key] = val
	return nil
}

func (f *fakeBackend) SetInt(key string, val int) error {
	if f.ints == nil {
		f.ints = make(map[string]int)
	}
	f.ints[key] = val
	return nil
}

func (f *fakeBackend) Delete(key string) error {
	delete(f.strings, key)
	delete(f.ints, key)
	return nil
}

// TestDefaults verifies all default values are applied with an empty backend.
func TestDefaults(t *testing.T) {
	for _, s := range specs {
		t.Setenv(s.env, "")
	}

	cfg, err := loadWith(&fakeBackend{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4600 {
		t.Errorf("Server.Port = %d, want 4600", cfg.Server.Port)
	}
	if cfg.Time.Zone != "Asia/Kolkata" {
		t.Errorf("Time.Zone = %q, want %q", cfg.Time.Zone, "Asia/Kolkata")
	}
	if cfg.Input.DurationStep != 0.25 {
		t.Errorf("Input.DurationStep = %v, want 0.25", cfg.Input.DurationStep)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
}

// TestBackendValues verifies that backend values override defaults.
func TestBackendValues(t *testing.T) {
	for _, s := range specs {
		t.Setenv(s.env, "")
	}

	b := &fakeBackend{
		strings: map[string]string{
			"time.zone":           "UTC",
			"storage.data_dir":    "/tmp/trackdata",
			"input.duration_step": "0.5",
			"log.level":           "debug",
		},
		ints: map[string]int{
			"server.port": 5800,
		},
	}

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5800 {
		t.Errorf("Server.Port = %d, want 5800", cfg.Server.Port)
	}
	if cfg.Time.Zone != "UTC" {
		t.Errorf("Time.Zone = %q, want %q", cfg.Time.Zone, "UTC")
	}
	if cfg.Storage.DataDir != "/tmp/trackdata" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/trackdata")
	}
	if cfg.Input.DurationStep != 0.5 {
		t.Errorf("Input.DurationStep = %v, want 0.5", cfg.Input.DurationStep)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

// TestEnvOverride verifies that environment variables beat backend values.
func TestEnvOverride(t *testing.T) {
	b := &fakeBackend{
		strings: map[string]string{"time.zone": "UTC"},
		ints:    map[string]int{"server.port": 5800},
	}

	t.Setenv("PRIOTRACK_SERVER_PORT", "7000")
	t.Setenv("PRIOTRACK_TIME_ZONE", "America/New_York")
	t.Setenv("PRIOTRACK_INPUT_DURATION_STEP", "1.0")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Time.Zone != "America/New_York" {
		t.Errorf("Time.Zone = %q, want %q", cfg.Time.Zone, "America/New_York")
	}
	if cfg.Input.DurationStep != 1.0 {
		t.Errorf("Input.DurationStep = %v, want 1.0", cfg.Input.DurationStep)
	}
}

// TestBadEnvValueFallsBack verifies unparsable env values keep the default.
func TestBadEnvValueFallsBack(t *testing.T) {
	t.Setenv("PRIOTRACK_SERVER_PORT", "not-a-number")
	t.Setenv("PRIOTRACK_INPUT_DURATION_STEP", "wide")

	cfg, err := loadWith(&fakeBackend{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4600 {
		t.Errorf("Server.Port = %d, want default 4600", cfg.Server.Port)
	}
	if cfg.Input.DurationStep != 0.25 {
		t.Errorf("Input.DurationStep = %v, want default 0.25", cfg.Input.DurationStep)
	}
}

func TestShowAllCoversEveryKey(t *testing.T) {
	infos := ShowAll(defaults())
	if len(infos) != len(specs) {
		t.Fatalf("ShowAll returned %d entries, want %d", len(infos), len(specs))
	}
	for _, info := range infos {
		if info.Key == "" || info.EnvVar == "" {
			t.Errorf("incomplete key info: %+v", info)
		}
	}
}

func TestSetKeyUnknown(t *testing.T) {
	err := SetKey("no.such_key", "1")
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("SetKey = %v, want unknown key error", err)
	}
}

func TestGetAPIToken(t *testing.T) {
	dir := t.TempDir()

	token, err := GetAPIToken(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	again, err := GetAPIToken(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != token {
		t.Error("second call returned a different token")
	}

	data, err := os.ReadFile(filepath.Join(dir, "api_token"))
	if err != nil {
		t.Fatalf("reading persisted token: %v", err)
	}
	if strings.TrimSpace(string(data)) != token {
		t.Error("persisted token does not match returned token")
	}
}
