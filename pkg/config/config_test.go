package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.General.LogLevel)
	}
	if cfg.Sync.Timeout.Duration != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Sync.Timeout)
	}
	want := []string{"polybar", "lemonbar", "dunst"}
	if !reflect.DeepEqual(cfg.Apply.KillPrevious, want) {
		t.Errorf("kill_previous = %v, want %v", cfg.Apply.KillPrevious, want)
	}
}

func TestLoadFromReader_Sections(t *testing.T) {
	doc := `
[general]
log_level = "debug"
base_dir = "/tmp/raven"

[sync]
timeout = "5s"
host = "https://hub.example"

[apply]
kill_previous = ["polybar"]
watch_debounce = "2s"
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.Level())
	}
	if cfg.General.BaseDir != "/tmp/raven" {
		t.Errorf("base_dir = %q", cfg.General.BaseDir)
	}
	if cfg.Sync.Timeout.Duration != 5*time.Second || cfg.Sync.Host != "https://hub.example" {
		t.Errorf("sync = %+v", cfg.Sync)
	}
	if !reflect.DeepEqual(cfg.Apply.KillPrevious, []string{"polybar"}) {
		t.Errorf("kill_previous = %v", cfg.Apply.KillPrevious)
	}
	if cfg.Apply.WatchDebounce.Duration != 2*time.Second {
		t.Errorf("watch_debounce = %v", cfg.Apply.WatchDebounce)
	}
	// Untouched defaults survive.
	if cfg.Sync.TempDir == "" {
		t.Error("temp_dir default lost")
	}
}

func TestLoadFromReader_IntegerSeconds(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader("[sync]\ntimeout = 12"))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Sync.Timeout.Duration != 12*time.Second {
		t.Errorf("timeout = %v, want 12s", cfg.Sync.Timeout)
	}
}

func TestLoadFromReader_BadDuration(t *testing.T) {
	for _, v := range []string{`"soon"`, `"-1s"`, `-3`, `1.5`, `true`} {
		if _, err := LoadFromReader(strings.NewReader("[sync]\ntimeout = " + v)); err == nil {
			t.Errorf("timeout = %s accepted", v)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RAVEN_LOG_LEVEL", "warn")
	t.Setenv("RAVEN_BASE_DIR", "/srv/raven")
	t.Setenv("RAVEN_HOST", "http://localhost:8000")

	cfg, err := LoadFromReader(strings.NewReader("[general]\nlog_level = \"debug\""))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Level() != slog.LevelWarn {
		t.Errorf("env should win over file: level = %v", cfg.Level())
	}
	if cfg.General.BaseDir != "/srv/raven" || cfg.Sync.Host != "http://localhost:8000" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.General.LogLevel)
	}
}

func TestLoad_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "raven"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "raven", SettingsFile), []byte("[general]\nlog_level = \"error\""), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Level() != slog.LevelError {
		t.Errorf("level = %v", cfg.Level())
	}
}
