package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dsaboost/internal/platform/config"
)

func TestNewDefaults(t *testing.T) {
	vault := t.TempDir()
	cfg, err := config.New(vault)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join(vault, ".dsaboost", "dsaboost.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.Timer.DefaultDuration != 1500 || cfg.Timer.BreakDuration != 300 {
		t.Fatalf("unexpected timer defaults %+v", cfg.Timer)
	}
	if cfg.Timer.TickInterval != time.Second || !cfg.Timer.AutoComplete {
		t.Fatalf("unexpected tick defaults %+v", cfg.Timer)
	}
	if cfg.Session.StaleAfter != 2*time.Hour {
		t.Fatalf("stale_after should default to 2h, got %s", cfg.Session.StaleAfter)
	}
	if cfg.Mirror.Throttle != 10*time.Second {
		t.Fatalf("throttle should default to 10s, got %s", cfg.Mirror.Throttle)
	}
	if cfg.Functions.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("unexpected model %s", cfg.Functions.OpenAIModel)
	}
	if cfg.Notify.EmailMinMinutes != 5 || !cfg.Notify.Desktop {
		t.Fatalf("unexpected notify defaults %+v", cfg.Notify)
	}
}

func TestNewReadsFileAndEnv(t *testing.T) {
	vault := t.TempDir()
	dir := filepath.Join(vault, ".dsaboost")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	raw := "timer:\n  default_duration: 600\n  tick_interval: 500ms\nmirror:\n  throttle: 3s\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DSABOOST_NOTIFY_EMAIL_MIN_MINUTES", "10")

	cfg, err := config.New(vault)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Timer.DefaultDuration != 600 || cfg.Timer.TickInterval != 500*time.Millisecond {
		t.Fatalf("file values not applied: %+v", cfg.Timer)
	}
	if cfg.Mirror.Throttle != 3*time.Second {
		t.Fatalf("throttle not applied: %s", cfg.Mirror.Throttle)
	}
	if cfg.Notify.EmailMinMinutes != 10 {
		t.Fatalf("env override not applied: %d", cfg.Notify.EmailMinMinutes)
	}
}

func TestNewRejectsIncompleteMirror(t *testing.T) {
	t.Setenv("DSABOOST_MIRROR_ENABLED", "true")
	if _, err := config.New(t.TempDir()); err == nil {
		t.Fatalf("expected error when mirror is enabled without endpoints")
	}
}

func TestNewRequiresVault(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("expected error")
	}
}
