package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BackendURL != "http://localhost:8000" {
		t.Errorf("BackendURL = %s", cfg.BackendURL)
	}
	if !cfg.DesktopNotifications {
		t.Error("desktop notifications should default on")
	}

	m := cfg.Monitor
	if m.Tick() != time.Second {
		t.Errorf("Tick = %v, want 1s", m.Tick())
	}
	if m.PresencePoll() != 5*time.Second {
		t.Errorf("PresencePoll = %v, want 5s", m.PresencePoll())
	}
	if m.DistractedAfter() != 60*time.Second {
		t.Errorf("DistractedAfter = %v, want 60s", m.DistractedAfter())
	}
	if m.AwayAfter() != 180*time.Second {
		t.Errorf("AwayAfter = %v, want 180s", m.AwayAfter())
	}
	if m.Cooldown() != 10*time.Second {
		t.Errorf("Cooldown = %v, want 10s", m.Cooldown())
	}
	if m.FocusLossDedupe() != time.Second {
		t.Errorf("FocusLossDedupe = %v, want 1s", m.FocusLossDedupe())
	}
	if m.BotMaxStdDev() != 20*time.Millisecond {
		t.Errorf("BotMaxStdDev = %v, want 20ms", m.BotMaxStdDev())
	}
	if m.BotMinMean() != time.Second {
		t.Errorf("BotMinMean = %v, want 1s", m.BotMinMean())
	}
	if m.PresenceGracePolls != 2 {
		t.Errorf("PresenceGracePolls = %d, want 2", m.PresenceGracePolls)
	}
}

func TestLoadFromFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
backend_url: https://focus.example.com
monitor:
  distracted_after_seconds: 90
  cooldown_seconds: 30
camera:
  enabled: true
  device: /dev/video2
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.BackendURL != "https://focus.example.com" {
		t.Errorf("BackendURL = %s", cfg.BackendURL)
	}
	if cfg.Monitor.DistractedAfter() != 90*time.Second {
		t.Errorf("DistractedAfter = %v, want 90s", cfg.Monitor.DistractedAfter())
	}
	if cfg.Monitor.Cooldown() != 30*time.Second {
		t.Errorf("Cooldown = %v, want 30s", cfg.Monitor.Cooldown())
	}
	// Untouched keys keep their defaults.
	if cfg.Monitor.AwayAfter() != 180*time.Second {
		t.Errorf("AwayAfter = %v, want default 180s", cfg.Monitor.AwayAfter())
	}
	if !cfg.Camera.Enabled || cfg.Camera.Device != "/dev/video2" {
		t.Errorf("camera config = %+v", cfg.Camera)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandTilde("~/data"); got != filepath.Join(home, "data") {
		t.Errorf("expandTilde(~/data) = %s", got)
	}
	if got := expandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("expandTilde(/abs/path) = %s", got)
	}
}
