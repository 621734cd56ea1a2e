// Package config handles configuration loading and defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the monitor.
type Config struct {
	BackendURL  string `yaml:"backend_url"`
	StoragePath string `yaml:"storage_path"`

	DesktopNotifications bool `yaml:"desktop_notifications"`

	Monitor MonitorConfig `yaml:"monitor"`
	Camera  CameraConfig  `yaml:"camera"`
}

// MonitorConfig holds the classification thresholds. The bot-detection
// and grace-period values are heuristics, not load-bearing constants;
// they are deliberately tunable here.
type MonitorConfig struct {
	TickSeconds         int `yaml:"tick_seconds"`
	PresencePollSeconds int `yaml:"presence_poll_seconds"`

	DistractedAfterSeconds int `yaml:"distracted_after_seconds"`
	AwayAfterSeconds       int `yaml:"away_after_seconds"`
	CooldownSeconds        int `yaml:"cooldown_seconds"`
	FocusLossDedupeSeconds int `yaml:"focus_loss_dedupe_seconds"`

	BotSampleWindow int `yaml:"bot_sample_window"`
	BotMaxStdDevMs  int `yaml:"bot_max_stddev_ms"`
	BotMinMeanMs    int `yaml:"bot_min_mean_ms"`

	PresenceGracePolls int `yaml:"presence_grace_polls"`
}

// CameraConfig holds camera capture settings.
type CameraConfig struct {
	Enabled bool   `yaml:"enabled"`
	Device  string `yaml:"device"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/tmp"
	}

	return &Config{
		BackendURL:  "http://localhost:8000",
		StoragePath: filepath.Join(home, ".local", "share", "focusflow"),

		DesktopNotifications: true,

		Monitor: MonitorConfig{
			TickSeconds:            1,
			PresencePollSeconds:    5,
			DistractedAfterSeconds: 60,
			AwayAfterSeconds:       180,
			CooldownSeconds:        10,
			FocusLossDedupeSeconds: 1,
			BotSampleWindow:        5,
			BotMaxStdDevMs:         20,
			BotMinMeanMs:           1000,
			PresenceGracePolls:     2,
		},

		Camera: CameraConfig{
			Enabled: false,
			Device:  "/dev/video0",
		},
	}
}

// Load loads configuration from the default paths, falling back to
// defaults when no config file exists.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}

	configPaths := []string{
		filepath.Join(home, ".config", "focusflow", "config.yaml"),
		filepath.Join(home, ".local", "share", "focusflow", "config.yaml"),
	}

	for _, path := range configPaths {
		if err := loadFromFile(cfg, path); err == nil {
			return cfg, nil
		}
	}

	return cfg, nil
}

// loadFromFile reads a YAML config file and merges it into cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	cfg.StoragePath = expandTilde(cfg.StoragePath)
	return nil
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Save writes the current config to disk.
func (c *Config) Save() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".config", "focusflow")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0600)
}

// EnsureStorageDir creates the storage directory if it doesn't exist.
func (c *Config) EnsureStorageDir() error {
	return os.MkdirAll(c.StoragePath, 0700)
}

// Tick returns the classification tick interval.
func (m MonitorConfig) Tick() time.Duration {
	return time.Duration(m.TickSeconds) * time.Second
}

// PresencePoll returns the presence polling cadence.
func (m MonitorConfig) PresencePoll() time.Duration {
	return time.Duration(m.PresencePollSeconds) * time.Second
}

// DistractedAfter returns the idle threshold for the distracted state.
func (m MonitorConfig) DistractedAfter() time.Duration {
	return time.Duration(m.DistractedAfterSeconds) * time.Second
}

// AwayAfter returns the idle threshold for the away state.
func (m MonitorConfig) AwayAfter() time.Duration {
	return time.Duration(m.AwayAfterSeconds) * time.Second
}

// Cooldown returns the minimum spacing between counted distractions.
func (m MonitorConfig) Cooldown() time.Duration {
	return time.Duration(m.CooldownSeconds) * time.Second
}

// FocusLossDedupe returns the window in which visibility and blur events
// collapse into one.
func (m MonitorConfig) FocusLossDedupe() time.Duration {
	return time.Duration(m.FocusLossDedupeSeconds) * time.Second
}

// BotMaxStdDev returns the inter-arrival deviation ceiling for the bot
// heuristic.
func (m MonitorConfig) BotMaxStdDev() time.Duration {
	return time.Duration(m.BotMaxStdDevMs) * time.Millisecond
}

// BotMinMean returns the inter-arrival mean floor for the bot heuristic.
func (m MonitorConfig) BotMinMean() time.Duration {
	return time.Duration(m.BotMinMeanMs) * time.Millisecond
}
