package monitor

import (
	"sync"
	"time"

	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/notify"
	"github.com/focusflow/focusflow/internal/session"
)

// testMonitorConfig mirrors the shipped defaults.
func testMonitorConfig() config.MonitorConfig {
	return config.DefaultConfig().Monitor
}

func newRunningState(cfg config.MonitorConfig, mode session.Mode) (*session.State, time.Time) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	sc := session.Config{Technique: session.TechniquePomodoro, Mode: mode}
	return session.NewState(sc, cfg.Cooldown(), start), start
}

// recordingSink captures raised distraction reasons.
type recordingSink struct {
	mu      sync.Mutex
	reasons []session.Reason
}

func (r *recordingSink) RaiseDistraction(_ time.Time, reason session.Reason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reasons)
}

func (r *recordingSink) last() session.Reason {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reasons) == 0 {
		return ""
	}
	return r.reasons[len(r.reasons)-1]
}

// recordingNotifier captures sent notifications.
type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
	levels []notify.Urgency
}

func (n *recordingNotifier) Send(title, body string, urgency notify.Urgency) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)
	n.levels = append(n.levels, urgency)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.titles)
}
