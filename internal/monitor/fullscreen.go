package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/focusflow/focusflow/internal/api"
	"github.com/focusflow/focusflow/internal/notify"
	"github.com/focusflow/focusflow/internal/session"
)

// FullscreenMonitor counts fullscreen-exit violations in screen mode and
// forwards them to the external policy service. How hard to escalate is
// the service's call; this monitor only counts, reports, and executes an
// END_SESSION directive.
type FullscreenMonitor struct {
	state    *session.State
	timer    *Timer
	policy   api.FullscreenPolicy
	notifier Notifier

	endSession func()

	mu            sync.Mutex
	violations    int
	lastViolation time.Time
	warningActive bool
}

// NewFullscreenMonitor creates the compliance monitor.
func NewFullscreenMonitor(state *session.State, timer *Timer, policy api.FullscreenPolicy, notifier Notifier, endSession func()) *FullscreenMonitor {
	return &FullscreenMonitor{
		state:      state,
		timer:      timer,
		policy:     policy,
		notifier:   notifier,
		endSession: endSession,
	}
}

// HandleExit processes one fullscreen-exit event. Inactive outside
// screen mode, while paused, or when the session is over.
func (f *FullscreenMonitor) HandleExit(ctx context.Context, now time.Time) {
	if f.state.Config().Mode != session.ModeScreen {
		return
	}
	if !f.state.Running() || f.state.Paused() {
		return
	}

	f.mu.Lock()
	f.violations++
	sinceLast := 0
	if !f.lastViolation.IsZero() {
		sinceLast = int(now.Sub(f.lastViolation).Seconds())
	}
	f.lastViolation = now
	count := f.violations
	f.mu.Unlock()

	durationSoFar := int(f.timer.Elapsed().Seconds())
	log.Printf("[fullscreen] violation #%d (%ds since last)", count, sinceLast)

	decision, err := f.policy.Evaluate(ctx, count, sinceLast, durationSoFar)
	if err != nil {
		// No policy guidance: degrade to CONTINUE.
		log.Printf("[fullscreen] policy unavailable, continuing: %v", err)
		return
	}

	switch decision.Action {
	case api.ActionWarn:
		f.mu.Lock()
		f.warningActive = true
		f.mu.Unlock()
		if f.notifier != nil {
			msg := decision.Message
			if msg == "" {
				msg = "Return to fullscreen to keep your session."
			}
			f.notifier.Send("Fullscreen exited", msg, notify.UrgencyNormal)
		}
	case api.ActionEndSession:
		log.Printf("[fullscreen] policy directed session end after %d violations", count)
		if f.notifier != nil {
			f.notifier.Send("Session ended", "Too many fullscreen exits.", notify.UrgencyCritical)
		}
		if f.endSession != nil {
			f.endSession()
		}
	}
}

// HandleEnter clears the local warning. The violation count is never
// reset by re-entering fullscreen.
func (f *FullscreenMonitor) HandleEnter() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warningActive = false
}

// Violations returns the running violation count.
func (f *FullscreenMonitor) Violations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.violations
}

// WarningActive reports whether a warning is currently displayed.
func (f *FullscreenMonitor) WarningActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.warningActive
}
