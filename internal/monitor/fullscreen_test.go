package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/focusflow/focusflow/internal/api"
	"github.com/focusflow/focusflow/internal/notify"
	"github.com/focusflow/focusflow/internal/session"
)

type scriptedPolicy struct {
	decisions []*api.PolicyDecision
	errs      []error
	calls     int

	lastViolations int
	lastSinceLast  int
}

func (p *scriptedPolicy) Evaluate(_ context.Context, violations, secondsSinceLast, _ int) (*api.PolicyDecision, error) {
	i := p.calls
	p.calls++
	p.lastViolations = violations
	p.lastSinceLast = secondsSinceLast
	if i >= len(p.decisions) {
		i = len(p.decisions) - 1
	}
	var err error
	if i < len(p.errs) {
		err = p.errs[i]
	}
	return p.decisions[i], err
}

func newFullscreen(t *testing.T, mode session.Mode, policy api.FullscreenPolicy, notifier Notifier, end func()) (*FullscreenMonitor, *session.State, time.Time) {
	t.Helper()
	cfg := testMonitorConfig()
	state, start := newRunningState(cfg, mode)
	timer := NewTimer(state, session.TechniquePomodoro, 0, nil)
	return NewFullscreenMonitor(state, timer, policy, notifier, end), state, start
}

func TestFullscreenViolationReporting(t *testing.T) {
	policy := &scriptedPolicy{decisions: []*api.PolicyDecision{{Action: api.ActionContinue}}}
	f, _, start := newFullscreen(t, session.ModeScreen, policy, nil, nil)

	ctx := context.Background()
	f.HandleExit(ctx, start)
	f.HandleExit(ctx, start.Add(30*time.Second))

	if got := f.Violations(); got != 2 {
		t.Errorf("Violations = %d, want 2", got)
	}
	if policy.calls != 2 {
		t.Errorf("policy consulted %d times, want 2", policy.calls)
	}
	if policy.lastViolations != 2 || policy.lastSinceLast != 30 {
		t.Errorf("last report = (%d, %ds), want (2, 30s)", policy.lastViolations, policy.lastSinceLast)
	}
	if f.WarningActive() {
		t.Error("CONTINUE raised a warning")
	}
}

func TestFullscreenWarn(t *testing.T) {
	policy := &scriptedPolicy{decisions: []*api.PolicyDecision{
		{Action: api.ActionWarn, Message: "Back to fullscreen, please"},
	}}
	n := &recordingNotifier{}
	f, _, start := newFullscreen(t, session.ModeScreen, policy, n, nil)

	f.HandleExit(context.Background(), start)

	if !f.WarningActive() {
		t.Error("warning not active after WARN")
	}
	if n.count() != 1 {
		t.Fatalf("notifications = %d, want 1", n.count())
	}
	if n.bodies[0] != "Back to fullscreen, please" {
		t.Errorf("notification body = %q, want the policy message", n.bodies[0])
	}

	// Re-entering clears the warning but keeps the count.
	f.HandleEnter()
	if f.WarningActive() {
		t.Error("warning still active after re-entering fullscreen")
	}
	if got := f.Violations(); got != 1 {
		t.Errorf("Violations = %d after re-enter, want 1", got)
	}
}

func TestFullscreenEndSession(t *testing.T) {
	policy := &scriptedPolicy{decisions: []*api.PolicyDecision{
		{Action: api.ActionEndSession},
	}}
	n := &recordingNotifier{}
	ended := false
	f, _, start := newFullscreen(t, session.ModeScreen, policy, n, func() { ended = true })

	f.HandleExit(context.Background(), start)

	if !ended {
		t.Error("END_SESSION did not invoke the end callback")
	}
	if n.count() != 1 || n.levels[0] != notify.UrgencyCritical {
		t.Errorf("want one critical notification, got %d (%v)", n.count(), n.levels)
	}
}

func TestFullscreenPolicyErrorContinues(t *testing.T) {
	policy := &scriptedPolicy{
		decisions: []*api.PolicyDecision{nil},
		errs:      []error{errors.New("policy service down")},
	}
	ended := false
	f, _, start := newFullscreen(t, session.ModeScreen, policy, nil, func() { ended = true })

	f.HandleExit(context.Background(), start)

	if ended {
		t.Error("session ended on policy error")
	}
	if got := f.Violations(); got != 1 {
		t.Errorf("Violations = %d, want 1 (counted even without guidance)", got)
	}
}

func TestFullscreenIgnoredInBookMode(t *testing.T) {
	policy := &scriptedPolicy{decisions: []*api.PolicyDecision{{Action: api.ActionContinue}}}
	f, _, start := newFullscreen(t, session.ModeBook, policy, nil, nil)

	f.HandleExit(context.Background(), start)

	if got := f.Violations(); got != 0 {
		t.Errorf("Violations = %d in book mode, want 0", got)
	}
	if policy.calls != 0 {
		t.Error("policy consulted in book mode")
	}
}

func TestFullscreenIgnoredWhilePaused(t *testing.T) {
	policy := &scriptedPolicy{decisions: []*api.PolicyDecision{{Action: api.ActionContinue}}}
	f, state, start := newFullscreen(t, session.ModeScreen, policy, nil, nil)

	state.Pause()
	f.HandleExit(context.Background(), start)

	if got := f.Violations(); got != 0 {
		t.Errorf("Violations = %d while paused, want 0", got)
	}
}
