package monitor

import (
	"sync"
	"time"

	"github.com/focusflow/focusflow/internal/session"
)

// Timer drives the study-phase clock: a countdown for fixed techniques,
// a count-up for flowtime. Reaching zero signals phase completion but
// does not end the session; the user decides.
type Timer struct {
	mu sync.Mutex

	state     *session.State
	technique session.Technique

	elapsed       time.Duration
	remaining     time.Duration
	countdown     bool
	phaseComplete bool

	onPhaseComplete func()
}

// NewTimer creates the timer, optionally resuming from a previously
// accumulated elapsed duration (e.g. after a restart). Resumed time is
// not double-counted.
func NewTimer(state *session.State, technique session.Technique, resumeElapsed time.Duration, onPhaseComplete func()) *Timer {
	t := &Timer{
		state:           state,
		technique:       technique,
		elapsed:         resumeElapsed,
		countdown:       !technique.OpenEnded(),
		onPhaseComplete: onPhaseComplete,
	}
	if t.countdown {
		t.remaining = technique.StudyDuration() - resumeElapsed
		if t.remaining <= 0 {
			t.remaining = 0
			t.phaseComplete = true
		}
	}
	return t
}

// Tick advances the clock by one second. Skipped while paused.
func (t *Timer) Tick() {
	if !t.state.Running() || t.state.Paused() {
		return
	}

	t.mu.Lock()
	t.elapsed += time.Second
	fire := false
	if t.countdown && !t.phaseComplete {
		t.remaining -= time.Second
		if t.remaining <= 0 {
			t.remaining = 0
			t.phaseComplete = true
			fire = true
		}
	}
	cb := t.onPhaseComplete
	t.mu.Unlock()

	if fire && cb != nil {
		cb()
	}
}

// Elapsed returns the accumulated study duration.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

// Remaining returns the time left in the study phase, or 0 for
// open-ended techniques.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// PhaseComplete reports whether the countdown has run out.
func (t *Timer) PhaseComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phaseComplete
}
