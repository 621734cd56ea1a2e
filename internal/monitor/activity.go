package monitor

import (
	"time"

	"github.com/focusflow/focusflow/internal/session"
)

// ActivityTracker maintains "time since last activity" for the session.
// Events arriving while the session is not running are ignored.
type ActivityTracker struct {
	state *session.State
}

// NewActivityTracker creates a tracker over the shared session state.
func NewActivityTracker(state *session.State) *ActivityTracker {
	return &ActivityTracker{state: state}
}

// Record resets the idle clock for the given input kind. Reports whether
// the event was accepted.
func (t *ActivityTracker) Record(kind session.InputKind, now time.Time) bool {
	return t.state.RecordActivity(kind, now)
}

// IdleSince returns how long the user has been inactive.
func (t *ActivityTracker) IdleSince(now time.Time) time.Duration {
	return t.state.IdleSince(now)
}
