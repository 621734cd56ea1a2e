package monitor

import (
	"log"
	"sync"
	"time"

	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/notify"
	"github.com/focusflow/focusflow/internal/session"
)

// Classifier is the distraction state machine. Its 1-second tick samples
// idle time and drives the focused/reading/distracted/away transitions;
// it is also the single DistractionSink through which every qualifying
// event, whatever its source, passes the cooldown gate.
type Classifier struct {
	state    *session.State
	activity *ActivityTracker
	cfg      config.MonitorConfig
	notifier Notifier

	mu            sync.Mutex
	lastFocusLoss time.Time
}

// NewClassifier creates the classifier over the shared session state.
func NewClassifier(state *session.State, cfg config.MonitorConfig, notifier Notifier) *Classifier {
	return &Classifier{
		state:    state,
		activity: NewActivityTracker(state),
		cfg:      cfg,
		notifier: notifier,
	}
}

// Tick evaluates the idle-based transitions. In screen mode the highest
// idle threshold wins; in book mode inactivity is expected and never
// raises events.
func (c *Classifier) Tick(now time.Time) {
	if !c.state.Running() || c.state.Paused() {
		return
	}

	c.state.AccumulateIdle(now, c.cfg.Tick())

	if c.state.Config().Mode == session.ModeBook {
		if c.activity.IdleSince(now) >= c.cfg.Tick() {
			c.state.SetUserState(session.StateReading)
		}
		return
	}

	idle := c.activity.IdleSince(now)
	switch {
	case idle > c.cfg.AwayAfter():
		if prev := c.state.SetUserState(session.StateAway); prev != session.StateAway {
			c.RaiseDistraction(now, session.ReasonLongPause)
		}
	case idle > c.cfg.DistractedAfter():
		if prev := c.state.SetUserState(session.StateDistracted); prev != session.StateDistracted {
			c.RaiseDistraction(now, session.ReasonHighInactivity)
		}
	default:
		c.state.SetUserState(session.StateFocused)
	}
}

// HandleActivity records an input event and forces the state back to
// focused, except from reading.
func (c *Classifier) HandleActivity(kind session.InputKind, now time.Time) {
	if !c.activity.Record(kind, now) {
		return
	}
	if c.state.UserState() != session.StateReading {
		c.state.SetUserState(session.StateFocused)
	}
}

// HandleFocusLoss processes a tab-hidden or window-blur event. Both
// often fire for the same user action, so occurrences within the dedupe
// window collapse into one.
func (c *Classifier) HandleFocusLoss(now time.Time, reason session.Reason) {
	if !c.state.Running() {
		return
	}

	c.mu.Lock()
	if !c.lastFocusLoss.IsZero() && now.Sub(c.lastFocusLoss) < c.cfg.FocusLossDedupe() {
		c.mu.Unlock()
		return
	}
	c.lastFocusLoss = now
	c.mu.Unlock()

	c.state.AddTabSwitch()
	c.RaiseDistraction(now, reason)
}

// RaiseDistraction submits a qualifying event to the cooldown gate.
// Events inside the cooldown window of the previous counted event are
// discarded silently.
func (c *Classifier) RaiseDistraction(now time.Time, reason session.Reason) {
	if !c.state.CountDistraction(now, reason) {
		return
	}
	log.Printf("[classifier] distraction #%d: %s", c.state.Distractions(), reason)
	c.advise(reason)
}

// advise sends the user-facing prompt that accompanies certain reasons.
func (c *Classifier) advise(reason session.Reason) {
	if c.notifier == nil {
		return
	}
	switch reason {
	case session.ReasonHighInactivity:
		c.notifier.Send("Still there?", "No activity for a while. Take a break or get back to it.", notify.UrgencyNormal)
	case session.ReasonBotPattern:
		c.notifier.Send("Unusual input pattern", "Pointer movement looks automated. Jigglers don't count as studying.", notify.UrgencyNormal)
	case session.ReasonFaceAbsence:
		c.notifier.Send("Face not visible", "The camera hasn't seen you for a while.", notify.UrgencyNormal)
	}
}
