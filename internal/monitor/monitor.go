// Package monitor implements the session monitoring state machine: it
// ingests raw activity, visibility and camera signals, classifies the
// user's state over time with debouncing and cooldowns, accumulates
// distraction metrics, and drives the session timer.
//
// Every periodic task holds the same *session.State handle and mutates
// it only through its methods. The relative ordering of the 1-second
// classification tick, the 1-second timer tick and the 5-second
// presence poll within the same wall-clock second is unspecified.
package monitor

import (
	"time"

	"github.com/focusflow/focusflow/internal/notify"
	"github.com/focusflow/focusflow/internal/session"
)

// DistractionSink receives qualifying distraction events. All events,
// whatever their source, funnel through a single cooldown gate.
type DistractionSink interface {
	RaiseDistraction(now time.Time, reason session.Reason)
}

// Notifier delivers user-facing advisories.
type Notifier interface {
	Send(title, body string, urgency notify.Urgency) error
}

// StatusSink pushes session status updates to connected clients, such
// as the browser-extension bridge.
type StatusSink interface {
	Broadcast(msg any)
}

// Status is the once-a-second snapshot sent through a StatusSink.
type Status struct {
	Type             string `json:"type"`
	Technique        string `json:"technique"`
	UserState        string `json:"user_state"`
	ElapsedSeconds   int    `json:"elapsed_seconds"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Distractions     int    `json:"distractions"`
	Paused           bool   `json:"paused"`
}
