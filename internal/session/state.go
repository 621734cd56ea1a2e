package session

import (
	"sync"
	"time"
)

// facePresence is the presence sub-state machine.
//
//	present --(failures reach grace)--> absentConfirmed
//	absentConfirmed --(any successful detection)--> present
//
// The transition into absentConfirmed fires at most once per continuous
// absence; the detector must report a face before it can fire again.
type facePresence int

const (
	facePresent facePresence = iota
	faceAbsentConfirmed
)

// faceCount is the multi-face sub-state machine.
//
//	single --(face_count > 1)--> multiple
//	multiple --(face_count <= 1)--> single
type faceCount int

const (
	faceSingle faceCount = iota
	faceMultiple
)

// State is the shared session state owner. All monitoring loops hold the
// same *State and mutate it only through its methods; the mutex stands in
// for the cooperative scheduler of a single-threaded runtime.
type State struct {
	mu sync.Mutex

	cfg       Config
	running   bool
	paused    bool
	startedAt time.Time

	lastActivity time.Time
	lastMouse    time.Time
	lastKeyboard time.Time

	mouseInactive    time.Duration
	keyboardInactive time.Duration
	tabSwitches      int

	current UserState

	// Cooldown gate bookkeeping. Wall-clock: pausing does not suspend it.
	cooldown        time.Duration
	lastDistraction time.Time
	distractions    int
	events          []Event

	// Camera presence tracking.
	cameraAbsence time.Duration
	faceFailures  int
	presence      facePresence
	faces         faceCount
}

// NewState creates the state for a freshly started session.
func NewState(cfg Config, cooldown time.Duration, now time.Time) *State {
	return &State{
		cfg:          cfg,
		running:      true,
		startedAt:    now,
		lastActivity: now,
		lastMouse:    now,
		lastKeyboard: now,
		current:      StateFocused,
		cooldown:     cooldown,
	}
}

// Config returns the immutable session configuration.
func (s *State) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// StartedAt returns the session start time.
func (s *State) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Running reports whether the session is active.
func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Finish marks the session as no longer running.
func (s *State) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Pause freezes duration and idle accumulation. Idempotent.
func (s *State) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume reverses Pause and resets the idle baseline so that time spent
// paused is not counted against the user. Idempotent.
func (s *State) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.paused = false
	now := time.Now()
	s.lastActivity = now
	s.lastMouse = now
	s.lastKeyboard = now
}

// Paused reports whether the session is paused.
func (s *State) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// RecordActivity resets the idle clock for the given input kind. It is a
// no-op when the session is not running, and reports whether the event
// was accepted.
func (s *State) RecordActivity(kind InputKind, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.lastActivity = now
	switch kind {
	case InputMouse:
		s.lastMouse = now
	case InputKeyboard:
		s.lastKeyboard = now
	}
	return true
}

// IdleSince returns time since the last activity of any kind.
func (s *State) IdleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActivity)
}

// AccumulateIdle adds one tick to the per-device inactivity counters for
// each device that has been silent for at least a full tick. Suspended
// while paused.
func (s *State) AccumulateIdle(now time.Time, tick time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.paused {
		return
	}
	if now.Sub(s.lastMouse) >= tick {
		s.mouseInactive += tick
	}
	if now.Sub(s.lastKeyboard) >= tick {
		s.keyboardInactive += tick
	}
}

// UserState returns the current classified state.
func (s *State) UserState() UserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetUserState transitions to the given state and returns the previous one.
func (s *State) SetUserState(state UserState) UserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = state
	return prev
}

// CountDistraction is the single qualifying-event gate. An event raised
// within the cooldown window of the previous counted event is discarded.
// Reports whether the event was counted.
func (s *State) CountDistraction(now time.Time, reason Reason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	if !s.lastDistraction.IsZero() && now.Sub(s.lastDistraction) < s.cooldown {
		return false
	}
	s.lastDistraction = now
	s.distractions++
	s.events = append(s.events, Event{At: now, Reason: reason})
	return true
}

// AddTabSwitch increments the tab-switch counter.
func (s *State) AddTabSwitch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabSwitches++
}

// MarkFaceAbsent records one failed presence poll: the failure streak
// grows and the fixed per-poll absence increment is added. It reports
// true exactly once per continuous absence, when the streak reaches the
// grace threshold.
func (s *State) MarkFaceAbsent(absence time.Duration, grace int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.faceFailures++
	s.cameraAbsence += absence
	if s.faceFailures >= grace && s.presence == facePresent {
		s.presence = faceAbsentConfirmed
		return true
	}
	return false
}

// MarkFacePresent records one successful presence poll, resetting the
// failure streak. It reports true exactly once per continuous
// multiple-face occurrence when faceCount > 1.
func (s *State) MarkFacePresent(count int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.faceFailures = 0
	s.presence = facePresent
	if count > 1 {
		if s.faces == faceSingle {
			s.faces = faceMultiple
			return true
		}
		return false
	}
	s.faces = faceSingle
	return false
}

// FaceMissing reports whether a sustained absence is currently confirmed.
func (s *State) FaceMissing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence == faceAbsentConfirmed
}

// MultipleFaces reports whether multiple faces are currently flagged.
func (s *State) MultipleFaces() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faces == faceMultiple
}

// FaceFailures returns the current consecutive-failure streak.
func (s *State) FaceFailures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faceFailures
}

// Distractions returns the counted distraction total.
func (s *State) Distractions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distractions
}

// TabSwitches returns the tab-switch total.
func (s *State) TabSwitches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabSwitches
}

// Metrics is a point-in-time copy of the accumulated counters.
type Metrics struct {
	MouseInactive    time.Duration
	KeyboardInactive time.Duration
	CameraAbsence    time.Duration
	TabSwitches      int
	Distractions     int
	FinalState       UserState
	Events           []Event
}

// Snapshot copies the accumulated counters for scoring and persistence.
func (s *State) Snapshot() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return Metrics{
		MouseInactive:    s.mouseInactive,
		KeyboardInactive: s.keyboardInactive,
		CameraAbsence:    s.cameraAbsence,
		TabSwitches:      s.tabSwitches,
		Distractions:     s.distractions,
		FinalState:       s.current,
		Events:           events,
	}
}
