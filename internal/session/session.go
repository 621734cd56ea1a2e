// Package session defines the study session domain model: techniques,
// study modes, user states, and the shared mutable state that the
// monitoring loops operate on.
package session

import (
	"fmt"
	"time"
)

// Technique is a study technique determining the timer behavior.
type Technique string

const (
	TechniquePomodoro    Technique = "pomodoro"
	Technique5217        Technique = "52-17"
	TechniqueStudySprint Technique = "study-sprint"
	TechniqueFlowtime    Technique = "flowtime"
)

// studyDurations holds the fixed study-phase length per technique.
// Flowtime is open-ended and counts up instead of down.
var studyDurations = map[Technique]time.Duration{
	TechniquePomodoro:    1500 * time.Second,
	Technique5217:        3120 * time.Second,
	TechniqueStudySprint: 900 * time.Second,
	TechniqueFlowtime:    0,
}

// StudyDuration returns the study-phase duration, or 0 for open-ended
// techniques.
func (t Technique) StudyDuration() time.Duration {
	return studyDurations[t]
}

// OpenEnded reports whether the technique counts up with no fixed end.
func (t Technique) OpenEnded() bool {
	return studyDurations[t] == 0
}

// Valid reports whether t is a known technique.
func (t Technique) Valid() bool {
	_, ok := studyDurations[t]
	return ok
}

// ParseTechnique validates a technique name.
func ParseTechnique(s string) (Technique, error) {
	t := Technique(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown technique %q (want pomodoro, 52-17, study-sprint or flowtime)", s)
	}
	return t, nil
}

// Mode is the study mode. Screen mode expects continuous interaction;
// book mode expects the user to be reading away from the keyboard.
type Mode string

const (
	ModeScreen Mode = "screen"
	ModeBook   Mode = "book"
)

// ParseMode validates a study mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeScreen, ModeBook:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown study mode %q (want screen or book)", s)
}

// UserState is the classified state of the user at a point in time.
type UserState string

const (
	StateFocused    UserState = "focused"
	StateReading    UserState = "reading"
	StateDistracted UserState = "distracted"
	StateAway       UserState = "away"
)

// InputKind distinguishes pointer from keyboard activity.
type InputKind string

const (
	InputMouse    InputKind = "mouse"
	InputKeyboard InputKind = "keyboard"
)

// Reason identifies what raised a qualifying distraction event.
type Reason string

const (
	ReasonHighInactivity Reason = "high_inactivity"
	ReasonLongPause      Reason = "long_pause"
	ReasonTabSwitch      Reason = "tab_switch"
	ReasonWindowBlur     Reason = "window_blur"
	ReasonBotPattern     Reason = "bot_pattern"
	ReasonFaceAbsence    Reason = "face_absence"
	ReasonMultipleFaces  Reason = "multiple_faces"
)

// Config is the immutable configuration chosen at session start.
type Config struct {
	Technique     Technique
	Mode          Mode
	CameraEnabled bool
}

// Event is a distraction event that passed the cooldown gate.
type Event struct {
	At     time.Time
	Reason Reason
}
