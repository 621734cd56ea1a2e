package session

import "time"

// Result is the immutable summary of a completed session. It is built
// once at session end and never mutated afterwards.
type Result struct {
	ID            string    `json:"id"`
	Technique     Technique `json:"technique"`
	Mode          Mode      `json:"study_mode"`
	CameraEnabled bool      `json:"camera_enabled"`

	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Duration  time.Duration `json:"duration"`

	Distractions     int           `json:"distractions"`
	TabSwitches      int           `json:"tab_switches"`
	MouseInactive    time.Duration `json:"mouse_inactive"`
	KeyboardInactive time.Duration `json:"keyboard_inactive"`
	CameraAbsence    time.Duration `json:"camera_absence"`
	IdlePercent      float64       `json:"idle_percent"`
	FinalState       UserState     `json:"final_state"`

	FocusScore  float64   `json:"focus_score"`
	Recommended Technique `json:"recommended_technique"`

	Events []Event `json:"events,omitempty"`
}
