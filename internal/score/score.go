// Package score computes the end-of-session focus score and the
// recommended technique for the next session.
//
// The score is a weighted sum of four components whose maxima add up to
// 100: idle time (40), distraction penalty (30), consistency (20) and
// camera presence (10). Compute is pure: identical inputs always yield
// the identical score and recommendation.
package score

import (
	"math"
	"time"

	"github.com/focusflow/focusflow/internal/session"
)

// Input holds the accumulated metrics of a completed session.
type Input struct {
	Duration         time.Duration
	MouseInactive    time.Duration
	KeyboardInactive time.Duration
	CameraAbsence    time.Duration
	Distractions     int
	CameraEnabled    bool
}

// Compute returns the focus score in [0,100] and the recommended
// technique for the next session.
func Compute(in Input) (float64, session.Technique) {
	duration := in.Duration.Seconds()

	// Idle component (40%). A zero-length session counts as fully active.
	idleRatio := 0.0
	if duration > 0 {
		idle := in.MouseInactive.Seconds() + in.KeyboardInactive.Seconds()
		idleRatio = math.Min(1, idle/duration)
	}
	idleComponent := (1 - idleRatio) * 40

	// Distraction penalty (30%), 3 points per distraction.
	distractionComponent := math.Max(0, 30-float64(in.Distractions)*3)

	// Consistency (20%), full marks for a clean session.
	consistencyComponent := 20.0
	if in.Distractions > 0 {
		consistencyComponent = math.Max(0, 20-float64(in.Distractions)*2)
	}

	// Camera component (10%), neutral 5 when the camera was not used.
	cameraComponent := 5.0
	if in.CameraEnabled {
		absenceRatio := 0.0
		if duration > 0 {
			absenceRatio = math.Min(1, in.CameraAbsence.Seconds()/duration)
		}
		cameraComponent = (1 - absenceRatio) * 10
	}

	total := idleComponent + distractionComponent + consistencyComponent + cameraComponent
	total = math.Max(0, math.Min(100, total))

	return total, recommend(total, in.Distractions)
}

// recommend picks the next technique. Heavy distraction overrides the
// score: short sprints rebuild the habit before longer blocks.
func recommend(score float64, distractions int) session.Technique {
	switch {
	case distractions > 5:
		return session.TechniqueStudySprint
	case score >= 70:
		return session.Technique5217
	case score >= 50:
		return session.TechniquePomodoro
	default:
		return session.TechniqueFlowtime
	}
}

// BuildResult assembles the immutable session result from the final
// state snapshot and the timer's elapsed duration.
func BuildResult(id string, cfg session.Config, m session.Metrics, startedAt, endedAt time.Time, duration time.Duration) *session.Result {
	focus, recommended := Compute(Input{
		Duration:         duration,
		MouseInactive:    m.MouseInactive,
		KeyboardInactive: m.KeyboardInactive,
		CameraAbsence:    m.CameraAbsence,
		Distractions:     m.Distractions,
		CameraEnabled:    cfg.CameraEnabled,
	})

	idlePercent := 0.0
	if duration > 0 {
		idlePercent = (m.MouseInactive + m.KeyboardInactive).Seconds() / duration.Seconds() * 100
		idlePercent = math.Min(100, idlePercent)
	}

	return &session.Result{
		ID:               id,
		Technique:        cfg.Technique,
		Mode:             cfg.Mode,
		CameraEnabled:    cfg.CameraEnabled,
		StartedAt:        startedAt,
		EndedAt:          endedAt,
		Duration:         duration,
		Distractions:     m.Distractions,
		TabSwitches:      m.TabSwitches,
		MouseInactive:    m.MouseInactive,
		KeyboardInactive: m.KeyboardInactive,
		CameraAbsence:    m.CameraAbsence,
		IdlePercent:      idlePercent,
		FinalState:       m.FinalState,
		FocusScore:       focus,
		Recommended:      recommended,
		Events:           m.Events,
	}
}
