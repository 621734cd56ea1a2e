package monitor

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/session"
	"github.com/focusflow/focusflow/internal/vision"
)

// PresenceMonitor polls the frame detector on its own cadence and tracks
// consecutive-failure streaks for face absence and multiple-face
// presence. Detector calls are fire-and-forget: the poll tick never
// blocks on one, and a call already in flight suppresses the next.
type PresenceMonitor struct {
	state    *session.State
	detector vision.FrameDetector
	frames   vision.FrameSource
	sink     DistractionSink

	pollIncrement time.Duration
	gracePolls    int
	detectTimeout time.Duration

	inFlight atomic.Bool
}

// NewPresenceMonitor creates a presence monitor over the shared state.
func NewPresenceMonitor(state *session.State, detector vision.FrameDetector, frames vision.FrameSource, sink DistractionSink, cfg config.MonitorConfig) *PresenceMonitor {
	grace := cfg.PresenceGracePolls
	if grace < 1 {
		grace = 2
	}
	return &PresenceMonitor{
		state:         state,
		detector:      detector,
		frames:        frames,
		sink:          sink,
		pollIncrement: cfg.PresencePoll(),
		gracePolls:    grace,
		detectTimeout: cfg.PresencePoll(),
	}
}

// Poll starts one asynchronous detection round. At most one round is in
// flight at a time.
func (p *PresenceMonitor) Poll(ctx context.Context, now time.Time) {
	if !p.state.Running() || p.state.Paused() {
		return
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer p.inFlight.Store(false)

		dctx, cancel := context.WithTimeout(ctx, p.detectTimeout)
		defer cancel()

		frame, err := p.frames.Frame(dctx)
		var det *vision.Detection
		if err == nil {
			det, err = p.detector.Detect(dctx, frame)
		}
		p.apply(time.Now(), det, err)
	}()
}

// apply folds one detection outcome into the presence state machines.
// Any failure counts as absence: lack of evidence of presence is never
// silently ignored.
func (p *PresenceMonitor) apply(now time.Time, det *vision.Detection, err error) {
	if err != nil || det == nil || !det.FaceDetected {
		if err != nil {
			log.Printf("[presence] detection failed, counting as absence: %v", err)
		}
		if p.state.MarkFaceAbsent(p.pollIncrement, p.gracePolls) {
			log.Printf("[presence] sustained face absence after %d failed polls", p.state.FaceFailures())
			p.sink.RaiseDistraction(now, session.ReasonFaceAbsence)
		}
		return
	}

	if p.state.MarkFacePresent(det.FaceCount) {
		log.Printf("[presence] multiple faces in frame (%d)", det.FaceCount)
		p.sink.RaiseDistraction(now, session.ReasonMultipleFaces)
	}
}
