package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/focusflow/internal/api"
	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/notify"
	"github.com/focusflow/focusflow/internal/score"
	"github.com/focusflow/focusflow/internal/session"
	"github.com/focusflow/focusflow/internal/storage"
	"github.com/focusflow/focusflow/internal/vision"
)

// Manager owns the lifecycle of one study session: it wires the state
// machine components together, runs their periodic loops, and fans raw
// input events out to them.
type Manager struct {
	cfg      *config.Config
	backend  api.SessionAPI
	policy   api.FullscreenPolicy
	store    *storage.Store
	notifier Notifier
	detector vision.FrameDetector
	frames   vision.FrameSource

	// lifeMu serializes start and stop transitions so one Start cannot
	// add loops while another caller is still waiting for the previous
	// set to drain.
	lifeMu sync.Mutex

	mu         sync.Mutex
	status     StatusSink
	state      *session.State
	bot        *BotPatternDetector
	classifier *Classifier
	timer      *Timer
	presence   *PresenceMonitor
	fullscreen *FullscreenMonitor

	loopCtx    context.Context
	loopCancel context.CancelFunc
	wg         sync.WaitGroup

	// done is closed when the session ends, however it ends.
	done chan struct{}
}

// NewManager creates a session manager. detector and frames may be nil
// when camera monitoring is unavailable.
func NewManager(cfg *config.Config, backend api.SessionAPI, policy api.FullscreenPolicy, store *storage.Store, notifier Notifier, detector vision.FrameDetector, frames vision.FrameSource) *Manager {
	return &Manager{
		cfg:      cfg,
		backend:  backend,
		policy:   policy,
		store:    store,
		notifier: notifier,
		detector: detector,
		frames:   frames,
	}
}

// Start begins a session. resumeElapsed carries over study time when
// picking up a session the server still considers active; register
// controls whether the session is announced to the backend (false when
// resuming).
func (m *Manager) Start(ctx context.Context, sc session.Config, resumeElapsed time.Duration, register bool) error {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	m.mu.Lock()
	if m.state != nil && m.state.Running() {
		m.mu.Unlock()
		return fmt.Errorf("a session is already running")
	}
	cancel := m.loopCancel
	m.loopCancel = nil
	m.mu.Unlock()

	// A previous session's loops must be fully stopped before fresh
	// state replaces theirs. The loops take m.mu, so the wait happens
	// outside it.
	if cancel != nil {
		cancel()
		m.wg.Wait()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sc.CameraEnabled && (m.frames == nil || m.detector == nil) {
		sc.CameraEnabled = false
		log.Println("[manager] camera monitoring unavailable, continuing without it")
		if m.notifier != nil {
			m.notifier.Send("Camera unavailable", "Session will run without presence monitoring.", notify.UrgencyLow)
		}
	}

	if register {
		if err := m.backend.Start(ctx, sc); err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
	}

	now := time.Now()
	mc := m.cfg.Monitor

	m.state = session.NewState(sc, mc.Cooldown(), now)
	m.classifier = NewClassifier(m.state, mc, m.notifier)
	m.bot = NewBotPatternDetector(mc, m.classifier)
	m.timer = NewTimer(m.state, sc.Technique, resumeElapsed, m.onPhaseComplete)
	m.fullscreen = NewFullscreenMonitor(m.state, m.timer, m.policy, m.notifier, m.endByPolicy)
	if sc.CameraEnabled {
		m.presence = NewPresenceMonitor(m.state, m.detector, m.frames, m.classifier, mc)
	} else {
		m.presence = nil
	}
	m.done = make(chan struct{})

	m.loopCtx, m.loopCancel = context.WithCancel(context.Background())

	log.Printf("[manager] session started: technique=%s mode=%s camera=%v resume=%s",
		sc.Technique, sc.Mode, sc.CameraEnabled, resumeElapsed)

	m.wg.Add(2)
	go m.runLoop("classify", mc.Tick(), func(now time.Time) {
		m.classifier.Tick(now)
	})
	go m.runLoop("timer", time.Second, func(time.Time) {
		m.timer.Tick()
		m.publishStatus()
	})
	if m.presence != nil {
		m.wg.Add(1)
		p := m.presence
		go m.runLoop("presence", mc.PresencePoll(), func(now time.Time) {
			p.Poll(m.loopCtx, now)
		})
	}

	return nil
}

// runLoop runs fn at regular intervals until the session's loops are
// cancelled.
func (m *Manager) runLoop(name string, interval time.Duration, fn func(now time.Time)) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[manager] %s loop started (every %v)", name, interval)
	for {
		select {
		case <-m.loopCtx.Done():
			log.Printf("[manager] %s loop stopped", name)
			return
		case now := <-ticker.C:
			fn(now)
		}
	}
}

// Pause suspends monitoring and the timer.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return
	}
	m.state.Pause()
	log.Println("[manager] session paused")
}

// Resume continues a paused session.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return
	}
	m.state.Resume()
	log.Println("[manager] session resumed")
}

// End finishes the session, stops the loops, persists the result
// locally and submits the final metrics to the backend. The local copy
// is written even when the backend submission fails.
func (m *Manager) End(ctx context.Context) (*session.Result, error) {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	m.mu.Lock()
	if m.state == nil || !m.state.Running() {
		m.mu.Unlock()
		return nil, fmt.Errorf("no active session")
	}

	m.state.Finish()
	m.loopCancel()
	m.loopCancel = nil

	state := m.state
	timer := m.timer
	done := m.done
	m.mu.Unlock()

	m.wg.Wait()
	defer close(done)

	metrics := state.Snapshot()
	duration := timer.Elapsed()
	endedAt := time.Now()

	res := score.BuildResult(uuid.NewString(), state.Config(), metrics, state.StartedAt(), endedAt, duration)

	if m.store != nil {
		if err := m.store.SaveSession(res); err != nil {
			log.Printf("[manager] failed to save session locally: %v", err)
		}
	}

	summary, err := m.backend.End(ctx, api.EndMetrics{
		Duration:             int(duration.Seconds()),
		Distractions:         metrics.Distractions,
		MouseInactiveTime:    int(metrics.MouseInactive.Seconds()),
		KeyboardInactiveTime: int(metrics.KeyboardInactive.Seconds()),
		TabSwitches:          metrics.TabSwitches,
		CameraAbsenceTime:    int(metrics.CameraAbsence.Seconds()),
		UserState:            string(metrics.FinalState),
	})
	switch {
	case errors.Is(err, api.ErrNoActiveSession):
		log.Println("[manager] server had no active session, kept the local record")
		if m.notifier != nil {
			m.notifier.Send("Session saved locally", "The server lost track of this session. Metrics were kept on this machine.", notify.UrgencyNormal)
		}
	case err != nil:
		log.Printf("[manager] failed to submit session: %v", err)
	case summary != nil:
		// Server-side score supersedes the local estimate.
		res.FocusScore = summary.FocusScore
		if t, perr := session.ParseTechnique(summary.RecommendedTechnique); perr == nil {
			res.Recommended = t
		}
	}

	log.Printf("[manager] session ended: score=%.1f distractions=%d recommended=%s",
		res.FocusScore, res.Distractions, res.Recommended)
	if m.notifier != nil {
		m.notifier.Send("Session complete",
			fmt.Sprintf("Focus score %.0f/100, %d distractions. Try %s next.",
				res.FocusScore, res.Distractions, res.Recommended),
			notify.UrgencyNormal)
	}
	return res, nil
}

// Cancel discards the running session without scoring it.
func (m *Manager) Cancel(ctx context.Context) error {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	m.mu.Lock()
	if m.state == nil || !m.state.Running() {
		m.mu.Unlock()
		return fmt.Errorf("no active session")
	}
	m.state.Finish()
	m.loopCancel()
	m.loopCancel = nil
	done := m.done
	m.mu.Unlock()

	m.wg.Wait()
	close(done)

	if err := m.backend.Cancel(ctx); err != nil {
		return fmt.Errorf("failed to cancel on server: %w", err)
	}
	log.Println("[manager] session cancelled")
	return nil
}

// Done returns a channel closed when the session has fully ended.
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// OnMouseActivity routes one mouse event into the trackers.
func (m *Manager) OnMouseActivity(now time.Time) {
	c, b := m.components()
	if c == nil {
		return
	}
	c.HandleActivity(session.InputMouse, now)
	b.RecordMouse(now)
}

// OnKeyboardActivity routes one keyboard event into the trackers.
func (m *Manager) OnKeyboardActivity(now time.Time) {
	c, _ := m.components()
	if c == nil {
		return
	}
	c.HandleActivity(session.InputKeyboard, now)
}

// OnTabHidden reports that the study surface was hidden.
func (m *Manager) OnTabHidden(now time.Time) {
	c, _ := m.components()
	if c == nil {
		return
	}
	c.HandleFocusLoss(now, session.ReasonTabSwitch)
}

// OnWindowBlur reports that the study window lost focus.
func (m *Manager) OnWindowBlur(now time.Time) {
	c, _ := m.components()
	if c == nil {
		return
	}
	c.HandleFocusLoss(now, session.ReasonWindowBlur)
}

// OnFullscreenExit reports that fullscreen was left.
func (m *Manager) OnFullscreenExit(now time.Time) {
	m.mu.Lock()
	f := m.fullscreen
	ctx := m.loopCtx
	m.mu.Unlock()
	if f == nil || ctx == nil {
		return
	}
	f.HandleExit(ctx, now)
}

// OnFullscreenEnter reports that fullscreen was re-entered.
func (m *Manager) OnFullscreenEnter() {
	m.mu.Lock()
	f := m.fullscreen
	m.mu.Unlock()
	if f == nil {
		return
	}
	f.HandleEnter()
}

// SetStatusSink installs the channel status updates are pushed through.
// A nil sink silences them.
func (m *Manager) SetStatusSink(s StatusSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
}

// publishStatus pushes the current session snapshot to connected
// clients. Runs once per timer tick.
func (m *Manager) publishStatus() {
	m.mu.Lock()
	sink := m.status
	state := m.state
	timer := m.timer
	m.mu.Unlock()
	if sink == nil || state == nil || !state.Running() {
		return
	}
	sink.Broadcast(Status{
		Type:             "status",
		Technique:        string(state.Config().Technique),
		UserState:        string(state.UserState()),
		ElapsedSeconds:   int(timer.Elapsed().Seconds()),
		RemainingSeconds: int(timer.Remaining().Seconds()),
		Distractions:     state.Distractions(),
		Paused:           state.Paused(),
	})
}

// Timer exposes the running session's timer for status display.
func (m *Manager) Timer() *Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer
}

// State exposes the running session's state for status display.
func (m *Manager) State() *session.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) components() (*Classifier, *BotPatternDetector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classifier, m.bot
}

// onPhaseComplete fires once when a fixed technique's countdown runs
// out. The session keeps running until the user ends it.
func (m *Manager) onPhaseComplete() {
	log.Println("[manager] study phase complete")
	if m.notifier != nil {
		m.notifier.Send("Phase complete", "Study block finished. End the session when you're ready for a break.", notify.UrgencyNormal)
	}
}

// endByPolicy ends the session on the policy service's directive. It
// runs from a monitoring goroutine, so the actual End happens on a
// fresh goroutine to avoid deadlocking on the loop waitgroup.
func (m *Manager) endByPolicy() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := m.End(ctx); err != nil {
			log.Printf("[manager] policy-directed end failed: %v", err)
		}
	}()
}
