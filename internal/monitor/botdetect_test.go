package monitor

import (
	"testing"
	"time"

	"github.com/focusflow/focusflow/internal/session"
)

func feedIntervals(d *BotPatternDetector, start time.Time, intervals []time.Duration) {
	now := start
	d.RecordMouse(now)
	for _, iv := range intervals {
		now = now.Add(iv)
		d.RecordMouse(now)
	}
}

func TestBotPatternUniformSlowMovement(t *testing.T) {
	cfg := testMonitorConfig()
	sink := &recordingSink{}
	d := NewBotPatternDetector(cfg, sink)
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// A mouse jiggler: exactly 1.5s between samples, zero jitter.
	feedIntervals(d, start, []time.Duration{
		1500 * time.Millisecond,
		1500 * time.Millisecond,
		1500 * time.Millisecond,
		1500 * time.Millisecond,
	})

	if sink.count() != 1 {
		t.Fatalf("raises = %d, want 1 (fires once the window fills)", sink.count())
	}
	if sink.last() != session.ReasonBotPattern {
		t.Errorf("reason = %s, want bot_pattern", sink.last())
	}
}

func TestBotPatternHumanJitter(t *testing.T) {
	cfg := testMonitorConfig()
	sink := &recordingSink{}
	d := NewBotPatternDetector(cfg, sink)
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// Same mean spacing but human-scale variance.
	feedIntervals(d, start, []time.Duration{
		1100 * time.Millisecond,
		2100 * time.Millisecond,
		900 * time.Millisecond,
		1900 * time.Millisecond,
	})

	if sink.count() != 0 {
		t.Errorf("raises = %d, want 0 for jittery input", sink.count())
	}
}

func TestBotPatternFastUniformMovement(t *testing.T) {
	cfg := testMonitorConfig()
	sink := &recordingSink{}
	d := NewBotPatternDetector(cfg, sink)
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// Perfectly uniform but fast: continuous real dragging, not a bot.
	feedIntervals(d, start, []time.Duration{
		100 * time.Millisecond,
		100 * time.Millisecond,
		100 * time.Millisecond,
		100 * time.Millisecond,
	})

	if sink.count() != 0 {
		t.Errorf("raises = %d, want 0 below the mean-interval floor", sink.count())
	}
}

func TestBotPatternSlidingWindow(t *testing.T) {
	cfg := testMonitorConfig()
	sink := &recordingSink{}
	d := NewBotPatternDetector(cfg, sink)
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// Irregular warmup, then a sustained uniform pattern. The window
	// must slide past the warmup and start firing.
	intervals := []time.Duration{
		700 * time.Millisecond,
		2300 * time.Millisecond,
	}
	for i := 0; i < 6; i++ {
		intervals = append(intervals, 2*time.Second)
	}
	feedIntervals(d, start, intervals)

	if sink.count() == 0 {
		t.Error("sustained uniform movement after warmup never flagged")
	}
}

func TestBotPatternBelowWindowNeverFires(t *testing.T) {
	cfg := testMonitorConfig()
	sink := &recordingSink{}
	d := NewBotPatternDetector(cfg, sink)
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	feedIntervals(d, start, []time.Duration{
		1500 * time.Millisecond,
		1500 * time.Millisecond,
	})

	if sink.count() != 0 {
		t.Errorf("raises = %d, want 0 before the sample window fills", sink.count())
	}
}
