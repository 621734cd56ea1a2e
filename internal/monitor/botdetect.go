package monitor

import (
	"math"
	"sync"
	"time"

	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/session"
)

// BotPatternDetector flags suspiciously mechanical pointer input. Human
// pointer jitter has inter-arrival variance far exceeding scripted
// movement; near-constant long intervals suggest an auto-mover. The
// thresholds are heuristics and false positives on genuinely uniform
// movement are a known limitation.
type BotPatternDetector struct {
	mu      sync.Mutex
	samples []time.Time
	window  int

	maxStdDev time.Duration
	minMean   time.Duration

	sink DistractionSink
}

// NewBotPatternDetector creates a detector routing suspicions into the
// given sink.
func NewBotPatternDetector(cfg config.MonitorConfig, sink DistractionSink) *BotPatternDetector {
	window := cfg.BotSampleWindow
	if window < 2 {
		window = 5
	}
	return &BotPatternDetector{
		samples:   make([]time.Time, 0, window),
		window:    window,
		maxStdDev: cfg.BotMaxStdDev(),
		minMean:   cfg.BotMinMean(),
		sink:      sink,
	}
}

// RecordMouse feeds one mouse-activity timestamp into the ring buffer.
// Once the buffer is full, each new event re-evaluates the inter-arrival
// pattern.
func (d *BotPatternDetector) RecordMouse(now time.Time) {
	d.mu.Lock()
	d.samples = append(d.samples, now)
	if len(d.samples) > d.window {
		d.samples = d.samples[1:]
	}
	suspicious := false
	if len(d.samples) == d.window {
		mean, stdDev := intervalStats(d.samples)
		suspicious = stdDev < d.maxStdDev && mean > d.minMean
	}
	d.mu.Unlock()

	if suspicious {
		d.sink.RaiseDistraction(now, session.ReasonBotPattern)
	}
}

// intervalStats computes the mean and population standard deviation of
// the consecutive inter-arrival intervals.
func intervalStats(samples []time.Time) (mean, stdDev time.Duration) {
	intervals := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		intervals = append(intervals, float64(samples[i].Sub(samples[i-1]).Milliseconds()))
	}

	var sum float64
	for _, iv := range intervals {
		sum += iv
	}
	m := sum / float64(len(intervals))

	var variance float64
	for _, iv := range intervals {
		diff := iv - m
		variance += diff * diff
	}
	variance /= float64(len(intervals))

	mean = time.Duration(m) * time.Millisecond
	stdDev = time.Duration(math.Sqrt(variance)) * time.Millisecond
	return mean, stdDev
}
