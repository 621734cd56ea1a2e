// Hyprland desktop tracking.
//
// `hyprctl cursorpos` gives the pointer position; a position change
// since the last sample counts as mouse activity. `hyprctl activewindow
// -j` gives the focused window and its fullscreen state; a change of
// window address while a session runs counts as a window blur, and a
// fullscreen transition from on to off counts as a fullscreen exit.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/focusflow/focusflow/internal/platform"
)

// DesktopTracker polls Hyprland for cursor and window state.
type DesktopTracker struct {
	platform *platform.Platform
	sink     Sink

	cursorInterval time.Duration
	windowInterval time.Duration

	lastX, lastY  int
	haveCursor    bool
	lastAddress   string
	haveWindow    bool
	inFullscreen  bool
	sawFullscreen bool

	running bool
	stopCh  chan struct{}
}

// NewDesktopTracker creates a tracker feeding the given sink.
func NewDesktopTracker(plat *platform.Platform, sink Sink) *DesktopTracker {
	return &DesktopTracker{
		platform:       plat,
		sink:           sink,
		cursorInterval: 500 * time.Millisecond,
		windowInterval: time.Second,
		stopCh:         make(chan struct{}),
	}
}

// Available checks if desktop tracking is possible on this system.
func (d *DesktopTracker) Available() bool {
	return d.platform.CanTrackDesktop()
}

// Start begins the polling loops.
func (d *DesktopTracker) Start(ctx context.Context) {
	if d.running {
		return
	}
	d.running = true

	go d.cursorLoop(ctx)
	go d.windowLoop(ctx)
}

// Stop stops the polling loops.
func (d *DesktopTracker) Stop() {
	if !d.running {
		return
	}
	close(d.stopCh)
	d.running = false
}

func (d *DesktopTracker) cursorLoop(ctx context.Context) {
	ticker := time.NewTicker(d.cursorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		case <-ticker.C:
			x, y, err := d.cursorPosition(ctx)
			if err != nil {
				continue
			}
			if d.haveCursor && (x != d.lastX || y != d.lastY) {
				d.sink.OnMouseActivity(time.Now())
			}
			d.lastX, d.lastY = x, y
			d.haveCursor = true
		}
	}
}

func (d *DesktopTracker) windowLoop(ctx context.Context) {
	ticker := time.NewTicker(d.windowInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.sampleWindow(ctx)
		}
	}
}

// hyprlandWindow is the subset of `hyprctl activewindow -j` we use.
type hyprlandWindow struct {
	Address    string `json:"address"`
	Class      string `json:"class"`
	Title      string `json:"title"`
	Fullscreen int    `json:"fullscreen"`
}

func (d *DesktopTracker) sampleWindow(ctx context.Context) {
	cmd := exec.CommandContext(ctx, "hyprctl", "activewindow", "-j")
	output, err := cmd.Output()
	if err != nil {
		return
	}

	var win hyprlandWindow
	if err := json.Unmarshal(output, &win); err != nil {
		return
	}

	now := time.Now()

	if d.haveWindow && win.Address != d.lastAddress {
		d.sink.OnWindowBlur(now)
	}
	d.lastAddress = win.Address
	d.haveWindow = true

	fullscreen := win.Fullscreen > 0
	if d.sawFullscreen && d.inFullscreen && !fullscreen {
		d.sink.OnFullscreenExit(now)
	}
	if d.sawFullscreen && !d.inFullscreen && fullscreen {
		d.sink.OnFullscreenEnter()
	}
	d.inFullscreen = fullscreen
	d.sawFullscreen = true
}

// cursorPosition parses `hyprctl cursorpos`, which returns "X, Y".
func (d *DesktopTracker) cursorPosition(ctx context.Context) (int, int, error) {
	cmd := exec.CommandContext(ctx, "hyprctl", "cursorpos")
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, 0, err
	}

	parts := strings.Split(strings.TrimSpace(out.String()), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected cursorpos output: %q", out.String())
	}

	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}

	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}

	return x, y, nil
}
