// Keyboard activity tracking via evdev.
//
// Requires the user to be in the 'input' group:
//
//	sudo usermod -aG input $USER
//
// Privacy note: only the fact that a key was pressed is used, never
// which key.
package source

import (
	"bufio"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Linux input event structure (from linux/input.h)
// struct input_event {
//     struct timeval time;
//     __u16 type;
//     __u16 code;
//     __s32 value;
// }

const (
	evKey    = 0x01 // EV_KEY
	keyPress = 1
)

// KeyboardTracker reports keystroke activity.
type KeyboardTracker struct {
	sink       Sink
	running    bool
	stopCh     chan struct{}
	devicePath string
}

// NewKeyboardTracker creates a keyboard tracker feeding the given sink.
func NewKeyboardTracker(sink Sink) *KeyboardTracker {
	return &KeyboardTracker{
		sink:   sink,
		stopCh: make(chan struct{}),
	}
}

// Available checks if keyboard tracking is available.
func (k *KeyboardTracker) Available() bool {
	device := k.findKeyboardDevice()
	if device == "" {
		return false
	}

	f, err := os.Open(device)
	if err != nil {
		return false
	}
	f.Close()

	k.devicePath = device
	return true
}

// findKeyboardDevice finds the primary keyboard input device.
func (k *KeyboardTracker) findKeyboardDevice() string {
	matches, _ := filepath.Glob("/dev/input/by-id/*-kbd")
	if len(matches) > 0 {
		return matches[0]
	}

	// Fallback: scan /proc/bus/input/devices for a keyboard handler
	f, err := os.Open("/proc/bus/input/devices")
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var currentHandler string
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "H: Handlers=") {
			parts := strings.Fields(line)
			for _, p := range parts {
				if strings.HasPrefix(p, "event") {
					currentHandler = "/dev/input/" + p
				}
			}
		}

		if strings.Contains(line, "EV=120013") || // Typical keyboard
			strings.Contains(strings.ToLower(line), "keyboard") {
			if currentHandler != "" {
				return currentHandler
			}
		}

		if line == "" {
			currentHandler = ""
		}
	}

	return ""
}

// Start begins keyboard tracking.
func (k *KeyboardTracker) Start(ctx context.Context) {
	if k.running || k.devicePath == "" {
		return
	}
	k.running = true

	go k.trackLoop(ctx)
}

// Stop stops keyboard tracking.
func (k *KeyboardTracker) Stop() {
	if !k.running {
		return
	}
	close(k.stopCh)
	k.running = false
}

// trackLoop reads keyboard events.
func (k *KeyboardTracker) trackLoop(ctx context.Context) {
	f, err := os.Open(k.devicePath)
	if err != nil {
		return
	}
	defer f.Close()

	// input_event is 24 bytes on 64-bit Linux:
	// timeval (16 bytes) + type (2) + code (2) + value (4)
	eventSize := 24
	buf := make([]byte, eventSize)

	for {
		select {
		case <-ctx.Done():
			return
		case <-k.stopCh:
			return
		default:
			n, err := f.Read(buf)
			if err != nil || n != eventSize {
				continue
			}

			eventType := binary.LittleEndian.Uint16(buf[16:18])
			value := int32(binary.LittleEndian.Uint32(buf[20:24]))

			if eventType == evKey && value == keyPress {
				k.sink.OnKeyboardActivity(time.Now())
			}
		}
	}
}
