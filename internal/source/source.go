// Package source feeds raw activity signals into the session manager.
//
// Signals come from three places: the compositor (cursor movement,
// focused window, fullscreen state), the kernel input layer (keystroke
// timing via evdev), and a local unix socket fed by the browser
// extension (tab visibility). Sources only observe timing and identity
// of events, never their content.
package source

import "time"

// Sink receives raw activity and control events. The session manager
// implements it.
type Sink interface {
	OnMouseActivity(now time.Time)
	OnKeyboardActivity(now time.Time)
	OnTabHidden(now time.Time)
	OnWindowBlur(now time.Time)
	OnFullscreenExit(now time.Time)
	OnFullscreenEnter()
	Pause()
	Resume()
}
