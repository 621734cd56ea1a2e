// Package platform handles detection of the operating system and display server.
//
// Different platforms need different methods to:
// - Track cursor and window state (hyprctl on Hyprland)
// - Grab camera frames (ffmpeg with v4l2 on Linux)
// - Notify the user (notify-send on Linux desktops)
package platform

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// DisplayServer represents the display server type.
type DisplayServer string

const (
	DisplayServerHyprland DisplayServer = "hyprland"
	DisplayServerSway     DisplayServer = "sway"
	DisplayServerWayland  DisplayServer = "wayland" // Generic Wayland (GNOME, KDE)
	DisplayServerX11      DisplayServer = "x11"
	DisplayServerMacOS    DisplayServer = "macos"
	DisplayServerUnknown  DisplayServer = "unknown"
)

// Platform holds information about the detected platform.
type Platform struct {
	// OS is the operating system: "linux", "darwin" (macOS), "windows"
	OS string

	// DisplayServer is the specific display server being used
	DisplayServer DisplayServer

	// Available tools - these are set based on what's installed
	HasHyprctl    bool // Hyprland control tool
	HasNotifySend bool // desktop notifications
	HasFfmpeg     bool // camera frame grabbing
}

// String returns a human-readable description of the platform.
func (p *Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.DisplayServer)
}

// Detect figures out what platform we're running on.
// It checks the OS, then probes for display server and available tools.
func Detect() (*Platform, error) {
	p := &Platform{
		OS: runtime.GOOS,
	}

	p.DisplayServer = detectDisplayServer()

	p.HasHyprctl = commandExists("hyprctl")
	p.HasNotifySend = commandExists("notify-send")
	p.HasFfmpeg = commandExists("ffmpeg")

	return p, nil
}

// detectDisplayServer figures out which display server is running.
func detectDisplayServer() DisplayServer {
	if runtime.GOOS == "darwin" {
		return DisplayServerMacOS
	}

	// Hyprland sets HYPRLAND_INSTANCE_SIGNATURE
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return DisplayServerHyprland
	}

	if os.Getenv("SWAYSOCK") != "" {
		return DisplayServerSway
	}

	sessionType := os.Getenv("XDG_SESSION_TYPE")
	if sessionType == "wayland" {
		return DisplayServerWayland
	}

	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return DisplayServerWayland
	}

	if sessionType == "x11" || os.Getenv("DISPLAY") != "" {
		return DisplayServerX11
	}

	return DisplayServerUnknown
}

// commandExists checks if a command is available in PATH.
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// CanTrackDesktop returns true if cursor and window tracking is available.
func (p *Platform) CanTrackDesktop() bool {
	return p.DisplayServer == DisplayServerHyprland && p.HasHyprctl
}

// CanCaptureCamera returns true if camera frame grabbing is available.
func (p *Platform) CanCaptureCamera() bool {
	return p.OS == "linux" && p.HasFfmpeg
}

// CheckRequirements returns a list of missing optional tools.
func (p *Platform) CheckRequirements() []string {
	var missing []string

	if !p.CanTrackDesktop() {
		missing = append(missing, "hyprctl (desktop activity tracking works on Hyprland only)")
	}
	if !p.HasNotifySend {
		missing = append(missing, "notify-send (install: sudo pacman -S libnotify)")
	}
	if !p.HasFfmpeg {
		missing = append(missing, "ffmpeg (needed for camera presence monitoring)")
	}

	return missing
}
