// Package main is the FocusFlow session monitor CLI.
//
// Usage:
//
//	focusflow monitor --technique pomodoro --mode screen
//	focusflow stats
//	focusflow cancel
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusflow/focusflow/internal/api"
	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/monitor"
	"github.com/focusflow/focusflow/internal/notify"
	"github.com/focusflow/focusflow/internal/platform"
	"github.com/focusflow/focusflow/internal/session"
	"github.com/focusflow/focusflow/internal/source"
	"github.com/focusflow/focusflow/internal/storage"
	"github.com/focusflow/focusflow/internal/vision"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "focusflow",
		Short:         "Study session monitor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMonitorCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newCancelCmd())
	return root
}

func newMonitorCmd() *cobra.Command {
	var technique, mode string
	var camera bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start monitoring a study session",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMonitor(technique, mode, camera)
		},
	}
	cmd.Flags().StringVar(&technique, "technique", "pomodoro", "study technique: pomodoro|52-17|study-sprint|flowtime")
	cmd.Flags().StringVar(&mode, "mode", "screen", "study mode: screen|book")
	cmd.Flags().BoolVar(&camera, "camera", false, "enable camera presence monitoring")
	return cmd
}

func runMonitor(techniqueArg, modeArg string, camera bool) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("FocusFlow starting...")

	technique, err := session.ParseTechnique(techniqueArg)
	if err != nil {
		return err
	}
	mode, err := session.ParseMode(modeArg)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.EnsureStorageDir(); err != nil {
		return fmt.Errorf("failed to prepare storage: %w", err)
	}

	plat, err := platform.Detect()
	if err != nil {
		return fmt.Errorf("failed to detect platform: %w", err)
	}
	log.Printf("Platform detected: %s", plat)
	for _, m := range plat.CheckRequirements() {
		log.Printf("Missing: %s", m)
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	var notifier monitor.Notifier
	desktop := notify.NewDesktopNotifier()
	if cfg.DesktopNotifications && desktop.Available() {
		notifier = desktop
	} else {
		notifier = notify.Muted{Inner: desktop}
	}

	var detector vision.FrameDetector
	var frames vision.FrameSource
	if camera || cfg.Camera.Enabled {
		camera = true
		cam := vision.NewCameraSource(cfg.Camera.Device)
		if cam.Available() {
			frames = cam
			detector = vision.NewHTTPDetector(cfg.BackendURL)
		}
	}

	client := api.NewClient(cfg.BackendURL)
	mgr := monitor.NewManager(cfg, client, api.NewHTTPPolicy(cfg.BackendURL), store, notifier, detector, frames)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resume if the server still has a session in progress.
	resumeElapsed, resumed := checkResume(ctx, client, &technique, &mode, &camera)

	sc := session.Config{Technique: technique, Mode: mode, CameraEnabled: camera}
	if err := mgr.Start(ctx, sc, resumeElapsed, !resumed); err != nil {
		return err
	}

	// Wire up the activity sources.
	desktopTracker := source.NewDesktopTracker(plat, mgr)
	if desktopTracker.Available() {
		desktopTracker.Start(ctx)
		defer desktopTracker.Stop()
	} else {
		log.Println("Desktop tracking unavailable on this system")
	}

	keyboard := source.NewKeyboardTracker(mgr)
	if keyboard.Available() {
		keyboard.Start(ctx)
		defer keyboard.Stop()
	} else {
		log.Println("Keyboard tracking unavailable (add user to 'input' group)")
	}

	events := source.NewEventServer(socketPath(), mgr)
	if err := events.Start(); err != nil {
		log.Printf("Browser event socket unavailable: %v", err)
	} else {
		defer events.Stop()
		mgr.SetStatusSink(events)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Println("FocusFlow monitoring. Press Ctrl+C to end the session.")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, ending session...", sig)
		endCtx, endCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer endCancel()
		res, err := mgr.End(endCtx)
		if err != nil {
			return err
		}
		printResult(res)
	case <-mgr.Done():
		// Ended elsewhere (by policy directive).
		log.Println("Session ended by policy")
	}

	return nil
}

// checkResume asks the server for an in-progress session. When one
// exists its parameters replace the command-line choices so local and
// server state agree.
func checkResume(ctx context.Context, client *api.Client, technique *session.Technique, mode *session.Mode, camera *bool) (time.Duration, bool) {
	active, err := client.Active(ctx)
	if err != nil {
		log.Printf("Could not query active session: %v", err)
		return 0, false
	}
	if active == nil {
		return 0, false
	}

	if t, err := session.ParseTechnique(active.Technique); err == nil {
		*technique = t
	}
	if m, err := session.ParseMode(active.StudyMode); err == nil {
		*mode = m
	}
	*camera = active.CameraEnabled

	elapsed := time.Duration(active.ElapsedSeconds) * time.Second
	log.Printf("Resuming session in progress: technique=%s elapsed=%s", active.Technique, elapsed)
	return elapsed, true
}

func printResult(res *session.Result) {
	fmt.Println()
	fmt.Println("Session complete")
	fmt.Printf("  Duration:      %s\n", res.Duration.Round(time.Second))
	fmt.Printf("  Focus score:   %.1f / 100\n", res.FocusScore)
	fmt.Printf("  Distractions:  %d\n", res.Distractions)
	fmt.Printf("  Idle time:     %.0f%%\n", res.IdlePercent)
	fmt.Printf("  Next time try: %s\n", res.Recommended)
}

func newStatsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show local session history and statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := storage.New(cfg.StoragePath)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sessions:      %d\n", stats.TotalSessions)
			fmt.Fprintf(out, "Study time:    %s\n", stats.TotalStudyTime.Round(time.Minute))
			fmt.Fprintf(out, "Distractions:  %d\n", stats.TotalDistractions)
			fmt.Fprintf(out, "Average score: %.1f\n", stats.AverageScore)
			fmt.Fprintf(out, "Best score:    %.1f\n", stats.BestScore)

			recent, err := store.RecentSessions(limit)
			if err != nil {
				return err
			}
			if len(recent) > 0 {
				fmt.Fprintln(out, "\nRecent sessions:")
				for _, s := range recent {
					fmt.Fprintf(out, "  %s  %-12s %-6s  %6s  score %.1f\n",
						s.StartedAt.Format("2006-01-02 15:04"), s.Technique, s.Mode,
						s.Duration.Round(time.Minute), s.FocusScore)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of recent sessions to show")
	return cmd
}

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the session the server considers active",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			client := api.NewClient(cfg.BackendURL)
			if err := client.Cancel(ctx); err != nil {
				if errors.Is(err, api.ErrNoActiveSession) {
					fmt.Fprintln(cmd.OutOrStdout(), "No active session to cancel")
					return nil
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session cancelled")
			return nil
		},
	}
}

// socketPath returns the unix socket the browser extension bridge
// connects to.
func socketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "focusflow.sock")
	}
	return "/tmp/focusflow.sock"
}
