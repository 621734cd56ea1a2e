package storage

import (
	"testing"
	"time"

	"github.com/focusflow/focusflow/internal/session"
)

func testResult(id string, startedAt time.Time, score float64) *session.Result {
	return &session.Result{
		ID:            id,
		Technique:     session.TechniquePomodoro,
		Mode:          session.ModeScreen,
		CameraEnabled: true,
		StartedAt:     startedAt,
		EndedAt:       startedAt.Add(25 * time.Minute),
		Duration:      25 * time.Minute,
		Distractions:  2,
		TabSwitches:   1,
		MouseInactive: 3 * time.Minute,
		IdlePercent:   12,
		FinalState:    session.StateFocused,
		FocusScore:    score,
		Recommended:   session.Technique5217,
		Events: []session.Event{
			{At: startedAt.Add(5 * time.Minute), Reason: session.ReasonTabSwitch},
			{At: startedAt.Add(15 * time.Minute), Reason: session.ReasonHighInactivity},
		},
	}
}

func TestSaveAndLoadSessions(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if err := store.SaveSession(testResult("a1", base, 72)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := store.SaveSession(testResult("a2", base.Add(time.Hour), 88)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	recent, err := store.RecentSessions(10)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d sessions, want 2", len(recent))
	}
	// Newest first.
	if recent[0].ID != "a2" || recent[1].ID != "a1" {
		t.Errorf("order = [%s %s], want [a2 a1]", recent[0].ID, recent[1].ID)
	}
	if recent[0].FocusScore != 88 {
		t.Errorf("FocusScore = %v, want 88", recent[0].FocusScore)
	}
	if recent[0].Technique != session.TechniquePomodoro {
		t.Errorf("Technique = %s, want pomodoro", recent[0].Technique)
	}
	if recent[0].Duration != 25*time.Minute {
		t.Errorf("Duration = %v, want 25m", recent[0].Duration)
	}
}

func TestRecentSessionsLimit(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		res := testResult("", base.Add(time.Duration(i)*time.Hour), 50)
		res.ID = string(rune('a' + i))
		if err := store.SaveSession(res); err != nil {
			t.Fatalf("SaveSession: %v", err)
		}
	}

	recent, err := store.RecentSessions(3)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("got %d sessions, want 3", len(recent))
	}
}

func TestStats(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats on empty store: %v", err)
	}
	if stats.TotalSessions != 0 || stats.AverageScore != 0 {
		t.Errorf("empty stats = %+v, want zeros", stats)
	}

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store.SaveSession(testResult("a1", base, 60))
	store.SaveSession(testResult("a2", base.Add(time.Hour), 80))

	stats, err = store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2", stats.TotalSessions)
	}
	if stats.TotalStudyTime != 50*time.Minute {
		t.Errorf("TotalStudyTime = %v, want 50m", stats.TotalStudyTime)
	}
	if stats.TotalDistractions != 4 {
		t.Errorf("TotalDistractions = %d, want 4", stats.TotalDistractions)
	}
	if stats.AverageScore != 70 {
		t.Errorf("AverageScore = %v, want 70", stats.AverageScore)
	}
	if stats.BestScore != 80 {
		t.Errorf("BestScore = %v, want 80", stats.BestScore)
	}
}
