// Package storage persists completed study sessions locally.
//
// The backend keeps its own record of every session; this store is the
// offline copy that survives network failures and feeds the stats
// command without a round trip.
//
// ~/.local/share/focusflow/
// └── focusflow.db              # SQLite database
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/focusflow/focusflow/internal/session"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store handles persistence of session results.
type Store struct {
	db *sql.DB
}

// New creates a new Store.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	dbPath := filepath.Join(baseDir, "focusflow.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		technique TEXT NOT NULL,
		study_mode TEXT NOT NULL,
		camera_enabled INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		ended_at DATETIME NOT NULL,
		duration_seconds INT NOT NULL,
		mouse_inactive_seconds INT DEFAULT 0,
		keyboard_inactive_seconds INT DEFAULT 0,
		camera_absence_seconds INT DEFAULT 0,
		tab_switches INT DEFAULT 0,
		distractions INT DEFAULT 0,
		final_state TEXT,
		idle_percent REAL DEFAULT 0,
		focus_score REAL DEFAULT 0,
		recommended_technique TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	CREATE TABLE IF NOT EXISTS session_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSession persists a completed session and its distraction events.
func (s *Store) SaveSession(res *session.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	camera := 0
	if res.CameraEnabled {
		camera = 1
	}

	_, err = tx.Exec(`
		INSERT INTO sessions (
			id, technique, study_mode, camera_enabled,
			started_at, ended_at, duration_seconds,
			mouse_inactive_seconds, keyboard_inactive_seconds,
			camera_absence_seconds, tab_switches, distractions,
			final_state, idle_percent, focus_score, recommended_technique
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, string(res.Technique), string(res.Mode), camera,
		res.StartedAt, res.EndedAt, int(res.Duration.Seconds()),
		int(res.MouseInactive.Seconds()), int(res.KeyboardInactive.Seconds()),
		int(res.CameraAbsence.Seconds()), res.TabSwitches, res.Distractions,
		string(res.FinalState), res.IdlePercent, res.FocusScore,
		string(res.Recommended),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for _, ev := range res.Events {
		_, err = tx.Exec(`
			INSERT INTO session_events (session_id, reason, timestamp)
			VALUES (?, ?, ?)`,
			res.ID, string(ev.Reason), ev.At,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	return tx.Commit()
}

// SessionSummary is one row of local session history.
type SessionSummary struct {
	ID           string
	Technique    session.Technique
	Mode         session.Mode
	StartedAt    time.Time
	Duration     time.Duration
	Distractions int
	FocusScore   float64
	Recommended  session.Technique
}

// RecentSessions returns the most recent sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]SessionSummary, error) {
	rows, err := s.db.Query(`
		SELECT id, technique, study_mode, started_at,
		       duration_seconds, distractions, focus_score, recommended_technique
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var technique, mode, recommended string
		var durationSec int
		if err := rows.Scan(&sum.ID, &technique, &mode, &sum.StartedAt,
			&durationSec, &sum.Distractions, &sum.FocusScore, &recommended); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sum.Technique = session.Technique(technique)
		sum.Mode = session.Mode(mode)
		sum.Recommended = session.Technique(recommended)
		sum.Duration = time.Duration(durationSec) * time.Second
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Stats aggregates the local session history.
type Stats struct {
	TotalSessions     int
	TotalStudyTime    time.Duration
	TotalDistractions int
	AverageScore      float64
	BestScore         float64
}

// Stats returns aggregate statistics over all stored sessions.
func (s *Store) Stats() (*Stats, error) {
	row := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(duration_seconds), 0),
		       COALESCE(SUM(distractions), 0),
		       COALESCE(AVG(focus_score), 0),
		       COALESCE(MAX(focus_score), 0)
		FROM sessions`)

	var st Stats
	var totalSec int
	if err := row.Scan(&st.TotalSessions, &totalSec, &st.TotalDistractions,
		&st.AverageScore, &st.BestScore); err != nil {
		return nil, fmt.Errorf("failed to aggregate sessions: %w", err)
	}
	st.TotalStudyTime = time.Duration(totalSec) * time.Second
	return &st, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
