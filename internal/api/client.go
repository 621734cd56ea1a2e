// Package api provides clients for the FocusFlow backend: session
// persistence and the fullscreen-violation policy service. The monitor
// core is transport-agnostic; everything HTTP lives here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/focusflow/focusflow/internal/session"
)

// ErrNoActiveSession is returned when the backend reports that no
// session is active for this user. On end this means local and server
// state have diverged and the caller should surface a recovery notice.
var ErrNoActiveSession = errors.New("no active session on server")

// SessionAPI is the persistence collaborator contract.
type SessionAPI interface {
	Start(ctx context.Context, cfg session.Config) error
	End(ctx context.Context, metrics EndMetrics) (*Summary, error)
	Active(ctx context.Context) (*ActiveSession, error)
	Cancel(ctx context.Context) error
}

// EndMetrics is the payload submitted when a session ends. Field names
// follow the backend's session schema; durations are whole seconds.
type EndMetrics struct {
	Duration             int    `json:"duration"`
	Distractions         int    `json:"distractions"`
	MouseInactiveTime    int    `json:"mouse_inactive_time"`
	KeyboardInactiveTime int    `json:"keyboard_inactive_time"`
	TabSwitches          int    `json:"tab_switches"`
	CameraAbsenceTime    int    `json:"camera_absence_time"`
	UserState            string `json:"user_state"`
}

// Summary is the backend's session summary response.
type Summary struct {
	SessionID            int64   `json:"session_id"`
	Technique            string  `json:"technique"`
	StudyMode            string  `json:"study_mode"`
	DurationMinutes      int     `json:"duration_minutes"`
	FocusScore           float64 `json:"focus_score"`
	Distractions         int     `json:"distractions"`
	RecommendedTechnique string  `json:"recommended_technique"`
	IdleTimePercentage   float64 `json:"idle_time_percentage"`
}

// ActiveSession describes a session the server believes is in progress.
type ActiveSession struct {
	Technique      string `json:"technique"`
	StudyMode      string `json:"study_mode"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	CameraEnabled  bool   `json:"camera_enabled"`
}

// Client talks to the backend session routes.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a session API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Start registers a new session with the backend.
func (c *Client) Start(ctx context.Context, cfg session.Config) error {
	payload := map[string]any{
		"technique":      string(cfg.Technique),
		"study_mode":     string(cfg.Mode),
		"camera_enabled": cfg.CameraEnabled,
	}
	return c.post(ctx, "/api/sessions/start", payload, nil)
}

// End submits the final metrics and returns the server-side summary.
// A 400 here means the server has no active session: local and server
// state have diverged.
func (c *Client) End(ctx context.Context, metrics EndMetrics) (*Summary, error) {
	var summary Summary
	if err := c.post(ctx, "/api/sessions/end", metrics, &summary); err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.code == http.StatusBadRequest {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	return &summary, nil
}

// Active returns the session the server thinks is running, or nil.
func (c *Client) Active(ctx context.Context) (*ActiveSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/sessions/active", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("active session check failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read active session response: %w", err)
	}

	var envelope struct {
		Success bool          `json:"success"`
		Session ActiveSession `json:"session"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode active session response: %w", err)
	}
	if !envelope.Success {
		return nil, nil
	}
	return &envelope.Session, nil
}

// Cancel discards the active session without recording it.
func (c *Client) Cancel(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/sessions/cancel", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cancel request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return ErrNoActiveSession
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cancel returned status %d", resp.StatusCode)
	}
	return nil
}

// statusError reports an unexpected HTTP status from the backend.
type statusError struct {
	path string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.path, e.code)
}

// post sends a JSON payload and optionally decodes the response.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &statusError{path: path, code: resp.StatusCode}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}
