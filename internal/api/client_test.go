package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/focusflow/focusflow/internal/session"
)

func TestStartSendsSessionConfig(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/start" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.Start(context.Background(), session.Config{
		Technique:     session.TechniquePomodoro,
		Mode:          session.ModeBook,
		CameraEnabled: true,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if got["technique"] != "pomodoro" || got["study_mode"] != "book" || got["camera_enabled"] != true {
		t.Errorf("payload = %v", got)
	}
}

func TestEndReturnsSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m EndMetrics
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if m.Duration != 1500 || m.Distractions != 3 || m.UserState != "focused" {
			t.Errorf("metrics = %+v", m)
		}
		json.NewEncoder(w).Encode(Summary{
			SessionID:            7,
			FocusScore:           81.5,
			RecommendedTechnique: "52-17",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	sum, err := client.End(context.Background(), EndMetrics{
		Duration:     1500,
		Distractions: 3,
		UserState:    "focused",
	})
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if sum.SessionID != 7 || sum.FocusScore != 81.5 || sum.RecommendedTechnique != "52-17" {
		t.Errorf("summary = %+v", sum)
	}
}

func TestEndMapsBadRequestToNoActiveSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "no active session"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.End(context.Background(), EndMetrics{})
	if !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestActive(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     *ActiveSession
	}{
		{
			name:     "session in progress",
			response: `{"success": true, "session": {"technique": "flowtime", "study_mode": "screen", "elapsed_seconds": 420, "camera_enabled": true}}`,
			want:     &ActiveSession{Technique: "flowtime", StudyMode: "screen", ElapsedSeconds: 420, CameraEnabled: true},
		},
		{
			name:     "no session",
			response: `{"success": false}`,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("method = %s", r.Method)
				}
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			got, err := NewClient(srv.URL).Active(context.Background())
			if err != nil {
				t.Fatalf("Active: %v", err)
			}
			if tt.want == nil {
				if got != nil {
					t.Errorf("got %+v, want nil", got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Cancel(context.Background()); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if method != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", method)
	}
}

func TestCancelNoActiveSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "no active session"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Cancel(context.Background())
	if !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestPolicyEvaluate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/fullscreen-violation" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var payload map[string]int
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["violation_count"] != 4 {
			t.Errorf("violation_count = %d", payload["violation_count"])
		}
		json.NewEncoder(w).Encode(PolicyDecision{Action: ActionWarn, Message: "careful"})
	}))
	defer srv.Close()

	decision, err := NewHTTPPolicy(srv.URL).Evaluate(context.Background(), 4, 12, 600)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if decision.Action != ActionWarn || decision.Message != "careful" {
		t.Errorf("decision = %+v", decision)
	}
}

func TestPolicyEvaluateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewHTTPPolicy(srv.URL).Evaluate(context.Background(), 1, 0, 60); err == nil {
		t.Error("want error on 500")
	}
}
