package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// PolicyAction is the directive returned by the fullscreen-violation
// policy service. Escalation severity is the service's decision; the
// monitor only counts violations and forwards them.
type PolicyAction string

const (
	ActionContinue   PolicyAction = "CONTINUE"
	ActionWarn       PolicyAction = "WARN"
	ActionEndSession PolicyAction = "END_SESSION"
)

// PolicyDecision is the service's verdict on a violation report.
type PolicyDecision struct {
	Action  PolicyAction `json:"action"`
	Message string       `json:"message"`
}

// FullscreenPolicy evaluates a fullscreen-exit violation.
type FullscreenPolicy interface {
	Evaluate(ctx context.Context, violations, secondsSinceLast, durationSoFar int) (*PolicyDecision, error)
}

// HTTPPolicy asks the backend to evaluate the violation.
type HTTPPolicy struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPPolicy creates a policy client for the given backend.
func NewHTTPPolicy(baseURL string) *HTTPPolicy {
	return &HTTPPolicy{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate reports the violation and returns the directive.
func (p *HTTPPolicy) Evaluate(ctx context.Context, violations, secondsSinceLast, durationSoFar int) (*PolicyDecision, error) {
	client := Client{baseURL: p.baseURL, httpClient: p.httpClient}
	payload := map[string]int{
		"violation_count":    violations,
		"seconds_since_last": secondsSinceLast,
		"duration_so_far":    durationSoFar,
	}
	var decision PolicyDecision
	if err := client.post(ctx, "/api/sessions/fullscreen-violation", payload, &decision); err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}
	return &decision, nil
}

// PermissivePolicy always continues. It is the no-op default when no
// policy service is configured.
type PermissivePolicy struct{}

func (PermissivePolicy) Evaluate(context.Context, int, int, int) (*PolicyDecision, error) {
	return &PolicyDecision{Action: ActionContinue}, nil
}
