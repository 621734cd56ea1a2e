package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// HTTPDetector calls the backend face-detection endpoint with the frame
// as a multipart upload. The caller treats any transport or decode error
// as "no face"; this client only reports it.
type HTTPDetector struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPDetector creates a detector client for the given backend.
func NewHTTPDetector(baseURL string) *HTTPDetector {
	return &HTTPDetector{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Detect posts the frame to /api/ml/detect-face.
func (d *HTTPDetector) Detect(ctx context.Context, frame []byte) (*Detection, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to build frame upload: %w", err)
	}
	if _, err := part.Write(frame); err != nil {
		return nil, fmt.Errorf("failed to build frame upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build frame upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/ml/detect-face", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector returned status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read detector response: %w", err)
	}

	var det Detection
	if err := json.Unmarshal(respBody, &det); err != nil {
		return nil, fmt.Errorf("failed to decode detector response: %w", err)
	}
	return &det, nil
}
