// Package vision provides the frame-presence capability consumed by the
// presence monitor. The monitor only sees the FrameDetector interface;
// the concrete detector is injected at session start, with a no-op
// implementation standing in when the camera is disabled.
package vision

import "context"

// Detection is the outcome of analyzing one video frame.
type Detection struct {
	FaceDetected bool    `json:"face_detected"`
	FaceCount    int     `json:"face_count"`
	Confidence   float64 `json:"confidence"`
	BoundingBox  []int   `json:"bounding_box,omitempty"` // [x, y, w, h]
}

// FrameDetector analyzes a single frame for face presence.
type FrameDetector interface {
	Detect(ctx context.Context, frame []byte) (*Detection, error)
}

// FrameSource produces the current video frame.
type FrameSource interface {
	Frame(ctx context.Context) ([]byte, error)
}

// NoopDetector always reports a single present face. It is injected when
// the camera capability is disabled so the presence path stays inert.
type NoopDetector struct{}

func (NoopDetector) Detect(context.Context, []byte) (*Detection, error) {
	return &Detection{FaceDetected: true, FaceCount: 1, Confidence: 1}, nil
}
