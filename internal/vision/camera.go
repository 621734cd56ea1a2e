package vision

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// CameraSource grabs single frames from a V4L2 webcam via ffmpeg.
// Capture plumbing stays out of the monitor: the presence loop only
// sees the FrameSource interface.
type CameraSource struct {
	device string
}

// NewCameraSource creates a frame source for the given video device.
func NewCameraSource(device string) *CameraSource {
	if device == "" {
		device = "/dev/video0"
	}
	return &CameraSource{device: device}
}

// Available checks whether ffmpeg is installed.
func (c *CameraSource) Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Frame captures one JPEG frame from the webcam.
func (c *CameraSource) Frame(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "v4l2",
		"-i", c.device,
		"-frames:v", "1",
		"-f", "image2",
		"-loglevel", "error",
		"pipe:1",
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame grab failed: %w", err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced an empty frame from %s", c.device)
	}
	return out.Bytes(), nil
}
