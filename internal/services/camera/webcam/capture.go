// Package webcam reads frames from local video devices through OpenCV.
package webcam

import (
	"fmt"
	"sync"

	"roadwatch/internal/config"
	"roadwatch/internal/logger"
	"roadwatch/internal/services/camera"

	"gocv.io/x/gocv"
)

// Device opens capture devices at a fixed requested resolution.
type Device struct {
	width  int
	height int
	logger *logger.Logger
}

func NewDevice(cfg *config.Config, logger *logger.Logger) *Device {
	return &Device{
		width:  cfg.Camera.Width,
		height: cfg.Camera.Height,
		logger: logger,
	}
}

// Open opens the device at index and reads one frame to prove it works.
// That frame is handed out by the first Next call.
func (d *Device) Open(index int) (camera.Source, error) {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("%w: camera %d: %v", camera.ErrSourceUnavailable, index, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: camera %d is not opened", camera.ErrSourceUnavailable, index)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.height))

	first := gocv.NewMat()
	if ok := vc.Read(&first); !ok || first.Empty() {
		first.Close()
		vc.Close()
		return nil, fmt.Errorf("%w: camera %d returned no frame", camera.ErrSourceUnavailable, index)
	}

	d.logger.Info("Camera %d opened at %dx%d", index, first.Cols(), first.Rows())
	return &Capture{index: index, vc: vc, pending: NewFrame(first)}, nil
}

// Capture is an open device.
type Capture struct {
	index   int
	vc      *gocv.VideoCapture
	pending *Frame
	closed  bool
	mu      sync.Mutex
}

func (c *Capture) Next() (camera.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, camera.ErrEndOfStream
	}
	if c.pending != nil {
		f := c.pending
		c.pending = nil
		return f, nil
	}

	mat := gocv.NewMat()
	if ok := c.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, camera.ErrEndOfStream
	}
	return NewFrame(mat), nil
}

// Close releases the device. It is safe to call more than once.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.pending != nil {
		c.pending.Close()
		c.pending = nil
	}
	return c.vc.Close()
}
