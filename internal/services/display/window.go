// Package display shows annotated frames in a local OpenCV window.
package display

import (
	"context"
	"runtime"

	"roadwatch/internal/logger"
	"roadwatch/internal/services/camera"
	"roadwatch/internal/services/camera/webcam"

	"gocv.io/x/gocv"
)

const quitKey = 'q'

// Window renders the most recent frame it was shown. Rendering runs on its
// own goroutine so a slow window never holds up the capture loop; frames
// that arrive faster than they are drawn replace each other.
type Window struct {
	title  string
	latest chan camera.Frame
	onQuit func()
	logger *logger.Logger
}

// NewWindow creates a window sink. onQuit runs when the operator presses q.
func NewWindow(title string, onQuit func(), logger *logger.Logger) *Window {
	return &Window{
		title:  title,
		latest: make(chan camera.Frame, 1),
		onQuit: onQuit,
		logger: logger,
	}
}

// Show queues a copy of frame for rendering.
func (w *Window) Show(frame camera.Frame) {
	copied := frame.Clone()
	for {
		select {
		case w.latest <- copied:
			return
		default:
		}
		select {
		case old := <-w.latest:
			old.Close()
		default:
		}
	}
}

// Run owns the OpenCV window until ctx is cancelled.
func (w *Window) Run(ctx context.Context) {
	// HighGUI calls must stay on one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	window := gocv.NewWindow(w.title)
	defer window.Close()
	w.logger.Info("Local display %q opened", w.title)

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case frame := <-w.latest:
			w.render(window, frame)
		}
	}
}

func (w *Window) render(window *gocv.Window, frame camera.Frame) {
	defer frame.Close()

	f, ok := frame.(*webcam.Frame)
	if !ok {
		return
	}
	window.IMShow(f.Mat())
	if window.WaitKey(1) == quitKey && w.onQuit != nil {
		w.logger.Info("Quit requested from local display")
		w.onQuit()
	}
}

func (w *Window) drain() {
	for {
		select {
		case frame := <-w.latest:
			frame.Close()
		default:
			return
		}
	}
}
