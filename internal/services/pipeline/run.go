package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"roadwatch/internal/models"

	"github.com/google/uuid"
)

// Run is the handle of one pipeline run. Stopping it is advisory: the loop
// notices at the next iteration boundary, after any in-flight predictor
// call has returned.
type Run struct {
	ID          string
	Mode        models.Mode
	CameraIndex int
	StartedAt   time.Time

	state  atomic.Int32
	frames atomic.Uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func newRun(mode models.Mode, cameraIndex int, cancel context.CancelFunc) *Run {
	r := &Run{
		ID:          uuid.NewString(),
		Mode:        mode,
		CameraIndex: cameraIndex,
		StartedAt:   time.Now(),
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	r.state.Store(int32(models.StateRunning))
	return r
}

// Stop asks the run to end. Calling it again, or after the run ended, has
// no further effect.
func (r *Run) Stop() {
	r.cancel()
}

// Done is closed once the loop has exited and released its source.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run has ended.
func (r *Run) Wait() {
	<-r.done
}

func (r *Run) State() models.RunState {
	return models.RunState(r.state.Load())
}

// Frames returns how many iterations completed.
func (r *Run) Frames() uint64 {
	return r.frames.Load()
}

func (r *Run) finish() {
	r.state.Store(int32(models.StateStopped))
	r.cancel()
	close(r.done)
}

// Status is a snapshot of the controller for status endpoints.
type Status struct {
	State       models.RunState `json:"state"`
	RunID       string          `json:"run_id,omitempty"`
	Mode        models.Mode     `json:"mode,omitempty"`
	CameraIndex *int            `json:"camera_index,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	Frames      uint64          `json:"frames"`
}

func (r *Run) status() Status {
	if r == nil {
		return Status{State: models.StateStopped}
	}
	started := r.StartedAt
	s := Status{
		State:     r.State(),
		RunID:     r.ID,
		Mode:      r.Mode,
		StartedAt: &started,
		Frames:    r.Frames(),
	}
	if r.CameraIndex >= 0 {
		index := r.CameraIndex
		s.CameraIndex = &index
	}
	return s
}
