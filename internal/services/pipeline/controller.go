// Package pipeline drives the capture → inference → annotate → publish loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roadwatch/internal/config"
	"roadwatch/internal/logger"
	"roadwatch/internal/metrics"
	"roadwatch/internal/models"
	"roadwatch/internal/services/ai"
	"roadwatch/internal/services/annotate"
	"roadwatch/internal/services/camera"
)

// ErrAlreadyRunning is returned by Start while another run is active. A
// second loop is never spawned.
var ErrAlreadyRunning = errors.New("pipeline already running")

// Publisher delivers updates to subscribers. Implementations must not block.
type Publisher interface {
	Publish(topic string, payload any) error
}

// FrameSink receives each annotated frame. The frame is only valid for the
// duration of the call; sinks that keep it must clone it.
type FrameSink interface {
	Show(frame camera.Frame)
}

type Controller struct {
	opener    camera.Opener
	signs     ai.Predictor
	potholes  ai.Predictor
	publisher Publisher
	display   FrameSink
	metrics   *metrics.Pipeline
	logger    *logger.Logger

	interval time.Duration
	topic    string
	maxProbe int

	mu     sync.Mutex
	active *Run
}

func NewController(cfg *config.Config, opener camera.Opener, signs, potholes ai.Predictor, publisher Publisher, metrics *metrics.Pipeline, logger *logger.Logger) *Controller {
	return &Controller{
		opener:    opener,
		signs:     signs,
		potholes:  potholes,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		interval:  cfg.Publish.Interval,
		topic:     cfg.Publish.Topic,
		maxProbe:  cfg.Camera.MaxProbe,
	}
}

// SetDisplay attaches an optional local display. Call before the first run.
func (c *Controller) SetDisplay(sink FrameSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.display = sink
}

// Start opens camera cameraIndex and runs the loop in the background. It
// returns once the source is open. An index that cannot be opened yields
// camera.ErrSourceUnavailable and leaves the controller stopped.
func (c *Controller) Start(mode models.Mode, cameraIndex int) (*Run, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownMode, mode)
	}

	// The lock is held across Open so two concurrent starts cannot both
	// claim the device.
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return c.active, ErrAlreadyRunning
	}

	src, err := c.opener.Open(cameraIndex)
	if err != nil {
		if !errors.Is(err, camera.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", camera.ErrSourceUnavailable, err)
		}
		c.logger.Warning("Could not start pipeline on camera %d: %v", cameraIndex, err)
		return nil, err
	}

	return c.launch(mode, cameraIndex, src), nil
}

// Run drives src in mode and blocks until ctx is cancelled, the run is
// stopped or the source is exhausted. Ownership of src passes to Run.
func (c *Controller) Run(ctx context.Context, mode models.Mode, src camera.Source) error {
	if !mode.Valid() {
		src.Close()
		return fmt.Errorf("%w: %q", models.ErrUnknownMode, mode)
	}

	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		src.Close()
		return ErrAlreadyRunning
	}
	run := c.launch(mode, -1, src)
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		run.Stop()
		run.Wait()
	case <-run.Done():
	}
	return nil
}

// launch must be called with c.mu held.
func (c *Controller) launch(mode models.Mode, cameraIndex int, src camera.Source) *Run {
	ctx, cancel := context.WithCancel(context.Background())
	run := newRun(mode, cameraIndex, cancel)
	c.active = run
	c.metrics.Running.Set(1)

	go c.loop(ctx, run, src, c.display)
	return run
}

// Stop requests the active run to end and reports whether there was one.
// It does not wait; repeated calls are harmless.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	run := c.active
	c.mu.Unlock()

	if run == nil {
		return false
	}
	run.Stop()
	c.logger.Info("Stop requested for pipeline run %s", run.ID)
	return true
}

// Shutdown stops the active run and waits for it to release its source.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	run := c.active
	c.mu.Unlock()

	if run == nil {
		return nil
	}
	run.Stop()

	select {
	case <-run.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) State() models.RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return models.StateStopped
	}
	return c.active.State()
}

// Active returns the current run or nil.
func (c *Controller) Active() *Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) Status() Status {
	return c.Active().status()
}

// ListCameras probes camera indices from 0 until one fails to open.
func (c *Controller) ListCameras() []int {
	return camera.ListAvailable(c.opener, c.maxProbe)
}

func (c *Controller) loop(ctx context.Context, run *Run, src camera.Source, display FrameSink) {
	defer func() {
		if err := src.Close(); err != nil {
			c.logger.Warning("Failed to release camera for run %s: %v", run.ID, err)
		}

		c.mu.Lock()
		if c.active == run {
			c.active = nil
		}
		c.mu.Unlock()

		c.metrics.Running.Set(0)
		run.finish()
		c.logger.Info("Pipeline run %s stopped after %d frame(s)", run.ID, run.Frames())
	}()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Pipeline run %s aborted: %v", run.ID, r)
		}
	}()

	c.logger.Info("Pipeline run %s started: mode=%s camera=%d", run.ID, run.Mode, run.CameraIndex)

	for {
		if ctx.Err() != nil {
			return
		}

		frame, err := src.Next()
		if err != nil {
			if errors.Is(err, camera.ErrEndOfStream) {
				c.logger.Info("Source exhausted for run %s", run.ID)
			} else {
				c.logger.Warning("Source failed for run %s: %v", run.ID, err)
			}
			return
		}

		c.iterate(ctx, run, frame, display)
		frame.Close()

		run.frames.Add(1)
		c.metrics.Frames.WithLabelValues(string(run.Mode)).Inc()

		timer := time.NewTimer(c.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// iterate runs one frame through the predictors, annotates a copy and
// publishes the update.
func (c *Controller) iterate(ctx context.Context, run *Run, frame camera.Frame, display FrameSink) {
	image, err := frame.Encode()
	if err != nil {
		c.logger.Warning("Skipping frame: %v", err)
		return
	}

	signs, potholes := c.predict(ctx, run.Mode, image)

	annotated := frame.Clone()
	defer annotated.Close()

	for _, result := range []*models.DetectionResult{signs, potholes} {
		if result == nil {
			continue
		}
		if err := annotate.Annotate(annotated, result.Detections); err != nil {
			c.logger.Warning("Annotation failed: %v", err)
		}
	}

	c.publish(BuildUpdate(run.Mode, signs, potholes))

	if display != nil {
		display.Show(annotated)
	}
}

// predict invokes the predictors the mode needs, concurrently, and waits for
// all of them. A failed predictor yields a nil result. In-flight calls are
// not cut short by Stop.
func (c *Controller) predict(ctx context.Context, mode models.Mode, image []byte) (signs, potholes *models.DetectionResult) {
	ctx = context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	if mode.UsesSigns() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			signs = c.call(ctx, c.signs, image)
		}()
	}
	if mode.UsesPotholes() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			potholes = c.call(ctx, c.potholes, image)
		}()
	}
	wg.Wait()

	return signs, potholes
}

func (c *Controller) call(ctx context.Context, p ai.Predictor, image []byte) (result *models.DetectionResult) {
	name := p.Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Predictor %s panicked: %v", name, r)
			result = nil
		}
		c.metrics.PredictorLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if result == nil {
			c.metrics.PredictorErrors.WithLabelValues(name).Inc()
		}
	}()

	result, err := p.Predict(ctx, image)
	if err != nil {
		c.logger.Warning("Predictor %s failed, skipping its result for this frame: %v", name, err)
		return nil
	}
	return result
}

func (c *Controller) publish(update models.Update) {
	if update.Empty() {
		return
	}
	if err := c.publisher.Publish(c.topic, update); err != nil {
		c.metrics.PublishDropped.Inc()
		c.logger.Warning("Update dropped: %v", err)
		return
	}
	c.metrics.Published.Inc()
}
