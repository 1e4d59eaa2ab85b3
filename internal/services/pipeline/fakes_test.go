package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"roadwatch/internal/config"
	"roadwatch/internal/logger"
	"roadwatch/internal/metrics"
	"roadwatch/internal/models"
	"roadwatch/internal/services/camera"
)

// fakeFrame counts draw calls and tracks whether it was released.
type fakeFrame struct {
	seq    int
	draws  *atomic.Int32
	closed *atomic.Int32
}

func (f *fakeFrame) Rectangle(image.Rectangle, color.RGBA, int) error {
	f.draws.Add(1)
	return nil
}

func (f *fakeFrame) Polyline([]image.Point, bool, color.RGBA, int) error {
	f.draws.Add(1)
	return nil
}

func (f *fakeFrame) PutText(string, image.Point, float64, color.RGBA, int) error {
	f.draws.Add(1)
	return nil
}

func (f *fakeFrame) TextSize(text string, _ float64, _ int) (image.Point, int) {
	return image.Pt(len(text)*8, 12), 4
}

func (f *fakeFrame) Width() int  { return 640 }
func (f *fakeFrame) Height() int { return 480 }

func (f *fakeFrame) Clone() camera.Frame {
	return &fakeFrame{seq: f.seq, draws: f.draws, closed: f.closed}
}

func (f *fakeFrame) Encode() ([]byte, error) {
	return []byte(fmt.Sprintf("frame-%d", f.seq)), nil
}

func (f *fakeFrame) Close() error {
	f.closed.Add(1)
	return nil
}

// fakeSource yields a fixed number of frames, or frames forever when
// limit is negative.
type fakeSource struct {
	limit  int
	next   int
	err    error
	draws  atomic.Int32
	frees  atomic.Int32
	closes atomic.Int32
	mu     sync.Mutex
}

func (s *fakeSource) Next() (camera.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limit >= 0 && s.next >= s.limit {
		if s.err != nil {
			return nil, s.err
		}
		return nil, camera.ErrEndOfStream
	}
	s.next++
	return &fakeFrame{seq: s.next, draws: &s.draws, closed: &s.frees}, nil
}

func (s *fakeSource) Close() error {
	s.closes.Add(1)
	return nil
}

// fakeOpener opens sources only for the listed indices.
type fakeOpener struct {
	sources map[int]*fakeSource
	opened  atomic.Int32
}

func (o *fakeOpener) Open(index int) (camera.Source, error) {
	src, ok := o.sources[index]
	if !ok {
		return nil, fmt.Errorf("%w: camera %d", camera.ErrSourceUnavailable, index)
	}
	o.opened.Add(1)
	return src, nil
}

// fakePredictor answers from a script keyed by call number (1-based). Calls
// past the script reuse its last entry.
type fakePredictor struct {
	name   string
	script []predictResponse
	delay  time.Duration
	calls  atomic.Int32
	images chan string
}

type predictResponse struct {
	result *models.DetectionResult
	err    error
}

func (p *fakePredictor) Name() string { return p.name }

func (p *fakePredictor) Predict(ctx context.Context, img []byte) (*models.DetectionResult, error) {
	n := int(p.calls.Add(1))
	if p.images != nil {
		p.images <- string(img)
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if len(p.script) == 0 {
		return &models.DetectionResult{Raw: []byte(`{"predictions":[]}`)}, nil
	}
	if n > len(p.script) {
		n = len(p.script)
	}
	r := p.script[n-1]
	return r.result, r.err
}

func result(raw string, dets ...models.Detection) predictResponse {
	return predictResponse{result: &models.DetectionResult{Detections: dets, Raw: []byte(raw)}}
}

func failure() predictResponse {
	return predictResponse{err: errors.New("connection refused")}
}

// recordingPublisher stores every published update.
type recordingPublisher struct {
	mu      sync.Mutex
	topics  []string
	updates []models.Update
	err     error
}

func (p *recordingPublisher) Publish(topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.updates = append(p.updates, payload.(models.Update))
	return nil
}

func (p *recordingPublisher) published() []models.Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Update(nil), p.updates...)
}

type countingSink struct {
	shown atomic.Int32
}

func (s *countingSink) Show(camera.Frame) { s.shown.Add(1) }

type harness struct {
	ctrl      *Controller
	opener    *fakeOpener
	signs     *fakePredictor
	potholes  *fakePredictor
	publisher *recordingPublisher
	metrics   *metrics.Pipeline
}

func newHarness(sources map[int]*fakeSource) *harness {
	cfg := config.Default()
	cfg.Publish.Interval = time.Millisecond
	cfg.Camera.MaxProbe = 5

	h := &harness{
		opener:    &fakeOpener{sources: sources},
		signs:     &fakePredictor{name: "signs"},
		potholes:  &fakePredictor{name: "potholes"},
		publisher: &recordingPublisher{},
		metrics:   metrics.New(),
	}
	h.ctrl = NewController(cfg, h.opener, h.signs, h.potholes, h.publisher, h.metrics, logger.Nop())
	return h
}

var box = models.Detection{
	Label:      "Stop",
	Confidence: 0.9,
	Kind:       models.GeometryBox,
	Box:        models.Box{X: 50, Y: 50, Width: 20, Height: 20},
}

var pothole = models.Detection{
	Label:      "pothole",
	Confidence: 0.7,
	Kind:       models.GeometryPolygon,
	Points:     []models.Point{{X: 1, Y: 20}, {X: 30, Y: 20}, {X: 30, Y: 40}},
}
