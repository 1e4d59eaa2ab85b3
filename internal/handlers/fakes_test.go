package handlers

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"roadwatch/internal/config"
	"roadwatch/internal/logger"
	"roadwatch/internal/metrics"
	"roadwatch/internal/models"
	"roadwatch/internal/repository/sqlite"
	"roadwatch/internal/services/camera"
	"roadwatch/internal/services/pipeline"
	"roadwatch/internal/services/signs"

	"github.com/stretchr/testify/require"
)

type blankFrame struct{}

func (blankFrame) Rectangle(image.Rectangle, color.RGBA, int) error            { return nil }
func (blankFrame) Polyline([]image.Point, bool, color.RGBA, int) error         { return nil }
func (blankFrame) PutText(string, image.Point, float64, color.RGBA, int) error { return nil }
func (blankFrame) TextSize(string, float64, int) (image.Point, int)            { return image.Point{}, 0 }
func (blankFrame) Width() int                                                  { return 1 }
func (blankFrame) Height() int                                                 { return 1 }
func (f blankFrame) Clone() camera.Frame                                       { return f }
func (blankFrame) Encode() ([]byte, error)                                     { return []byte("jpeg"), nil }
func (blankFrame) Close() error                                                { return nil }

// endlessSource produces blank frames until closed.
type endlessSource struct{}

func (endlessSource) Next() (camera.Frame, error) { return blankFrame{}, nil }
func (endlessSource) Close() error                { return nil }

// indexOpener opens the first count camera indices.
type indexOpener struct {
	count int
}

func (o indexOpener) Open(index int) (camera.Source, error) {
	if index < 0 || index >= o.count {
		return nil, fmt.Errorf("%w: camera %d", camera.ErrSourceUnavailable, index)
	}
	return endlessSource{}, nil
}

type emptyPredictor struct{ name string }

func (p emptyPredictor) Name() string { return p.name }

func (p emptyPredictor) Predict(context.Context, []byte) (*models.DetectionResult, error) {
	return &models.DetectionResult{Raw: []byte(`{"predictions":[]}`)}, nil
}

type discardPublisher struct{}

func (discardPublisher) Publish(string, any) error { return nil }

func newTestController(t *testing.T, cameras int) *pipeline.Controller {
	t.Helper()
	cfg := config.Default()
	cfg.Publish.Interval = time.Millisecond

	ctrl := pipeline.NewController(cfg, indexOpener{count: cameras},
		emptyPredictor{name: "signs"}, emptyPredictor{name: "potholes"},
		discardPublisher{}, metrics.New(), logger.Nop())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		ctrl.Shutdown(ctx)
	})
	return ctrl
}

func newTestSignService(t *testing.T) *signs.Service {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "signs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	table, err := signs.ParseTable([]byte(`{"Stop": {"details": "Halt", "action": "Stop fully"}}`))
	require.NoError(t, err)
	return signs.NewService(sqlite.NewSignRepository(db), table, logger.Nop())
}
