package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline holds the counters the capture loop reports into. Each instance
// owns its registry so tests can build as many as they like.
type Pipeline struct {
	registry *prometheus.Registry

	Frames           *prometheus.CounterVec
	PredictorErrors  *prometheus.CounterVec
	PredictorLatency *prometheus.HistogramVec
	Published        prometheus.Counter
	PublishDropped   prometheus.Counter
	Running          prometheus.Gauge
}

func New() *Pipeline {
	m := &Pipeline{
		registry: prometheus.NewRegistry(),
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadwatch_frames_processed_total",
			Help: "Frames that went through a full loop iteration.",
		}, []string{"mode"}),
		PredictorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadwatch_predictor_errors_total",
			Help: "Predictor calls that failed after retries.",
		}, []string{"predictor"}),
		PredictorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roadwatch_predictor_latency_seconds",
			Help:    "Wall time of a predictor call, retries included.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		}, []string{"predictor"}),
		Published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roadwatch_updates_published_total",
			Help: "Updates handed to the result publisher.",
		}),
		PublishDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roadwatch_updates_dropped_total",
			Help: "Updates the publisher refused.",
		}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roadwatch_pipeline_running",
			Help: "1 while a pipeline run is active.",
		}),
	}

	m.registry.MustRegister(
		m.Frames,
		m.PredictorErrors,
		m.PredictorLatency,
		m.Published,
		m.PublishDropped,
		m.Running,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Pipeline) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
