// Package ai talks to the hosted object-detection service.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"roadwatch/internal/config"
	"roadwatch/internal/logger"
	"roadwatch/internal/models"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrPredictorUnavailable covers transport failures and error statuses.
	ErrPredictorUnavailable = errors.New("predictor unavailable")
	// ErrInvalidResponse means the service answered with a body we cannot read.
	ErrInvalidResponse = errors.New("invalid predictor response")
)

// Predictor maps an encoded frame to detections.
type Predictor interface {
	Name() string
	Predict(ctx context.Context, image []byte) (*models.DetectionResult, error)
}

// Client is an HTTP client for a Roboflow-compatible inference API. Failed
// calls are retried a bounded number of times with a fixed wait.
type Client struct {
	http   *resty.Client
	apiKey string
	logger *logger.Logger
}

func NewClient(cfg config.PredictorConfig, logger *logger.Logger) *Client {
	c := &Client{
		apiKey: cfg.APIKey,
		logger: logger,
	}

	c.http = resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := r.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		}).
		AddRetryHook(func(r *resty.Response, err error) {
			if err != nil {
				c.logger.Warning("Retrying predictor request: %v", err)
				return
			}
			c.logger.Warning("Retrying predictor request after status %d", r.StatusCode())
		})

	return c
}

// Infer sends one JPEG frame to the model and parses the detections.
func (c *Client) Infer(ctx context.Context, image []byte, modelID string) (*models.DetectionResult, error) {
	body := base64.StdEncoding.EncodeToString(image)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(body).
		Post("/" + strings.TrimLeft(modelID, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPredictorUnavailable, modelID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: status %d", ErrPredictorUnavailable, modelID, resp.StatusCode())
	}

	result, err := ParseResult(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", modelID, err)
	}
	return result, nil
}

// Model binds the client to one model so it can serve as a Predictor.
func (c *Client) Model(name, modelID string) *Model {
	return &Model{name: name, modelID: modelID, client: c}
}

// Model is a Predictor for a single hosted model.
type Model struct {
	name    string
	modelID string
	client  *Client
}

func (m *Model) Name() string { return m.name }

func (m *Model) Predict(ctx context.Context, image []byte) (*models.DetectionResult, error) {
	start := time.Now()
	result, err := m.client.Infer(ctx, image, m.modelID)
	if err != nil {
		return nil, err
	}
	if n := result.Len(); n > 0 {
		m.client.logger.Info("%s: %d detection(s) %v in %s", m.name, n, result.Labels(), time.Since(start).Round(time.Millisecond))
	}
	return result, nil
}

type prediction struct {
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	Confidence float64        `json:"confidence"`
	Class      string         `json:"class"`
	Points     []models.Point `json:"points"`
}

type inferResponse struct {
	Predictions []prediction `json:"predictions"`
}

// ParseResult decodes a provider response. Predictions carrying points
// become polygons, the rest boxes. The raw body is kept as is.
func ParseResult(body []byte) (*models.DetectionResult, error) {
	var resp inferResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	result := &models.DetectionResult{
		Detections: make([]models.Detection, 0, len(resp.Predictions)),
		Raw:        append(json.RawMessage(nil), body...),
	}

	for _, p := range resp.Predictions {
		det := models.Detection{
			Label:      p.Class,
			Confidence: p.Confidence,
			Kind:       models.GeometryBox,
			Box:        models.Box{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height},
		}
		if len(p.Points) > 0 {
			det.Kind = models.GeometryPolygon
			det.Points = p.Points
		}
		result.Detections = append(result.Detections, det)
	}

	return result, nil
}
