package routes

import (
	"net/http"

	"roadwatch/internal/config"
	"roadwatch/internal/handlers"
	"roadwatch/internal/logger"
	"roadwatch/internal/metrics"
	"roadwatch/internal/middleware"
	"roadwatch/internal/models"
	"roadwatch/internal/services/pipeline"
	"roadwatch/internal/services/signs"
)

// Deps are the services the HTTP surface talks to.
type Deps struct {
	Controller *pipeline.Controller
	Signs      *signs.Service
	Hub        handlers.Subscribers
	Metrics    *metrics.Pipeline
}

// SetupRoutes registers the camera, sign, websocket, metrics and log
// endpoints and wraps the mux with CORS and request logging.
func SetupRoutes(deps Deps, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Camera control
	mux.HandleFunc("GET /cameras", handlers.ListCamerasHandler(deps.Controller, logger))
	mux.HandleFunc("POST /start_camera", handlers.StartCameraHandler(deps.Controller, models.ModeSigns, logger))
	mux.HandleFunc("POST /start_camera_pothole", handlers.StartCameraHandler(deps.Controller, models.ModePotholes, logger))
	mux.HandleFunc("POST /start_camera_both", handlers.StartCameraHandler(deps.Controller, models.ModeBoth, logger))
	mux.HandleFunc("POST /start", handlers.StartCameraHandler(deps.Controller, "", logger))
	mux.HandleFunc("POST /stop_camera", handlers.StopCameraHandler(deps.Controller, logger))
	mux.HandleFunc("GET /status", handlers.StatusHandler(deps.Controller, logger))

	// Sign metadata
	mux.HandleFunc("POST /generate", handlers.GenerateHandler(deps.Signs, logger))
	mux.HandleFunc("GET /signs", handlers.ListSignsHandler(deps.Signs, logger))

	// Result stream
	mux.HandleFunc("GET /ws", handlers.ViewWebsocketHandler(deps.Hub, logger))

	mux.Handle("GET /metrics", deps.Metrics.Handler())

	// Log endpoints
	mux.HandleFunc("GET /logs/{level}", handlers.ShowLogsHandler(logger))
	mux.HandleFunc("POST /logs/{level}/clear", handlers.ClearLogsHandler(logger))

	// Apply middleware
	return middleware.LoggingMiddleware(logger)(middleware.CORSMiddleware(cfg.AllowedOrigin)(mux))
}
