package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"roadwatch/internal/config"
	"roadwatch/internal/logger"
	"roadwatch/internal/metrics"
	"roadwatch/internal/repository/sqlite"
	"roadwatch/internal/routes"
	"roadwatch/internal/services/ai"
	"roadwatch/internal/services/camera/webcam"
	"roadwatch/internal/services/display"
	"roadwatch/internal/services/pipeline"
	"roadwatch/internal/services/signs"
	"roadwatch/internal/services/websocket"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	hubService *websocket.HubService
	controller *pipeline.Controller
	window     *display.Window
	server     *http.Server
}

func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	table, err := signs.LoadTable(cfg.SignsFile)
	if err != nil {
		db.Close()
		return nil, err
	}
	signService := signs.NewService(sqlite.NewSignRepository(db), table, log)

	m := metrics.New()
	hub := websocket.NewHubService(cfg, log)

	client := ai.NewClient(cfg.Predictor, log)
	ctrl := pipeline.NewController(cfg,
		webcam.NewDevice(cfg, log),
		client.Model("signs", cfg.Predictor.SignModel),
		client.Model("potholes", cfg.Predictor.PotholeModel),
		hub, m, log,
	)

	a := &App{
		config:     cfg,
		logger:     log,
		db:         db,
		hubService: hub,
		controller: ctrl,
	}

	if cfg.Display.Enabled {
		a.window = display.NewWindow(cfg.Display.Title, func() { ctrl.Stop() }, log)
		ctrl.SetDisplay(a.window)
	}

	router := routes.SetupRoutes(routes.Deps{
		Controller: ctrl,
		Signs:      signService,
		Hub:        hub,
		Metrics:    m,
	}, cfg, log)

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return a, nil
}

// Run serves HTTP until ctx is cancelled, then stops the active pipeline
// run and shuts the server down.
func (a *App) Run(ctx context.Context) error {
	defer a.logger.Sync()
	defer a.db.Close()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hubService.Run(hubCtx)

	if a.window != nil {
		go a.window.Run(hubCtx)
	}

	a.logger.Info("Road monitor listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Sign model: %s, pothole model: %s", a.config.Predictor.SignModel, a.config.Predictor.PotholeModel)
	if a.config.Predictor.APIKey == "" {
		a.logger.Warning("ROBOFLOW_API_KEY is not set; predictor calls will be rejected")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.controller.Shutdown(shutdownCtx); err != nil {
		a.logger.Warning("Pipeline did not stop in time: %v", err)
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
