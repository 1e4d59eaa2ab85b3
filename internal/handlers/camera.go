package handlers

import (
	"net/http"

	"roadwatch/internal/dto"
	"roadwatch/internal/logger"
	"roadwatch/internal/models"
	"roadwatch/internal/services/pipeline"
)

func ListCamerasHandler(ctrl *pipeline.Controller, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, dto.CamerasResponse{Cameras: ctrl.ListCameras()})
	}
}

// StartCameraHandler starts a run in a fixed mode. An empty mode reads it
// from the request body instead.
func StartCameraHandler(ctrl *pipeline.Controller, mode models.Mode, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.StartRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, logger, statusFor(err), err.Error())
			return
		}

		runMode := mode
		if runMode == "" {
			parsed, err := models.ParseMode(req.Mode)
			if err != nil {
				writeError(w, logger, statusFor(err), err.Error())
				return
			}
			runMode = parsed
		}

		run, err := ctrl.Start(runMode, req.Index())
		if err != nil {
			writeError(w, logger, statusFor(err), err.Error())
			return
		}

		writeJSON(w, logger, http.StatusOK, dto.StartResponse{
			Message: "Camera started",
			RunID:   run.ID,
			Mode:    string(run.Mode),
		})
	}
}

func StopCameraHandler(ctrl *pipeline.Controller, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl.Stop()
		writeJSON(w, logger, http.StatusOK, dto.MessageResponse{Message: "Camera stopped"})
	}
}

func StatusHandler(ctrl *pipeline.Controller, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, ctrl.Status())
	}
}
