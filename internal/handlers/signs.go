package handlers

import (
	"net/http"

	"roadwatch/internal/dto"
	"roadwatch/internal/logger"
	"roadwatch/internal/services/signs"
)

// GenerateHandler describes every sign in the request, in order.
func GenerateHandler(svc *signs.Service, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.GenerateRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, logger, http.StatusBadRequest, err.Error())
			return
		}
		if len(req.Signs) == 0 {
			writeError(w, logger, http.StatusBadRequest, "Please provide a sign")
			return
		}

		infos, err := svc.Generate(req.Signs)
		if err != nil {
			logger.Error("Sign lookup failed: %v", err)
			writeError(w, logger, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, logger, http.StatusOK, infos)
	}
}

func ListSignsHandler(svc *signs.Service, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos, err := svc.All()
		if err != nil {
			logger.Error("Failed to list signs: %v", err)
			writeError(w, logger, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, logger, http.StatusOK, infos)
	}
}
