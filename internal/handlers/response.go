package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"roadwatch/internal/dto"
	"roadwatch/internal/logger"
	"roadwatch/internal/models"
	"roadwatch/internal/services/camera"
	"roadwatch/internal/services/pipeline"
)

// maxBodyBytes caps request bodies; every request body here is a small JSON object.
const maxBodyBytes = 1 << 20

var errBadBody = errors.New("invalid request body")

func writeJSON(w http.ResponseWriter, logger *logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, logger *logger.Logger, status int, message string) {
	writeJSON(w, logger, status, dto.ErrorResponse{Error: message})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errBadBody
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadBody), errors.Is(err, models.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, camera.ErrSourceUnavailable):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrAlreadyRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
