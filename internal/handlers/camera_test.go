package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"roadwatch/internal/dto"
	"roadwatch/internal/logger"
	"roadwatch/internal/models"
	"roadwatch/internal/services/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func TestListCamerasHandler(t *testing.T) {
	ctrl := newTestController(t, 2)

	rec := httptest.NewRecorder()
	ListCamerasHandler(ctrl, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cameras", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cameras":[0,1]}`, rec.Body.String())
}

func TestListCamerasHandler_NoDevices(t *testing.T) {
	ctrl := newTestController(t, 0)

	rec := httptest.NewRecorder()
	ListCamerasHandler(ctrl, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cameras", nil))

	assert.JSONEq(t, `{"cameras":[]}`, rec.Body.String())
}

func TestStartCameraHandler_DefaultsToCameraZero(t *testing.T) {
	ctrl := newTestController(t, 1)
	h := StartCameraHandler(ctrl, models.ModeSigns, logger.Nop())

	rec := post(h, `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.StartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Camera started", resp.Message)
	assert.Equal(t, "signs", resp.Mode)
	assert.NotEmpty(t, resp.RunID)

	status := ctrl.Status()
	assert.Equal(t, models.StateRunning, status.State)
	require.NotNil(t, status.CameraIndex)
	assert.Equal(t, 0, *status.CameraIndex)
}

func TestStartCameraHandler_EmptyBody(t *testing.T) {
	ctrl := newTestController(t, 1)

	rec := post(StartCameraHandler(ctrl, models.ModePotholes, logger.Nop()), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ModePotholes, ctrl.Status().Mode)
}

func TestStartCameraHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mode   models.Mode
		body   string
		status int
	}{
		{"unavailable camera", models.ModeSigns, `{"camera_index": 3}`, http.StatusNotFound},
		{"malformed body", models.ModeSigns, `{"camera_index":`, http.StatusBadRequest},
		{"unknown mode", "", `{"mode": "radar"}`, http.StatusBadRequest},
		{"missing mode", "", `{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newTestController(t, 1)

			rec := post(StartCameraHandler(ctrl, tt.mode, logger.Nop()), tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
			assert.Equal(t, models.StateStopped, ctrl.State())
		})
	}
}

func TestStartCameraHandler_GenericMode(t *testing.T) {
	ctrl := newTestController(t, 1)

	rec := post(StartCameraHandler(ctrl, "", logger.Nop()), `{"mode": "both", "camera_index": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ModeBoth, ctrl.Status().Mode)
}

func TestStartCameraHandler_SecondStartConflicts(t *testing.T) {
	ctrl := newTestController(t, 1)
	h := StartCameraHandler(ctrl, models.ModeSigns, logger.Nop())

	require.Equal(t, http.StatusOK, post(h, `{}`).Code)
	first := ctrl.Active()

	rec := post(h, `{}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, pipeline.ErrAlreadyRunning.Error(), decodeError(t, rec))
	assert.Same(t, first, ctrl.Active())
}

func TestStopCameraHandler(t *testing.T) {
	ctrl := newTestController(t, 1)
	stop := StopCameraHandler(ctrl, logger.Nop())

	// Stopping while idle is fine.
	rec := post(stop, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Camera stopped"}`, rec.Body.String())

	run, err := ctrl.Start(models.ModeSigns, 0)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, post(stop, "").Code)
	run.Wait()
	assert.Equal(t, models.StateStopped, ctrl.State())

	assert.Equal(t, http.StatusOK, post(stop, "").Code)
}

func TestStatusHandler(t *testing.T) {
	ctrl := newTestController(t, 1)
	h := StatusHandler(ctrl, logger.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.JSONEq(t, `{"state":"stopped","frames":0}`, rec.Body.String())

	run, err := ctrl.Start(models.ModeBoth, 0)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var status map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "running", status["state"])
	assert.Equal(t, "both", status["mode"])
	assert.Equal(t, run.ID, status["run_id"])
	assert.EqualValues(t, 0, status["camera_index"])
}
