// Package handlers exposes the ingestion gate, the read path and the
// actuator command gate over HTTP. Every response is a single JSON
// object with a success boolean; a stale verdict is a logical failure
// inside an HTTP 200, never an HTTP error.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/nodewatch-systems/nodewatch/internal/controlstate"
	"github.com/nodewatch-systems/nodewatch/internal/httputil"
	"github.com/nodewatch-systems/nodewatch/internal/liveness"
	"github.com/nodewatch-systems/nodewatch/internal/logging"
	"github.com/nodewatch-systems/nodewatch/internal/models"
	"github.com/nodewatch-systems/nodewatch/internal/service"
)

type Handler struct {
	ingest   *service.IngestService
	readings *service.ReadingsService
	control  *service.ControlService
	logger   *logging.Logger
}

func NewHandler(ingest *service.IngestService, readings *service.ReadingsService, control *service.ControlService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{ingest: ingest, readings: readings, control: control, logger: logger}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleIngest handles POST /api/ingest.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteMethodNotAllowed(w, "POST")
		return
	}

	payload := decodePayload(r)
	if len(payload) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "no data received")
		return
	}

	reading, err := h.ingest.Ingest(r.Context(), payload)
	if errors.Is(err, service.ErrEmptyPayload) {
		httputil.WriteError(w, http.StatusBadRequest, "no data received")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "ingest failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "data saved successfully",
		"id":        reading.ID,
		"timestamp": reading.CapturedAt,
	})
}

// HandleLatest handles GET /api/latest. The staleness verdict is
// computed against the request time, not cached.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteMethodNotAllowed(w, "GET")
		return
	}

	verdict, err := h.readings.Latest(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "latest read failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load latest reading")
		return
	}

	switch verdict.State {
	case liveness.StateUnknown:
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    nil,
			"message": "no data available yet",
		})
	case liveness.StateStale:
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":     false,
			"data":        nil,
			"message":     "no recent data (sensor node disconnected)",
			"last_update": verdict.LastReading.CapturedAt,
			"age_seconds": verdict.AgeSeconds(),
		})
	default:
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    verdict.LastReading,
		})
	}
}

// HandleHistory handles GET /api/history?hours=&limit=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteMethodNotAllowed(w, "GET")
		return
	}

	hours := queryInt(r, "hours", service.DefaultHistoryHours)
	limit := queryInt(r, "limit", service.DefaultHistoryLimit)

	readings, hours, _, err := h.readings.History(r.Context(), hours, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history query failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	if readings == nil {
		readings = []*models.Reading{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(readings),
		"hours":   hours,
		"data":    readings,
	})
}

// Actuator returns the handler for one flag's endpoint. GET without the
// <name>_on parameter reads the register; GET or POST with it writes.
// A set request missing the parameter is a validation error, not a
// silent no-op.
func (h *Handler) Actuator(name string) http.HandlerFunc {
	param := name + "_on"

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			raw, ok := queryValue(r, param)
			if !ok {
				h.actuatorGet(w, r, name, param)
				return
			}
			h.actuatorSet(w, r, name, param, raw)
		case http.MethodPost:
			payload := decodePayload(r)
			raw, ok := payload[param]
			if !ok {
				httputil.WriteError(w, http.StatusBadRequest, name+" state not provided")
				return
			}
			h.actuatorSet(w, r, name, param, raw)
		default:
			httputil.WriteMethodNotAllowed(w, "GET, POST")
		}
	}
}

func (h *Handler) actuatorGet(w http.ResponseWriter, r *http.Request, name, param string) {
	value, err := h.control.Get(r.Context(), name)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "flag read failed", "flag", name, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to read "+name+" state")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		param:     value,
	})
}

func (h *Handler) actuatorSet(w http.ResponseWriter, r *http.Request, name, param string, raw interface{}) {
	value, err := service.ParseFlagValue(raw)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid "+param+" value")
		return
	}

	flag, err := h.control.Set(r.Context(), name, value)
	if errors.Is(err, controlstate.ErrStorageUnavailable) {
		h.logger.ErrorContext(r.Context(), "flag write failed", "flag", name, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save "+name+" state")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		param:       flag.Value,
		"message":   name + " control command accepted",
		"timestamp": flag.UpdatedAt,
	})
}

// decodePayload reads a flat key/value body: JSON object when the body
// parses as one, URL-encoded form otherwise. The sensor node sends
// whichever its firmware finds easier; both are accepted.
func decodePayload(r *http.Request) map[string]interface{} {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil
	}
	defer r.Body.Close()

	var payload map[string]interface{}
	if json.Unmarshal(body, &payload) == nil && payload != nil {
		return payload
	}

	values, err := parseFormBody(string(body))
	if err != nil {
		return nil
	}
	return values
}

func queryValue(r *http.Request, key string) (string, bool) {
	if !r.URL.Query().Has(key) {
		return "", false
	}
	return r.URL.Query().Get(key), true
}

func queryInt(r *http.Request, key string, def int) int {
	raw, ok := queryValue(r, key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
