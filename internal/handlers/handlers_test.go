package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewatch-systems/nodewatch/internal/controlstate"
	"github.com/nodewatch-systems/nodewatch/internal/models"
	"github.com/nodewatch-systems/nodewatch/internal/repository"
	"github.com/nodewatch-systems/nodewatch/internal/service"
)

type fixture struct {
	handler  *Handler
	repo     *repository.MemoryRepository
	readings *service.ReadingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := repository.NewMemoryRepository()
	readings := service.NewReadingsService(repo, 10*time.Second)
	handler := NewHandler(
		service.NewIngestService(repo, nil, nil),
		readings,
		service.NewControlService(controlstate.NewMemoryStore(), nil, nil),
		nil,
	)
	return &fixture{handler: handler, repo: repo, readings: readings}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleIngest_JSON(t *testing.T) {
	f := newFixture(t)

	payload := `{"temperature": 24.5, "humidity": 61.2, "relay_on": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	f.handler.HandleIngest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["id"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHandleIngest_FormEncoded(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest",
		strings.NewReader("temperature=22.1&soil_raw=2048&led_on=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.HandleIngest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	latest, err := f.repo.Latest(req.Context())
	require.NoError(t, err)
	require.NotNil(t, latest.Temperature)
	assert.Equal(t, 22.1, *latest.Temperature)
	require.NotNil(t, latest.SoilRaw)
	assert.Equal(t, 2048, *latest.SoilRaw)
	require.NotNil(t, latest.LedOn)
	assert.True(t, *latest.LedOn)
}

func TestHandleIngest_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		method   string
		body     string
		wantCode int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"empty body", http.MethodPost, "", http.StatusBadRequest},
		{"no recognized fields", http.MethodPost, `{"firmware": "1.2.3"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/ingest", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			f.handler.HandleIngest(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestHandleLatest_EmptyLedger(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/latest", nil)
	rec := httptest.NewRecorder()
	f.handler.HandleLatest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["data"])
	assert.Equal(t, "no data available yet", body["message"])
}

func TestHandleLatest_FreshThenStale(t *testing.T) {
	f := newFixture(t)
	captured := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f.repo.SetClock(func() time.Time { return captured })

	ingestReq := httptest.NewRequest(http.MethodPost, "/api/ingest",
		strings.NewReader(`{"temperature": 24.5, "relay_on": true}`))
	ingestRec := httptest.NewRecorder()
	f.handler.HandleIngest(ingestRec, ingestReq)
	require.Equal(t, http.StatusOK, ingestRec.Code)

	t.Run("fresh within threshold", func(t *testing.T) {
		f.readings.SetClock(func() time.Time { return captured.Add(5 * time.Second) })

		rec := httptest.NewRecorder()
		f.handler.HandleLatest(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		data, ok := body["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, 24.5, data["temperature"])
		assert.Equal(t, true, data["relay_on"])
		assert.Nil(t, data["humidity"], "unmeasured channel stays null")
	})

	t.Run("stale after threshold is a logical failure in an HTTP 200", func(t *testing.T) {
		f.readings.SetClock(func() time.Time { return captured.Add(11 * time.Second) })

		rec := httptest.NewRecorder()
		f.handler.HandleLatest(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Nil(t, body["data"])
		assert.NotEmpty(t, body["last_update"])
		assert.GreaterOrEqual(t, body["age_seconds"].(float64), 11.0)
	})
}

func TestHandleHistory(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	f.repo.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	f.readings.SetClock(func() time.Time { return base.Add(time.Hour) })

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/ingest",
			strings.NewReader(`{"temperature": 21}`))
		rec := httptest.NewRecorder()
		f.handler.HandleIngest(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	t.Run("default window", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(5), body["count"])
		assert.Equal(t, float64(24), body["hours"])
		data, ok := body["data"].([]interface{})
		require.True(t, ok)
		assert.Len(t, data, 5)
	})

	t.Run("garbage params normalized, not rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history?hours=-2&limit=bogus", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(24), body["hours"])
	})

	t.Run("empty window returns empty array", func(t *testing.T) {
		f2 := newFixture(t)
		rec := httptest.NewRecorder()
		f2.handler.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

		body := decodeBody(t, rec)
		data, ok := body["data"].([]interface{})
		require.True(t, ok)
		assert.Empty(t, data)
	})
}

func TestActuator_GetDefaultsFalse(t *testing.T) {
	f := newFixture(t)
	handler := f.handler.Actuator(models.FlagRelay)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/actuator/relay", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["relay_on"])
}

func TestActuator_SetViaPOSTThenRead(t *testing.T) {
	f := newFixture(t)
	handler := f.handler.Actuator(models.FlagLED)

	setRec := httptest.NewRecorder()
	handler(setRec, httptest.NewRequest(http.MethodPost, "/api/actuator/led",
		bytes.NewReader([]byte(`{"led_on": true}`))))

	require.Equal(t, http.StatusOK, setRec.Code)
	setBody := decodeBody(t, setRec)
	assert.Equal(t, true, setBody["success"])
	assert.Equal(t, true, setBody["led_on"])
	assert.NotEmpty(t, setBody["timestamp"])

	getRec := httptest.NewRecorder()
	handler(getRec, httptest.NewRequest(http.MethodGet, "/api/actuator/led", nil))
	getBody := decodeBody(t, getRec)
	assert.Equal(t, true, getBody["led_on"], "read-your-write")
}

func TestActuator_SetViaGETParam(t *testing.T) {
	f := newFixture(t)
	handler := f.handler.Actuator(models.FlagRelay)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/actuator/relay?relay_on=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["relay_on"])
}

func TestActuator_Validation(t *testing.T) {
	f := newFixture(t)
	handler := f.handler.Actuator(models.FlagRelay)

	t.Run("POST without parameter is a 400, not a silent no-op", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/api/actuator/relay",
			bytes.NewReader([]byte(`{"brightness": 40}`))))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("garbage value", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/actuator/relay?relay_on=maybe", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodDelete, "/api/actuator/relay", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestActuator_FlagsIndependent(t *testing.T) {
	f := newFixture(t)
	relay := f.handler.Actuator(models.FlagRelay)
	led := f.handler.Actuator(models.FlagLED)

	rec := httptest.NewRecorder()
	relay(rec, httptest.NewRequest(http.MethodGet, "/api/actuator/relay?relay_on=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	led(rec, httptest.NewRequest(http.MethodGet, "/api/actuator/led", nil))
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["led_on"], "relay write must not touch led")
}
