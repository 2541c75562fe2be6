package restserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/misol-tools/misolweather/internal/log"
	"github.com/misol-tools/misolweather/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Init(true)
}

func fptr(v float64) *float64 { return &v }

func TestGetLatestNoReadings(t *testing.T) {
	h := NewHandlers()

	rec := httptest.NewRecorder()
	h.GetLatest(rec, httptest.NewRequest(http.MethodGet, "/latest", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestServesReading(t *testing.T) {
	h := NewHandlers()
	h.SetLatest(types.Reading{
		Timestamp:   time.Now(),
		StationName: "backyard",
		Temperature: fptr(21.5),
	})

	rec := httptest.NewRecorder()
	h.GetLatest(rec, httptest.NewRequest(http.MethodGet, "/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "backyard", body["station_name"])
	assert.Equal(t, 21.5, body["temperature"])

	// Sensors that did not report must appear as explicit nulls
	v, ok := body["humidity"]
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestGetHealthWaiting(t *testing.T) {
	h := NewHandlers()

	rec := httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "waiting", body.Status)
}

func TestGetHealthOK(t *testing.T) {
	h := NewHandlers()
	h.SetLatest(types.Reading{
		Timestamp:   time.Now(),
		StationName: "backyard",
		Temperature: fptr(18.0),
	})

	rec := httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	require.NotNil(t, body.LastReading)
}

func TestGetHealthDegradedWhenStale(t *testing.T) {
	h := NewHandlers()
	h.SetLatest(types.Reading{
		Timestamp:   time.Now().Add(-10 * time.Minute),
		StationName: "backyard",
		Temperature: fptr(18.0),
	})

	rec := httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
}

func TestGetHealthDegradedAfterTimeoutInvalidation(t *testing.T) {
	h := NewHandlers()

	// An all-nil reading is what a station timeout publishes
	h.SetLatest(types.Reading{
		Timestamp:   time.Now(),
		StationName: "backyard",
	})

	rec := httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
