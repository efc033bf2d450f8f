package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ForecastRequests.WithLabelValues(SOURCE_MODEL, OUTCOME_OK).Inc()
	m.CacheLookups.WithLabelValues(CACHE_MISS).Add(2)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `gigcast_forecast_requests_total{outcome="ok",source="model"} 1`)
	assert.Contains(t, body, `gigcast_forecast_cache_lookups_total{result="miss"} 2`)
}

func TestMetrics_Middleware(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.HandleFunc("/chart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("GET")
	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")

	for _, path := range []string{"/chart", "/ping", "/ping"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/chart", "GET", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/ping", "GET", "200")))
}

func TestNewMetrics_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}
