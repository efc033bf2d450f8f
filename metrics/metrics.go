package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const NAMESPACE = "gigcast"

// Forecast sources and outcomes used as label values.
const (
	SOURCE_CACHE = "cache"
	SOURCE_MODEL = "model"

	OUTCOME_OK      = "ok"
	OUTCOME_NO_DATA = "no_data"
	OUTCOME_ERROR   = "error"

	CACHE_HIT   = "hit"
	CACHE_MISS  = "miss"
	CACHE_ERROR = "error"
)

// Metrics holds the collectors of the service, registered on one registry.
type Metrics struct {
	ForecastRequests *prometheus.CounterVec
	ForecastDuration *prometheus.HistogramVec
	TrainingPoints   prometheus.Histogram
	CacheLookups     *prometheus.CounterVec
	RefresherRuns    *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		ForecastRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: NAMESPACE,
				Name:      "forecast_requests_total",
				Help:      "Forecast requests by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		ForecastDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: NAMESPACE,
				Name:      "forecast_fit_duration_seconds",
				Help:      "Time spent loading history and fitting the model",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		TrainingPoints: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: NAMESPACE,
				Name:      "forecast_training_points",
				Help:      "Training series length per fitted forecast",
				Buckets:   prometheus.ExponentialBuckets(2, 2, 12),
			},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: NAMESPACE,
				Name:      "forecast_cache_lookups_total",
				Help:      "Forecast cache lookups by result",
			},
			[]string{"result"},
		),
		RefresherRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: NAMESPACE,
				Name:      "refresher_pairs_total",
				Help:      "Pairs processed by the cache refresher",
			},
			[]string{"outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: NAMESPACE,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "method", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: NAMESPACE,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.ForecastRequests,
		m.ForecastDuration,
		m.TrainingPoints,
		m.CacheLookups,
		m.RefresherRuns,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the Prometheus exposition of the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware counts requests per mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
