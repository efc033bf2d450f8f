package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gigcast/dao/redis"
	"gigcast/forecaster"
	"gigcast/loader"
	"gigcast/metrics"
	"gigcast/models/event"
	"gigcast/models/forecast"
	"gigcast/report"
)

// ErrNoData collapses every "nothing to recommend" condition of a request.
var ErrNoData = errors.New("no data available for this city/genre")

// GigDateService runs the loader, the forecast adapter and both reports for one (city, genre).
type GigDateService struct {
	eventSource   loader.EventSource
	adapter       *forecaster.Adapter
	forecastDao   *redis.RedisForecastDAO
	reportOptions report.Options
	metrics       *metrics.Metrics
}

// NewGigDateService constructs a GigDateService. A nil forecastDao disables caching.
func NewGigDateService(
	eventSource loader.EventSource,
	adapter *forecaster.Adapter,
	forecastDao *redis.RedisForecastDAO,
	reportOptions report.Options,
	metrics *metrics.Metrics) *GigDateService {

	return &GigDateService{
		eventSource:   eventSource,
		adapter:       adapter,
		forecastDao:   forecastDao,
		reportOptions: reportOptions,
		metrics:       metrics,
	}
}

// GetGigDates returns the weekly and best/worst date reports with the forecast they were built from.
// Missing history, reference dates or future dates are reported as ErrNoData.
func (s *GigDateService) GetGigDates(ctx context.Context, q event.Query) (*report.Report, *forecast.Forecast, error) {
	requestID := RequestID(ctx)
	ctx = ContextWithRequestID(ctx, requestID)

	f, err := s.GetForecast(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	r, err := s.BuildReport(f)
	if err != nil {
		log.Printf("[GigDateService] request_id=%s no report for city=%q genre=%q: %v", requestID, q.City, q.Genre, err)
		return nil, nil, err
	}
	return r, f, nil
}

// GetForecast returns the cached forecast of q, fitting and caching a new one on a miss.
func (s *GigDateService) GetForecast(ctx context.Context, q event.Query) (*forecast.Forecast, error) {
	requestID := RequestID(ctx)

	if f := s.cachedForecast(requestID, q); f != nil {
		s.metrics.ForecastRequests.WithLabelValues(metrics.SOURCE_CACHE, metrics.OUTCOME_OK).Inc()
		return f, nil
	}

	f, err := s.fitForecast(ctx, requestID, q)
	if err != nil {
		return nil, err
	}

	s.storeForecast(requestID, f)
	return f, nil
}

// RefreshForecast fits q again and overwrites the cached entry.
func (s *GigDateService) RefreshForecast(ctx context.Context, q event.Query) (*forecast.Forecast, error) {
	requestID := RequestID(ctx)
	f, err := s.fitForecast(ctx, requestID, q)
	if err != nil {
		return nil, err
	}
	s.storeForecast(requestID, f)
	return f, nil
}

// BuildReport runs both reports over an already computed forecast.
func (s *GigDateService) BuildReport(f *forecast.Forecast) (*report.Report, error) {
	r, err := report.Build(f, s.reportOptions)
	if err != nil {
		if errors.Is(err, report.ErrMissingReferenceDate) || errors.Is(err, report.ErrNoFutureDates) {
			return nil, fmt.Errorf("%w: %v", ErrNoData, err)
		}
		return nil, err
	}
	return r, nil
}

// GetOptions returns the known cities and genres for the form datalists.
func (s *GigDateService) GetOptions(ctx context.Context) ([]string, []string, error) {
	return s.eventSource.Options(ctx)
}

func (s *GigDateService) fitForecast(ctx context.Context, requestID string, q event.Query) (*forecast.Forecast, error) {
	start := time.Now()
	log.Printf("[GigDateService] request_id=%s fitting forecast for city=%q genre=%q", requestID, q.City, q.Genre)

	events, err := s.eventSource.Events(ctx, q)
	if err != nil {
		s.metrics.ForecastRequests.WithLabelValues(metrics.SOURCE_MODEL, metrics.OUTCOME_ERROR).Inc()
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	f, err := s.adapter.Forecast(ctx, events, q)
	if err != nil {
		if errors.Is(err, forecaster.ErrNoData) {
			s.metrics.ForecastRequests.WithLabelValues(metrics.SOURCE_MODEL, metrics.OUTCOME_NO_DATA).Inc()
			log.Printf("[GigDateService] request_id=%s %v", requestID, err)
			return nil, fmt.Errorf("%w: %v", ErrNoData, err)
		}
		s.metrics.ForecastRequests.WithLabelValues(metrics.SOURCE_MODEL, metrics.OUTCOME_ERROR).Inc()
		return nil, err
	}

	elapsed := time.Since(start)
	s.metrics.ForecastRequests.WithLabelValues(metrics.SOURCE_MODEL, metrics.OUTCOME_OK).Inc()
	s.metrics.ForecastDuration.WithLabelValues(f.Model).Observe(elapsed.Seconds())
	s.metrics.TrainingPoints.Observe(float64(f.TrainingPoints))
	log.Printf("[GigDateService] request_id=%s fitted %s model on %d points in %v", requestID, f.Model, f.TrainingPoints, elapsed)
	return f, nil
}

func (s *GigDateService) cachedForecast(requestID string, q event.Query) *forecast.Forecast {
	if s.forecastDao == nil {
		return nil
	}
	f, err := s.forecastDao.GetForecast(q.City, q.Genre)
	switch {
	case err != nil:
		s.metrics.CacheLookups.WithLabelValues(metrics.CACHE_ERROR).Inc()
		log.Printf("[GigDateService] request_id=%s cache lookup failed, fitting instead: %v", requestID, err)
		return nil
	case f == nil:
		s.metrics.CacheLookups.WithLabelValues(metrics.CACHE_MISS).Inc()
		return nil
	default:
		s.metrics.CacheLookups.WithLabelValues(metrics.CACHE_HIT).Inc()
		log.Printf("[GigDateService] request_id=%s cache hit for city=%q genre=%q", requestID, q.City, q.Genre)
		return f
	}
}

func (s *GigDateService) storeForecast(requestID string, f *forecast.Forecast) {
	if s.forecastDao == nil {
		return
	}
	if err := s.forecastDao.SetForecast(f); err != nil {
		log.Printf("[GigDateService] request_id=%s failed to cache forecast: %v", requestID, err)
	}
}
