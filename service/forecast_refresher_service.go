package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gigcast/dao/redis"
	"gigcast/metrics"
	"gigcast/models/event"
)

// ForecastRefresherService periodically refits forecasts so requests hit a warm cache.
type ForecastRefresherService struct {
	gigDateService *GigDateService
	forecastDao    *redis.RedisForecastDAO
	pairs          []event.Query
	metrics        *metrics.Metrics
}

// NewForecastRefresherService constructs a refresher for the configured (city, genre) pairs.
func NewForecastRefresherService(
	gigDateService *GigDateService,
	forecastDao *redis.RedisForecastDAO,
	pairs []event.Query,
	metrics *metrics.Metrics,
) *ForecastRefresherService {
	return &ForecastRefresherService{
		gigDateService: gigDateService,
		forecastDao:    forecastDao,
		pairs:          pairs,
		metrics:        metrics,
	}
}

// StartPeriodicJob launches the background loop at the given interval until ctx is done.
func (fr *ForecastRefresherService) StartPeriodicJob(ctx context.Context, interval time.Duration) {
	go fr.startPeriodicJob(ctx, interval)
}

func (fr *ForecastRefresherService) startPeriodicJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[ForecastRefresherService] Stopping periodic forecast refresher job.")
			return
		case <-ticker.C:
			log.Println("[ForecastRefresherService] Running periodic forecast refresher job.")
			if err := fr.RefreshForecasts(ctx); err != nil {
				log.Printf("[ForecastRefresherService] RefreshForecasts returned error: %v", err)
			} else {
				log.Println("[ForecastRefresherService] RefreshForecasts completed successfully.")
			}
		}
	}
}

// RefreshForecasts refits the configured pairs plus every pair already cached.
// Pairs without data are dropped from the cache; other failures are joined into the result.
func (fr *ForecastRefresherService) RefreshForecasts(ctx context.Context) error {
	pairs := fr.collectPairs()
	log.Printf("[ForecastRefresherService] Refreshing %d pairs", len(pairs))

	var errs []error
	for _, q := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}

		pairCtx := ContextWithRequestID(ctx, RequestID(ctx))
		_, err := fr.gigDateService.RefreshForecast(pairCtx, q)
		switch {
		case err == nil:
			fr.metrics.RefresherRuns.WithLabelValues(metrics.OUTCOME_OK).Inc()
			log.Printf("[ForecastRefresherService] Forecast cached for city=%q genre=%q", q.City, q.Genre)
		case errors.Is(err, ErrNoData):
			fr.metrics.RefresherRuns.WithLabelValues(metrics.OUTCOME_NO_DATA).Inc()
			log.Printf("[ForecastRefresherService] No data for city=%q genre=%q, removing cache", q.City, q.Genre)
			if fr.forecastDao != nil {
				if err := fr.forecastDao.DeleteForecast(q.City, q.Genre); err != nil {
					log.Printf("[ForecastRefresherService] Failed to delete stale forecast: %v", err)
				}
			}
		default:
			fr.metrics.RefresherRuns.WithLabelValues(metrics.OUTCOME_ERROR).Inc()
			errs = append(errs, fmt.Errorf("refresh city=%q genre=%q: %w", q.City, q.Genre, err))
		}
	}
	return errors.Join(errs...)
}

// collectPairs merges configured and cached pairs, deduplicated by cache key.
func (fr *ForecastRefresherService) collectPairs() []event.Query {
	seen := make(map[string]struct{})
	var out []event.Query
	add := func(q event.Query) {
		key := redis.ForecastKey(q.City, q.Genre)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}

	for _, q := range fr.pairs {
		add(q)
	}

	if fr.forecastDao == nil {
		return out
	}
	cached, err := fr.forecastDao.ListCachedPairs()
	if err != nil {
		log.Printf("[ForecastRefresherService] Error listing cached forecast pairs: %v", err)
		return out
	}
	for _, pair := range cached {
		city, genre, ok := strings.Cut(pair, "|")
		if !ok {
			continue
		}
		add(event.Query{City: city, Genre: genre})
	}
	return out
}
