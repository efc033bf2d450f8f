package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"gigcast/api"
	"gigcast/api/prophet"
	"gigcast/config"
	"gigcast/dao/redis"
	"gigcast/db"
	"gigcast/forecaster"
	"gigcast/loader"
	"gigcast/metrics"
	"gigcast/models/event"
	"gigcast/report"
	"gigcast/server"
	"gigcast/server/handlers"
	services "gigcast/service"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds all application dependencies.
type Container struct {
	Config                   *config.Config
	RedisClient              db.RedisClient
	ForecastDao              *redis.RedisForecastDAO
	EventSource              loader.EventSource
	ForecastModel            forecaster.Model
	ForecastAdapter          *forecaster.Adapter
	Registry                 *prometheus.Registry
	Metrics                  *metrics.Metrics
	GigDateService           *services.GigDateService
	GigHandler               *handlers.GigHandler
	MuxRouter                *mux.Router
	Router                   *server.Router
	GigHttpServer            *server.GigHttpServer
	ForecastRefresherService *services.ForecastRefresherService

	closers []io.Closer
}

// NewContainer initializes and wires up all dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	log.Printf("[Container] initializing container - env: %s", cfg.Env)
	c := &Container{Config: cfg}

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	c.RedisClient = redisClient
	c.closers = append(c.closers, redisClient)
	c.ForecastDao = redis.NewRedisForecastDAO(redisClient, cfg.RedisTTL())

	eventSource, err := newEventSource(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.EventSource = eventSource
	if closer, ok := eventSource.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}

	c.ForecastModel = newForecastModel(cfg)
	c.ForecastAdapter = forecaster.NewAdapter(c.ForecastModel, forecaster.AdapterConfig{
		TrainingEnd: cfg.TrainingEnd(),
		HorizonDays: cfg.Forecast.HorizonDays,
		MinScore:    cfg.Forecast.MinScore,
		MaxScore:    cfg.Forecast.MaxScore,
	})

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewMetrics(c.Registry)

	c.GigDateService = services.NewGigDateService(c.EventSource, c.ForecastAdapter, c.ForecastDao, ReportOptions(cfg), c.Metrics)
	c.GigHandler = handlers.NewGigHandler(c.GigDateService)

	c.MuxRouter = mux.NewRouter()
	c.Router = server.NewRouter(c.GigHandler, c.Metrics.Handler(), c.MuxRouter,
		handlers.RequestIDMiddleware, c.Metrics.Middleware)
	c.GigHttpServer = server.NewGigHttpServer(c.Router, c.MuxRouter, cfg.Server.Addr,
		config.SERVER_SHUTDOWN_TIMEOUT_SECONDS*time.Second)

	pairs, err := RefresherPairs(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.ForecastRefresherService = services.NewForecastRefresherService(c.GigDateService, c.ForecastDao, pairs, c.Metrics)

	return c, nil
}

// Close releases the Redis client and the event source.
func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReportOptions maps the report settings onto report.Options.
func ReportOptions(cfg *config.Config) report.Options {
	return report.Options{
		FutureAfter:          cfg.FutureAfter(),
		WeeklyReferenceStart: cfg.WeeklyReferenceStart(),
		WeeklyThreshold:      cfg.Report.WeeklyThreshold,
		Thresholds:           report.DefaultThresholds(),
	}
}

// RefresherPairs parses the configured "city|genre" entries.
func RefresherPairs(cfg *config.Config) ([]event.Query, error) {
	pairs := make([]event.Query, 0, len(cfg.Refresher.Pairs))
	for _, p := range cfg.Refresher.Pairs {
		city, genre, err := config.SplitPair(p)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, event.Query{City: city, Genre: genre})
	}
	return pairs, nil
}

func newRedisClient(cfg *config.Config) (db.RedisClient, error) {
	ctx := context.Background()
	if cfg.Env != "prod" {
		log.Printf("[Container] Using in-memory mock redis")
		return db.NewMockRedisClient(ctx), nil
	}

	log.Printf("[Container] Using redis at %s", cfg.Redis.Addr)
	redisInternalClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisClient := db.NewCacheRedisClient(ctx, redisInternalClient)
	if err := redisClient.Ping(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return redisClient, nil
}

func newEventSource(cfg *config.Config) (loader.EventSource, error) {
	switch cfg.Data.Source {
	case config.DATA_SOURCE_SQLITE:
		log.Printf("[Container] Using sqlite event source %s (table %s)", cfg.Data.Path, cfg.Data.Table)
		source, err := loader.OpenSQLiteEventSource(cfg.Data.Path, cfg.Data.Table)
		if err != nil {
			return nil, err
		}
		return source, nil
	default:
		log.Printf("[Container] Using csv event source %s", cfg.Data.Path)
		return loader.NewCSVEventSource(cfg.Data.Path, loader.DefaultColumns()), nil
	}
}

func newForecastModel(cfg *config.Config) forecaster.Model {
	if cfg.Forecast.Model == config.FORECAST_MODEL_REMOTE {
		log.Printf("[Container] Using remote forecast model at %s", cfg.Forecast.RemoteURL)
		httpClient := api.NewHTTPClient(cfg.Forecast.RemoteURL, config.FORECAST_REMOTE_TIMEOUT_SECONDS*time.Second)
		return prophet.NewProphetApiClient(httpClient, config.FORECAST_REMOTE_ENDPOINT)
	}
	log.Printf("[Container] Using additive forecast model")
	return forecaster.NewAdditiveModel()
}
