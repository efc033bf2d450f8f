package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gigcast/db"
	"gigcast/models/forecast"
)

// FORECAST_KEY_FORMAT caches one forecast per normalized (city, genre).
const FORECAST_KEY_FORMAT = "forecast_v1:%s|%s"
const FORECAST_KEY_PREFIX = "forecast_v1:"

// RedisForecastDAO caches forecasts in Redis.
type RedisForecastDAO struct {
	client db.RedisClient
	ttl    time.Duration
}

// NewRedisForecastDAO initializes a RedisForecastDAO with the Redis client.
func NewRedisForecastDAO(client db.RedisClient, ttl time.Duration) *RedisForecastDAO {
	return &RedisForecastDAO{client: client, ttl: ttl}
}

// ForecastKey returns the cache key of a (city, genre) slice.
func ForecastKey(city, genre string) string {
	return fmt.Sprintf(FORECAST_KEY_FORMAT, normalize(city), normalize(genre))
}

// SetForecast caches the forecast under its (city, genre) key.
func (dao *RedisForecastDAO) SetForecast(f *forecast.Forecast) error {
	key := ForecastKey(f.City, f.Genre)
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast %s: %w", key, err)
	}
	if err := dao.client.Set(key, string(data), dao.ttl); err != nil {
		return fmt.Errorf("failed to set forecast in redis: %w", err)
	}
	return nil
}

// GetForecast returns the cached forecast, or nil on a cache miss.
func (dao *RedisForecastDAO) GetForecast(city, genre string) (*forecast.Forecast, error) {
	key := ForecastKey(city, genre)
	str, err := dao.client.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get forecast from redis: %w", err)
	}
	var f forecast.Forecast
	if err := json.Unmarshal([]byte(str), &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal forecast JSON: %w", err)
	}
	return &f, nil
}

// DeleteForecast drops the cached forecast of a (city, genre) slice.
func (dao *RedisForecastDAO) DeleteForecast(city, genre string) error {
	key := ForecastKey(city, genre)
	if err := dao.client.Del(key); err != nil {
		return fmt.Errorf("failed to delete forecast key %s: %w", key, err)
	}
	log.Printf("[RedisForecastDAO] Deleted forecast cache for %s", key)
	return nil
}

// ListCachedPairs returns the normalized "city|genre" pairs currently cached.
func (dao *RedisForecastDAO) ListCachedPairs() ([]string, error) {
	keys, err := dao.client.Keys(FORECAST_KEY_PREFIX + "*")
	if err != nil {
		return nil, fmt.Errorf("failed to list forecast keys: %w", err)
	}
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, strings.TrimPrefix(k, FORECAST_KEY_PREFIX))
	}
	return pairs, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
