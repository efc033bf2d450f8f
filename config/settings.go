package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DATE_LAYOUT = "2006-01-02"

// Config holds every runtime setting of the service.
type Config struct {
	Env string `mapstructure:"env"`

	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`

	Data struct {
		Source string `mapstructure:"source"`
		Path   string `mapstructure:"path"`
		Table  string `mapstructure:"table"`
	} `mapstructure:"data"`

	Forecast struct {
		Model       string  `mapstructure:"model"`
		RemoteURL   string  `mapstructure:"remote_url"`
		TrainingEnd string  `mapstructure:"training_end"`
		HorizonDays int     `mapstructure:"horizon_days"`
		MinScore    float64 `mapstructure:"min_score"`
		MaxScore    float64 `mapstructure:"max_score"`
	} `mapstructure:"forecast"`

	Report struct {
		FutureAfter          string  `mapstructure:"future_after"`
		WeeklyReferenceStart string  `mapstructure:"weekly_reference_start"`
		WeeklyThreshold      float64 `mapstructure:"weekly_threshold"`
	} `mapstructure:"report"`

	Redis struct {
		Addr       string `mapstructure:"addr"`
		Password   string `mapstructure:"password"`
		DB         int    `mapstructure:"db"`
		TTLMinutes int    `mapstructure:"ttl_minutes"`
	} `mapstructure:"redis"`

	Refresher struct {
		IntervalMinutes int `mapstructure:"interval_minutes"`
		// Pairs are "city|genre" entries kept warm in the cache.
		Pairs []string `mapstructure:"pairs"`
	} `mapstructure:"refresher"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("server.addr", SERVER_ADDR)
	v.SetDefault("data.source", DATA_SOURCE_CSV)
	v.SetDefault("data.path", GetResourcePath(EVENTS_CSV_RESOURCE))
	v.SetDefault("data.table", DATA_SQLITE_TABLE)
	v.SetDefault("forecast.model", FORECAST_MODEL_ADDITIVE)
	v.SetDefault("forecast.remote_url", "")
	v.SetDefault("forecast.training_end", FORECAST_TRAINING_END)
	v.SetDefault("forecast.horizon_days", FORECAST_HORIZON_DAYS)
	v.SetDefault("forecast.min_score", FORECAST_MIN_SCORE)
	v.SetDefault("forecast.max_score", FORECAST_MAX_SCORE)
	v.SetDefault("report.future_after", REPORT_FUTURE_AFTER)
	v.SetDefault("report.weekly_reference_start", REPORT_WEEKLY_REFERENCE_START)
	v.SetDefault("report.weekly_threshold", REPORT_WEEKLY_THRESHOLD)
	v.SetDefault("redis.addr", REDIS_DB_ADDRESS)
	v.SetDefault("redis.password", REDIS_DB_PASSWORD)
	v.SetDefault("redis.db", REDIS_DB)
	v.SetDefault("redis.ttl_minutes", REDIS_FORECAST_TTL_MINUTES)
	v.SetDefault("refresher.interval_minutes", FORECAST_REFRESHER_SCHEDULE_MINUTES)
	v.SetDefault("refresher.pairs", []string{})
}

// Load reads the optional config file and GIGCAST_* environment variables on top of the defaults.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Data.Source {
	case DATA_SOURCE_CSV, DATA_SOURCE_SQLITE:
	default:
		errs = append(errs, fmt.Errorf("data.source must be %q or %q, got %q", DATA_SOURCE_CSV, DATA_SOURCE_SQLITE, c.Data.Source))
	}
	if c.Data.Path == "" {
		errs = append(errs, errors.New("data.path is required"))
	}

	switch c.Forecast.Model {
	case FORECAST_MODEL_ADDITIVE:
	case FORECAST_MODEL_REMOTE:
		if c.Forecast.RemoteURL == "" {
			errs = append(errs, errors.New("forecast.remote_url is required for the remote model"))
		}
	default:
		errs = append(errs, fmt.Errorf("forecast.model must be %q or %q, got %q", FORECAST_MODEL_ADDITIVE, FORECAST_MODEL_REMOTE, c.Forecast.Model))
	}
	if c.Forecast.HorizonDays <= 0 {
		errs = append(errs, fmt.Errorf("forecast.horizon_days must be positive, got %d", c.Forecast.HorizonDays))
	}
	if c.Forecast.MinScore >= c.Forecast.MaxScore {
		errs = append(errs, fmt.Errorf("forecast.min_score (%v) must be below forecast.max_score (%v)", c.Forecast.MinScore, c.Forecast.MaxScore))
	}
	if c.Report.WeeklyThreshold < 0 {
		errs = append(errs, fmt.Errorf("report.weekly_threshold must not be negative, got %v", c.Report.WeeklyThreshold))
	}

	for key, value := range map[string]string{
		"forecast.training_end":         c.Forecast.TrainingEnd,
		"report.future_after":           c.Report.FutureAfter,
		"report.weekly_reference_start": c.Report.WeeklyReferenceStart,
	} {
		if _, err := time.Parse(DATE_LAYOUT, value); err != nil {
			errs = append(errs, fmt.Errorf("%s must be a YYYY-MM-DD date, got %q", key, value))
		}
	}

	for _, pair := range c.Refresher.Pairs {
		if _, _, err := SplitPair(pair); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// TrainingEnd is the exclusive upper bound of the training window.
func (c *Config) TrainingEnd() time.Time {
	return mustDate(c.Forecast.TrainingEnd)
}

// FutureAfter is the day after which forecast points count as future dates.
func (c *Config) FutureAfter() time.Time {
	return mustDate(c.Report.FutureAfter)
}

// WeeklyReferenceStart is the first day of the 7-day seasonality lookup window.
func (c *Config) WeeklyReferenceStart() time.Time {
	return mustDate(c.Report.WeeklyReferenceStart)
}

// RedisTTL is how long cached forecasts live.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTLMinutes) * time.Minute
}

// RefresherInterval is the period of the cache warming job.
func (c *Config) RefresherInterval() time.Duration {
	return time.Duration(c.Refresher.IntervalMinutes) * time.Minute
}

// SplitPair parses a "city|genre" refresher entry.
func SplitPair(pair string) (city, genre string, err error) {
	parts := strings.SplitN(pair, "|", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("refresher pair %q must look like \"city|genre\"", pair)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// mustDate parses a date already checked by Validate.
func mustDate(s string) time.Time {
	t, err := time.Parse(DATE_LAYOUT, s)
	if err != nil {
		panic("config: invalid date " + s + ": " + err.Error())
	}
	return t
}
