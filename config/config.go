package config

import (
	"os"
	"path/filepath"
)

// Server config
const SERVER_ADDR = ":8080"
const SERVER_SHUTDOWN_TIMEOUT_SECONDS = 5

// Redis Config
const REDIS_DB_ADDRESS = "redis:6379"
const REDIS_DB_PASSWORD = ""
const REDIS_DB = 0
const REDIS_FORECAST_TTL_MINUTES = 60 * 24

// Forecast refresher config
const FORECAST_REFRESHER_SCHEDULE_MINUTES = 60

// Data source config
const DATA_SOURCE_CSV = "csv"
const DATA_SOURCE_SQLITE = "sqlite"
const DATA_SQLITE_TABLE = "events"

// Forecast model config
const FORECAST_MODEL_ADDITIVE = "additive"
const FORECAST_MODEL_REMOTE = "remote"
const FORECAST_TRAINING_END = "2018-12-01"
const FORECAST_HORIZON_DAYS = 365
const FORECAST_MIN_SCORE = 0.0
const FORECAST_MAX_SCORE = 0.8
const FORECAST_REMOTE_TIMEOUT_SECONDS = 30
const FORECAST_REMOTE_ENDPOINT = "/forecast"

// Report config
const REPORT_FUTURE_AFTER = "2018-12-13"
const REPORT_WEEKLY_REFERENCE_START = "2018-12-31"
const REPORT_WEEKLY_THRESHOLD = 0.01

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const EVENTS_CSV_RESOURCE = "merged_data.csv"

// Environment variables prefix, e.g. GIGCAST_DATA_PATH
const ENV_PREFIX = "GIGCAST"

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	// Check if PROJECT_ROOT is set
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	// Default to the current working directory
	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resource_file string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resource_file)
}
