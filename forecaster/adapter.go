package forecaster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"gigcast/models/event"
	"gigcast/models/forecast"
)

// ErrNoData is returned when a (city, genre) slice has too little history to fit a model.
var ErrNoData = errors.New("no data available for this city/genre")

// MIN_TRAINING_POINTS is the smallest series any model is asked to fit.
const MIN_TRAINING_POINTS = 2

// Model produces a daily forecast from a training series.
type Model interface {
	Name() string
	// Forecast returns one point per calendar day from the first history date through until.
	Forecast(ctx context.Context, history []forecast.SeriesPoint, until time.Time) ([]forecast.ForecastPoint, error)
}

// AdapterConfig holds the training window and the valid score range.
type AdapterConfig struct {
	// TrainingEnd is exclusive: only events strictly before it are used.
	TrainingEnd time.Time
	HorizonDays int
	// Scores must lie strictly inside (MinScore, MaxScore).
	MinScore float64
	MaxScore float64
}

// Adapter turns raw event history into a forecast for one (city, genre) slice.
type Adapter struct {
	model  Model
	config AdapterConfig
}

// NewAdapter creates an Adapter delegating the fit to model.
func NewAdapter(model Model, config AdapterConfig) *Adapter {
	return &Adapter{model: model, config: config}
}

// Forecast filters events to q, builds the training series and runs the model.
func (a *Adapter) Forecast(ctx context.Context, events []event.EventRecord, q event.Query) (*forecast.Forecast, error) {
	series := a.TrainingSeries(events, q)
	log.Printf("[ForecastAdapter] city=%q genre=%q events=%d training_points=%d", q.City, q.Genre, len(events), len(series))
	if len(series) < MIN_TRAINING_POINTS {
		return nil, fmt.Errorf("%w: %d training points for city=%q genre=%q", ErrNoData, len(series), q.City, q.Genre)
	}

	points, err := a.model.Forecast(ctx, series, a.ForecastEnd())
	if err != nil {
		return nil, fmt.Errorf("model %s failed: %w", a.model.Name(), err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: model %s returned no points", ErrNoData, a.model.Name())
	}

	return &forecast.Forecast{
		City:           q.City,
		Genre:          q.Genre,
		TrainingPoints: len(series),
		Model:          a.model.Name(),
		GeneratedAt:    time.Now().UTC(),
		Points:         points,
	}, nil
}

// ForecastEnd is the last forecast day: HorizonDays past the last training day.
func (a *Adapter) ForecastEnd() time.Time {
	lastTrainingDay := forecast.TruncateDay(a.config.TrainingEnd).AddDate(0, 0, -1)
	return lastTrainingDay.AddDate(0, 0, a.config.HorizonDays)
}

// TrainingSeries filters to q, keeps the max score per date, and applies the
// training window and score range. The result is sorted by date.
func (a *Adapter) TrainingSeries(events []event.EventRecord, q event.Query) []forecast.SeriesPoint {
	best := make(map[time.Time]float64)
	for _, e := range events {
		if !q.Matches(e) {
			continue
		}
		day := forecast.TruncateDay(e.Date)
		if cur, ok := best[day]; !ok || e.VenueScore > cur {
			best[day] = e.VenueScore
		}
	}

	end := forecast.TruncateDay(a.config.TrainingEnd)
	series := make([]forecast.SeriesPoint, 0, len(best))
	for day, score := range best {
		if !day.Before(end) {
			continue
		}
		if !(score > a.config.MinScore && score < a.config.MaxScore) {
			continue
		}
		series = append(series, forecast.SeriesPoint{DS: day, Y: score})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].DS.Before(series[j].DS)
	})
	return series
}
