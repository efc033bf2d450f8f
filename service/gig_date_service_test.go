package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gigcast/dao/redis"
	"gigcast/db"
	"gigcast/forecaster"
	"gigcast/metrics"
	"gigcast/models/event"
	"gigcast/models/forecast"
	"gigcast/report"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// staticEventSource serves a fixed table.
type staticEventSource struct {
	events []event.EventRecord
	err    error
}

func (s *staticEventSource) Events(ctx context.Context, q event.Query) ([]event.EventRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []event.EventRecord
	for _, e := range s.events {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *staticEventSource) Options(ctx context.Context) ([]string, []string, error) {
	return []string{"Chicago"}, []string{"rock"}, nil
}

// weekdayModel predicts 100 plus a fixed weekly effect, Monday best and Tuesday worst.
type weekdayModel struct {
	calls int
	last  time.Time
}

func (m *weekdayModel) Name() string { return "weekday" }

func (m *weekdayModel) Forecast(ctx context.Context, history []forecast.SeriesPoint, until time.Time) ([]forecast.ForecastPoint, error) {
	m.calls++
	effects := map[time.Weekday]float64{time.Monday: 0.02, time.Tuesday: -0.03, time.Thursday: 0.015, time.Friday: -0.02}
	last := until
	if !m.last.IsZero() {
		last = m.last
	}
	var points []forecast.ForecastPoint
	for d := history[0].DS; !d.After(last); d = d.AddDate(0, 0, 1) {
		w := effects[d.Weekday()]
		points = append(points, forecast.ForecastPoint{DS: d, YHat: 100 * (1 + w), Weekly: w})
	}
	return points, nil
}

func chicagoRock() []event.EventRecord {
	return []event.EventRecord{
		{Date: day(2018, 6, 1), City: "Chicago", Genre: "rock", VenueScore: 0.3},
		{Date: day(2018, 6, 2), City: "Chicago", Genre: "rock", VenueScore: 0.4},
		{Date: day(2018, 6, 3), City: "Chicago", Genre: "rock", VenueScore: 0.5},
		{Date: day(2018, 6, 3), City: "Boston", Genre: "jazz", VenueScore: 0.5},
	}
}

func reportOptions() report.Options {
	return report.Options{
		FutureAfter:          day(2018, 12, 13),
		WeeklyReferenceStart: day(2018, 12, 31),
		WeeklyThreshold:      0.01,
		Thresholds:           report.DefaultThresholds(),
	}
}

func newTestService(source *staticEventSource, model forecaster.Model, dao *redis.RedisForecastDAO) (*GigDateService, *metrics.Metrics) {
	adapter := forecaster.NewAdapter(model, forecaster.AdapterConfig{
		TrainingEnd: day(2018, 12, 1),
		HorizonDays: 365,
		MinScore:    0,
		MaxScore:    0.8,
	})
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewGigDateService(source, adapter, dao, reportOptions(), m), m
}

func newTestDAO() *redis.RedisForecastDAO {
	return redis.NewRedisForecastDAO(db.NewMockRedisClient(context.Background()), time.Hour)
}

func TestGigDateService_GetGigDates(t *testing.T) {
	model := &weekdayModel{}
	svc, m := newTestService(&staticEventSource{events: chicagoRock()}, model, newTestDAO())

	r, f, err := svc.GetGigDates(context.Background(), event.Query{City: "Chicago", Genre: "rock"})
	require.NoError(t, err)

	assert.Equal(t, 3, f.TrainingPoints)
	assert.Equal(t, day(2019, 11, 30), f.Points[len(f.Points)-1].DS)
	assert.Equal(t, "Monday", r.Weekly.BestDay)
	assert.Equal(t, "Tuesday", r.Weekly.WorstDay)
	assert.Equal(t, []string{"Thursday"}, r.Weekly.OtherGood)
	assert.Equal(t, []string{"Friday"}, r.Weekly.OtherBad)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ForecastRequests.WithLabelValues(metrics.SOURCE_MODEL, metrics.OUTCOME_OK)))
}

func TestGigDateService_UsesCache(t *testing.T) {
	model := &weekdayModel{}
	svc, m := newTestService(&staticEventSource{events: chicagoRock()}, model, newTestDAO())
	ctx := context.Background()

	_, _, err := svc.GetGigDates(ctx, event.Query{City: "Chicago", Genre: "rock"})
	require.NoError(t, err)
	_, _, err = svc.GetGigDates(ctx, event.Query{City: " chicago ", Genre: "ROCK"})
	require.NoError(t, err)

	assert.Equal(t, 1, model.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(metrics.CACHE_MISS)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(metrics.CACHE_HIT)))
}

func TestGigDateService_WithoutCache(t *testing.T) {
	model := &weekdayModel{}
	svc, _ := newTestService(&staticEventSource{events: chicagoRock()}, model, nil)

	for i := 0; i < 2; i++ {
		_, _, err := svc.GetGigDates(context.Background(), event.Query{City: "Chicago", Genre: "rock"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, model.calls)
}

func TestGigDateService_NoData(t *testing.T) {
	tests := []struct {
		name  string
		query event.Query
		model *weekdayModel
	}{
		{
			name:  "unknown slice",
			query: event.Query{City: "Nowhere", Genre: "polka"},
			model: &weekdayModel{},
		},
		{
			name:  "single training point",
			query: event.Query{City: "Boston", Genre: "jazz"},
			model: &weekdayModel{},
		},
		{
			name:  "forecast stops before the reference week",
			query: event.Query{City: "Chicago", Genre: "rock"},
			model: &weekdayModel{last: day(2018, 12, 20)},
		},
		{
			name:  "forecast stops before the future window",
			query: event.Query{City: "Chicago", Genre: "rock"},
			model: &weekdayModel{last: day(2018, 12, 13)},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc, _ := newTestService(&staticEventSource{events: chicagoRock()}, test.model, newTestDAO())
			_, _, err := svc.GetGigDates(context.Background(), test.query)
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestGigDateService_SourceError(t *testing.T) {
	boom := errors.New("disk on fire")
	svc, _ := newTestService(&staticEventSource{err: boom}, &weekdayModel{}, nil)

	_, _, err := svc.GetGigDates(context.Background(), event.Query{City: "Chicago", Genre: "rock"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrNoData))
}

func TestGigDateService_RefreshForecastOverwritesCache(t *testing.T) {
	model := &weekdayModel{}
	dao := newTestDAO()
	svc, _ := newTestService(&staticEventSource{events: chicagoRock()}, model, dao)
	ctx := context.Background()

	_, err := svc.GetForecast(ctx, event.Query{City: "Chicago", Genre: "rock"})
	require.NoError(t, err)
	_, err = svc.RefreshForecast(ctx, event.Query{City: "Chicago", Genre: "rock"})
	require.NoError(t, err)

	assert.Equal(t, 2, model.calls)
	cached, err := dao.GetForecast("Chicago", "rock")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "weekday", cached.Model)
}

func TestRequestID(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))

	fresh := RequestID(context.Background())
	_, err := uuid.Parse(fresh)
	assert.NoError(t, err)
	assert.NotEqual(t, fresh, RequestID(context.Background()))
}
