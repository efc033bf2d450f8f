package services

import (
	"context"
	"testing"
	"time"

	"gigcast/metrics"
	"gigcast/models/event"
	"gigcast/models/forecast"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastRefresherService_RefreshForecasts(t *testing.T) {
	model := &weekdayModel{}
	dao := newTestDAO()
	svc, m := newTestService(&staticEventSource{events: chicagoRock()}, model, dao)

	// A stale entry for a slice that no longer has data.
	require.NoError(t, dao.SetForecast(&forecast.Forecast{City: "Boston", Genre: "jazz", Model: "weekday"}))

	refresher := NewForecastRefresherService(svc, dao, []event.Query{
		{City: "Chicago", Genre: "rock"},
		{City: "chicago", Genre: "Rock"},
	}, m)

	require.NoError(t, refresher.RefreshForecasts(context.Background()))

	// Duplicate pairs collapse to one fit.
	assert.Equal(t, 1, model.calls)

	cached, err := dao.GetForecast("Chicago", "rock")
	require.NoError(t, err)
	assert.NotNil(t, cached)

	stale, err := dao.GetForecast("Boston", "jazz")
	require.NoError(t, err)
	assert.Nil(t, stale)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefresherRuns.WithLabelValues(metrics.OUTCOME_OK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefresherRuns.WithLabelValues(metrics.OUTCOME_NO_DATA)))
}

func TestForecastRefresherService_CanceledContext(t *testing.T) {
	model := &weekdayModel{}
	svc, m := newTestService(&staticEventSource{events: chicagoRock()}, model, nil)
	refresher := NewForecastRefresherService(svc, nil, []event.Query{{City: "Chicago", Genre: "rock"}}, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, refresher.RefreshForecasts(ctx), context.Canceled)
	assert.Equal(t, 0, model.calls)
}

func TestForecastRefresherService_PeriodicJobStops(t *testing.T) {
	model := &weekdayModel{}
	svc, m := newTestService(&staticEventSource{events: chicagoRock()}, model, nil)
	refresher := NewForecastRefresherService(svc, nil, nil, m)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		refresher.startPeriodicJob(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("periodic job did not stop after cancel")
	}
}
