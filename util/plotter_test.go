package util

import (
	"bytes"
	"testing"
	"time"

	"gigcast/models/forecast"
	"gigcast/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForecast() *forecast.Forecast {
	start := time.Date(2018, 12, 31, 0, 0, 0, 0, time.UTC)
	f := &forecast.Forecast{City: "Chicago", Genre: "rock", Model: "additive", TrainingPoints: 42}
	for i := 0; i < 7; i++ {
		f.Points = append(f.Points, forecast.ForecastPoint{
			DS:     start.AddDate(0, 0, i),
			YHat:   0.5 + float64(i)/100,
			Trend:  0.5,
			Weekly: float64(i) / 100,
		})
	}
	return f
}

func TestRenderForecastPage(t *testing.T) {
	f := sampleForecast()
	weekly := report.NewWeeklyReport([7]float64{0.02, -0.03, 0, 0.015, -0.02, 0, 0}, 0.01)

	var buf bytes.Buffer
	require.NoError(t, RenderForecastPage(&buf, f, &weekly))

	html := buf.String()
	assert.Contains(t, html, "Gig forecast for Chicago / rock")
	assert.Contains(t, html, "2019-01-06")
	assert.Contains(t, html, "Weekly pattern")
	assert.Contains(t, html, "Wednesday")
}

func TestRenderForecastPage_WithoutWeekly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderForecastPage(&buf, sampleForecast(), nil))

	assert.Contains(t, buf.String(), "yhat")
	assert.NotContains(t, buf.String(), "Weekly pattern")
}
