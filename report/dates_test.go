package report

import (
	"errors"
	"testing"
	"time"

	"gigcast/models/forecast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cutoff = time.Date(2018, 12, 13, 0, 0, 0, 0, time.UTC)

func futurePoints(yhats ...float64) []forecast.ForecastPoint {
	points := []forecast.ForecastPoint{
		// on the cutoff itself, never part of the future window
		{DS: cutoff, YHat: 1000},
	}
	for i, y := range yhats {
		points = append(points, forecast.ForecastPoint{DS: cutoff.AddDate(0, 0, i+1), YHat: y})
	}
	return points
}

func TestNewDateReport_Buckets(t *testing.T) {
	r, err := NewDateReport(futurePoints(115, 107, 85, 92, 101), cutoff, DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 100.0, r.Mean, 1e-9)
	assert.Equal(t, []time.Time{cutoff.AddDate(0, 0, 1)}, r.Good10)
	assert.Equal(t, []time.Time{cutoff.AddDate(0, 0, 2)}, r.Good5)
	assert.Equal(t, []time.Time{cutoff.AddDate(0, 0, 3)}, r.Bad10)
	assert.Equal(t, []time.Time{cutoff.AddDate(0, 0, 4)}, r.Bad5)

	assert.Equal(t, cutoff.AddDate(0, 0, 1), r.BestDate)
	assert.Equal(t, cutoff.AddDate(0, 0, 3), r.WorstDate)
	assert.Equal(t, 15, r.BestPct)
	assert.Equal(t, 15, r.WorstPct)
}

func TestNewDateReport_MeanNotExactlyHundred(t *testing.T) {
	// 115, 107, 85, 92, 100 averages 99.8; every date keeps its bucket
	r, err := NewDateReport(futurePoints(115, 107, 85, 92, 100), cutoff, DefaultThresholds())
	require.NoError(t, err)

	unclassified := cutoff.AddDate(0, 0, 5)
	for _, b := range []Bucket{Good10, Good5, Bad10, Bad5} {
		assert.Len(t, r.Dates(b), 1, b.String())
		assert.NotContains(t, r.Dates(b), unclassified)
	}
	// (115/99.8 - 1) * 100 = 15.23, (1 - 85/99.8) * 100 = 14.83
	assert.Equal(t, 15, r.BestPct)
	assert.Equal(t, 14, r.WorstPct)
}

func TestNewDateReport_FlatForecast(t *testing.T) {
	r, err := NewDateReport(futurePoints(50, 50, 50, 50), cutoff, DefaultThresholds())
	require.NoError(t, err)

	for _, s := range r.Sections() {
		assert.True(t, s.Empty, s.Heading)
	}
	sections := r.Sections()
	assert.Equal(t, "There aren't any dates for which similar bands book gigs that are at least 10 percent better than average", sections[0].Text)
	assert.Equal(t, "There aren't any dates for which similar bands book gigs that are at least 5 percent worse than average", sections[3].Text)
	assert.Equal(t, 0, r.BestPct)
	assert.Equal(t, 0, r.WorstPct)
	// ties resolve to the first date
	assert.Equal(t, cutoff.AddDate(0, 0, 1), r.BestDate)
	assert.Equal(t, cutoff.AddDate(0, 0, 1), r.WorstDate)
}

func TestNewDateReport_NoFutureDates(t *testing.T) {
	_, err := NewDateReport(futurePoints(), cutoff, DefaultThresholds())
	assert.True(t, errors.Is(err, ErrNoFutureDates))

	_, err = NewDateReport(futurePoints(1, -1), cutoff, DefaultThresholds())
	assert.True(t, errors.Is(err, ErrNoFutureDates))
}

func TestThresholds_ClassifyIsExclusive(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		ratio float64
		want  Bucket
	}{
		{1.5, Good10},
		{1.1000001, Good10},
		{1.10, Good5},
		{1.07, Good5},
		{1.05, Unclassified},
		{1.0, Unclassified},
		{0.95, Unclassified},
		{0.9499, Bad5},
		{0.92, Bad5},
		{0.90, Bad5},
		{0.85, Bad10},
		{-3, Bad10},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, th.Classify(test.ratio), "ratio %v", test.ratio)
	}
}

func TestDateReport_Sections(t *testing.T) {
	r, err := NewDateReport(futurePoints(120, 121, 100, 100, 59), cutoff, DefaultThresholds())
	require.NoError(t, err)

	sections := r.Sections()
	require.Len(t, sections, 4)
	assert.Equal(t, "Start here (the best dates):", sections[0].Heading)
	assert.Equal(t, "2018-12-14, 2018-12-15", sections[0].Text)
	assert.False(t, sections[0].Empty)
	assert.Equal(t, "Try these next (pretty good dates):", sections[1].Heading)
	assert.True(t, sections[1].Empty)
	assert.Equal(t, "Definitely avoid these:", sections[2].Heading)
	assert.Equal(t, "2018-12-18", sections[2].Text)
	assert.Equal(t, "Avoid if you can:", sections[3].Heading)
	assert.True(t, sections[3].Empty)
}

func TestDateReport_Sentences(t *testing.T) {
	r, err := NewDateReport(futurePoints(115, 107, 85, 92, 101), cutoff, DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t,
		"The best possible date to play is <b>2018-12-14</b> (similar bands book gigs that are about 15 percent better than average on this date)",
		r.BestSentence(bold))
	assert.Equal(t,
		"The worst possible date to play is 2018-12-16 (similar bands book gigs that are about 15 percent worse than average on this date)",
		r.WorstSentence(nil))
}
