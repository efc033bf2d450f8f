package forecaster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gigcast/models/forecast"
)

const (
	WEEKLY_PERIOD_DAYS = 7.0
	YEARLY_PERIOD_DAYS = 365.25

	// Seasonalities switch on once the history covers two full periods.
	WEEKLY_MIN_SPAN_DAYS = 14
	YEARLY_MIN_SPAN_DAYS = 730

	secondsPerDay = 24 * 60 * 60
)

// AdditiveModel is a Prophet-style decomposition y = trend + weekly + yearly,
// with a piecewise-linear trend and Fourier seasonalities fitted jointly by
// ridge-regularized least squares. Prior scales act as ridge penalties
// (NoiseScale/prior)^2 on the max-abs scaled series.
type AdditiveModel struct {
	NumChangePoints       int
	ChangePointRange      float64
	ChangePointPriorScale float64
	SeasonalityPriorScale float64
	TrendPriorScale       float64
	NoiseScale            float64
	WeeklyFourierOrder    int
	YearlyFourierOrder    int
}

// NewAdditiveModel returns a model with Prophet's default settings.
func NewAdditiveModel() *AdditiveModel {
	return &AdditiveModel{
		NumChangePoints:       25,
		ChangePointRange:      0.8,
		ChangePointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		TrendPriorScale:       5,
		NoiseScale:            0.1,
		WeeklyFourierOrder:    3,
		YearlyFourierOrder:    10,
	}
}

func (m *AdditiveModel) Name() string {
	return "additive"
}

// additiveFit holds the fitted parameters. Coefficients are laid out as
// [offset, slope, changepoint deltas..., weekly sin/cos..., yearly sin/cos...].
type additiveFit struct {
	start        time.Time
	spanDays     float64
	yScale       float64
	changePoints []float64
	weeklyOrder  int
	yearlyOrder  int
	beta         []float64
}

// Forecast fits the series and predicts every day from the first history date through until.
func (m *AdditiveModel) Forecast(ctx context.Context, history []forecast.SeriesPoint, until time.Time) ([]forecast.ForecastPoint, error) {
	if len(history) == 0 {
		return nil, errors.New("empty history")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sorted := make([]forecast.SeriesPoint, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DS.Before(sorted[j].DS)
	})

	first := forecast.TruncateDay(sorted[0].DS)
	until = forecast.TruncateDay(until)
	if until.Before(first) {
		return nil, fmt.Errorf("forecast end %s is before first history date %s",
			until.Format("2006-01-02"), first.Format("2006-01-02"))
	}

	fit, err := m.fit(sorted)
	if err != nil {
		return nil, err
	}

	var points []forecast.ForecastPoint
	for day := first; !day.After(until); day = day.AddDate(0, 0, 1) {
		points = append(points, fit.predict(day))
	}
	return points, nil
}

func (m *AdditiveModel) fit(history []forecast.SeriesPoint) (*additiveFit, error) {
	n := len(history)
	f := &additiveFit{start: forecast.TruncateDay(history[0].DS)}

	f.spanDays = daysBetween(f.start, forecast.TruncateDay(history[n-1].DS))
	if f.spanDays >= WEEKLY_MIN_SPAN_DAYS {
		f.weeklyOrder = m.WeeklyFourierOrder
	}
	if f.spanDays >= YEARLY_MIN_SPAN_DAYS {
		f.yearlyOrder = m.YearlyFourierOrder
	}
	if f.spanDays == 0 {
		f.spanDays = 1
	}

	for _, p := range history {
		f.yScale = math.Max(f.yScale, math.Abs(p.Y))
	}
	if f.yScale == 0 {
		f.yScale = 1
	}

	t := make([]float64, n)
	for i, p := range history {
		t[i] = f.scaledTime(p.DS)
	}
	f.changePoints = m.changePoints(t)

	cols := 2 + len(f.changePoints) + 2*f.weeklyOrder + 2*f.yearlyOrder
	penalty := make([]float64, cols)
	noise := m.NoiseScale * m.NoiseScale
	penalty[0] = noise / (m.TrendPriorScale * m.TrendPriorScale)
	penalty[1] = penalty[0]
	for j := 2; j < cols; j++ {
		if j < 2+len(f.changePoints) {
			penalty[j] = noise / (m.ChangePointPriorScale * m.ChangePointPriorScale)
		} else {
			penalty[j] = noise / (m.SeasonalityPriorScale * m.SeasonalityPriorScale)
		}
	}

	// normal equations (X'X + diag(penalty)) beta = X'y
	xtx := make([][]float64, cols)
	for i := range xtx {
		xtx[i] = make([]float64, cols)
		xtx[i][i] = penalty[i]
	}
	xty := make([]float64, cols)
	for _, p := range history {
		row := f.features(p.DS)
		y := p.Y / f.yScale
		for i := 0; i < cols; i++ {
			if row[i] == 0 {
				continue
			}
			xty[i] += row[i] * y
			for j := i; j < cols; j++ {
				xtx[i][j] += row[i] * row[j]
			}
		}
	}
	for i := 0; i < cols; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
	}

	beta, err := solveLinearSystem(xtx, xty)
	if err != nil {
		return nil, fmt.Errorf("failed to fit additive model: %w", err)
	}
	f.beta = beta
	return f, nil
}

// changePoints places candidate trend changes evenly over the first
// ChangePointRange share of the history rows.
func (m *AdditiveModel) changePoints(t []float64) []float64 {
	histSize := int(math.Floor(float64(len(t)) * m.ChangePointRange))
	count := m.NumChangePoints
	if histSize-1 < count {
		count = histSize - 1
	}
	if count <= 0 {
		return nil
	}

	cps := make([]float64, 0, count)
	step := float64(histSize-1) / float64(count)
	for i := 1; i <= count; i++ {
		idx := int(math.Round(step * float64(i)))
		cps = append(cps, t[idx])
	}
	return cps
}

func (f *additiveFit) scaledTime(day time.Time) float64 {
	return daysBetween(f.start, forecast.TruncateDay(day)) / f.spanDays
}

func (f *additiveFit) features(day time.Time) []float64 {
	t := f.scaledTime(day)
	row := make([]float64, 0, 2+len(f.changePoints)+2*f.weeklyOrder+2*f.yearlyOrder)
	row = append(row, 1, t)
	for _, cp := range f.changePoints {
		row = append(row, math.Max(0, t-cp))
	}
	epochDays := float64(forecast.TruncateDay(day).Unix()) / secondsPerDay
	row = appendFourier(row, epochDays, WEEKLY_PERIOD_DAYS, f.weeklyOrder)
	row = appendFourier(row, epochDays, YEARLY_PERIOD_DAYS, f.yearlyOrder)
	return row
}

func (f *additiveFit) predict(day time.Time) forecast.ForecastPoint {
	row := f.features(day)
	trendEnd := 2 + len(f.changePoints)
	weeklyEnd := trendEnd + 2*f.weeklyOrder

	var trend, weekly, yearly float64
	for i, x := range row {
		v := x * f.beta[i]
		switch {
		case i < trendEnd:
			trend += v
		case i < weeklyEnd:
			weekly += v
		default:
			yearly += v
		}
	}

	trend *= f.yScale
	weekly *= f.yScale
	yearly *= f.yScale
	return forecast.ForecastPoint{
		DS:     forecast.TruncateDay(day),
		YHat:   trend + weekly + yearly,
		Trend:  trend,
		Weekly: weekly,
		Yearly: yearly,
	}
}

func appendFourier(row []float64, epochDays, period float64, order int) []float64 {
	for k := 1; k <= order; k++ {
		phase := 2 * math.Pi * float64(k) * epochDays / period
		row = append(row, math.Sin(phase), math.Cos(phase))
	}
	return row
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
