package forecast

import "time"

// Forecast is the model output for one (city, genre) slice.
type Forecast struct {
	City           string          `json:"city"`
	Genre          string          `json:"genre"`
	TrainingPoints int             `json:"training_points"`
	Model          string          `json:"model"`
	GeneratedAt    time.Time       `json:"generated_at"`
	Points         []ForecastPoint `json:"points"`
}

// PointAt returns the forecast point for the given calendar day.
func (f *Forecast) PointAt(day time.Time) (ForecastPoint, bool) {
	day = TruncateDay(day)
	for _, p := range f.Points {
		if p.DS.Equal(day) {
			return p, true
		}
	}
	return ForecastPoint{}, false
}

// After returns the points dated strictly after the given day, in order.
func (f *Forecast) After(day time.Time) []ForecastPoint {
	day = TruncateDay(day)
	var out []ForecastPoint
	for _, p := range f.Points {
		if p.DS.After(day) {
			out = append(out, p)
		}
	}
	return out
}

// TruncateDay normalizes t to midnight UTC of its calendar date.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
