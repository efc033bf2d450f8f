package prophet

import (
	"fmt"
	"time"

	"gigcast/models/forecast"
)

const DATE_LAYOUT = "2006-01-02"

// ForecastRequest is the body POSTed to a Prophet-compatible forecast service.
type ForecastRequest struct {
	Frequency string         `json:"freq"`
	Until     string         `json:"until"`
	History   []HistoryPoint `json:"history"`
}

// HistoryPoint is one (ds, y) row of the training frame.
type HistoryPoint struct {
	DS string  `json:"ds"`
	Y  float64 `json:"y"`
}

// ForecastResponse carries the future frame returned by the service.
type ForecastResponse struct {
	Forecast []ForecastRow `json:"forecast"`
}

// ForecastRow is one predicted day. Columns absent from the answer decode as zero.
type ForecastRow struct {
	DS     string  `json:"ds"`
	YHat   float64 `json:"yhat"`
	Trend  float64 `json:"trend"`
	Weekly float64 `json:"weekly"`
	Yearly float64 `json:"yearly"`
}

func newForecastRequest(history []forecast.SeriesPoint, until time.Time) ForecastRequest {
	req := ForecastRequest{
		Frequency: "D",
		Until:     until.Format(DATE_LAYOUT),
		History:   make([]HistoryPoint, 0, len(history)),
	}
	for _, p := range history {
		req.History = append(req.History, HistoryPoint{DS: p.DS.Format(DATE_LAYOUT), Y: p.Y})
	}
	return req
}

// parseDS accepts plain dates and the timestamp forms pandas emits.
func parseDS(s string) (time.Time, error) {
	for _, layout := range []string{DATE_LAYOUT, "2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return forecast.TruncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
