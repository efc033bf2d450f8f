package forecast

import "time"

// SeriesPoint is one aggregated training observation (ds, y).
type SeriesPoint struct {
	DS time.Time `json:"ds"`
	Y  float64   `json:"y"`
}
