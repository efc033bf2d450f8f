package forecast

import "time"

// ForecastPoint is one day of model output. Weekly and Yearly are the additive
// seasonal components already included in YHat.
type ForecastPoint struct {
	DS     time.Time `json:"ds"`
	YHat   float64   `json:"yhat"`
	Trend  float64   `json:"trend"`
	Weekly float64   `json:"weekly"`
	Yearly float64   `json:"yearly"`
}
