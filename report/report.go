package report

import (
	"time"

	"gigcast/models/forecast"
)

// Options carries the reference dates and thresholds of both reports.
type Options struct {
	FutureAfter          time.Time
	WeeklyReferenceStart time.Time
	WeeklyThreshold      float64
	Thresholds           Thresholds
}

// Report bundles the two independent reports generated from one forecast.
type Report struct {
	City   string       `json:"city"`
	Genre  string       `json:"genre"`
	Weekly WeeklyReport `json:"weekly"`
	Dates  *DateReport  `json:"dates"`
}

// Build runs the weekly pattern and best/worst date reporters over f.
func Build(f *forecast.Forecast, opts Options) (*Report, error) {
	values, err := WeeklyValues(f, opts.WeeklyReferenceStart)
	if err != nil {
		return nil, err
	}
	dates, err := NewDateReport(f.Points, opts.FutureAfter, opts.Thresholds)
	if err != nil {
		return nil, err
	}
	return &Report{
		City:   f.City,
		Genre:  f.Genre,
		Weekly: NewWeeklyReport(values, opts.WeeklyThreshold),
		Dates:  dates,
	}, nil
}
