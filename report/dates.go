package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gigcast/models/forecast"
)

// ErrNoFutureDates is returned when no forecast point falls after the cutoff.
var ErrNoFutureDates = errors.New("forecast has no usable dates after the cutoff")

const DATE_FORMAT = "2006-01-02"

// Bucket classifies a date by how far its prediction deviates from the mean.
type Bucket int

const (
	Unclassified Bucket = iota
	Good10
	Good5
	Bad10
	Bad5
)

func (b Bucket) String() string {
	switch b {
	case Good10:
		return "good-10"
	case Good5:
		return "good-5"
	case Bad10:
		return "bad-10"
	case Bad5:
		return "bad-5"
	default:
		return "unclassified"
	}
}

// Thresholds are the ratio-to-mean cut points of the four buckets.
type Thresholds struct {
	Good10 float64
	Good5  float64
	Bad10  float64
	Bad5   float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Good10: 1.10, Good5: 1.05, Bad10: 0.90, Bad5: 0.95}
}

// Classify returns the first matching bucket, checked in the order
// good-10, good-5, bad-10, bad-5. A ratio lands in at most one bucket.
func (th Thresholds) Classify(ratio float64) Bucket {
	switch {
	case ratio > th.Good10:
		return Good10
	case ratio > th.Good5:
		return Good5
	case ratio < th.Bad10:
		return Bad10
	case ratio < th.Bad5:
		return Bad5
	default:
		return Unclassified
	}
}

// DateReport lists the best and worst future dates and the bucketed dates.
type DateReport struct {
	BestDate  time.Time   `json:"best_date"`
	WorstDate time.Time   `json:"worst_date"`
	BestYHat  float64     `json:"best_yhat"`
	WorstYHat float64     `json:"worst_yhat"`
	Mean      float64     `json:"mean"`
	BestPct   int         `json:"best_pct"`
	WorstPct  int         `json:"worst_pct"`
	Good10    []time.Time `json:"good_10"`
	Good5     []time.Time `json:"good_5"`
	Bad10     []time.Time `json:"bad_10"`
	Bad5      []time.Time `json:"bad_5"`
}

// NewDateReport evaluates the points dated strictly after the cutoff.
func NewDateReport(points []forecast.ForecastPoint, after time.Time, th Thresholds) (*DateReport, error) {
	after = forecast.TruncateDay(after)
	var future []forecast.ForecastPoint
	for _, p := range points {
		if p.DS.After(after) {
			future = append(future, p)
		}
	}
	if len(future) == 0 {
		return nil, fmt.Errorf("%w: none after %s", ErrNoFutureDates, after.Format(DATE_FORMAT))
	}

	best, worst := future[0], future[0]
	sum := 0.0
	for _, p := range future {
		if p.YHat > best.YHat {
			best = p
		}
		if p.YHat < worst.YHat {
			worst = p
		}
		sum += p.YHat
	}
	mean := sum / float64(len(future))
	if mean == 0 {
		return nil, fmt.Errorf("%w: mean prediction is zero", ErrNoFutureDates)
	}

	r := &DateReport{
		BestDate:  best.DS,
		WorstDate: worst.DS,
		BestYHat:  best.YHat,
		WorstYHat: worst.YHat,
		Mean:      mean,
		BestPct:   truncatedPct(best.YHat-mean, mean),
		WorstPct:  truncatedPct(mean-worst.YHat, mean),
	}
	for _, p := range future {
		switch th.Classify(p.YHat / mean) {
		case Good10:
			r.Good10 = append(r.Good10, p.DS)
		case Good5:
			r.Good5 = append(r.Good5, p.DS)
		case Bad10:
			r.Bad10 = append(r.Bad10, p.DS)
		case Bad5:
			r.Bad5 = append(r.Bad5, p.DS)
		}
	}
	return r, nil
}

// Dates returns the dates of one bucket.
func (r *DateReport) Dates(b Bucket) []time.Time {
	switch b {
	case Good10:
		return r.Good10
	case Good5:
		return r.Good5
	case Bad10:
		return r.Bad10
	case Bad5:
		return r.Bad5
	default:
		return nil
	}
}

// DateSection is one rendered bucket block.
type DateSection struct {
	Bucket  Bucket
	Heading string
	// Text is the comma-joined dates, or the fixed sentence for an empty bucket.
	Text  string
	Empty bool
}

var sectionLayout = []struct {
	bucket  Bucket
	heading string
	pct     string
	dir     string
}{
	{Good10, "Start here (the best dates):", "10", "better"},
	{Good5, "Try these next (pretty good dates):", "5", "better"},
	{Bad10, "Definitely avoid these:", "10", "worse"},
	{Bad5, "Avoid if you can:", "5", "worse"},
}

// Sections returns the good-10, good-5, bad-10 and bad-5 blocks in that order.
func (r *DateReport) Sections() []DateSection {
	sections := make([]DateSection, 0, len(sectionLayout))
	for _, sec := range sectionLayout {
		dates := r.Dates(sec.bucket)
		s := DateSection{Bucket: sec.bucket, Heading: sec.heading}
		if len(dates) == 0 {
			s.Empty = true
			s.Text = "There aren't any dates for which similar bands book gigs that are at least " +
				sec.pct + " percent " + sec.dir + " than average"
		} else {
			s.Text = joinDates(dates)
		}
		sections = append(sections, s)
	}
	return sections
}

// BestSentence names the best date and how much better than average it is.
func (r *DateReport) BestSentence(emph func(string) string) string {
	if emph == nil {
		emph = plain
	}
	return fmt.Sprintf("The best possible date to play is %s (similar bands book gigs that are about %d percent better than average on this date)",
		emph(r.BestDate.Format(DATE_FORMAT)), r.BestPct)
}

// WorstSentence names the worst date and how much worse than average it is.
func (r *DateReport) WorstSentence(emph func(string) string) string {
	if emph == nil {
		emph = plain
	}
	return fmt.Sprintf("The worst possible date to play is %s (similar bands book gigs that are about %d percent worse than average on this date)",
		emph(r.WorstDate.Format(DATE_FORMAT)), r.WorstPct)
}

// truncatedPct is diff/mean*100 truncated toward zero. Scaling before dividing
// keeps exact ratios such as 115/100 from truncating to 14.
func truncatedPct(diff, mean float64) int {
	return int(diff * 100 / mean)
}

func joinDates(dates []time.Time) string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(DATE_FORMAT)
	}
	return strings.Join(out, ", ")
}
