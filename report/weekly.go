package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gigcast/models/forecast"
)

// DAYS_OF_WEEK labels weekly values, Monday first.
var DAYS_OF_WEEK = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ErrMissingReferenceDate is returned when the forecast lacks a day of the reference week.
var ErrMissingReferenceDate = errors.New("forecast is missing a weekly reference date")

const NO_OTHER_DAY_SENTENCE = "No other day of the week is particularly good or bad"

// WeeklyReport summarizes the weekly seasonality of a forecast.
type WeeklyReport struct {
	Values     [7]float64 `json:"values"`
	BestIndex  int        `json:"best_index"`
	WorstIndex int        `json:"worst_index"`
	BestDay    string     `json:"best_day"`
	WorstDay   string     `json:"worst_day"`
	OtherGood  []string   `json:"other_good"`
	OtherBad   []string   `json:"other_bad"`
}

// WeeklyValues reads the weekly component for the 7 days starting at referenceStart,
// positioned Monday..Sunday by each date's weekday.
func WeeklyValues(f *forecast.Forecast, referenceStart time.Time) ([7]float64, error) {
	var values [7]float64
	start := forecast.TruncateDay(referenceStart)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		p, ok := f.PointAt(d)
		if !ok {
			return values, fmt.Errorf("%w: %s", ErrMissingReferenceDate, d.Format("2006-01-02"))
		}
		values[mondayIndex(d.Weekday())] = p.Weekly
	}
	return values, nil
}

// NewWeeklyReport picks the best and worst day, then splits the remaining days
// into those above threshold and those below -threshold. Ties go to the first day.
func NewWeeklyReport(values [7]float64, threshold float64) WeeklyReport {
	best, worst := 0, 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
		if v < values[worst] {
			worst = i
		}
	}

	r := WeeklyReport{
		Values:     values,
		BestIndex:  best,
		WorstIndex: worst,
		BestDay:    DAYS_OF_WEEK[best],
		WorstDay:   DAYS_OF_WEEK[worst],
	}
	for i, v := range values {
		if i == best || i == worst {
			continue
		}
		switch {
		case v > threshold:
			r.OtherGood = append(r.OtherGood, DAYS_OF_WEEK[i])
		case v < -threshold:
			r.OtherBad = append(r.OtherBad, DAYS_OF_WEEK[i])
		}
	}
	return r
}

// Sentences renders the best day, worst day and other days sentences.
// emph wraps each day name, e.g. in <b> tags.
func (r WeeklyReport) Sentences(emph func(string) string) [3]string {
	if emph == nil {
		emph = plain
	}
	return [3]string{
		"The best day of the week to play is " + emph(r.BestDay),
		"The worst day of the week to play is " + emph(r.WorstDay),
		r.otherSentence(emph),
	}
}

func (r WeeklyReport) otherSentence(emph func(string) string) string {
	switch {
	case len(r.OtherGood) == 0 && len(r.OtherBad) == 0:
		return NO_OTHER_DAY_SENTENCE
	case len(r.OtherGood) == 0:
		return enumerateDays(r.OtherBad, "bad", emph)
	case len(r.OtherBad) == 0:
		return enumerateDays(r.OtherGood, "good", emph)
	default:
		return enumerateDays(r.OtherGood, "good", emph) + ", but " + enumerateDays(r.OtherBad, "bad", emph)
	}
}

// enumerateDays lists days as "A is also a good day to play",
// "A and B are also ...", or "A, B, and C are also ...".
func enumerateDays(days []string, quality string, emph func(string) string) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = emph(d)
	}

	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0] + " is also a " + quality + " day to play"
	case 2:
		return names[0] + " and " + names[1] + " are also " + quality + " days to play"
	default:
		last := len(names) - 1
		return strings.Join(names[:last], ", ") + ", and " + names[last] + " are also " + quality + " days to play"
	}
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func plain(s string) string {
	return s
}
