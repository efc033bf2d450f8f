package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gigcast/models/event"
)

// EventSource provides the historical event table.
type EventSource interface {
	// Events returns the records matching q, dates normalized to calendar days.
	Events(ctx context.Context, q event.Query) ([]event.EventRecord, error)
	// Options returns the distinct cities and genres present in the table, sorted.
	Options(ctx context.Context) (cities, genres []string, err error)
}

// dateLayouts are tried in order when normalizing event dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05Z07:00",
	"01/02/2006",
	"01/02/2006 15:04",
}

// ParseEventDate parses s and truncates it to its calendar date.
// Zoned timestamps keep the calendar date as written, not the UTC date.
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// distinct returns the sorted set of non-empty values.
func distinct(values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
