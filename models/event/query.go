package event

import "strings"

// Query selects a (city, genre) slice of the event history. Empty fields match everything.
type Query struct {
	City  string
	Genre string
}

// Matches reports whether the record belongs to the queried slice.
// Comparison ignores case and surrounding whitespace.
func (q Query) Matches(e EventRecord) bool {
	if c := strings.TrimSpace(q.City); c != "" && !strings.EqualFold(c, strings.TrimSpace(e.City)) {
		return false
	}
	if g := strings.TrimSpace(q.Genre); g != "" && !strings.EqualFold(g, strings.TrimSpace(e.Genre)) {
		return false
	}
	return true
}
