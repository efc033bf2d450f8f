package event

import "time"

// EventRecord represents one historical gig as read from the event-history table.
type EventRecord struct {
	Date       time.Time `json:"event_date"`
	City       string    `json:"venue_city"`
	Genre      string    `json:"genre"`
	VenueScore float64   `json:"venue_score"`
}
