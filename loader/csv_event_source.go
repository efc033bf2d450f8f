package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"gigcast/models/event"
)

// Default column names of the merged event-history dataset.
const (
	DATE_COLUMN  = "BIT_event_date"
	CITY_COLUMN  = "venue_city"
	GENRE_COLUMN = "genre"
	SCORE_COLUMN = "venue_score"
)

// IDENTIFIER_COLUMNS are dropped on load. The empty name is the unnamed index column.
var IDENTIFIER_COLUMNS = []string{
	"",
	"Unnamed: 0",
	"BIT_artist_id",
	"BIT_event_id",
	"BIT_venue_city",
	"BIT_venue_country",
	"BIT_venue_state",
	"sg_venue_id",
}

// Columns names the CSV header fields the loader needs.
type Columns struct {
	Date  string
	City  string
	Genre string
	Score string
}

// DefaultColumns returns the column names of the merged dataset.
func DefaultColumns() Columns {
	return Columns{Date: DATE_COLUMN, City: CITY_COLUMN, Genre: GENRE_COLUMN, Score: SCORE_COLUMN}
}

// CSVEventSource reads the event table from a CSV file on every call.
type CSVEventSource struct {
	path    string
	columns Columns
}

// NewCSVEventSource creates a CSVEventSource for the file at path.
func NewCSVEventSource(path string, columns Columns) *CSVEventSource {
	return &CSVEventSource{path: path, columns: columns}
}

// Events loads the file and returns the rows matching q.
func (s *CSVEventSource) Events(ctx context.Context, q event.Query) ([]event.EventRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file %q: %w", s.path, err)
	}
	defer f.Close()

	records, err := ReadEvents(ctx, f, s.columns)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file %q: %w", s.path, err)
	}

	out := records[:0]
	for _, r := range records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Options returns the distinct cities and genres in the file.
func (s *CSVEventSource) Options(ctx context.Context) ([]string, []string, error) {
	records, err := s.Events(ctx, event.Query{})
	if err != nil {
		return nil, nil, err
	}
	cities := make(map[string]struct{})
	genres := make(map[string]struct{})
	for _, r := range records {
		cities[r.City] = struct{}{}
		genres[r.Genre] = struct{}{}
	}
	return distinct(cities), distinct(genres), nil
}

// ReadEvents parses a CSV stream with a header row. Identifier columns are ignored,
// rows with an unparsable date or score are skipped.
func ReadEvents(ctx context.Context, r io.Reader, columns Columns) ([]event.EventRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty events file")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index, err := columnIndex(header, columns)
	if err != nil {
		return nil, err
	}

	var records []event.EventRecord
	skipped := 0
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, ok := parseRow(row, index)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		log.Printf("[CSVEventSource] Skipped %d malformed rows out of %d", skipped, line-1)
	}
	return records, nil
}

type fieldIndex struct {
	date, city, genre, score int
}

func columnIndex(header []string, columns Columns) (fieldIndex, error) {
	dropped := make(map[string]struct{}, len(IDENTIFIER_COLUMNS))
	for _, c := range IDENTIFIER_COLUMNS {
		dropped[c] = struct{}{}
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, drop := dropped[name]; drop {
			continue
		}
		positions[name] = i
	}

	lookup := func(name string) (int, error) {
		i, ok := positions[name]
		if !ok {
			return 0, fmt.Errorf("missing required column %q", name)
		}
		return i, nil
	}

	var idx fieldIndex
	var err error
	if idx.date, err = lookup(columns.Date); err != nil {
		return idx, err
	}
	if idx.city, err = lookup(columns.City); err != nil {
		return idx, err
	}
	if idx.genre, err = lookup(columns.Genre); err != nil {
		return idx, err
	}
	if idx.score, err = lookup(columns.Score); err != nil {
		return idx, err
	}
	return idx, nil
}

func parseRow(row []string, idx fieldIndex) (event.EventRecord, bool) {
	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	date, err := ParseEventDate(field(idx.date))
	if err != nil {
		return event.EventRecord{}, false
	}
	score, err := strconv.ParseFloat(field(idx.score), 64)
	if err != nil {
		return event.EventRecord{}, false
	}
	return event.EventRecord{
		Date:       date,
		City:       field(idx.city),
		Genre:      field(idx.genre),
		VenueScore: score,
	}, true
}
