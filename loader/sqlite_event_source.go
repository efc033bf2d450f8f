package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"

	"gigcast/models/event"

	_ "modernc.org/sqlite"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteEventSource reads the event table from a SQLite database with columns
// event_date, venue_city, genre and venue_score.
type SQLiteEventSource struct {
	db    *sql.DB
	table string
}

// OpenSQLiteEventSource opens the database at path read-only.
func OpenSQLiteEventSource(path, table string) (*SQLiteEventSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return NewSQLiteEventSource(db, table), nil
}

// NewSQLiteEventSource wraps an already opened database.
func NewSQLiteEventSource(db *sql.DB, table string) *SQLiteEventSource {
	return &SQLiteEventSource{db: db, table: table}
}

// Events runs the (city, genre) filter in SQL.
func (s *SQLiteEventSource) Events(ctx context.Context, q event.Query) ([]event.EventRecord, error) {
	query := fmt.Sprintf(`SELECT event_date, venue_city, genre, venue_score FROM %s
		WHERE (?1 = '' OR lower(trim(venue_city)) = lower(?1))
		  AND (?2 = '' OR lower(trim(genre)) = lower(?2))`, s.table)

	rows, err := s.db.QueryContext(ctx, query, strings.TrimSpace(q.City), strings.TrimSpace(q.Genre))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var records []event.EventRecord
	skipped := 0
	for rows.Next() {
		var (
			rawDate     string
			city, genre sql.NullString
			score       sql.NullFloat64
		)
		if err := rows.Scan(&rawDate, &city, &genre, &score); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		date, err := ParseEventDate(rawDate)
		if err != nil || !score.Valid {
			skipped++
			continue
		}
		records = append(records, event.EventRecord{
			Date:       date,
			City:       strings.TrimSpace(city.String),
			Genre:      strings.TrimSpace(genre.String),
			VenueScore: score.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}

	if skipped > 0 {
		log.Printf("[SQLiteEventSource] Skipped %d malformed rows", skipped)
	}
	return records, nil
}

// Options returns the distinct cities and genres in the table.
func (s *SQLiteEventSource) Options(ctx context.Context) ([]string, []string, error) {
	cities, err := s.distinctColumn(ctx, "venue_city")
	if err != nil {
		return nil, nil, err
	}
	genres, err := s.distinctColumn(ctx, "genre")
	if err != nil {
		return nil, nil, err
	}
	return cities, genres, nil
}

func (s *SQLiteEventSource) distinctColumn(ctx context.Context, column string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT trim(%s) FROM %s WHERE %s IS NOT NULL", column, s.table, column))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s values: %w", column, err)
	}
	defer rows.Close()

	values := make(map[string]struct{})
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s value: %w", column, err)
		}
		values[v] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return distinct(values), nil
}

// Close releases the database handle.
func (s *SQLiteEventSource) Close() error {
	return s.db.Close()
}
