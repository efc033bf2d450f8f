package util

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gigcast/models/forecast"
	"gigcast/report"

	"github.com/dustin/go-humanize"
)

// ReadForecastFromJSON loads a Forecast previously exported with WriteForecastToJSON.
func ReadForecastFromJSON(filePath string) (*forecast.Forecast, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var f forecast.Forecast
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Forecast: %w", err)
	}
	if len(f.Points) == 0 {
		return nil, fmt.Errorf("forecast file %q has no points", filePath)
	}
	return &f, nil
}

// WriteForecastToJSON stores f as indented JSON on disk.
func WriteForecastToJSON(filePath string, f *forecast.Forecast) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal Forecast: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %q: %w", filePath, err)
	}
	return nil
}

// Emphasize marks a value in plain text output.
func Emphasize(s string) string {
	return "**" + s + "**"
}

// PrintReport writes both reports as plain text.
func PrintReport(w io.Writer, r *report.Report, f *forecast.Forecast) {
	fmt.Fprintf(w, "Recommendations for %s / %s\n", r.City, r.Genre)
	if f != nil {
		fmt.Fprintf(w, "Based on %s past gigs, %s model, generated %s\n",
			humanize.Comma(int64(f.TrainingPoints)), f.Model, humanize.Time(f.GeneratedAt))
	}

	fmt.Fprintln(w, "\nWeekly pattern")
	for _, sentence := range r.Weekly.Sentences(Emphasize) {
		fmt.Fprintf(w, "  %s.\n", sentence)
	}

	fmt.Fprintln(w, "\nDates")
	fmt.Fprintf(w, "  %s.\n", r.Dates.BestSentence(Emphasize))
	fmt.Fprintf(w, "  %s.\n", r.Dates.WorstSentence(Emphasize))
	for _, section := range r.Dates.Sections() {
		fmt.Fprintf(w, "\n%s\n  %s\n", section.Heading, wrap(section.Text, 76, "  "))
	}
}

// wrap breaks long comma-joined date lists into indented lines.
func wrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				b.WriteString("\n" + indent)
				lineLen = 0
			} else {
				b.WriteByte(' ')
				lineLen++
			}
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}
