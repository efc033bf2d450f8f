package prophet

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"gigcast/api"
	"gigcast/models/forecast"
)

// ProphetApiClient fits the forecast on a remote Prophet-compatible service.
type ProphetApiClient struct {
	*api.HTTPClient
	endpoint string
}

// NewProphetApiClient creates a client POSTing to httpClient.BaseURL+endpoint.
func NewProphetApiClient(httpClient *api.HTTPClient, endpoint string) *ProphetApiClient {
	return &ProphetApiClient{
		HTTPClient: httpClient,
		endpoint:   endpoint,
	}
}

func (c *ProphetApiClient) Name() string {
	return "remote"
}

// Forecast sends the training series and returns the daily forecast through until.
func (c *ProphetApiClient) Forecast(ctx context.Context, history []forecast.SeriesPoint, until time.Time) ([]forecast.ForecastPoint, error) {
	var response ForecastResponse
	start := time.Now()
	if err := c.Request(ctx, "POST", c.endpoint, nil, newForecastRequest(history, until), &response); err != nil {
		return nil, fmt.Errorf("remote forecast request failed: %w", err)
	}
	log.Printf("[ProphetApiClient] Received %d rows for %d history points in %v", len(response.Forecast), len(history), time.Since(start))

	lastDay := forecast.TruncateDay(until)
	seen := make(map[time.Time]struct{}, len(response.Forecast))
	points := make([]forecast.ForecastPoint, 0, len(response.Forecast))
	for _, row := range response.Forecast {
		ds, err := parseDS(row.DS)
		if err != nil {
			return nil, fmt.Errorf("remote forecast returned bad ds %q: %w", row.DS, err)
		}
		if ds.After(lastDay) {
			continue
		}
		if _, dup := seen[ds]; dup {
			return nil, fmt.Errorf("remote forecast returned duplicate ds %s", row.DS)
		}
		seen[ds] = struct{}{}
		points = append(points, forecast.ForecastPoint{
			DS:     ds,
			YHat:   row.YHat,
			Trend:  row.Trend,
			Weekly: row.Weekly,
			Yearly: row.Yearly,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].DS.Before(points[j].DS)
	})
	return points, nil
}
