package util

import (
	"fmt"
	"io"

	"gigcast/models/forecast"
	"gigcast/report"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const CHART_WIDTH = "1000px"
const CHART_HEIGHT = "450px"

// RenderForecastPage writes an HTML page with the daily forecast line chart and,
// when weekly is set, a bar chart of the weekly seasonality.
func RenderForecastPage(w io.Writer, f *forecast.Forecast, weekly *report.WeeklyReport) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Gig forecast for %s / %s", f.City, f.Genre)
	page.AddCharts(forecastLineChart(f))
	if weekly != nil {
		page.AddCharts(weeklyBarChart(f, weekly))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func forecastLineChart(f *forecast.Forecast) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  CHART_WIDTH,
			Height: CHART_HEIGHT,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s / %s", f.City, f.Genre),
			Subtitle: fmt.Sprintf("%s model, %d training points", f.Model, f.TrainingPoints),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
	)

	days := make([]string, len(f.Points))
	yhat := make([]opts.LineData, len(f.Points))
	trend := make([]opts.LineData, len(f.Points))
	for i, p := range f.Points {
		days[i] = p.DS.Format(report.DATE_FORMAT)
		yhat[i] = opts.LineData{Value: p.YHat}
		trend[i] = opts.LineData{Value: p.Trend}
	}

	line.SetXAxis(days).
		AddSeries("yhat", yhat).
		AddSeries("trend", trend).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:     opts.Bool(true),
				ShowSymbol: opts.Bool(false),
			}),
		)
	return line
}

func weeklyBarChart(f *forecast.Forecast, weekly *report.WeeklyReport) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  CHART_WIDTH,
			Height: CHART_HEIGHT,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Weekly pattern",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)

	values := make([]opts.BarData, len(weekly.Values))
	for i, v := range weekly.Values {
		values[i] = opts.BarData{Value: v}
	}
	bar.SetXAxis(report.DAYS_OF_WEEK[:]).AddSeries("weekly", values)
	return bar
}
