package cmd

import (
	"errors"
	"fmt"

	"gigcast/di"
	"gigcast/models/event"
	"gigcast/models/forecast"
	"gigcast/report"
	services "gigcast/service"
	"gigcast/util"

	"github.com/spf13/cobra"
)

type reportFlags struct {
	city         string
	genre        string
	exportPath   string
	fromForecast string
}

func newReportCmd(state *cliState) *cobra.Command {
	flags := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the weekly and best/worst date recommendations for a city and genre",
		Example: `  gigcast report --city Chicago --genre rock
  gigcast report --city Chicago --genre rock --export chicago-rock.json
  gigcast report --from-forecast chicago-rock.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.fromForecast == "" && (flags.city == "" || flags.genre == "") {
				return errors.New("--city and --genre are required unless --from-forecast is set")
			}

			var (
				rep *report.Report
				f   *forecast.Forecast
				err error
			)
			if flags.fromForecast != "" {
				rep, f, err = reportFromFile(state, flags.fromForecast)
			} else {
				rep, f, err = reportFromHistory(cmd, state, flags)
			}
			if err != nil {
				return err
			}

			if flags.exportPath != "" {
				if err := util.WriteForecastToJSON(flags.exportPath, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Forecast written to %s\n", flags.exportPath)
			}

			util.PrintReport(cmd.OutOrStdout(), rep, f)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.city, "city", "", "city to recommend dates for")
	cmd.Flags().StringVar(&flags.genre, "genre", "", "music genre to recommend dates for")
	cmd.Flags().StringVar(&flags.exportPath, "export", "", "write the fitted forecast as JSON to this file")
	cmd.Flags().StringVar(&flags.fromForecast, "from-forecast", "", "build the report from a previously exported forecast instead of fitting one")
	return cmd
}

func reportFromHistory(cmd *cobra.Command, state *cliState, flags *reportFlags) (*report.Report, *forecast.Forecast, error) {
	container, err := di.NewContainer(state.cfg)
	if err != nil {
		return nil, nil, err
	}
	defer container.Close()

	ctx := services.ContextWithRequestID(cmd.Context(), services.RequestID(cmd.Context()))
	return container.GigDateService.GetGigDates(ctx, event.Query{City: flags.city, Genre: flags.genre})
}

func reportFromFile(state *cliState, path string) (*report.Report, *forecast.Forecast, error) {
	f, err := util.ReadForecastFromJSON(path)
	if err != nil {
		return nil, nil, err
	}
	rep, err := report.Build(f, di.ReportOptions(state.cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", services.ErrNoData, err)
	}
	return rep, f, nil
}
