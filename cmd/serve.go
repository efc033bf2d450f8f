package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gigcast/di"

	"github.com/spf13/cobra"
)

func newServeCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := di.NewContainer(state.cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			startRefresher(ctx, container)
			return container.GigHttpServer.Start(ctx)
		},
	}
}

// startRefresher warms the cache once, then keeps it warm on the configured interval.
func startRefresher(ctx context.Context, container *di.Container) {
	interval := container.Config.RefresherInterval()
	if interval <= 0 {
		log.Println("[serve] Forecast refresher disabled")
		return
	}

	refresher := container.ForecastRefresherService
	go func() {
		if err := refresher.RefreshForecasts(ctx); err != nil {
			log.Printf("[serve] Initial forecast refresh returned error: %v", err)
		}
	}()
	refresher.StartPeriodicJob(ctx, interval)
}
