package cmd

import (
	"fmt"
	"os"

	"gigcast/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cliState is shared by the subcommands of one root command.
type cliState struct {
	configFile string
	viper      *viper.Viper
	cfg        *config.Config
}

// NewRootCmd builds the gigcast command tree.
func NewRootCmd() *cobra.Command {
	state := &cliState{viper: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "gigcast",
		Short:         "Gig date recommendations from historical event data",
		Long:          `Fits a daily forecast over past gigs of a city and genre and recommends the best days of the week and dates to play.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(state.viper, state.configFile)
			if err != nil {
				return err
			}
			state.cfg = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&state.configFile, "config", "", "YAML config file (GIGCAST_* environment variables override it)")

	rootCmd.AddCommand(newServeCmd(state))
	rootCmd.AddCommand(newReportCmd(state))
	rootCmd.AddCommand(newConfigCmd(state))
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
