package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newConfigCmd(state *cliState) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	configViewCmd := &cobra.Command{
		Use:   "view",
		Short: "View current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			keys := state.viper.AllKeys()
			sort.Strings(keys)
			for _, k := range keys {
				v := state.viper.Get(k)
				if k == "redis.password" && fmt.Sprint(v) != "" {
					v = "********"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", k, v)
			}
		},
	}

	configCmd.AddCommand(configViewCmd)
	return configCmd
}
