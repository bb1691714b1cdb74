// README: Entry point; cobra root command that loads config and the logger for every subcommand.
package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fleetfare/internal/config"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:          "fleetfare",
	Short:        "Dynamic fare pricing and driver request ranking",
	Long:         "Prices ride requests from a rule fare blended with a learned fare model, demand-driven surge and situational multipliers, and ranks pending requests for drivers by expected profit.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		l, err := config.InitLogger(cfg.Log)
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
