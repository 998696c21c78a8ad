package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"socialspend/internal/cli"
	"socialspend/internal/config"
	applog "socialspend/internal/log"
)

// runtime is the state shared by every subcommand once the root command has
// loaded configuration.
type runtime struct {
	cfg    *config.Config
	logger *applog.Logger
}

func main() {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:           "socialspend",
		Short:         "Aggregate and explain paid-social spend across banks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			// Reports go to stdout, so logs stay on stderr.
			rt.logger = cli.SetupLogger(os.Stderr, cfg.LogLevel, applog.ComponentApp)
			return nil
		},
	}

	rootCmd.AddCommand(
		newServeCmd(rt),
		newImportCmd(rt),
		newReportCmd(rt),
		newYoYCmd(rt),
		newWaveCmd(rt),
		newInsightsCmd(rt),
		newPlatformsCmd(rt),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
