// Command loan-calculator computes fixed-rate loan amortization from the
// command line or serves it over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

// app carries state shared by subcommands once the root command has loaded
// configuration.
type app struct {
	v      *viper.Viper
	conf   *config.Configuration
	logger *zap.Logger
}

func main() {
	if err := newRootCmd(viper.GetViper()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "loan-calculator",
		Short: "Fixed-rate loan and mortgage amortization calculator",
		Long: `loan-calculator computes the monthly payment, lifetime totals and
payment-by-payment amortization schedule of a fixed-rate loan, analyzes the
effect of extra payments and serves the same calculations over a JSON API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			conf, err := config.Load(a.v, configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logLevel, _ := cmd.Flags().GetString("log-level")
			logger, err := initializeLogger(conf.Logging, logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			a.conf = conf
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().String("config", "", "path to configuration file (default: ./config.yaml if present)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newCalculateCmd(a),
		newServeCmd(a),
		newVersionCmd(),
		newConfigCmd(a),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip configuration loading.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "loan-calculator %s (commit %s)\n", version, commit)
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.conf.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
