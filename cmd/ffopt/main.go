package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/logger"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "ffopt",
		Short: "Force-field parameter optimization by simulated annealing",
		Long: `ffopt fits force-field parameters against reference observables.

It runs either a single-objective simulated annealing over a weighted error
or a dominance-based multi-objective annealing that maintains a Pareto
archive of parameter sets. System evaluations can be spread over remote
workers started with "ffopt worker".`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "config/config.yaml", "path to the YAML configuration")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newOptimizeCmd(flags),
		newWorkerCmd(flags),
		newValidateCmd(flags),
	)
	return root
}

// loadConfig reads the configuration and installs the configured logger.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	logger.SetDefault(logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()))
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
