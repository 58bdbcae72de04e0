package main

import (
	"almsim/internal/config"
	"almsim/internal/engine"
	"almsim/internal/logger"
	"almsim/internal/repository"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/almsim.yaml"

// runCmd holds the flags for the 'run' subcommand.
type runCmd struct {
	configPath string
	stepsFile  string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "match asset cashflows against liabilities and rebalance" }
func (*runCmd) Usage() string {
	return `almsim run [-config <path>] [-steps <file>]

  Loads cashflows, liabilities, holdings and prices from Postgres and runs the
  cashflow matching simulation over the configured modelling dates.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", configPathFromEnv(), "Path to the YAML configuration file")
	f.StringVar(&c.stepsFile, "steps", "", "Write one CSV row per modelling date to this file")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.stepsFile != "" {
		cfg.Reporting.StepsFile = c.stepsFile
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		return subcommands.ExitUsageError
	}

	log, err := logger.New(cfg.Logging.Production)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer log.Sync()

	runConfig, err := cfg.RunConfig()
	if err != nil {
		log.Error("invalid run config", zap.Error(err))
		return subcommands.ExitUsageError
	}

	db, err := repository.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Error("connect database", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer db.Close()

	eng := engine.NewEngine(runConfig, cfg.ReportingConfig(), db, log)
	result, _, err := eng.Run(ctx)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	if len(result.Warnings) > 0 {
		log.Warn("run finished with unresolved balances", zap.Int("warnings", len(result.Warnings)))
	}
	return subcommands.ExitSuccess
}

func configPathFromEnv() string {
	if v := os.Getenv("ALMSIM_CONFIG"); v != "" {
		return v
	}
	return defaultConfigPath
}
