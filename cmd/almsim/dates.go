package main

import (
	"almsim/internal/config"
	"almsim/internal/engine"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// datesCmd prints the modelling dates without touching the database.
type datesCmd struct {
	configPath string
}

func (*datesCmd) Name() string     { return "dates" }
func (*datesCmd) Synopsis() string { return "print the modelling dates of the configured horizon" }
func (*datesCmd) Usage() string {
	return `almsim dates [-config <path>]
`
}

func (c *datesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", configPathFromEnv(), "Path to the YAML configuration file")
}

func (c *datesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return subcommands.ExitFailure
	}
	start, end, err := cfg.Horizon()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	dates, err := engine.DatesOfInterest(start, end, cfg.Run.IntervalDays)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	for _, d := range dates {
		fmt.Println(d)
	}
	return subcommands.ExitSuccess
}
