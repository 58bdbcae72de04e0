package config

import (
	"almsim/internal/engine"
	"almsim/types"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Run struct {
		StartDate      string `yaml:"start_date"`
		EndDate        string `yaml:"end_date"`
		IntervalDays   int    `yaml:"interval_days"`
		OpeningBalance string `yaml:"opening_balance"`
		MaxBuyPercent  string `yaml:"max_buy_percent"`
		CarryHoldings  bool   `yaml:"carry_holdings"`
	} `yaml:"run"`
	Reporting struct {
		PrintReport bool   `yaml:"print_report"`
		StepsFile   string `yaml:"steps_file"`
		Progress    bool   `yaml:"progress"`
	} `yaml:"reporting"`
	Logging struct {
		Production bool `yaml:"production"`
	} `yaml:"logging"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ALMSIM_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("ALMSIM_STEPS_FILE"); v != "" {
		cfg.Reporting.StepsFile = v
	}
	if v := os.Getenv("ALMSIM_INTERVAL_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Run.IntervalDays = days
		}
	}

	// Defaults
	if cfg.Run.IntervalDays == 0 {
		cfg.Run.IntervalDays = 365
	}
	if cfg.Run.OpeningBalance == "" {
		cfg.Run.OpeningBalance = "0"
	}
	if cfg.Run.MaxBuyPercent == "" {
		cfg.Run.MaxBuyPercent = "0"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	start, end, err := c.Horizon()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("run.end_date %s is before run.start_date %s", end, start)
	}
	if c.Run.IntervalDays <= 0 {
		return fmt.Errorf("run.interval_days must be positive")
	}
	if _, err := decimal.NewFromString(c.Run.OpeningBalance); err != nil {
		return fmt.Errorf("run.opening_balance: %w", err)
	}
	maxBuy, err := decimal.NewFromString(c.Run.MaxBuyPercent)
	if err != nil {
		return fmt.Errorf("run.max_buy_percent: %w", err)
	}
	if maxBuy.IsNegative() {
		return fmt.Errorf("run.max_buy_percent must not be negative")
	}
	return nil
}

// Horizon parses the modelling start and end dates.
func (c *Config) Horizon() (types.Date, types.Date, error) {
	start, err := types.ParseDate(c.Run.StartDate)
	if err != nil {
		return types.Date{}, types.Date{}, fmt.Errorf("run.start_date: %w", err)
	}
	end, err := types.ParseDate(c.Run.EndDate)
	if err != nil {
		return types.Date{}, types.Date{}, fmt.Errorf("run.end_date: %w", err)
	}
	return start, end, nil
}

// RunConfig converts the run section for the engine. Call Validate first.
func (c *Config) RunConfig() (*engine.RunConfig, error) {
	start, end, err := c.Horizon()
	if err != nil {
		return nil, err
	}
	opening, err := decimal.NewFromString(c.Run.OpeningBalance)
	if err != nil {
		return nil, fmt.Errorf("run.opening_balance: %w", err)
	}
	maxBuy, err := decimal.NewFromString(c.Run.MaxBuyPercent)
	if err != nil {
		return nil, fmt.Errorf("run.max_buy_percent: %w", err)
	}
	return engine.NewRunConfig(start, end, c.Run.IntervalDays).
		WithOpeningBalance(opening).
		WithMaxBuyPercent(maxBuy).
		WithCarryHoldings(c.Run.CarryHoldings), nil
}

func (c *Config) ReportingConfig() *engine.ReportingConfig {
	return engine.NewReportingConfig(c.Reporting.PrintReport, c.Reporting.StepsFile, c.Reporting.Progress)
}
