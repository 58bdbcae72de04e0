package engine

import (
	"almsim/types"

	"github.com/shopspring/decimal"
)

type RunConfig struct {
	start          types.Date
	end            types.Date
	intervalDays   int
	openingBalance decimal.Decimal
	maxBuyPercent  decimal.Decimal
	carryHoldings  bool
}

func NewRunConfig(start, end types.Date, intervalDays int) *RunConfig {
	return &RunConfig{
		start:          start,
		end:            end,
		intervalDays:   intervalDays,
		openingBalance: decimal.Zero,
		maxBuyPercent:  decimal.Zero,
	}
}

// WithOpeningBalance sets the balance carried into the first modelling date.
func (c *RunConfig) WithOpeningBalance(balance decimal.Decimal) *RunConfig {
	c.openingBalance = balance
	return c
}

// WithMaxBuyPercent caps the growth of holdings in one trade, 0.5 meaning +50%. Zero disables the cap.
func (c *RunConfig) WithMaxBuyPercent(percent decimal.Decimal) *RunConfig {
	c.maxBuyPercent = percent
	return c
}

// WithCarryHoldings makes each date start from the holdings left by the previous date's trade
// instead of the pre-populated column.
func (c *RunConfig) WithCarryHoldings(carry bool) *RunConfig {
	c.carryHoldings = carry
	return c
}

type ReportingConfig struct {
	printReport bool
	stepsFile   string
	progress    bool
}

func NewReportingConfig(printReport bool, stepsFile string, progress bool) *ReportingConfig {
	return &ReportingConfig{
		printReport: printReport,
		stepsFile:   stepsFile,
		progress:    progress,
	}
}
