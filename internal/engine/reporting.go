package engine

import (
	"almsim/types"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

type Report struct {
	// Meta / period info
	StartDate      types.Date
	EndDate        types.Date
	ModellingDates int

	// Cashflows
	TotalAssetCash     decimal.Decimal
	TotalLiabilityCash decimal.Decimal
	NetCash            decimal.Decimal

	// Trading
	Buys            int
	Sells           int
	TotalBought     decimal.Decimal
	TotalSold       decimal.Decimal
	DegenerateDates int
	OverdraftDates  int
	LeverageDates   int

	// Closing position
	FinalMarketValue       decimal.Decimal
	FinalBalance           decimal.Decimal
	MinBalance             decimal.Decimal
	MinBalanceDate         types.Date
	MaxDrawdown            decimal.Decimal
	MaxDrawdownPercent     decimal.Decimal
	OutstandingLiabilities decimal.Decimal
	FundingRatio           decimal.Decimal

	UnmatchedAssetDates     int
	UnmatchedLiabilityDates int
}

func printReport(w io.Writer, report *Report) {
	fmt.Fprintln(w, "===== Cashflow Matching Report =====")
	fmt.Fprintf(w, "Start Date:              %s\n", report.StartDate)
	fmt.Fprintf(w, "End Date:                %s\n", report.EndDate)
	fmt.Fprintf(w, "Modelling Dates:         %d\n", report.ModellingDates)

	fmt.Fprintln(w, "\n-- Cashflows --")
	fmt.Fprintf(w, "Asset Cash:              %s\n", report.TotalAssetCash)
	fmt.Fprintf(w, "Liability Cash:          %s\n", report.TotalLiabilityCash)
	fmt.Fprintf(w, "Net Cash:                %s\n", report.NetCash)

	fmt.Fprintln(w, "\n-- Trading --")
	fmt.Fprintf(w, "Buys:                    %d (%s)\n", report.Buys, report.TotalBought)
	fmt.Fprintf(w, "Sells:                   %d (%s)\n", report.Sells, report.TotalSold)
	fmt.Fprintf(w, "Degenerate Portfolio:    %d\n", report.DegenerateDates)
	fmt.Fprintf(w, "Overdraft Capped:        %d\n", report.OverdraftDates)
	fmt.Fprintf(w, "Leverage Capped:         %d\n", report.LeverageDates)

	fmt.Fprintln(w, "\n-- Closing Position --")
	fmt.Fprintf(w, "Final Market Value:      %s\n", report.FinalMarketValue.StringFixed(2))
	fmt.Fprintf(w, "Final Balance:           %s\n", report.FinalBalance.StringFixed(2))
	fmt.Fprintf(w, "Min Balance:             %s (%s)\n", report.MinBalance.StringFixed(2), report.MinBalanceDate)
	fmt.Fprintf(w, "Max Drawdown:            %s\n", report.MaxDrawdown.StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown %%:          %s\n", report.MaxDrawdownPercent.StringFixed(4))
	fmt.Fprintf(w, "Outstanding Liabilities: %s\n", report.OutstandingLiabilities.StringFixed(2))
	fmt.Fprintf(w, "Funding Ratio:           %s\n", report.FundingRatio.StringFixed(4))
	fmt.Fprintf(w, "Unmatched Asset Dates:   %d\n", report.UnmatchedAssetDates)
	fmt.Fprintf(w, "Unmatched Liab. Dates:   %d\n", report.UnmatchedLiabilityDates)

	fmt.Fprintln(w, "====================================")
}

func generateReport(result *Result) *Report {
	report := &Report{
		ModellingDates:          len(result.Steps),
		TotalAssetCash:          decimal.Zero,
		TotalLiabilityCash:      decimal.Zero,
		TotalBought:             decimal.Zero,
		TotalSold:               decimal.Zero,
		OutstandingLiabilities:  result.OutstandingLiabilityCash,
		UnmatchedAssetDates:     len(result.OutstandingAssetDates),
		UnmatchedLiabilityDates: len(result.OutstandingLiabilityDates),
	}
	if len(result.Steps) == 0 {
		return report
	}
	report.StartDate = result.Steps[0].Date
	report.EndDate = result.Steps[len(result.Steps)-1].Date

	for i, step := range result.Steps {
		report.TotalAssetCash = report.TotalAssetCash.Add(step.AssetCash)
		report.TotalLiabilityCash = report.TotalLiabilityCash.Add(step.LiabilityCash)

		rb := step.Rebalance
		switch rb.Side {
		case types.SideTypeBuy:
			report.Buys++
			report.TotalBought = report.TotalBought.Add(rb.CashMoved().Neg())
		case types.SideTypeSell:
			report.Sells++
			report.TotalSold = report.TotalSold.Add(rb.CashMoved())
		}
		switch rb.Condition {
		case types.ConditionDegeneratePortfolio:
			report.DegenerateDates++
		case types.ConditionOverdraftCapped:
			report.OverdraftDates++
		case types.ConditionLeverageCapped:
			report.LeverageDates++
		}

		if i == 0 || rb.BalanceAfter.LessThan(report.MinBalance) {
			report.MinBalance = rb.BalanceAfter
			report.MinBalanceDate = step.Date
		}
	}
	report.NetCash = report.TotalAssetCash.Sub(report.TotalLiabilityCash)

	last := result.Steps[len(result.Steps)-1].Rebalance
	report.FinalMarketValue = last.MarketValueAfter
	report.FinalBalance = last.BalanceAfter
	report.MaxDrawdown, report.MaxDrawdownPercent = calcDrawdownMetrics(result.Steps)
	if report.OutstandingLiabilities.IsPositive() {
		report.FundingRatio = report.FinalMarketValue.Add(report.FinalBalance).Div(report.OutstandingLiabilities)
	}
	return report
}

// calcDrawdownMetrics measures the largest peak to trough fall of market value across the steps.
func calcDrawdownMetrics(steps []Step) (decimal.Decimal, decimal.Decimal) {
	peak := decimal.Zero
	maxDD := decimal.Zero
	maxDDPct := decimal.Zero

	for i, step := range steps {
		value := step.Rebalance.MarketValueAfter
		if i == 0 || value.GreaterThan(peak) {
			peak = value
		}
		if peak.GreaterThan(decimal.Zero) {
			dd := peak.Sub(value)
			if dd.GreaterThan(maxDD) {
				maxDD = dd
				maxDDPct = dd.Div(peak)
			}
		}
	}
	return maxDD, maxDDPct
}
