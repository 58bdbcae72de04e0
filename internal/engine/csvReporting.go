package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// writeStepsCSVFile writes steps to a CSV file at the given path.
func (e *Engine) writeStepsCSVFile(path string, steps []Step) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create steps file: %w", err)
	}
	defer f.Close()

	return writeStepsCSV(f, steps)
}

// writeStepsCSV writes one row per modelling date to any io.Writer.
func writeStepsCSV(w io.Writer, steps []Step) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"date",
		"expired_asset_dates",
		"expired_liability_dates",
		"asset_cash",
		"liability_cash",
		"net_cash",
		"side",
		"percent",
		"market_value_before",
		"market_value_after",
		"balance_before",
		"balance_after",
		"condition",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, s := range steps {
		if err := writeStepRow(cw, s); err != nil {
			return err
		}
	}

	// Check for any error from the csv.Writer
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeStepRow(cw *csv.Writer, s Step) error {
	rb := s.Rebalance
	record := []string{
		s.Date.String(),
		strconv.Itoa(len(s.ExpiredAssetDates)),
		strconv.Itoa(len(s.ExpiredLiabilityDates)),
		s.AssetCash.String(),
		s.LiabilityCash.String(),
		s.NetCash.String(),
		string(rb.Side),
		rb.Percent.String(),
		rb.MarketValueBefore.String(),
		rb.MarketValueAfter.String(),
		rb.BalanceBefore.String(),
		rb.BalanceAfter.String(),
		string(rb.Condition),
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
