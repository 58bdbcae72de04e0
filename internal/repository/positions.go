package repository

import (
	"almsim/types"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GetHoldings returns the units held of every instrument on each of the given dates.
func (db *Database) GetHoldings(ctx context.Context, dates []types.Date) (map[string]map[types.Date]decimal.Decimal, error) {
	rows, err := db.positions.GetPositions(ctx, toTimes(dates))
	if err != nil {
		return nil, err
	}
	table, err := convertValues(rows, dates)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	return table, nil
}

// GetPrices returns the market price of every instrument on each of the given dates.
func (db *Database) GetPrices(ctx context.Context, dates []types.Date) (map[string]map[types.Date]decimal.Decimal, error) {
	rows, err := db.positions.GetPrices(ctx, toTimes(dates))
	if err != nil {
		return nil, err
	}
	table, err := convertValues(rows, dates)
	if err != nil {
		return nil, fmt.Errorf("prices: %w", err)
	}
	return table, nil
}

// convertValues requires one value per instrument and date; the simulation never fills gaps.
func convertValues(rows []InstrumentValue, dates []types.Date) (map[string]map[types.Date]decimal.Decimal, error) {
	if len(rows) == 0 {
		return nil, ErrIncompleteTable
	}
	out := make(map[string]map[types.Date]decimal.Decimal)
	for _, row := range rows {
		values, ok := out[row.Ticker]
		if !ok {
			values = make(map[types.Date]decimal.Decimal, len(dates))
			out[row.Ticker] = values
		}
		on := types.DateFromTime(row.AsOf)
		if _, dup := values[on]; dup {
			return nil, fmt.Errorf("%s twice on %s: %w", row.Ticker, on, ErrIncompleteTable)
		}
		values[on] = row.Value
	}
	for ticker, values := range out {
		for _, d := range dates {
			if _, ok := values[d]; !ok {
				return nil, fmt.Errorf("%s has no value on %s: %w", ticker, d, ErrIncompleteTable)
			}
		}
	}
	return out, nil
}

func toTimes(dates []types.Date) []time.Time {
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Time())
	}
	return out
}
