package repository

import (
	"almsim/types"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// GetAssetCashflows returns the per-unit cashflows of every instrument paying between start and end.
// Several rows on the same day for one instrument are summed.
func (db *Database) GetAssetCashflows(ctx context.Context, start, end types.Date) (map[string]map[types.Date]decimal.Decimal, error) {
	args := GetCashflowsParams{
		Starttime: start.Time(),
		Endtime:   end.Time(),
	}
	rows, err := db.cashflows.GetInstrumentCashflows(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCashflows
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("between %s and %s %w", start, end, ErrNoCashflows)
	}
	return convertCashflows(rows), nil
}

func convertCashflows(rows []InstrumentCashflow) map[string]map[types.Date]decimal.Decimal {
	out := make(map[string]map[types.Date]decimal.Decimal)
	for _, row := range rows {
		flows, ok := out[row.Ticker]
		if !ok {
			flows = make(map[types.Date]decimal.Decimal)
			out[row.Ticker] = flows
		}
		on := types.DateFromTime(row.PayDate)
		flows[on] = flows[on].Add(row.Amount)
	}
	return out
}
