package repository

import (
	"almsim/types"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetLiabilities returns every liability with the payments it owes between start and end.
func (db *Database) GetLiabilities(ctx context.Context, start, end types.Date) ([]types.Liability, error) {
	args := GetCashflowsParams{
		Starttime: start.Time(),
		Endtime:   end.Time(),
	}
	rows, err := db.liabilities.GetLiabilityCashflows(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoLiabilities
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("between %s and %s %w", start, end, ErrNoLiabilities)
	}
	return convertLiabilities(rows), nil
}

// convertLiabilities groups rows by liability, keeping first-seen order. Payments due on the
// same day are merged so every liability has distinct dates.
func convertLiabilities(rows []LiabilityCashflow) []types.Liability {
	var out []types.Liability
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.LiabilityID]
		if !ok {
			i = len(out)
			index[row.LiabilityID] = i
			out = append(out, types.Liability{Id: row.LiabilityID})
		}
		l := &out[i]
		on := types.DateFromTime(row.PayDate)
		merged := false
		for j, d := range l.Dates {
			if d == on {
				l.Amounts[j] = l.Amounts[j].Add(row.Amount)
				merged = true
				break
			}
		}
		if !merged {
			l.AddCashflow(on, row.Amount)
		}
	}
	return out
}
