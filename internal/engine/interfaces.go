package engine

import (
	"almsim/types"
	"context"

	"github.com/shopspring/decimal"
)

// dataStore is the tabular assembler and liability source a run loads its inputs from.
type dataStore interface {
	GetAssetCashflows(ctx context.Context, start, end types.Date) (map[string]map[types.Date]decimal.Decimal, error)
	GetLiabilities(ctx context.Context, start, end types.Date) ([]types.Liability, error)
	GetHoldings(ctx context.Context, dates []types.Date) (map[string]map[types.Date]decimal.Decimal, error)
	GetPrices(ctx context.Context, dates []types.Date) (map[string]map[types.Date]decimal.Decimal, error)
}
