package engine

import (
	"almsim/types"
	"fmt"

	"github.com/shopspring/decimal"
)

// ExpiryResult is the cash realized at a cutoff and the working state to use from then on.
// The ledger and date set passed in must not be reused after a successful call.
type ExpiryResult struct {
	Expired     []types.Date
	Cash        decimal.Decimal
	Ledger      *Ledger
	Outstanding DateSet
}

// ProcessAssetExpiry nets the asset cashflows dated on or before cutoff, weighted by the
// units held on the cutoff date.
func ProcessAssetExpiry(outstanding DateSet, cutoff types.Date, ledger *Ledger, holdings *Table) (ExpiryResult, error) {
	units, err := holdings.Column(cutoff)
	if err != nil {
		return ExpiryResult{}, fmt.Errorf("asset expiry at %s: %w", cutoff, err)
	}
	return processExpiry(outstanding, cutoff, ledger, units)
}

// ProcessLiabilityExpiry nets the liability cashflows dated on or before cutoff.
func ProcessLiabilityExpiry(outstanding DateSet, cutoff types.Date, ledger *Ledger) (ExpiryResult, error) {
	return processExpiry(outstanding, cutoff, ledger, nil)
}

func processExpiry(outstanding DateSet, cutoff types.Date, ledger *Ledger, weights map[string]decimal.Decimal) (ExpiryResult, error) {
	expired := outstanding.Expired(cutoff)
	if len(expired) == 0 {
		return ExpiryResult{Cash: decimal.Zero, Ledger: ledger, Outstanding: outstanding}, nil
	}
	cash, next, err := ledger.NetAndDrop(expired, weights)
	if err != nil {
		return ExpiryResult{}, fmt.Errorf("expiry at %s: %w", cutoff, err)
	}
	remaining, err := outstanding.Remove(expired...)
	if err != nil {
		return ExpiryResult{}, fmt.Errorf("expiry at %s: %w", cutoff, err)
	}
	return ExpiryResult{
		Expired:     expired,
		Cash:        cash,
		Ledger:      next,
		Outstanding: remaining,
	}, nil
}
