package types

import (
	"github.com/shopspring/decimal"
)

// Rebalance reports what a single trade call did on one modelling date.
type Rebalance struct {
	Date              Date
	Side              Side
	Percent           decimal.Decimal
	MarketValueBefore decimal.Decimal
	MarketValueAfter  decimal.Decimal
	BalanceBefore     decimal.Decimal
	BalanceAfter      decimal.Decimal
	Condition         Condition
}

func NewRebalance(date Date, marketValue, balance decimal.Decimal) Rebalance {
	return Rebalance{
		Date:              date,
		Side:              SideTypeNone,
		Percent:           decimal.Zero,
		MarketValueBefore: marketValue,
		MarketValueAfter:  marketValue,
		BalanceBefore:     balance,
		BalanceAfter:      balance,
	}
}

// Traded reports whether holdings changed.
func (r Rebalance) Traded() bool {
	return r.Side == SideTypeBuy || r.Side == SideTypeSell
}

// CashMoved is the signed change of the bank balance, positive when holdings were sold.
func (r Rebalance) CashMoved() decimal.Decimal {
	return r.BalanceAfter.Sub(r.BalanceBefore)
}
