package engine

import (
	"almsim/types"
	"fmt"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Rebalancer scales all holdings by one factor so that the bank balance of a date goes to zero.
type Rebalancer struct {
	// maxBuyPercent caps how much the holdings may grow in a single trade. Zero means uncapped.
	maxBuyPercent decimal.Decimal
}

func NewRebalancer(maxBuyPercent decimal.Decimal) *Rebalancer {
	return &Rebalancer{maxBuyPercent: maxBuyPercent}
}

// MarketValue is the sum of units times price on date d.
func MarketValue(d types.Date, units, price *Table) (decimal.Decimal, error) {
	u, err := units.Column(d)
	if err != nil {
		return decimal.Zero, err
	}
	p, err := price.Column(d)
	if err != nil {
		return decimal.Zero, err
	}
	return columnValue(d, u, p)
}

func columnValue(d types.Date, units, price map[string]decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for instrument, qty := range units {
		px, ok := price[instrument]
		if !ok {
			return decimal.Zero, fmt.Errorf("no price for %s on %s: %w", instrument, d, ErrShapeMismatch)
		}
		total = total.Add(qty.Mul(px))
	}
	return total, nil
}

// Trade sells a pro-rata slice of the holdings when the balance of date is negative and buys a
// pro-rata increment when it is positive. Only the date column of units and bank is touched.
func (r *Rebalancer) Trade(date types.Date, bank *Series, units, price *Table) (types.Rebalance, error) {
	balance, err := bank.Get(date)
	if err != nil {
		return types.Rebalance{}, err
	}
	held, err := units.Column(date)
	if err != nil {
		return types.Rebalance{}, err
	}
	prices, err := price.Column(date)
	if err != nil {
		return types.Rebalance{}, err
	}
	totalMarketValue, err := columnValue(date, held, prices)
	if err != nil {
		return types.Rebalance{}, err
	}

	report := types.NewRebalance(date, totalMarketValue, balance)
	var percent decimal.Decimal
	switch {
	case totalMarketValue.LessThanOrEqual(decimal.Zero):
		if !balance.IsZero() {
			report.Condition = types.ConditionDegeneratePortfolio
		}
		return report, nil
	case balance.IsNegative():
		percent = balance.Neg().Div(totalMarketValue)
		if percent.GreaterThanOrEqual(one) {
			percent = one
			if balance.Neg().GreaterThan(totalMarketValue) {
				report.Condition = types.ConditionOverdraftCapped
			}
		}
		report.Side = types.SideTypeSell
		scale(held, one.Sub(percent))
	case balance.IsPositive():
		percent = balance.Div(totalMarketValue)
		if r.maxBuyPercent.IsPositive() && percent.GreaterThan(r.maxBuyPercent) {
			percent = r.maxBuyPercent
			report.Condition = types.ConditionLeverageCapped
		}
		report.Side = types.SideTypeBuy
		scale(held, one.Add(percent))
	default:
		return report, nil
	}

	newMarketValue, err := columnValue(date, held, prices)
	if err != nil {
		return types.Rebalance{}, err
	}
	if err := units.SetColumn(date, held); err != nil {
		return types.Rebalance{}, err
	}
	// Selling raises cash, buying spends it; both are the change in market value.
	newBalance := balance.Add(totalMarketValue.Sub(newMarketValue))
	if err := bank.Set(date, newBalance); err != nil {
		return types.Rebalance{}, err
	}

	report.Percent = percent
	report.MarketValueAfter = newMarketValue
	report.BalanceAfter = newBalance
	return report, nil
}

func scale(col map[string]decimal.Decimal, factor decimal.Decimal) {
	for instrument, qty := range col {
		col[instrument] = qty.Mul(factor)
	}
}
