package types

import (
	"github.com/shopspring/decimal"
)

// Liability is a schedule of payments the portfolio owes. Dates and Amounts are parallel.
type Liability struct {
	Id      string            `json:"id"`
	Dates   []Date            `json:"dates"`
	Amounts []decimal.Decimal `json:"amounts"`
}

func NewLiability(id string) *Liability {
	return &Liability{Id: id}
}

// AddCashflow appends a payment to the schedule.
func (l *Liability) AddCashflow(on Date, amount decimal.Decimal) {
	l.Dates = append(l.Dates, on)
	l.Amounts = append(l.Amounts, amount)
}

// Total is the sum of all scheduled payments.
func (l Liability) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range l.Amounts {
		total = total.Add(a)
	}
	return total
}
