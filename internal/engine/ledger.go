package engine

import (
	"almsim/types"
	"fmt"

	"github.com/shopspring/decimal"
)

// Ledger maps (instrument, date) to a cashflow amount. Rows are instruments, columns are dates.
// A Ledger is never modified after construction; NetAndDrop returns a new one.
type Ledger struct {
	m matrix
}

// BuildLedger lays sparse per-instrument cashflows onto one column per date.
// Every instrument gets a row, and every cashflow date must be one of dates.
func BuildLedger(cashflows map[string]map[types.Date]decimal.Decimal, dates []types.Date) (*Ledger, error) {
	if err := checkAscending(dates); err != nil {
		return nil, err
	}
	m := newMatrix(sortedKeys(cashflows), dates)
	for instrument, flows := range cashflows {
		for d, amount := range flows {
			if !m.hasColumn(d) {
				return nil, fmt.Errorf("cashflow of %s on %s: %w", instrument, d, ErrUnknownDate)
			}
			m.cells[instrument][d] = amount
		}
	}
	return &Ledger{m: m}, nil
}

// LedgerFromLiability returns a single-row ledger whose columns are the liability's own dates.
func LedgerFromLiability(l types.Liability) (*Ledger, error) {
	if len(l.Dates) != len(l.Amounts) {
		return nil, fmt.Errorf("liability %s has %d dates and %d amounts: %w", l.Id, len(l.Dates), len(l.Amounts), ErrShapeMismatch)
	}
	set := UniqueDates(l.Dates)
	if set.Len() != len(l.Dates) {
		return nil, fmt.Errorf("liability %s has duplicate dates: %w", l.Id, ErrInvalidDates)
	}
	m := newMatrix([]string{l.Id}, set.dates)
	for i, d := range l.Dates {
		m.cells[l.Id][d] = l.Amounts[i]
	}
	return &Ledger{m: m}, nil
}

// CombineLedgers stacks ledgers over the union of their columns, zero filling the gaps.
func CombineLedgers(ledgers ...*Ledger) (*Ledger, error) {
	var groups [][]types.Date
	rows := make(map[string]*Ledger)
	for _, l := range ledgers {
		groups = append(groups, l.m.cols)
		for _, r := range l.m.rows {
			if _, dup := rows[r]; dup {
				return nil, fmt.Errorf("row %s appears twice: %w", r, ErrShapeMismatch)
			}
			rows[r] = l
		}
	}
	m := newMatrix(sortedKeys(rows), UniqueDates(groups...).dates)
	for r, l := range rows {
		for d, v := range l.m.cells[r] {
			m.cells[r][d] = v
		}
	}
	return &Ledger{m: m}, nil
}

func (l *Ledger) Instruments() []string { return append([]string(nil), l.m.rows...) }

func (l *Ledger) Dates() []types.Date { return append([]types.Date(nil), l.m.cols...) }

// Amount returns the cashflow of an instrument on a date, and whether that cell exists.
func (l *Ledger) Amount(instrument string, d types.Date) (decimal.Decimal, bool) {
	row, ok := l.m.cells[instrument]
	if !ok {
		return decimal.Zero, false
	}
	v, ok := row[d]
	return v, ok
}

// NetAndDrop sums the expired columns and returns a ledger without them.
// When weights is non-nil each row is multiplied by its weight, e.g. the units held of that instrument.
func (l *Ledger) NetAndDrop(expired []types.Date, weights map[string]decimal.Decimal) (decimal.Decimal, *Ledger, error) {
	drop := make(map[types.Date]struct{}, len(expired))
	for _, d := range expired {
		if !l.m.hasColumn(d) {
			return decimal.Zero, nil, fmt.Errorf("drop column %s: %w", d, ErrUnknownDate)
		}
		if _, dup := drop[d]; dup {
			return decimal.Zero, nil, fmt.Errorf("drop column %s twice: %w", d, ErrUnknownDate)
		}
		drop[d] = struct{}{}
	}

	cash := decimal.Zero
	for _, r := range l.m.rows {
		weight := decimal.NewFromInt(1)
		if weights != nil {
			w, ok := weights[r]
			if !ok {
				return decimal.Zero, nil, fmt.Errorf("no weight for %s: %w", r, ErrShapeMismatch)
			}
			weight = w
		}
		for _, d := range expired {
			cash = cash.Add(l.m.cells[r][d].Mul(weight))
		}
	}

	keep := make([]types.Date, 0, len(l.m.cols)-len(drop))
	for _, c := range l.m.cols {
		if _, ok := drop[c]; !ok {
			keep = append(keep, c)
		}
	}
	m := newMatrix(l.m.rows, keep)
	for _, r := range m.rows {
		for _, c := range keep {
			m.cells[r][c] = l.m.cells[r][c]
		}
	}
	return cash, &Ledger{m: m}, nil
}
