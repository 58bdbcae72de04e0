package engine

import (
	"almsim/types"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// matrix is a dense instrument x date grid of decimals.
type matrix struct {
	rows  []string
	cols  []types.Date
	cells map[string]map[types.Date]decimal.Decimal
}

func newMatrix(rows []string, cols []types.Date) matrix {
	m := matrix{
		rows:  append([]string(nil), rows...),
		cols:  append([]types.Date(nil), cols...),
		cells: make(map[string]map[types.Date]decimal.Decimal, len(rows)),
	}
	for _, r := range m.rows {
		row := make(map[types.Date]decimal.Decimal, len(cols))
		for _, c := range m.cols {
			row[c] = decimal.Zero
		}
		m.cells[r] = row
	}
	return m
}

func (m matrix) hasColumn(d types.Date) bool {
	if len(m.rows) == 0 {
		for _, c := range m.cols {
			if c == d {
				return true
			}
		}
		return false
	}
	_, ok := m.cells[m.rows[0]][d]
	return ok
}

func (m matrix) column(d types.Date) (map[string]decimal.Decimal, bool) {
	if !m.hasColumn(d) {
		return nil, false
	}
	col := make(map[string]decimal.Decimal, len(m.rows))
	for _, r := range m.rows {
		col[r] = m.cells[r][d]
	}
	return col, true
}

func (m matrix) clone() matrix {
	out := newMatrix(m.rows, m.cols)
	for r, row := range m.cells {
		for c, v := range row {
			out.cells[r][c] = v
		}
	}
	return out
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Table holds one value per instrument and modelling date, e.g. units held or market prices.
// A Table is always complete: every instrument has a value on every date.
type Table struct {
	m matrix
}

// NewTable builds a Table from per-instrument values. Every instrument must carry a value for every date.
func NewTable(values map[string]map[types.Date]decimal.Decimal, dates []types.Date) (*Table, error) {
	if err := checkAscending(dates); err != nil {
		return nil, err
	}
	m := newMatrix(sortedKeys(values), dates)
	for _, instrument := range m.rows {
		row := values[instrument]
		for _, d := range dates {
			v, ok := row[d]
			if !ok {
				return nil, fmt.Errorf("%s has no value on %s: %w", instrument, d, ErrShapeMismatch)
			}
			m.cells[instrument][d] = v
		}
		for d := range row {
			if !m.hasColumn(d) {
				return nil, fmt.Errorf("%s has a value on %s outside the modelling dates: %w", instrument, d, ErrUnknownDate)
			}
		}
	}
	return &Table{m: m}, nil
}

func (t *Table) Instruments() []string { return append([]string(nil), t.m.rows...) }

func (t *Table) Dates() []types.Date { return append([]types.Date(nil), t.m.cols...) }

// Get returns the value for an instrument on a date, and whether it exists.
func (t *Table) Get(instrument string, d types.Date) (decimal.Decimal, bool) {
	row, ok := t.m.cells[instrument]
	if !ok {
		return decimal.Zero, false
	}
	v, ok := row[d]
	return v, ok
}

// Column returns a copy of the values on date d keyed by instrument.
func (t *Table) Column(d types.Date) (map[string]decimal.Decimal, error) {
	col, ok := t.m.column(d)
	if !ok {
		return nil, fmt.Errorf("no column for %s: %w", d, ErrShapeMismatch)
	}
	return col, nil
}

// SetColumn overwrites the values on date d. col must hold exactly the table's instruments.
func (t *Table) SetColumn(d types.Date, col map[string]decimal.Decimal) error {
	if !t.m.hasColumn(d) {
		return fmt.Errorf("no column for %s: %w", d, ErrShapeMismatch)
	}
	if len(col) != len(t.m.rows) {
		return fmt.Errorf("column for %s has %d instruments, want %d: %w", d, len(col), len(t.m.rows), ErrShapeMismatch)
	}
	for _, r := range t.m.rows {
		if _, ok := col[r]; !ok {
			return fmt.Errorf("column for %s is missing %s: %w", d, r, ErrShapeMismatch)
		}
	}
	for _, r := range t.m.rows {
		t.m.cells[r][d] = col[r]
	}
	return nil
}

func (t *Table) Clone() *Table {
	return &Table{m: t.m.clone()}
}

// Series is one value per modelling date, used for the bank balance.
type Series struct {
	dates  []types.Date
	values map[types.Date]decimal.Decimal
}

// NewSeries returns a zero-valued series over the given strictly ascending dates.
func NewSeries(dates []types.Date) (*Series, error) {
	if err := checkAscending(dates); err != nil {
		return nil, err
	}
	s := &Series{
		dates:  append([]types.Date(nil), dates...),
		values: make(map[types.Date]decimal.Decimal, len(dates)),
	}
	for _, d := range dates {
		s.values[d] = decimal.Zero
	}
	return s, nil
}

func (s *Series) Get(d types.Date) (decimal.Decimal, error) {
	v, ok := s.values[d]
	if !ok {
		return decimal.Zero, fmt.Errorf("no balance for %s: %w", d, ErrShapeMismatch)
	}
	return v, nil
}

func (s *Series) Set(d types.Date, v decimal.Decimal) error {
	if _, ok := s.values[d]; !ok {
		return fmt.Errorf("no balance for %s: %w", d, ErrShapeMismatch)
	}
	s.values[d] = v
	return nil
}

// Add posts delta onto the balance of date d.
func (s *Series) Add(d types.Date, delta decimal.Decimal) error {
	v, err := s.Get(d)
	if err != nil {
		return err
	}
	s.values[d] = v.Add(delta)
	return nil
}

func (s *Series) Dates() []types.Date { return append([]types.Date(nil), s.dates...) }
