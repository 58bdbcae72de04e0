package engine

import (
	"almsim/types"

	"github.com/shopspring/decimal"
)

func d(s string) types.Date { return types.MustParseDate(s) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dates(ss ...string) []types.Date {
	out := make([]types.Date, 0, len(ss))
	for _, s := range ss {
		out = append(out, d(s))
	}
	return out
}

// flat returns a table input where every instrument has the same value on every date.
func flat(values map[string]string, on []types.Date) map[string]map[types.Date]decimal.Decimal {
	out := make(map[string]map[types.Date]decimal.Decimal, len(values))
	for instrument, v := range values {
		row := make(map[types.Date]decimal.Decimal, len(on))
		for _, day := range on {
			row[day] = dec(v)
		}
		out[instrument] = row
	}
	return out
}

func mustTable(values map[string]map[types.Date]decimal.Decimal, on []types.Date) *Table {
	t, err := NewTable(values, on)
	if err != nil {
		panic(err)
	}
	return t
}

func mustSeries(on []types.Date, values ...string) *Series {
	s, err := NewSeries(on)
	if err != nil {
		panic(err)
	}
	for i, v := range values {
		if err := s.Set(on[i], dec(v)); err != nil {
			panic(err)
		}
	}
	return s
}

func equalDates(a, b []types.Date) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
