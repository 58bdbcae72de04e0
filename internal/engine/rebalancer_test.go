package engine

import (
	"almsim/types"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

var tolerance = dec("0.000000001")

func TestRebalancer_Trade(t *testing.T) {
	on := []types.Date{d1}
	tests := []struct {
		name          string
		maxBuyPercent string
		units         map[string]string
		prices        map[string]string
		balance       string
		wantUnits     map[string]string
		wantBalance   string
		wantSide      types.Side
		wantPercent   string
		wantCondition types.Condition
	}{
		{
			name:        "sell a quarter to cover the shortfall",
			units:       map[string]string{"X": "10"},
			prices:      map[string]string{"X": "2"},
			balance:     "-5",
			wantUnits:   map[string]string{"X": "7.5"},
			wantBalance: "0",
			wantSide:    types.SideTypeSell,
			wantPercent: "0.25",
		},
		{
			name:        "buy with a surplus",
			units:       map[string]string{"X": "10"},
			prices:      map[string]string{"X": "2"},
			balance:     "5",
			wantUnits:   map[string]string{"X": "12.5"},
			wantBalance: "0",
			wantSide:    types.SideTypeBuy,
			wantPercent: "0.25",
		},
		{
			name:        "zero balance is a no-op",
			units:       map[string]string{"X": "10"},
			prices:      map[string]string{"X": "2"},
			balance:     "0",
			wantUnits:   map[string]string{"X": "10"},
			wantBalance: "0",
			wantSide:    types.SideTypeNone,
			wantPercent: "0",
		},
		{
			name:          "empty portfolio is not traded",
			units:         map[string]string{"X": "0"},
			prices:        map[string]string{"X": "2"},
			balance:       "100",
			wantUnits:     map[string]string{"X": "0"},
			wantBalance:   "100",
			wantSide:      types.SideTypeNone,
			wantPercent:   "0",
			wantCondition: types.ConditionDegeneratePortfolio,
		},
		{
			name:          "negative portfolio value is not traded",
			units:         map[string]string{"X": "-1"},
			prices:        map[string]string{"X": "10"},
			balance:       "-5",
			wantUnits:     map[string]string{"X": "-1"},
			wantBalance:   "-5",
			wantSide:      types.SideTypeNone,
			wantPercent:   "0",
			wantCondition: types.ConditionDegeneratePortfolio,
		},
		{
			name:        "empty portfolio with nothing to trade",
			units:       map[string]string{"X": "0"},
			prices:      map[string]string{"X": "2"},
			balance:     "0",
			wantUnits:   map[string]string{"X": "0"},
			wantBalance: "0",
			wantSide:    types.SideTypeNone,
			wantPercent: "0",
		},
		{
			name:          "shortfall above portfolio value sells everything",
			units:         map[string]string{"X": "10"},
			prices:        map[string]string{"X": "2"},
			balance:       "-50",
			wantUnits:     map[string]string{"X": "0"},
			wantBalance:   "-30",
			wantSide:      types.SideTypeSell,
			wantPercent:   "1",
			wantCondition: types.ConditionOverdraftCapped,
		},
		{
			name:        "shortfall equal to portfolio value",
			units:       map[string]string{"X": "10"},
			prices:      map[string]string{"X": "2"},
			balance:     "-20",
			wantUnits:   map[string]string{"X": "0"},
			wantBalance: "0",
			wantSide:    types.SideTypeSell,
			wantPercent: "1",
		},
		{
			name:        "surplus above portfolio value is leveraged",
			units:       map[string]string{"X": "10"},
			prices:      map[string]string{"X": "2"},
			balance:     "40",
			wantUnits:   map[string]string{"X": "30"},
			wantBalance: "0",
			wantSide:    types.SideTypeBuy,
			wantPercent: "2",
		},
		{
			name:          "max buy percent caps the surplus",
			maxBuyPercent: "0.5",
			units:         map[string]string{"X": "10"},
			prices:        map[string]string{"X": "2"},
			balance:       "40",
			wantUnits:     map[string]string{"X": "15"},
			wantBalance:   "30",
			wantSide:      types.SideTypeBuy,
			wantPercent:   "0.5",
			wantCondition: types.ConditionLeverageCapped,
		},
		{
			name:        "pro-rata across instruments",
			units:       map[string]string{"A": "10", "B": "5"},
			prices:      map[string]string{"A": "2", "B": "6"},
			balance:     "-10",
			wantUnits:   map[string]string{"A": "8", "B": "4"},
			wantBalance: "0",
			wantSide:    types.SideTypeSell,
			wantPercent: "0.2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := mustTable(flat(tt.units, on), on)
			prices := mustTable(flat(tt.prices, on), on)
			bank := mustSeries(on, tt.balance)
			maxBuy := decimal.Zero
			if tt.maxBuyPercent != "" {
				maxBuy = dec(tt.maxBuyPercent)
			}

			got, err := NewRebalancer(maxBuy).Trade(d1, bank, units, prices)
			if err != nil {
				t.Fatalf("Trade() error = %v", err)
			}

			for instrument, want := range tt.wantUnits {
				if v, _ := units.Get(instrument, d1); !v.Equal(dec(want)) {
					t.Errorf("units[%s] = %v, want %v", instrument, v, want)
				}
			}
			balance, _ := bank.Get(d1)
			if balance.Sub(dec(tt.wantBalance)).Abs().GreaterThan(tolerance) {
				t.Errorf("balance = %v, want %v", balance, tt.wantBalance)
			}
			if !got.BalanceAfter.Equal(balance) {
				t.Errorf("report balance %v does not match series %v", got.BalanceAfter, balance)
			}
			if got.Side != tt.wantSide {
				t.Errorf("side = %v, want %v", got.Side, tt.wantSide)
			}
			if !got.Percent.Equal(dec(tt.wantPercent)) {
				t.Errorf("percent = %v, want %v", got.Percent, tt.wantPercent)
			}
			if got.Condition != tt.wantCondition {
				t.Errorf("condition = %q, want %q", got.Condition, tt.wantCondition)
			}
		})
	}
}

func TestRebalancer_Conservation(t *testing.T) {
	on := []types.Date{d1}
	for _, balance := range []string{"-1", "-7.3", "-33.333", "3", "12.5", "1000.01"} {
		t.Run(balance, func(t *testing.T) {
			units := mustTable(flat(map[string]string{"A": "3", "B": "7", "C": "11"}, on), on)
			prices := mustTable(flat(map[string]string{"A": "1.7", "B": "3", "C": "0.9"}, on), on)
			bank := mustSeries(on, balance)

			before, err := MarketValue(d1, units, prices)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := NewRebalancer(decimal.Zero).Trade(d1, bank, units, prices); err != nil {
				t.Fatal(err)
			}
			after, err := MarketValue(d1, units, prices)
			if err != nil {
				t.Fatal(err)
			}
			got, _ := bank.Get(d1)

			lhs := after.Add(got)
			rhs := before.Add(dec(balance))
			if lhs.Sub(rhs).Abs().GreaterThan(tolerance) {
				t.Errorf("value + cash after = %v, before = %v", lhs, rhs)
			}
			if got.Abs().GreaterThan(tolerance) {
				t.Errorf("balance after trade = %v, want ~0", got)
			}
		})
	}
}

func TestRebalancer_OnlyTouchesCurrentDate(t *testing.T) {
	on := []types.Date{d1, d2}
	units := mustTable(flat(map[string]string{"X": "10"}, on), on)
	prices := mustTable(flat(map[string]string{"X": "2"}, on), on)
	bank := mustSeries(on, "-5", "-7")

	if _, err := NewRebalancer(decimal.Zero).Trade(d2, bank, units, prices); err != nil {
		t.Fatal(err)
	}
	if v, _ := units.Get("X", d1); !v.Equal(dec("10")) {
		t.Errorf("units on %s = %v, want 10", d1, v)
	}
	if v, _ := bank.Get(d1); !v.Equal(dec("-5")) {
		t.Errorf("balance on %s = %v, want -5", d1, v)
	}
	if v, _ := units.Get("X", d2); !v.Equal(dec("6.5")) {
		t.Errorf("units on %s = %v, want 6.5", d2, v)
	}
}

func TestRebalancer_ShapeErrors(t *testing.T) {
	on := []types.Date{d1}
	units := mustTable(flat(map[string]string{"X": "10", "Y": "1"}, on), on)
	prices := mustTable(flat(map[string]string{"X": "2"}, on), on)
	bank := mustSeries(on, "-5")

	if _, err := NewRebalancer(decimal.Zero).Trade(d1, bank, units, prices); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("missing price: error = %v, want %v", err, ErrShapeMismatch)
	}
	if _, err := NewRebalancer(decimal.Zero).Trade(d2, bank, units, prices); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("missing date: error = %v, want %v", err, ErrShapeMismatch)
	}
	if v, _ := units.Get("X", d1); !v.Equal(dec("10")) {
		t.Errorf("failed trade changed units to %v", v)
	}
}
