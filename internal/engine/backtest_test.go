package engine

import (
	"almsim/types"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testDates = dates("2025-01-01", "2026-01-01", "2027-01-01")

func mockInputs() Inputs {
	return Inputs{
		Dates: testDates,
		AssetCashflows: map[string]map[types.Date]decimal.Decimal{
			"BOND": {d("2025-06-01"): dec("1"), d("2026-06-01"): dec("1")},
		},
		Liabilities: []types.Liability{
			{Id: "PENSION", Dates: dates("2025-12-31", "2026-12-31"), Amounts: []decimal.Decimal{dec("30"), dec("5")}},
		},
		Holdings: flat(map[string]string{"BOND": "10"}, testDates),
		Prices:   flat(map[string]string{"BOND": "10"}, testDates),
	}
}

func TestSimulate(t *testing.T) {
	result, err := Simulate(mockInputs(), NewRunConfig(d("2024-01-01"), d("2027-01-01"), 365), nil, nil)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(result.Steps))
	}

	want := []struct {
		asset, liability, net string
		side                  types.Side
		units                 string
	}{
		{"0", "0", "0", types.SideTypeNone, "10"},
		{"10", "30", "-20", types.SideTypeSell, "8"},
		{"10", "5", "5", types.SideTypeBuy, "10.5"},
	}
	for i, w := range want {
		step := result.Steps[i]
		if !step.AssetCash.Equal(dec(w.asset)) || !step.LiabilityCash.Equal(dec(w.liability)) || !step.NetCash.Equal(dec(w.net)) {
			t.Errorf("step %s cash = %v/%v/%v, want %s/%s/%s", step.Date, step.AssetCash, step.LiabilityCash, step.NetCash, w.asset, w.liability, w.net)
		}
		if step.Rebalance.Side != w.side {
			t.Errorf("step %s side = %v, want %v", step.Date, step.Rebalance.Side, w.side)
		}
		if v, _ := result.Holdings.Get("BOND", step.Date); !v.Equal(dec(w.units)) {
			t.Errorf("step %s units = %v, want %v", step.Date, v, w.units)
		}
		if v, _ := result.Bank.Get(step.Date); !v.IsZero() {
			t.Errorf("step %s balance = %v, want 0", step.Date, v)
		}
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", result.Warnings)
	}
	if len(result.OutstandingAssetDates) != 0 || len(result.OutstandingLiabilityDates) != 0 {
		t.Errorf("outstanding dates left: %v %v", result.OutstandingAssetDates, result.OutstandingLiabilityDates)
	}
}

func TestSimulate_CarryHoldings(t *testing.T) {
	cfg := NewRunConfig(d("2024-01-01"), d("2027-01-01"), 365).WithCarryHoldings(true)
	result, err := Simulate(mockInputs(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	last := result.Steps[2]
	// 8 units carried from the sell, coupon of 1 per unit, 5 owed: 3 to invest in 80 of value.
	if !last.AssetCash.Equal(dec("8")) {
		t.Errorf("asset cash = %v, want 8", last.AssetCash)
	}
	if !last.Rebalance.Percent.Equal(dec("0.0375")) {
		t.Errorf("percent = %v, want 0.0375", last.Rebalance.Percent)
	}
	if v, _ := result.Holdings.Get("BOND", last.Date); !v.Equal(dec("8.3")) {
		t.Errorf("units = %v, want 8.3", v)
	}
}

func TestSimulate_OverdraftIsCarriedAndReported(t *testing.T) {
	in := mockInputs()
	in.Liabilities[0].Amounts[0] = dec("500")
	core, logs := observer.New(zap.WarnLevel)

	result, err := Simulate(in, NewRunConfig(d("2024-01-01"), d("2027-01-01"), 365), zap.New(core), nil)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	// 2026: 10 - 500 against 100 of value leaves -390. 2027: -390 + 10 - 5 against 100 leaves -285.
	if v, _ := result.Bank.Get(d("2026-01-01")); !v.Equal(dec("-390")) {
		t.Errorf("balance 2026 = %v, want -390", v)
	}
	if v, _ := result.Bank.Get(d("2027-01-01")); !v.Equal(dec("-285")) {
		t.Errorf("balance 2027 = %v, want -285", v)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("got %d warnings, want 2", len(result.Warnings))
	}
	for _, w := range result.Warnings {
		if w.Condition != types.ConditionOverdraftCapped || !errors.Is(w.Err, ErrOverdraftCapped) {
			t.Errorf("warning %+v, want overdraft", w)
		}
	}
	if logs.Len() != 2 {
		t.Errorf("logged %d warnings, want 2", logs.Len())
	}
}

func TestSimulate_OpeningBalance(t *testing.T) {
	cfg := NewRunConfig(d("2024-01-01"), d("2027-01-01"), 365).WithOpeningBalance(dec("100"))
	result, err := Simulate(mockInputs(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	first := result.Steps[0].Rebalance
	if first.Side != types.SideTypeBuy || !first.BalanceBefore.Equal(dec("100")) {
		t.Errorf("first rebalance = %+v, want a buy of the opening balance", first)
	}
}

func TestSimulate_InputErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *Inputs)
		wantErr error
	}{
		{
			name:    "no dates",
			mutate:  func(in *Inputs) { in.Dates = nil },
			wantErr: ErrInvalidDates,
		},
		{
			name:    "unsorted dates",
			mutate:  func(in *Inputs) { in.Dates = dates("2026-01-01", "2025-01-01") },
			wantErr: ErrInvalidDates,
		},
		{
			name:    "liability shape",
			mutate:  func(in *Inputs) { in.Liabilities[0].Amounts = in.Liabilities[0].Amounts[:1] },
			wantErr: ErrShapeMismatch,
		},
		{
			name:    "missing price",
			mutate:  func(in *Inputs) { delete(in.Prices["BOND"], d("2026-01-01")) },
			wantErr: ErrShapeMismatch,
		},
		{
			name: "cashflows without holdings",
			mutate: func(in *Inputs) {
				in.AssetCashflows["OTHER"] = map[types.Date]decimal.Decimal{d("2025-06-01"): dec("1")}
			},
			wantErr: ErrShapeMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := mockInputs()
			tt.mutate(&in)
			_, err := Simulate(in, nil, nil, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Simulate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
