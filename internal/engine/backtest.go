package engine

import (
	"almsim/types"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Inputs are the already assembled tables a run starts from.
type Inputs struct {
	Dates          []types.Date
	AssetCashflows map[string]map[types.Date]decimal.Decimal
	Liabilities    []types.Liability
	Holdings       map[string]map[types.Date]decimal.Decimal
	Prices         map[string]map[types.Date]decimal.Decimal
}

// Step is what happened on one modelling date.
type Step struct {
	Date                  types.Date
	ExpiredAssetDates     []types.Date
	ExpiredLiabilityDates []types.Date
	AssetCash             decimal.Decimal
	LiabilityCash         decimal.Decimal
	NetCash               decimal.Decimal
	Rebalance             types.Rebalance
}

// Warning records a soft condition met while trading. The run carried on.
type Warning struct {
	Date      types.Date
	Condition types.Condition
	Balance   decimal.Decimal
	Err       error
}

type Result struct {
	Steps    []Step
	Warnings []Warning
	Holdings *Table
	Prices   *Table
	Bank     *Series
	// Cashflow dates after the last modelling date, never netted.
	OutstandingAssetDates     []types.Date
	OutstandingLiabilityDates []types.Date
	OutstandingLiabilityCash  decimal.Decimal
}

type simulation struct {
	dates          []types.Date
	openingBalance decimal.Decimal
	carryHoldings  bool
	rebalancer     *Rebalancer
	logger         *zap.Logger
	progress       io.Writer

	assetDates      DateSet
	assetLedger     *Ledger
	liabilityDates  DateSet
	liabilityLedger *Ledger
	holdings        *Table
	prices          *Table
	bank            *Series

	steps    []Step
	warnings []Warning
}

// Simulate runs the cashflow matching loop over in.Dates. Progress is drawn on progress when non-nil.
func Simulate(in Inputs, cfg *RunConfig, logger *zap.Logger, progress io.Writer) (*Result, error) {
	s, err := newSimulation(in, cfg, logger, progress)
	if err != nil {
		return nil, err
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.result(), nil
}

func newSimulation(in Inputs, cfg *RunConfig, logger *zap.Logger, progress io.Writer) (*simulation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = NewRunConfig(types.Date{}, types.Date{}, 0)
	}
	if len(in.Dates) == 0 {
		return nil, fmt.Errorf("no modelling dates: %w", ErrInvalidDates)
	}
	if err := checkAscending(in.Dates); err != nil {
		return nil, err
	}

	var assetGroups [][]types.Date
	for _, flows := range in.AssetCashflows {
		group := make([]types.Date, 0, len(flows))
		for d := range flows {
			group = append(group, d)
		}
		assetGroups = append(assetGroups, group)
	}
	assetDates := UniqueDates(assetGroups...)
	assetLedger, err := BuildLedger(in.AssetCashflows, assetDates.Dates())
	if err != nil {
		return nil, fmt.Errorf("asset ledger: %w", err)
	}

	liabilityLedgers := make([]*Ledger, 0, len(in.Liabilities))
	for _, l := range in.Liabilities {
		ledger, err := LedgerFromLiability(l)
		if err != nil {
			return nil, err
		}
		liabilityLedgers = append(liabilityLedgers, ledger)
	}
	liabilityLedger, err := CombineLedgers(liabilityLedgers...)
	if err != nil {
		return nil, fmt.Errorf("liability ledger: %w", err)
	}
	liabilityDates, err := NewDateSet(liabilityLedger.Dates())
	if err != nil {
		return nil, err
	}

	holdings, err := NewTable(in.Holdings, in.Dates)
	if err != nil {
		return nil, fmt.Errorf("holdings: %w", err)
	}
	prices, err := NewTable(in.Prices, in.Dates)
	if err != nil {
		return nil, fmt.Errorf("prices: %w", err)
	}
	for _, instrument := range assetLedger.Instruments() {
		if _, ok := holdings.Get(instrument, in.Dates[0]); !ok {
			return nil, fmt.Errorf("cashflows for %s but no holdings: %w", instrument, ErrShapeMismatch)
		}
	}
	bank, err := NewSeries(in.Dates)
	if err != nil {
		return nil, err
	}

	return &simulation{
		dates:           append([]types.Date(nil), in.Dates...),
		openingBalance:  cfg.openingBalance,
		carryHoldings:   cfg.carryHoldings,
		rebalancer:      NewRebalancer(cfg.maxBuyPercent),
		logger:          logger,
		progress:        progress,
		assetDates:      assetDates,
		assetLedger:     assetLedger,
		liabilityDates:  liabilityDates,
		liabilityLedger: liabilityLedger,
		holdings:        holdings,
		prices:          prices,
		bank:            bank,
	}, nil
}

func (s *simulation) run() error {
	bar := initProgressBar(len(s.dates), s.progress)
	carried := s.openingBalance
	for i, date := range s.dates {
		if s.carryHoldings && i > 0 {
			prev, err := s.holdings.Column(s.dates[i-1])
			if err != nil {
				return err
			}
			if err := s.holdings.SetColumn(date, prev); err != nil {
				return err
			}
		}

		assets, err := ProcessAssetExpiry(s.assetDates, date, s.assetLedger, s.holdings)
		if err != nil {
			return err
		}
		liabilities, err := ProcessLiabilityExpiry(s.liabilityDates, date, s.liabilityLedger)
		if err != nil {
			return err
		}
		s.assetDates, s.assetLedger = assets.Outstanding, assets.Ledger
		s.liabilityDates, s.liabilityLedger = liabilities.Outstanding, liabilities.Ledger

		net := assets.Cash.Sub(liabilities.Cash)
		if err := s.bank.Set(date, carried.Add(net)); err != nil {
			return err
		}

		rebalance, err := s.rebalancer.Trade(date, s.bank, s.holdings, s.prices)
		if err != nil {
			return fmt.Errorf("trade on %s: %w", date, err)
		}
		if rebalance.Condition != types.ConditionNone {
			s.warn(rebalance)
		}
		carried = rebalance.BalanceAfter

		s.steps = append(s.steps, Step{
			Date:                  date,
			ExpiredAssetDates:     assets.Expired,
			ExpiredLiabilityDates: liabilities.Expired,
			AssetCash:             assets.Cash,
			LiabilityCash:         liabilities.Cash,
			NetCash:               net,
			Rebalance:             rebalance,
		})
		bar.Add(1)
	}
	bar.Finish()
	return nil
}

func (s *simulation) warn(r types.Rebalance) {
	w := Warning{Date: r.Date, Condition: r.Condition, Balance: r.BalanceAfter, Err: conditionErr(r.Condition)}
	s.warnings = append(s.warnings, w)
	s.logger.Warn(w.Err.Error(),
		zap.Stringer("date", r.Date),
		zap.String("condition", string(r.Condition)),
		zap.Stringer("balance", r.BalanceAfter),
		zap.Stringer("marketValue", r.MarketValueAfter),
	)
}

func conditionErr(c types.Condition) error {
	switch c {
	case types.ConditionDegeneratePortfolio:
		return ErrDegeneratePortfolio
	case types.ConditionOverdraftCapped:
		return ErrOverdraftCapped
	case types.ConditionLeverageCapped:
		return ErrLeverageCapped
	}
	return nil
}

func (s *simulation) result() *Result {
	// Dropping every remaining column cannot fail: the ledger and its date set only shrink together.
	owed, _, _ := s.liabilityLedger.NetAndDrop(s.liabilityLedger.Dates(), nil)
	return &Result{
		Steps:                     s.steps,
		Warnings:                  s.warnings,
		Holdings:                  s.holdings,
		Prices:                    s.prices,
		Bank:                      s.bank,
		OutstandingAssetDates:     s.assetDates.Dates(),
		OutstandingLiabilityDates: s.liabilityDates.Dates(),
		OutstandingLiabilityCash:  owed,
	}
}

func initProgressBar(maxTicks int, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Matching cashflows..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
