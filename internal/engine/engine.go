package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

type Engine struct {
	db              dataStore
	runConfig       *RunConfig
	reportingConfig *ReportingConfig
	logger          *zap.Logger
	out             io.Writer
}

func NewEngine(runConfig *RunConfig, reportingConfig *ReportingConfig, db dataStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		db:              db,
		runConfig:       runConfig,
		reportingConfig: reportingConfig,
		logger:          logger,
		out:             os.Stdout,
	}
}

// SetOutput redirects the printed report and the progress bar.
func (e *Engine) SetOutput(w io.Writer) {
	e.out = w
}

func (e *Engine) Run(ctx context.Context) (*Result, *Report, error) {
	// Load the data
	inputs, err := e.loadData(ctx)
	if err != nil {
		return nil, nil, err
	}
	e.logger.Info("starting run",
		zap.Stringer("start", e.runConfig.start),
		zap.Stringer("end", e.runConfig.end),
		zap.Int("dates", len(inputs.Dates)),
		zap.Int("instruments", len(inputs.AssetCashflows)),
		zap.Int("liabilities", len(inputs.Liabilities)),
	)

	// Do the run loop
	var progress io.Writer
	if e.reportingConfig.progress {
		progress = e.out
	}
	result, err := Simulate(inputs, e.runConfig, e.logger, progress)
	if err != nil {
		return nil, nil, err
	}

	report := generateReport(result)
	e.logger.Info("run finished",
		zap.Int("warnings", len(result.Warnings)),
		zap.Stringer("finalBalance", report.FinalBalance),
		zap.Stringer("finalMarketValue", report.FinalMarketValue),
	)
	if e.reportingConfig.printReport {
		printReport(e.out, report)
	}
	if e.reportingConfig.stepsFile != "" {
		if err := e.writeStepsCSVFile(e.reportingConfig.stepsFile, result.Steps); err != nil {
			return nil, nil, err
		}
	}
	return result, report, nil
}

func (e *Engine) loadData(ctx context.Context) (Inputs, error) {
	dates, err := DatesOfInterest(e.runConfig.start, e.runConfig.end, e.runConfig.intervalDays)
	if err != nil {
		return Inputs{}, err
	}
	if len(dates) == 0 {
		return Inputs{}, fmt.Errorf("no modelling date between %s and %s: %w", e.runConfig.start, e.runConfig.end, ErrInvalidDates)
	}
	cashflows, err := e.db.GetAssetCashflows(ctx, e.runConfig.start, e.runConfig.end)
	if err != nil {
		return Inputs{}, fmt.Errorf("load asset cashflows: %w", err)
	}
	liabilities, err := e.db.GetLiabilities(ctx, e.runConfig.start, e.runConfig.end)
	if err != nil {
		return Inputs{}, fmt.Errorf("load liabilities: %w", err)
	}
	holdings, err := e.db.GetHoldings(ctx, dates)
	if err != nil {
		return Inputs{}, fmt.Errorf("load holdings: %w", err)
	}
	prices, err := e.db.GetPrices(ctx, dates)
	if err != nil {
		return Inputs{}, fmt.Errorf("load prices: %w", err)
	}
	return Inputs{
		Dates:          dates,
		AssetCashflows: cashflows,
		Liabilities:    liabilities,
		Holdings:       holdings,
		Prices:         prices,
	}, nil
}
