package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type DBTX interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type GetCashflowsParams struct {
	Starttime time.Time
	Endtime   time.Time
}

type InstrumentCashflow struct {
	Ticker  string
	PayDate time.Time
	Amount  decimal.Decimal
}

type LiabilityCashflow struct {
	LiabilityID string
	PayDate     time.Time
	Amount      decimal.Decimal
}

type InstrumentValue struct {
	Ticker string
	AsOf   time.Time
	Value  decimal.Decimal
}

const getInstrumentCashflows = `-- name: GetInstrumentCashflows :many
SELECT ticker, pay_date, amount
FROM instrument_cashflows
WHERE pay_date >= $1::date AND pay_date <= $2::date
ORDER BY ticker, pay_date
`

func (q *Queries) GetInstrumentCashflows(ctx context.Context, arg GetCashflowsParams) ([]InstrumentCashflow, error) {
	rows, err := q.db.Query(ctx, getInstrumentCashflows, arg.Starttime, arg.Endtime)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InstrumentCashflow
	for rows.Next() {
		var i InstrumentCashflow
		if err := rows.Scan(&i.Ticker, &i.PayDate, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getLiabilityCashflows = `-- name: GetLiabilityCashflows :many
SELECT liability_id, pay_date, amount
FROM liability_cashflows
WHERE pay_date >= $1::date AND pay_date <= $2::date
ORDER BY liability_id, pay_date
`

func (q *Queries) GetLiabilityCashflows(ctx context.Context, arg GetCashflowsParams) ([]LiabilityCashflow, error) {
	rows, err := q.db.Query(ctx, getLiabilityCashflows, arg.Starttime, arg.Endtime)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LiabilityCashflow
	for rows.Next() {
		var i LiabilityCashflow
		if err := rows.Scan(&i.LiabilityID, &i.PayDate, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPositions = `-- name: GetPositions :many
SELECT ticker, as_of, units
FROM positions
WHERE as_of = ANY($1::date[])
ORDER BY ticker, as_of
`

func (q *Queries) GetPositions(ctx context.Context, asOf []time.Time) ([]InstrumentValue, error) {
	return q.instrumentValues(ctx, getPositions, asOf)
}

const getPrices = `-- name: GetPrices :many
SELECT ticker, as_of, price
FROM prices
WHERE as_of = ANY($1::date[])
ORDER BY ticker, as_of
`

func (q *Queries) GetPrices(ctx context.Context, asOf []time.Time) ([]InstrumentValue, error) {
	return q.instrumentValues(ctx, getPrices, asOf)
}

func (q *Queries) instrumentValues(ctx context.Context, query string, asOf []time.Time) ([]InstrumentValue, error) {
	rows, err := q.db.Query(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InstrumentValue
	for rows.Next() {
		var i InstrumentValue
		if err := rows.Scan(&i.Ticker, &i.AsOf, &i.Value); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
