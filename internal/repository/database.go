package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Global error declarations.
var (
	ErrNoCashflows     = errors.New("no cashflows found in datasource")
	ErrNoLiabilities   = errors.New("no liabilities found in datasource")
	ErrIncompleteTable = errors.New("missing values in datasource")
)

type cashflowsRepository interface {
	GetInstrumentCashflows(ctx context.Context, arg GetCashflowsParams) ([]InstrumentCashflow, error)
}
type liabilitiesRepository interface {
	GetLiabilityCashflows(ctx context.Context, arg GetCashflowsParams) ([]LiabilityCashflow, error)
}
type positionsRepository interface {
	GetPositions(ctx context.Context, asOf []time.Time) ([]InstrumentValue, error)
	GetPrices(ctx context.Context, asOf []time.Time) ([]InstrumentValue, error)
}

// Database struct that holds the database connection and queries.
type Database struct {
	cashflows   cashflowsRepository
	liabilities liabilitiesRepository
	positions   positionsRepository
	conn        *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	queries := New(conn)
	return &Database{
		cashflows:   queries,
		liabilities: queries,
		positions:   queries,
		conn:        conn,
	}, nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
