package engine

import (
	"errors"
)

// Structural errors abort a run.
var (
	ErrUnknownDate   = errors.New("date not in outstanding set")
	ErrShapeMismatch = errors.New("table shapes do not align")
	ErrInvalidDates  = errors.New("dates must be strictly ascending")
)

// Soft conditions are reported on the run result and the run continues.
var (
	ErrDegeneratePortfolio = errors.New("portfolio has no market value to trade against")
	ErrOverdraftCapped     = errors.New("shortfall exceeds portfolio value, balance remains negative")
	ErrLeverageCapped      = errors.New("surplus exceeds max buy percent, balance remains positive")
)
