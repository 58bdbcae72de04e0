package engine

import (
	"almsim/types"
	"fmt"
)

// DatesOfInterest returns start+interval, start+2*interval, ... up to and including end.
func DatesOfInterest(start, end types.Date, intervalDays int) ([]types.Date, error) {
	if intervalDays <= 0 {
		return nil, fmt.Errorf("interval of %d days: %w", intervalDays, ErrInvalidDates)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s before start %s: %w", end, start, ErrInvalidDates)
	}
	var dates []types.Date
	for next := start.AddDays(intervalDays); !next.After(end); next = next.AddDays(intervalDays) {
		dates = append(dates, next)
	}
	return dates, nil
}
