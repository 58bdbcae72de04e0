package engine

import (
	"almsim/types"
	"fmt"
	"sort"
)

// DateSet is the ordered set of cashflow dates still outstanding in a run.
// It is never modified in place: Remove returns a new set.
type DateSet struct {
	dates []types.Date
}

// NewDateSet requires dates to be strictly ascending.
func NewDateSet(dates []types.Date) (DateSet, error) {
	if err := checkAscending(dates); err != nil {
		return DateSet{}, err
	}
	return DateSet{dates: append([]types.Date(nil), dates...)}, nil
}

// UniqueDates sorts and deduplicates the given dates into a set.
func UniqueDates(groups ...[]types.Date) DateSet {
	seen := make(map[types.Date]struct{})
	var out []types.Date
	for _, group := range groups {
		for _, d := range group {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return DateSet{dates: out}
}

// Expired returns every date on or before cutoff, keeping input order.
func Expired(dates []types.Date, cutoff types.Date) []types.Date {
	var out []types.Date
	for _, d := range dates {
		if !d.After(cutoff) {
			out = append(out, d)
		}
	}
	return out
}

func (s DateSet) Expired(cutoff types.Date) []types.Date {
	return Expired(s.dates, cutoff)
}

// Remove returns a copy of s without the given dates.
func (s DateSet) Remove(dates ...types.Date) (DateSet, error) {
	drop := make(map[types.Date]struct{}, len(dates))
	for _, d := range dates {
		if !s.Contains(d) {
			return DateSet{}, fmt.Errorf("remove %s: %w", d, ErrUnknownDate)
		}
		drop[d] = struct{}{}
	}
	out := make([]types.Date, 0, len(s.dates))
	for _, d := range s.dates {
		if _, ok := drop[d]; !ok {
			out = append(out, d)
		}
	}
	return DateSet{dates: out}, nil
}

func (s DateSet) Contains(d types.Date) bool {
	i := sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(d) })
	return i < len(s.dates) && s.dates[i] == d
}

func (s DateSet) Len() int { return len(s.dates) }

// Dates returns a copy of the outstanding dates in ascending order.
func (s DateSet) Dates() []types.Date {
	return append([]types.Date(nil), s.dates...)
}

func checkAscending(dates []types.Date) error {
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			return fmt.Errorf("%s followed by %s: %w", dates[i-1], dates[i], ErrInvalidDates)
		}
	}
	return nil
}
