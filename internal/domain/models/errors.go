package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData marks a series too short for any analysis.
	ErrInsufficientData = errors.New("insufficient price data")

	// ErrNoPriorState is returned by state stores on first observation.
	ErrNoPriorState = errors.New("no prior signal state")

	// ErrContextUnavailable means market context could not be computed
	// (too few items, cold caches). Scorers degrade, they do not fail.
	ErrContextUnavailable = errors.New("market context unavailable")

	// ErrItemUnknown is returned when an item is not in the registry.
	ErrItemUnknown = errors.New("unknown item")

	// ErrStateConflict is returned when a compare-and-swap on signal
	// state lost against a concurrent writer.
	ErrStateConflict = errors.New("signal state modified concurrently")
)

// InvalidSeriesError reports a malformed sample inside a price series.
type InvalidSeriesError struct {
	Index  int
	Reason string
}

func (e *InvalidSeriesError) Error() string {
	return fmt.Sprintf("invalid price series: sample %d: %s", e.Index, e.Reason)
}
