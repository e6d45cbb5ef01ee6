package models

import (
	"sort"
	"time"
)

// Item is a tradable entry in a marketplace registry.
type Item struct {
	ID     string
	Name   string
	Market string // "ps", "xbox", "pc"
}

// PriceSample is one observed price for an item, in whole coins.
type PriceSample struct {
	ItemID   string
	Market   string
	Price    int
	Observed time.Time
}

// PriceSeries holds samples for a single item. Analysis code assumes
// newest-first ordering; call Normalize at the boundary before handing
// a series to the analyzers.
type PriceSeries []PriceSample

// Normalize sorts the series newest-first. Input order is unspecified
// (storage returns ascending, feeds append as they arrive).
func (s PriceSeries) Normalize() PriceSeries {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Observed.After(s[j].Observed)
	})
	return s
}

// Validate rejects samples no analyzer can interpret.
func (s PriceSeries) Validate() error {
	for i := range s {
		if s[i].Price <= 0 {
			return &InvalidSeriesError{Index: i, Reason: "non-positive price"}
		}
		if s[i].Observed.IsZero() {
			return &InvalidSeriesError{Index: i, Reason: "zero timestamp"}
		}
	}
	return nil
}

// Span returns the time covered between the oldest and newest sample.
func (s PriceSeries) Span() time.Duration {
	if len(s) < 2 {
		return 0
	}
	return s[0].Observed.Sub(s[len(s)-1].Observed)
}

// Since returns the samples observed at or after cutoff, preserving order.
func (s PriceSeries) Since(cutoff time.Time) PriceSeries {
	out := make(PriceSeries, 0, len(s))
	for _, p := range s {
		if !p.Observed.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// DailyPrice is a per-calendar-day aggregate of an item's samples.
type DailyPrice struct {
	Day      time.Time // truncated to UTC midnight
	AvgPrice float64
	MinPrice int
	MaxPrice int
	Samples  int
}

// Prices returns just the price values, same order as the series.
func (s PriceSeries) Prices() []int {
	out := make([]int, len(s))
	for i := range s {
		out[i] = s[i].Price
	}
	return out
}
