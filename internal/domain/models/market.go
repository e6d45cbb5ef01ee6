package models

import "time"

// MarketStatus is the coarse health classification of a whole market.
type MarketStatus string

const (
	MarketCrashed    MarketStatus = "CRASHED"
	MarketCrashing   MarketStatus = "CRASHING"
	MarketInflated   MarketStatus = "INFLATED"
	MarketRecovering MarketStatus = "RECOVERING"
	MarketStable     MarketStatus = "STABLE"
)

// MarketContext summarizes where the market sits relative to its ranges.
type MarketContext struct {
	Market        string       `json:"market"`
	Status        MarketStatus `json:"status"`
	AvgPosition   float64      `json:"avg_position"` // mean position-in-range across sampled items
	PctAtLows     float64      `json:"pct_at_lows"`  // share of items at <=25% of their range
	PctAtHighs    float64      `json:"pct_at_highs"` // share of items at >=75%
	PctTrendingUp float64      `json:"pct_trending_up"`
	PctTrendingDn float64      `json:"pct_trending_down"`
	HealthScore   int          `json:"health_score"`
	Summary       string       `json:"summary"`
	ItemsSampled  int          `json:"items_sampled"`
	ComputedAt    time.Time    `json:"computed_at"`
}

// RangeSummary places an item's current price inside its historical range.
type RangeSummary struct {
	ItemID          string    `json:"item_id"`
	Market          string    `json:"market"`
	AllTimeLow      int       `json:"all_time_low"`
	AllTimeHigh     int       `json:"all_time_high"`
	Current         int       `json:"current"`
	PositionInRange float64   `json:"position_in_range"` // 0 at the all-time low, 100 at the high
	RecentLow       int       `json:"recent_low"` // 30-day window
	RecentHigh      int       `json:"recent_high"`
	RecentPosition  float64   `json:"recent_position"`
	BounceFromLow   float64   `json:"bounce_from_low"` // % above the recent low
	DataPoints      int       `json:"data_points"`
	VolatilityPct   float64   `json:"volatility_pct"`
	ComputedAt      time.Time `json:"computed_at"`
}

// ItemState is the persisted hysteresis state for one (item, market).
type ItemState struct {
	ItemID    string        `json:"item_id"`
	Market    string        `json:"market"`
	State     MomentumState `json:"state"`
	Readiness Readiness     `json:"readiness"`
	Score     int           `json:"score"`
	Price     int           `json:"price"`
	UpdatedAt time.Time     `json:"updated_at"`
}
