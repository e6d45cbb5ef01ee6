package models

import "time"

// ItemSnapshot is a consolidated view of everything known about an item
// at one instant. Components that failed to compute are absent, with the
// failure noted in Errors keyed by component name.
type ItemSnapshot struct {
	ItemID    string            `json:"item_id"`
	Market    string            `json:"market"`
	Timestamp time.Time         `json:"timestamp"`
	Velocity  *VelocityReport   `json:"velocity,omitempty"`
	Stability *StabilityReport  `json:"stability,omitempty"`
	Range     *RangeSummary     `json:"range,omitempty"`
	Context   *MarketContext    `json:"context,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}
