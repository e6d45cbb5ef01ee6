package models

import "time"

// MomentumState classifies the short-term trajectory of an item's price.
type MomentumState string

const (
	StateFreefall     MomentumState = "FREEFALL"
	StateFalling      MomentumState = "FALLING"
	StateDecelerating MomentumState = "DECELERATING"
	StateBottoming    MomentumState = "BOTTOMING"
	StateStable       MomentumState = "STABLE"
	StateRising       MomentumState = "RISING"
	StateSurging      MomentumState = "SURGING"
	StateChoppy       MomentumState = "CHOPPY"
	StateUnknown      MomentumState = "UNKNOWN"
)

// Readiness answers "is this a good moment to buy" on an ordinal ladder.
type Readiness string

const (
	ReadinessAvoid  Readiness = "AVOID"
	ReadinessWait   Readiness = "WAIT"
	ReadinessAlmost Readiness = "ALMOST"
	ReadinessReady  Readiness = "READY"
)

// Ordinal maps readiness onto its ladder position. Unknown values map
// to the WAIT rung.
func (r Readiness) Ordinal() int {
	switch r {
	case ReadinessAvoid:
		return 0
	case ReadinessWait:
		return 1
	case ReadinessAlmost:
		return 2
	case ReadinessReady:
		return 3
	}
	return 1
}

// Confidence labels how much the data itself can be trusted.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// VelocityReport is the full output of momentum analysis for one item.
type VelocityReport struct {
	ItemID       string    `json:"item_id"`
	Market       string    `json:"market"`
	CurrentPrice int       `json:"current_price"`
	Timestamp    time.Time `json:"timestamp"`

	// percent per hour over each matched window; zero when unbound
	V1h  float64 `json:"v_1h"`
	V2h  float64 `json:"v_2h"`
	V4h  float64 `json:"v_4h"`
	V6h  float64 `json:"v_6h"`
	V12h float64 `json:"v_12h"`
	V24h float64 `json:"v_24h"`
	V48h float64 `json:"v_48h"`

	Acceleration  float64 `json:"acceleration"`
	Decelerating  bool    `json:"decelerating"`
	DecelHours    int     `json:"decel_hours"`
	HoursSinceLow float64 `json:"hours_since_low"`
	DaysInTrend   int     `json:"days_in_trend"` // signed: negative while falling

	SupportLevel  int  `json:"support_level"`
	TimesBounced  int  `json:"times_bounced"`
	HasHigherLows bool `json:"has_higher_lows"`

	State           MomentumState `json:"state"`
	Readiness       Readiness     `json:"readiness"`
	Confidence      Confidence    `json:"confidence"`
	ConfidenceScore int           `json:"confidence_score"`
	DataPoints      int           `json:"data_points"`
	SpanHours       float64       `json:"span_hours"`
	VariancePct     float64       `json:"variance_pct"`
}

// StabilityReport is the output of the stabilization check.
type StabilityReport struct {
	Stable        bool    `json:"stable"`
	Reason        string  `json:"reason"`
	StableHours   int     `json:"stable_hours"`
	Consolidating bool    `json:"consolidating"`
	VariancePct   float64 `json:"variance_pct"`
}
