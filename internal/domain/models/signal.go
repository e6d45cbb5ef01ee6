package models

import "time"

// Direction separates buy-side and sell-side evaluations.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Category is the final actionable bucket a score maps into.
type Category string

const (
	CategoryStrongBuy  Category = "STRONG_BUY"
	CategoryBuy        Category = "BUY"
	CategoryStrongSell Category = "STRONG_SELL"
	CategorySell       Category = "SELL"
	CategoryHold       Category = "HOLD"
	CategoryWait       Category = "WAIT"
	CategoryAvoid      Category = "AVOID"
)

// SignalResult is the complete outcome of evaluating one item.
type SignalResult struct {
	ItemID    string    `json:"item_id"`
	Market    string    `json:"market"`
	Direction Direction `json:"direction"`
	Score     int       `json:"score"`
	Category  Category  `json:"category"`

	State      MomentumState  `json:"state"`
	Readiness  Readiness      `json:"readiness"`
	Confidence Confidence     `json:"confidence"`
	Components map[string]int `json:"components"`
	Reasons    []string       `json:"reasons"`
	Warnings   []string       `json:"warnings,omitempty"`

	Price     int             `json:"price"`
	Velocity  *VelocityReport `json:"-"`
	Timestamp time.Time       `json:"timestamp"`
}

// AuditRecord is the row appended to the signal audit log for every
// accepted evaluation. Retention is enforced by the storage layer.
type AuditRecord struct {
	ItemID       string
	Market       string
	Direction    Direction
	RawScore     int
	FinalScore   int
	Category     Category
	State        MomentumState
	Readiness    Readiness
	MarketStatus MarketStatus
	Components   map[string]int
	Price        int
	Timestamp    time.Time
}
