package scoring

import (
	"fmt"

	"CoinSage/internal/domain/models"
)

const sellBase = 50

// SellInput bundles the sell scorer's inputs. BuyPrice is what the
// holder paid; CurrentPrice defaults to the velocity report's price.
type SellInput struct {
	Velocity     *models.VelocityReport
	Market       *models.MarketContext
	Range        *models.RangeSummary
	BuyPrice     int
	CurrentPrice int
}

// Sell scores how urgent selling the item is right now.
func (s *Scorer) Sell(in SellInput) Breakdown {
	b := Breakdown{Components: make(map[string]int)}
	score := sellBase

	current := in.CurrentPrice
	if current == 0 && in.Velocity != nil {
		current = in.Velocity.CurrentPrice
	}

	profit := s.sellProfitComponent(in.BuyPrice, current, &b)
	b.Components["profit"] = profit
	score += profit

	velocity := s.sellVelocityComponent(in.Velocity, &b)
	b.Components["velocity"] = velocity
	score += velocity

	market := s.sellMarketComponent(in.Market, &b)
	b.Components["market"] = market
	score += market

	position := s.sellPositionComponent(in.Range, &b)
	b.Components["position"] = position
	score += position

	b.Score = clamp(score, 0, 100)
	return b
}

// sellProfitComponent nets out the marketplace tax before comparing
// against the acquisition price.
func (s *Scorer) sellProfitComponent(buyPrice, current int, b *Breakdown) int {
	if buyPrice <= 0 || current <= 0 {
		b.Warnings = append(b.Warnings, "no acquisition price, profit ignored")
		return 0
	}
	net := float64(current) * (1 - s.p.TaxRate)
	pct := (net - float64(buyPrice)) / float64(buyPrice) * 100
	b.Reasons = append(b.Reasons, fmt.Sprintf("%.1f%% net of tax", pct))
	switch {
	case pct >= 20:
		return 25
	case pct >= 10:
		return 15
	case pct >= 5:
		return 5
	case pct <= -10:
		b.Warnings = append(b.Warnings, "selling locks in a deep loss")
		return -20
	case pct < 0:
		return -10
	}
	return 0
}

func (s *Scorer) sellVelocityComponent(v *models.VelocityReport, b *Breakdown) int {
	if v == nil {
		b.Warnings = append(b.Warnings, "no velocity data")
		return 0
	}
	switch v.State {
	case models.StateFreefall:
		b.Reasons = append(b.Reasons, "price in freefall, exit fast")
		return 20
	case models.StateFalling:
		return 12
	case models.StateDecelerating:
		return 8
	case models.StateStable:
		return 5
	case models.StateBottoming:
		return -3
	case models.StateRising:
		return -5
	case models.StateSurging:
		b.Reasons = append(b.Reasons, "price surging, let it run")
		return -10
	}
	return 0
}

func (s *Scorer) sellMarketComponent(mc *models.MarketContext, b *Breakdown) int {
	if mc == nil {
		b.Warnings = append(b.Warnings, "market context unavailable")
		return 0
	}
	switch mc.Status {
	case models.MarketCrashing:
		return 15
	case models.MarketInflated:
		b.Reasons = append(b.Reasons, "market inflated, seller's market")
		return 10
	case models.MarketCrashed:
		return -15
	}
	return 0
}

// sellPositionComponent reads the all-time range, not the 30-day one:
// selling near historic highs is rewarded.
func (s *Scorer) sellPositionComponent(r *models.RangeSummary, b *Breakdown) int {
	if r == nil || r.DataPoints < minRangePoints {
		b.Warnings = append(b.Warnings, "limited range history")
		return 0
	}
	switch {
	case r.PositionInRange >= 80:
		b.Reasons = append(b.Reasons, "near the all-time high")
		return 15
	case r.PositionInRange >= 60:
		return 8
	case r.PositionInRange <= 20:
		b.Warnings = append(b.Warnings, "near the all-time low")
		return -15
	}
	return 0
}
