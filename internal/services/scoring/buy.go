package scoring

import (
	"fmt"
	"strings"

	"CoinSage/internal/domain/models"
)

const (
	buyBase        = 40
	timingFloor    = -30
	timingCeil     = 30
	minRangePoints = 30
)

// Scorer turns analysis outputs into 0..100 buy and sell scores. It is
// pure: missing optional inputs degrade components to zero with a
// warning instead of failing.
type Scorer struct {
	p Params
}

func NewScorer(p Params) *Scorer {
	if p.TaxRate <= 0 {
		p = DefaultParams()
	}
	return &Scorer{p: p}
}

// BuyInput bundles everything the buy scorer may consult. Velocity is
// required; the rest is optional.
type BuyInput struct {
	Velocity  *models.VelocityReport
	Stability *models.StabilityReport
	Market    *models.MarketContext
	Range     *models.RangeSummary
}

// Breakdown is a scored result before categorization.
type Breakdown struct {
	Score      int
	Components map[string]int
	Reasons    []string
	Warnings   []string
}

// Buy scores how attractive buying the item is right now.
func (s *Scorer) Buy(in BuyInput) Breakdown {
	b := Breakdown{Components: make(map[string]int)}
	score := buyBase

	market := s.buyMarketComponent(in.Market, &b)
	b.Components["market"] = market
	score += market

	timing := s.buyTimingComponent(in.Velocity, in.Stability, &b)
	b.Components["timing"] = timing
	score += timing

	position := s.buyPositionComponent(in.Range, &b)
	b.Components["position"] = position
	score += position

	b.Score = clamp(score, 0, 100)
	return b
}

func (s *Scorer) buyMarketComponent(mc *models.MarketContext, b *Breakdown) int {
	if mc == nil {
		b.Warnings = append(b.Warnings, "market context unavailable")
		return 0
	}
	switch mc.Status {
	case models.MarketCrashed:
		b.Reasons = append(b.Reasons, "market-wide lows, buyer's market")
		return 15
	case models.MarketCrashing:
		b.Warnings = append(b.Warnings, "market still falling")
		return -15
	case models.MarketInflated:
		b.Warnings = append(b.Warnings, "market running hot")
		return -15
	case models.MarketRecovering:
		b.Reasons = append(b.Reasons, "market recovering off its lows")
		return 5
	}
	return 0
}

func (s *Scorer) buyTimingComponent(v *models.VelocityReport, st *models.StabilityReport, b *Breakdown) int {
	pts := 0
	var issues []string

	favorable := false
	switch v.Readiness {
	case models.ReadinessReady:
		pts += 22
		favorable = true
		b.Reasons = append(b.Reasons, fmt.Sprintf("price %s, ready to buy", strings.ToLower(string(v.State))))
	case models.ReadinessAlmost:
		pts += 10
		favorable = true
		b.Reasons = append(b.Reasons, "close to a buyable moment")
	case models.ReadinessWait:
		pts -= 5
		issues = append(issues, "timing not there yet")
	case models.ReadinessAvoid:
		pts -= 25
		issues = append(issues, fmt.Sprintf("price in %s", strings.ToLower(string(v.State))))
	}

	if st != nil {
		if st.StableHours >= 4 && favorable {
			pts += 5
			b.Reasons = append(b.Reasons, fmt.Sprintf("held stable for %dh", st.StableHours))
		}
		if strings.Contains(st.Reason, "new low") {
			pts -= 5
			issues = append(issues, "still printing new lows")
		}
	}

	if v.TimesBounced >= 2 && favorable {
		pts += 3
		b.Reasons = append(b.Reasons, fmt.Sprintf("bounced %d times off %d", v.TimesBounced, v.SupportLevel))
	}
	if v.DaysInTrend < -3 {
		pts -= 3
		issues = append(issues, fmt.Sprintf("falling for %d days", -v.DaysInTrend))
	} else if v.DaysInTrend > 2 {
		// warning only, no point change
		issues = append(issues, fmt.Sprintf("already up %d days", v.DaysInTrend))
	}

	b.Warnings = append(b.Warnings, issues...)
	return clamp(pts, timingFloor, timingCeil)
}

func (s *Scorer) buyPositionComponent(r *models.RangeSummary, b *Breakdown) int {
	if r == nil || r.DataPoints < minRangePoints {
		b.Warnings = append(b.Warnings, "limited range history")
		return 0
	}
	pts := 0
	switch {
	case r.BounceFromLow >= 50:
		pts -= 20
		b.Warnings = append(b.Warnings, fmt.Sprintf("already %.0f%% off the low", r.BounceFromLow))
	case r.BounceFromLow >= 30:
		pts -= 12
	case r.BounceFromLow >= 15:
		pts -= 5
	}
	switch {
	case r.RecentPosition >= 80:
		pts -= 15
		b.Warnings = append(b.Warnings, "near the top of the recent range")
	case r.RecentPosition >= 60:
		pts -= 8
	case r.RecentPosition <= 15:
		pts += 15
		b.Reasons = append(b.Reasons, "at the bottom of the recent range")
	case r.RecentPosition <= 30:
		pts += 8
	case r.RecentPosition <= 45:
		pts += 3
	}
	return pts
}
