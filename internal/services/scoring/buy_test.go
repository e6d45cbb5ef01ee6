package scoring

import (
	"testing"

	"CoinSage/internal/domain/models"
)

func hasWarning(b Breakdown, want string) bool {
	for _, w := range b.Warnings {
		if w == want {
			return true
		}
	}
	return false
}

func TestBuyBestCase(t *testing.T) {
	s := NewScorer(DefaultParams())
	b := s.Buy(BuyInput{
		Velocity: &models.VelocityReport{
			State:        models.StateStable,
			Readiness:    models.ReadinessReady,
			TimesBounced: 3,
			SupportLevel: 880,
			DaysInTrend:  1,
		},
		Stability: &models.StabilityReport{Stable: true, StableHours: 5, Reason: "stable"},
		Market:    &models.MarketContext{Status: models.MarketCrashed},
		Range:     &models.RangeSummary{DataPoints: 50, BounceFromLow: 5, RecentPosition: 10},
	})
	if b.Score != 100 {
		t.Fatalf("score = %d, want 100", b.Score)
	}
	if got := b.Components["market"]; got != 15 {
		t.Fatalf("market component = %d, want 15", got)
	}
	if got := b.Components["timing"]; got != 30 {
		t.Fatalf("timing component = %d, want 30", got)
	}
	if got := b.Components["position"]; got != 15 {
		t.Fatalf("position component = %d, want 15", got)
	}
	if BuyCategory(b.Score) != models.CategoryStrongBuy {
		t.Fatalf("category = %s, want STRONG_BUY", BuyCategory(b.Score))
	}
}

func TestBuyClampFloor(t *testing.T) {
	s := NewScorer(DefaultParams())
	b := s.Buy(BuyInput{
		Velocity: &models.VelocityReport{
			State:     models.StateFreefall,
			Readiness: models.ReadinessAvoid,
		},
		Market: &models.MarketContext{Status: models.MarketCrashing},
		Range:  &models.RangeSummary{DataPoints: 60, BounceFromLow: 55, RecentPosition: 85},
	})
	if b.Score != 0 {
		t.Fatalf("score = %d, want 0", b.Score)
	}
	if BuyCategory(b.Score) != models.CategoryAvoid {
		t.Fatalf("category = %s, want AVOID", BuyCategory(b.Score))
	}
}

func TestBuyDegradedInputs(t *testing.T) {
	s := NewScorer(DefaultParams())
	b := s.Buy(BuyInput{
		Velocity: &models.VelocityReport{
			State:     models.StateStable,
			Readiness: models.ReadinessReady,
		},
	})
	if b.Score != 62 {
		t.Fatalf("score = %d, want 62", b.Score)
	}
	if !hasWarning(b, "market context unavailable") {
		t.Fatalf("missing market warning: %v", b.Warnings)
	}
	if !hasWarning(b, "limited range history") {
		t.Fatalf("missing range warning: %v", b.Warnings)
	}
	if b.Components["market"] != 0 || b.Components["position"] != 0 {
		t.Fatalf("degraded components should be zero: %v", b.Components)
	}
}

func TestBuyTimingFloorUnderStackedIssues(t *testing.T) {
	// avoid readiness, new lows and a five day downtrend sum past the
	// floor; the component clamps instead of dropping out
	s := NewScorer(DefaultParams())
	b := s.Buy(BuyInput{
		Velocity: &models.VelocityReport{
			State:       models.StateFalling,
			Readiness:   models.ReadinessAvoid,
			DaysInTrend: -5,
		},
		Stability: &models.StabilityReport{Stable: false, Reason: "still making new lows"},
	})
	if got := b.Components["timing"]; got != -30 {
		t.Fatalf("timing component = %d, want -30", got)
	}
	if b.Score != 10 {
		t.Fatalf("score = %d, want 10", b.Score)
	}
	if BuyCategory(b.Score) != models.CategoryAvoid {
		t.Fatalf("category = %s, want AVOID", BuyCategory(b.Score))
	}
	if len(b.Warnings) < 3 {
		t.Fatalf("expected the timing warnings to survive, got %v", b.Warnings)
	}
}

func TestBuyExtendedUptrendWarnsOnly(t *testing.T) {
	s := NewScorer(DefaultParams())
	b := s.Buy(BuyInput{
		Velocity: &models.VelocityReport{
			State:       models.StateStable,
			Readiness:   models.ReadinessReady,
			DaysInTrend: 4,
		},
	})
	if got := b.Components["timing"]; got != 22 {
		t.Fatalf("timing component = %d, want 22", got)
	}
	if !hasWarning(b, "already up 4 days") {
		t.Fatalf("missing uptrend warning: %v", b.Warnings)
	}
}

func TestBuyShallowRangeIgnored(t *testing.T) {
	s := NewScorer(DefaultParams())
	b := s.Buy(BuyInput{
		Velocity: &models.VelocityReport{Readiness: models.ReadinessWait},
		Range:    &models.RangeSummary{DataPoints: 12, RecentPosition: 5},
	})
	if got := b.Components["position"]; got != 0 {
		t.Fatalf("position component = %d, want 0 with %d data points", got, 12)
	}
	if !hasWarning(b, "limited range history") {
		t.Fatalf("missing range warning: %v", b.Warnings)
	}
}
