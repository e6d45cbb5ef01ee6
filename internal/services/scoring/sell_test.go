package scoring

import (
	"testing"

	"CoinSage/internal/domain/models"
)

func TestSellClampCeiling(t *testing.T) {
	s := NewScorer(DefaultParams())
	b := s.Sell(SellInput{
		Velocity:     &models.VelocityReport{State: models.StateFreefall, CurrentPrice: 1400},
		Market:       &models.MarketContext{Status: models.MarketCrashing},
		Range:        &models.RangeSummary{DataPoints: 60, PositionInRange: 90},
		BuyPrice:     1000,
		CurrentPrice: 1400,
	})
	// 50 +25 profit +20 freefall +15 market +15 position = 125 before clamping
	if b.Score != 100 {
		t.Fatalf("score = %d, want 100", b.Score)
	}
	if SellCategory(b.Score) != models.CategoryStrongSell {
		t.Fatalf("category = %s, want STRONG_SELL", SellCategory(b.Score))
	}
}

func TestSellDeepLossNearLows(t *testing.T) {
	s := NewScorer(DefaultParams())
	b := s.Sell(SellInput{
		Velocity:     &models.VelocityReport{State: models.StateRising, CurrentPrice: 900},
		Market:       &models.MarketContext{Status: models.MarketCrashed},
		Range:        &models.RangeSummary{DataPoints: 60, PositionInRange: 10},
		BuyPrice:     1000,
		CurrentPrice: 900,
	})
	if b.Score != 0 {
		t.Fatalf("score = %d, want 0", b.Score)
	}
	if SellCategory(b.Score) != models.CategoryHold {
		t.Fatalf("category = %s, want HOLD", SellCategory(b.Score))
	}
}

func TestSellProfitTiers(t *testing.T) {
	cases := []struct {
		name    string
		current int
		want    int
	}{
		{"big win", 1270, 25},
		{"solid win", 1160, 15},
		{"small win", 1110, 5},
		{"breakeven", 1060, 0},
		{"small loss", 1000, -10},
		{"deep loss", 940, -20},
	}
	s := NewScorer(DefaultParams())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := s.Sell(SellInput{BuyPrice: 1000, CurrentPrice: tc.current})
			if got := b.Components["profit"]; got != tc.want {
				t.Fatalf("profit component = %d, want %d", got, tc.want)
			}
			if b.Score != clamp(sellBase+tc.want, 0, 100) {
				t.Fatalf("score = %d with only profit in play", b.Score)
			}
		})
	}
}

func TestSellVelocityMapping(t *testing.T) {
	cases := []struct {
		state models.MomentumState
		want  int
	}{
		{models.StateFreefall, 20},
		{models.StateFalling, 12},
		{models.StateDecelerating, 8},
		{models.StateStable, 5},
		{models.StateBottoming, -3},
		{models.StateRising, -5},
		{models.StateSurging, -10},
		{models.StateChoppy, 0},
	}
	s := NewScorer(DefaultParams())
	for _, tc := range cases {
		t.Run(string(tc.state), func(t *testing.T) {
			b := s.Sell(SellInput{Velocity: &models.VelocityReport{State: tc.state, CurrentPrice: 1000}})
			if got := b.Components["velocity"]; got != tc.want {
				t.Fatalf("velocity component = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSellNoAcquisitionPrice(t *testing.T) {
	s := NewScorer(DefaultParams())
	b := s.Sell(SellInput{CurrentPrice: 1000})
	if got := b.Components["profit"]; got != 0 {
		t.Fatalf("profit component = %d, want 0 without a buy price", got)
	}
	if !hasWarning(b, "no acquisition price, profit ignored") {
		t.Fatalf("missing warning: %v", b.Warnings)
	}
}
