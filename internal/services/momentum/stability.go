package momentum

import (
	"fmt"
	"time"

	"CoinSage/internal/domain/models"
)

// StabilityParams bound the stabilization window. Zero values take the
// defaults below.
type StabilityParams struct {
	MinHours       int
	MaxVariancePct float64
}

const (
	defaultStabilityHours = 6
	defaultMaxVariance    = 5.0
)

// Stability decides whether a price that has been falling is done
// falling, by inspecting the variance and the low structure of the most
// recent hours.
type Stability struct {
	minHours    int
	maxVariance float64
}

func NewStability(p StabilityParams) *Stability {
	if p.MinHours <= 0 {
		p.MinHours = defaultStabilityHours
	}
	if p.MaxVariancePct <= 0 {
		p.MaxVariancePct = defaultMaxVariance
	}
	return &Stability{minHours: p.MinHours, maxVariance: p.MaxVariancePct}
}

// Check reports on the last minHours of the series. The series need not
// be pre-sorted.
func (s *Stability) Check(series models.PriceSeries, now time.Time) (*models.StabilityReport, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	series = series.Normalize()
	window := series.Since(now.Add(-time.Duration(s.minHours) * time.Hour))
	if len(window) < 5 {
		return &models.StabilityReport{Stable: false, Reason: "insufficient recent data"}, nil
	}

	variance := variancePct(window.Prices())
	if variance > s.maxVariance {
		return &models.StabilityReport{
			Stable:      false,
			Reason:      fmt.Sprintf("still volatile (%.1f%% range)", variance),
			VariancePct: variance,
		}, nil
	}

	// window is newest first, so the first half is the newer one
	mid := len(window) / 2
	newerLow := minPrice(window[:mid].Prices())
	olderLow := minPrice(window[mid:].Prices())
	if float64(newerLow) < float64(olderLow)*0.98 {
		return &models.StabilityReport{
			Stable:      false,
			Reason:      "still making new lows",
			VariancePct: variance,
		}, nil
	}

	stableHours := 0
	for h := 1; h <= s.minHours; h++ {
		sub := window.Since(now.Add(-time.Duration(h) * time.Hour))
		if len(sub) >= 2 && variancePct(sub.Prices()) <= s.maxVariance {
			stableHours = h
		}
	}

	return &models.StabilityReport{
		Stable:        true,
		Reason:        fmt.Sprintf("stable (%.1f%% range over %dh)", variance, s.minHours),
		StableHours:   stableHours,
		Consolidating: float64(newerLow) > float64(olderLow)*1.01,
		VariancePct:   variance,
	}, nil
}

func minPrice(prices []int) int {
	if len(prices) == 0 {
		return 0
	}
	lo := prices[0]
	for _, p := range prices {
		if p < lo {
			lo = p
		}
	}
	return lo
}
