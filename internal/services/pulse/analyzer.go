package pulse

import (
	"context"
	"fmt"
	"time"

	"CoinSage/internal/domain/models"
	domrepo "CoinSage/internal/domain/repository"
	domsvc "CoinSage/internal/domain/service"
	svccache "CoinSage/internal/service/cache"
	applogger "CoinSage/pkg/logger"
)

const (
	minSampledItems = 3
	lowThreshold    = 25.0 // position-in-range at or below this counts as "at lows"
	highThreshold   = 75.0
	trendPct        = 2.0 // 24h move beyond this counts as trending
)

// Analyzer computes the market-wide pulse by sampling tracked items
// and aggregating where each sits in its historical range. Results are
// cached per market for the configured TTL.
type Analyzer struct {
	registry domrepo.ItemRegistry
	ranges   domrepo.RangeProvider
	feed     domrepo.PriceFeed
	cache    *svccache.TTLCache
	l        *applogger.Logger

	ttl        time.Duration
	sampleSize int
	now        func() time.Time
}

func NewAnalyzer(
	registry domrepo.ItemRegistry,
	ranges domrepo.RangeProvider,
	feed domrepo.PriceFeed,
	l *applogger.Logger,
	ttl time.Duration,
	sampleSize int,
) *Analyzer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if sampleSize <= 0 {
		sampleSize = 25
	}
	return &Analyzer{
		registry:   registry,
		ranges:     ranges,
		feed:       feed,
		cache:      svccache.NewTTLCache(),
		l:          l,
		ttl:        ttl,
		sampleSize: sampleSize,
		now:        time.Now,
	}
}

// SetClock overrides the clock, for tests.
func (a *Analyzer) SetClock(now func() time.Time) { a.now = now }

// Current returns the cached pulse for the market, recomputing when
// the cached one expired.
func (a *Analyzer) Current(ctx context.Context, market string) (*models.MarketContext, error) {
	if v, ok := a.cache.Get("pulse:" + market); ok {
		if mc, ok2 := v.(*models.MarketContext); ok2 {
			return mc, nil
		}
	}

	mc, err := a.compute(ctx, market)
	if err != nil {
		return nil, err
	}
	a.cache.Set("pulse:"+market, mc, a.ttl)
	return mc, nil
}

func (a *Analyzer) compute(ctx context.Context, market string) (*models.MarketContext, error) {
	items, err := a.registry.ActiveItems(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("pulse %s: %w", market, err)
	}
	if len(items) > a.sampleSize {
		items = items[:a.sampleSize]
	}

	var (
		sampled                  int
		sumPosition              float64
		atLows, atHighs          int
		trendingUp, trendingDown int
	)

	for _, it := range items {
		rng, err := a.ranges.Summary(ctx, it.ID, market, false)
		if err != nil {
			a.l.Debug("pulse: range unavailable",
				applogger.String("item", it.ID), applogger.Error(err))
			continue
		}
		sampled++
		sumPosition += rng.PositionInRange
		if rng.PositionInRange <= lowThreshold {
			atLows++
		}
		if rng.PositionInRange >= highThreshold {
			atHighs++
		}

		switch trend := a.dayChangePct(ctx, it.ID, market); {
		case trend > trendPct:
			trendingUp++
		case trend < -trendPct:
			trendingDown++
		}
	}

	if sampled < minSampledItems {
		return nil, fmt.Errorf("pulse %s: %d items sampled: %w",
			market, sampled, models.ErrContextUnavailable)
	}

	n := float64(sampled)
	mc := &models.MarketContext{
		Market:        market,
		AvgPosition:   sumPosition / n,
		PctAtLows:     float64(atLows) / n * 100,
		PctAtHighs:    float64(atHighs) / n * 100,
		PctTrendingUp: float64(trendingUp) / n * 100,
		PctTrendingDn: float64(trendingDown) / n * 100,
		ItemsSampled:  sampled,
		ComputedAt:    a.now(),
	}
	mc.Status = classify(mc)
	mc.HealthScore = healthScore(mc)
	mc.Summary = summarize(mc)
	return mc, nil
}

// dayChangePct returns the percent move over the last 24 hours, zero
// when the series is too thin to tell.
func (a *Analyzer) dayChangePct(ctx context.Context, itemID, market string) float64 {
	series, err := a.feed.Series(ctx, itemID, market, 24*time.Hour)
	if err != nil || len(series) < 2 {
		return 0
	}
	series.Normalize()
	newest := series[0].Price
	oldest := series[len(series)-1].Price
	if oldest <= 0 {
		return 0
	}
	return float64(newest-oldest) / float64(oldest) * 100
}

func classify(mc *models.MarketContext) models.MarketStatus {
	switch {
	case mc.PctAtLows >= 50 || mc.AvgPosition <= 25:
		return models.MarketCrashed
	case mc.PctTrendingDn >= 60 && mc.AvgPosition > 30:
		return models.MarketCrashing
	case mc.PctAtHighs >= 40 || mc.AvgPosition >= 70:
		return models.MarketInflated
	case mc.AvgPosition <= 40 && mc.PctTrendingUp >= 40:
		return models.MarketRecovering
	default:
		return models.MarketStable
	}
}

func healthScore(mc *models.MarketContext) int {
	score := 50
	switch mc.Status {
	case models.MarketCrashed:
		score -= 30
	case models.MarketCrashing:
		score -= 20
	case models.MarketInflated:
		score -= 10
	case models.MarketRecovering:
		score += 10
	case models.MarketStable:
		score += 15
	}
	// low average position means prices sit near historical floors
	score += int((50 - mc.AvgPosition) / 5)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func summarize(mc *models.MarketContext) string {
	switch mc.Status {
	case models.MarketCrashed:
		return fmt.Sprintf("market at the floor, %.0f%% of items at lows", mc.PctAtLows)
	case models.MarketCrashing:
		return fmt.Sprintf("broad decline, %.0f%% of items trending down", mc.PctTrendingDn)
	case models.MarketInflated:
		return fmt.Sprintf("prices elevated, average position %.0f%% of range", mc.AvgPosition)
	case models.MarketRecovering:
		return fmt.Sprintf("recovering from lows, %.0f%% of items trending up", mc.PctTrendingUp)
	default:
		return fmt.Sprintf("market steady, average position %.0f%% of range", mc.AvgPosition)
	}
}

var _ domsvc.ContextProvider = (*Analyzer)(nil)
