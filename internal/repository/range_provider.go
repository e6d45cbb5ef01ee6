package repository

import (
	"context"
	"fmt"
	"time"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
	"CoinSage/pkg/cache"
	applogger "CoinSage/pkg/logger"
)

const (
	rangeCacheTTL  = 2 * time.Hour
	recentDays     = 30
	allTimeHorizon = 2 * 365 * 24 * time.Hour
)

// CachedRangeProvider computes range summaries from stored samples and
// serves them through the cache. Scan loops run cache-only so a cold
// key degrades the position component instead of hammering ClickHouse.
type CachedRangeProvider struct {
	history repository.HistoryStore
	feed    repository.PriceFeed
	cache   cache.Service
	l       *applogger.Logger
}

func NewCachedRangeProvider(history repository.HistoryStore, feed repository.PriceFeed, c cache.Service, l *applogger.Logger) *CachedRangeProvider {
	return &CachedRangeProvider{history: history, feed: feed, cache: c, l: l}
}

var _ repository.RangeProvider = (*CachedRangeProvider)(nil)

func rangeKey(itemID, market string) string {
	return cache.Key("range", market, itemID)
}

func (p *CachedRangeProvider) Summary(ctx context.Context, itemID, market string, cacheOnly bool) (*models.RangeSummary, error) {
	var cached models.RangeSummary
	err := p.cache.Get(ctx, rangeKey(itemID, market), &cached)
	if err == nil {
		return &cached, nil
	}
	if err != cache.ErrCacheMiss {
		p.l.Warn("range cache read failed", applogger.String("item", itemID), applogger.Error(err))
	}
	if cacheOnly {
		return nil, cache.ErrCacheMiss
	}
	return p.compute(ctx, itemID, market)
}

func (p *CachedRangeProvider) Warm(ctx context.Context, itemID, market string) error {
	_, err := p.compute(ctx, itemID, market)
	return err
}

func (p *CachedRangeProvider) compute(ctx context.Context, itemID, market string) (*models.RangeSummary, error) {
	current, _, err := p.feed.LatestPrice(ctx, itemID, market)
	if err != nil {
		return nil, fmt.Errorf("range summary %s/%s: %w", market, itemID, err)
	}

	allLow, allHigh, points, err := p.history.Extremes(ctx, itemID, market, time.Now().Add(-allTimeHorizon))
	if err != nil {
		return nil, fmt.Errorf("range summary %s/%s: %w", market, itemID, err)
	}
	recentLow, recentHigh, _, err := p.history.Extremes(ctx, itemID, market, time.Now().AddDate(0, 0, -recentDays))
	if err != nil {
		return nil, fmt.Errorf("range summary %s/%s: %w", market, itemID, err)
	}

	sum := &models.RangeSummary{
		ItemID:      itemID,
		Market:      market,
		AllTimeLow:  allLow,
		AllTimeHigh: allHigh,
		Current:     current,
		RecentLow:   recentLow,
		RecentHigh:  recentHigh,
		DataPoints:  points,
		ComputedAt:  time.Now(),
	}
	sum.PositionInRange = positionIn(current, allLow, allHigh)
	sum.RecentPosition = positionIn(current, recentLow, recentHigh)
	if recentLow > 0 {
		sum.BounceFromLow = float64(current-recentLow) / float64(recentLow) * 100
		sum.VolatilityPct = float64(recentHigh-recentLow) / float64(recentLow) * 100
	}

	if err := p.cache.Set(ctx, rangeKey(itemID, market), sum, rangeCacheTTL); err != nil {
		p.l.Warn("range cache write failed", applogger.String("item", itemID), applogger.Error(err))
	}
	return sum, nil
}

// positionIn maps price onto 0..100 within [low, high]. A flat range
// reads as the midpoint.
func positionIn(price, low, high int) float64 {
	if high <= low {
		return 50
	}
	pos := float64(price-low) / float64(high-low) * 100
	if pos < 0 {
		pos = 0
	}
	if pos > 100 {
		pos = 100
	}
	return pos
}
