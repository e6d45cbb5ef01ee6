package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CoinSage/internal/domain/models"
	domrepo "CoinSage/internal/domain/repository"
	domsvc "CoinSage/internal/domain/service"
)

// SnapshotUseCase assembles the full analytical picture for one item:
// velocity, stability, range summary and market context, gathered
// concurrently. Partial failures land in the Errors map instead of
// failing the whole snapshot.
type SnapshotUseCase struct {
	feed      domrepo.PriceFeed
	ranges    domrepo.RangeProvider
	analyzer  domsvc.MomentumAnalyzer
	stability domsvc.StabilityChecker
	pulse     domsvc.ContextProvider
	timeout   time.Duration
	now       func() time.Time
}

func NewSnapshotUseCase(
	feed domrepo.PriceFeed,
	ranges domrepo.RangeProvider,
	analyzer domsvc.MomentumAnalyzer,
	stability domsvc.StabilityChecker,
	pulse domsvc.ContextProvider,
) *SnapshotUseCase {
	return &SnapshotUseCase{
		feed:      feed,
		ranges:    ranges,
		analyzer:  analyzer,
		stability: stability,
		pulse:     pulse,
		timeout:   10 * time.Second,
		now:       time.Now,
	}
}

type SnapshotParams struct {
	ItemID string
	Market string
	Window time.Duration
}

func (uc *SnapshotUseCase) Get(ctx context.Context, p SnapshotParams) (*models.ItemSnapshot, error) {
	if p.ItemID == "" {
		return nil, fmt.Errorf("item id required")
	}
	if p.Market == "" {
		p.Market = domrepo.DefaultMarket()
	}
	if p.Window <= 0 {
		p.Window = 7 * 24 * time.Hour
	}

	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	now := uc.now()
	res := &models.ItemSnapshot{
		ItemID:    p.ItemID,
		Market:    p.Market,
		Timestamp: now,
		Errors:    map[string]string{},
	}

	series, err := uc.feed.Series(ctx, p.ItemID, p.Market, p.Window)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s/%s: %w", p.Market, p.ItemID, err)
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 4)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analyzer.Analyze(series, now)
		ch <- item{"velocity", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.stability.Check(series, now)
		ch <- item{"stability", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.ranges.Summary(ctx, p.ItemID, p.Market, false)
		ch <- item{"range", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.pulse.Current(ctx, p.Market)
		ch <- item{"context", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "velocity":
			res.Velocity = it.val.(*models.VelocityReport)
		case "stability":
			res.Stability = it.val.(*models.StabilityReport)
		case "range":
			res.Range = it.val.(*models.RangeSummary)
		case "context":
			res.Context = it.val.(*models.MarketContext)
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
