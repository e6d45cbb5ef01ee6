package pulse

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinSage/internal/domain/models"
	applogger "CoinSage/pkg/logger"
)

var pulseNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

type fakeRegistry struct {
	items []models.Item
	err   error
}

func (f *fakeRegistry) ActiveItems(_ context.Context, _ string) ([]models.Item, error) {
	return f.items, f.err
}

func (f *fakeRegistry) Lookup(_ context.Context, itemID, market string) (*models.Item, error) {
	for _, it := range f.items {
		if it.ID == itemID {
			return &it, nil
		}
	}
	return nil, models.ErrItemUnknown
}

type fakeRangeProvider struct {
	positions map[string]float64
}

func (f *fakeRangeProvider) Summary(_ context.Context, itemID, market string, _ bool) (*models.RangeSummary, error) {
	pos, ok := f.positions[itemID]
	if !ok {
		return nil, errors.New("no range data")
	}
	return &models.RangeSummary{
		ItemID: itemID, Market: market, PositionInRange: pos, DataPoints: 100,
	}, nil
}

func (f *fakeRangeProvider) Warm(_ context.Context, _, _ string) error { return nil }

type fakeTrendFeed struct {
	// percent move over 24h per item; expressed as oldest price 1000
	moves map[string]float64
}

func (f *fakeTrendFeed) Series(_ context.Context, itemID, _ string, _ time.Duration) (models.PriceSeries, error) {
	move, ok := f.moves[itemID]
	if !ok {
		return nil, models.ErrInsufficientData
	}
	oldest := 1000
	newest := int(1000 * (1 + move/100))
	return models.PriceSeries{
		{ItemID: itemID, Market: "ps", Price: newest, Observed: pulseNow},
		{ItemID: itemID, Market: "ps", Price: oldest, Observed: pulseNow.Add(-24 * time.Hour)},
	}, nil
}

func (f *fakeTrendFeed) LatestPrice(_ context.Context, _, _ string) (int, time.Time, error) {
	return 1000, pulseNow, nil
}

func items(ids ...string) []models.Item {
	out := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Item{ID: id, Name: "item " + id, Market: "ps"})
	}
	return out
}

func newTestAnalyzer(reg *fakeRegistry, ranges *fakeRangeProvider, feed *fakeTrendFeed) *Analyzer {
	a := NewAnalyzer(reg, ranges, feed, applogger.Nop(), 10*time.Minute, 25)
	a.SetClock(func() time.Time { return pulseNow })
	return a
}

func TestPulseTooFewItems(t *testing.T) {
	a := newTestAnalyzer(
		&fakeRegistry{items: items("1", "2", "3")},
		&fakeRangeProvider{positions: map[string]float64{"1": 50, "2": 60}},
		&fakeTrendFeed{},
	)
	_, err := a.Current(context.Background(), "ps")
	if !errors.Is(err, models.ErrContextUnavailable) {
		t.Fatalf("err = %v, want ErrContextUnavailable", err)
	}
}

func TestPulseCrashed(t *testing.T) {
	a := newTestAnalyzer(
		&fakeRegistry{items: items("1", "2", "3", "4")},
		&fakeRangeProvider{positions: map[string]float64{"1": 10, "2": 15, "3": 20, "4": 60}},
		&fakeTrendFeed{},
	)
	mc, err := a.Current(context.Background(), "ps")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	// 3 of 4 at lows and average position well under 25
	if mc.Status != models.MarketCrashed {
		t.Fatalf("status = %s, want CRASHED", mc.Status)
	}
	if mc.PctAtLows != 75 {
		t.Fatalf("pct at lows = %.1f, want 75", mc.PctAtLows)
	}
	if mc.ItemsSampled != 4 {
		t.Fatalf("items sampled = %d, want 4", mc.ItemsSampled)
	}
}

func TestPulseCrashing(t *testing.T) {
	a := newTestAnalyzer(
		&fakeRegistry{items: items("1", "2", "3", "4", "5")},
		&fakeRangeProvider{positions: map[string]float64{
			"1": 40, "2": 45, "3": 50, "4": 55, "5": 60,
		}},
		&fakeTrendFeed{moves: map[string]float64{
			"1": -5, "2": -4, "3": -6, "4": -3, "5": 1,
		}},
	)
	mc, err := a.Current(context.Background(), "ps")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if mc.Status != models.MarketCrashing {
		t.Fatalf("status = %s, want CRASHING", mc.Status)
	}
	if mc.PctTrendingDn != 80 {
		t.Fatalf("pct trending down = %.1f, want 80", mc.PctTrendingDn)
	}
}

func TestPulseInflated(t *testing.T) {
	a := newTestAnalyzer(
		&fakeRegistry{items: items("1", "2", "3", "4")},
		&fakeRangeProvider{positions: map[string]float64{"1": 80, "2": 85, "3": 60, "4": 65}},
		&fakeTrendFeed{},
	)
	mc, err := a.Current(context.Background(), "ps")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if mc.Status != models.MarketInflated {
		t.Fatalf("status = %s, want INFLATED", mc.Status)
	}
}

func TestPulseRecovering(t *testing.T) {
	a := newTestAnalyzer(
		&fakeRegistry{items: items("1", "2", "3", "4", "5")},
		&fakeRangeProvider{positions: map[string]float64{
			"1": 30, "2": 35, "3": 40, "4": 35, "5": 32,
		}},
		&fakeTrendFeed{moves: map[string]float64{
			"1": 5, "2": 4, "3": 3, "4": -1, "5": 0,
		}},
	)
	mc, err := a.Current(context.Background(), "ps")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if mc.Status != models.MarketRecovering {
		t.Fatalf("status = %s, want RECOVERING", mc.Status)
	}
	if mc.PctTrendingUp != 60 {
		t.Fatalf("pct trending up = %.1f, want 60", mc.PctTrendingUp)
	}
}

func TestPulseStableAndCached(t *testing.T) {
	reg := &fakeRegistry{items: items("1", "2", "3", "4")}
	a := newTestAnalyzer(
		reg,
		&fakeRangeProvider{positions: map[string]float64{"1": 45, "2": 50, "3": 55, "4": 50}},
		&fakeTrendFeed{},
	)
	mc, err := a.Current(context.Background(), "ps")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if mc.Status != models.MarketStable {
		t.Fatalf("status = %s, want STABLE", mc.Status)
	}

	// second call must come from cache, not hit the registry again
	reg.err = errors.New("registry down")
	again, err := a.Current(context.Background(), "ps")
	if err != nil {
		t.Fatalf("cached Current: %v", err)
	}
	if again != mc {
		t.Fatalf("expected the cached context to be returned")
	}
}

func TestPulseSkipsItemsWithoutRanges(t *testing.T) {
	a := newTestAnalyzer(
		&fakeRegistry{items: items("1", "2", "3", "4", "5")},
		&fakeRangeProvider{positions: map[string]float64{"1": 50, "3": 55, "5": 45}},
		&fakeTrendFeed{},
	)
	mc, err := a.Current(context.Background(), "ps")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if mc.ItemsSampled != 3 {
		t.Fatalf("items sampled = %d, want 3", mc.ItemsSampled)
	}
}
