package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/repository"
	"CoinSage/internal/services/momentum"
	"CoinSage/internal/services/scoring"
	applogger "CoinSage/pkg/logger"
)

var engineNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

type fakeFeed struct {
	series models.PriceSeries
	err    error
}

func (f *fakeFeed) Series(_ context.Context, _, _ string, _ time.Duration) (models.PriceSeries, error) {
	return f.series, f.err
}

func (f *fakeFeed) LatestPrice(_ context.Context, _, _ string) (int, time.Time, error) {
	if len(f.series) == 0 {
		return 0, time.Time{}, models.ErrInsufficientData
	}
	return f.series[0].Price, f.series[0].Observed, nil
}

type fakeRanges struct {
	rng *models.RangeSummary
	err error
}

func (f *fakeRanges) Summary(_ context.Context, _, _ string, _ bool) (*models.RangeSummary, error) {
	return f.rng, f.err
}

func (f *fakeRanges) Warm(_ context.Context, _, _ string) error { return f.err }

type fakePulse struct {
	mc  *models.MarketContext
	err error
}

func (f *fakePulse) Current(_ context.Context, _ string) (*models.MarketContext, error) {
	return f.mc, f.err
}

type fakeAudit struct {
	records []*models.AuditRecord
	err     error
}

func (f *fakeAudit) Append(_ context.Context, rec *models.AuditRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordEvaluation(_, _ string)    {}
func (nopMetrics) RecordScore(_ string, _ float64) {}
func (nopMetrics) RecordError(_ string)            {}
func (nopMetrics) RecordLastPrice(_ string, _ float64) {}
func (nopMetrics) RecordLatency(_ string, _ float64)   {}
func (nopMetrics) RecordSampleStored(_, _ string)      {}

func testSeries(points ...[2]float64) models.PriceSeries {
	out := make(models.PriceSeries, 0, len(points))
	for _, p := range points {
		out = append(out, models.PriceSample{
			ItemID:   "158023",
			Market:   "ps",
			Price:    int(p[1]),
			Observed: engineNow.Add(-time.Duration(p[0] * float64(time.Hour))),
		})
	}
	return out
}

func newTestEngine(feed *fakeFeed, ranges *fakeRanges, pulse *fakePulse, audit *fakeAudit) (*SignalEngine, *repository.MemoryStateStore) {
	states := repository.NewMemoryStateStore()
	e := NewSignalEngine(EngineDeps{
		Feed:      feed,
		Ranges:    ranges,
		States:    states,
		Audit:     audit,
		Analyzer:  momentum.NewAnalyzer(),
		Stability: momentum.NewStability(momentum.StabilityParams{}),
		Pulse:     pulse,
		Scorer:    scoring.NewScorer(scoring.DefaultParams()),
		Hyst:      scoring.NewHysteresis(scoring.DefaultParams()),
		Metrics:   nopMetrics{},
		Logger:    applogger.Nop(),
	}, 7*24*time.Hour, false)
	e.SetClock(func() time.Time { return engineNow })
	return e, states
}

func TestScoreBuyInsufficientData(t *testing.T) {
	feed := &fakeFeed{series: testSeries([2]float64{0, 1000}, [2]float64{1, 1000})}
	audit := &fakeAudit{}
	e, states := newTestEngine(feed, &fakeRanges{}, &fakePulse{}, audit)

	res, err := e.ScoreBuy(context.Background(), "158023", "ps")
	if err != nil {
		t.Fatalf("ScoreBuy: %v", err)
	}
	if res.Score != 0 {
		t.Fatalf("score = %d, want 0", res.Score)
	}
	if res.Category != models.CategoryWait {
		t.Fatalf("category = %s, want WAIT", res.Category)
	}
	if res.State != models.StateUnknown {
		t.Fatalf("state = %s, want UNKNOWN", res.State)
	}
	if len(audit.records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(audit.records))
	}
	if audit.records[0].FinalScore != 0 || audit.records[0].Category != models.CategoryWait {
		t.Fatalf("degenerate audit record = %+v", audit.records[0])
	}
	if _, err := states.Get(context.Background(), "158023", "ps"); !errors.Is(err, models.ErrNoPriorState) {
		t.Fatalf("degenerate result must not persist state, got err %v", err)
	}
}

func TestScoreSellInsufficientData(t *testing.T) {
	feed := &fakeFeed{series: testSeries([2]float64{0, 1000})}
	e, _ := newTestEngine(feed, &fakeRanges{}, &fakePulse{}, &fakeAudit{})

	res, err := e.ScoreSell(context.Background(), "158023", "ps", 900)
	if err != nil {
		t.Fatalf("ScoreSell: %v", err)
	}
	if res.Category != models.CategoryHold {
		t.Fatalf("category = %s, want HOLD", res.Category)
	}
	if res.Score != 0 {
		t.Fatalf("score = %d, want 0", res.Score)
	}
}

func TestScoreBuyInvalidSeries(t *testing.T) {
	feed := &fakeFeed{series: testSeries(
		[2]float64{0, 1000}, [2]float64{1, 0}, [2]float64{2, 1000},
	)}
	e, _ := newTestEngine(feed, &fakeRanges{}, &fakePulse{}, &fakeAudit{})

	_, err := e.ScoreBuy(context.Background(), "158023", "ps")
	var invalid *models.InvalidSeriesError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidSeriesError", err)
	}
}

func TestScoreBuyPersistsStateAndAudits(t *testing.T) {
	// near-flat series with a recent low keeps readiness at READY
	feed := &fakeFeed{series: testSeries(
		[2]float64{0, 1000}, [2]float64{0.9, 1001}, [2]float64{1.5, 1000},
		[2]float64{2.8, 1002}, [2]float64{5.0, 999}, [2]float64{7.0, 1001},
	)}
	audit := &fakeAudit{}
	e, states := newTestEngine(feed, &fakeRanges{}, &fakePulse{}, audit)

	res, err := e.ScoreBuy(context.Background(), "158023", "ps")
	if err != nil {
		t.Fatalf("ScoreBuy: %v", err)
	}
	if res.State != models.StateStable {
		t.Fatalf("state = %s, want STABLE", res.State)
	}
	if res.Readiness != models.ReadinessReady {
		t.Fatalf("readiness = %s, want READY", res.Readiness)
	}

	st, err := states.Get(context.Background(), "158023", "ps")
	if err != nil {
		t.Fatalf("state not persisted: %v", err)
	}
	if st.Score != res.Score || st.Readiness != res.Readiness {
		t.Fatalf("stored state %+v does not match result score %d readiness %s",
			st, res.Score, res.Readiness)
	}
	if len(audit.records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(audit.records))
	}
	if audit.records[0].Direction != models.DirectionBuy {
		t.Fatalf("audit direction = %s, want buy", audit.records[0].Direction)
	}
}

func TestScoreBuyAuditFailureSwallowed(t *testing.T) {
	feed := &fakeFeed{series: testSeries(
		[2]float64{0, 1000}, [2]float64{0.9, 1001}, [2]float64{1.5, 1000},
		[2]float64{2.8, 1002}, [2]float64{5.0, 999}, [2]float64{7.0, 1001},
	)}
	audit := &fakeAudit{err: errors.New("clickhouse down")}
	e, _ := newTestEngine(feed, &fakeRanges{}, &fakePulse{}, audit)

	res, err := e.ScoreBuy(context.Background(), "158023", "ps")
	if err != nil {
		t.Fatalf("audit failure must not fail the evaluation: %v", err)
	}
	if res == nil || res.Score == 0 {
		t.Fatalf("expected a real result despite audit failure, got %+v", res)
	}
}

func TestScoreBuyRejectedKeepsStoredState(t *testing.T) {
	feed := &fakeFeed{series: testSeries(
		[2]float64{0, 1000}, [2]float64{0.9, 1001}, [2]float64{1.5, 1000},
		[2]float64{2.8, 1002}, [2]float64{5.0, 999}, [2]float64{7.0, 1001},
	)}
	audit := &fakeAudit{}
	e, states := newTestEngine(feed, &fakeRanges{}, &fakePulse{}, audit)

	// prior ALMOST with a score the fresh one cannot beat by the margin
	prior := &models.ItemState{
		ItemID:    "158023",
		Market:    "ps",
		State:     models.StateBottoming,
		Readiness: models.ReadinessAlmost,
		Score:     70,
		Price:     1000,
		UpdatedAt: engineNow.Add(-3 * time.Hour),
	}
	if err := states.Put(context.Background(), prior); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	res, err := e.ScoreBuy(context.Background(), "158023", "ps")
	if err != nil {
		t.Fatalf("ScoreBuy: %v", err)
	}
	if res.Readiness != models.ReadinessAlmost || res.Score != 70 {
		t.Fatalf("expected prior tuple re-emitted, got readiness %s score %d",
			res.Readiness, res.Score)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("rejected decision should carry a warning")
	}
	if len(audit.records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(audit.records))
	}
	if audit.records[0].RawScore != 67 || audit.records[0].FinalScore != 70 {
		t.Fatalf("audit raw/final = %d/%d, want 67/70",
			audit.records[0].RawScore, audit.records[0].FinalScore)
	}

	st, err := states.Get(context.Background(), "158023", "ps")
	if err != nil {
		t.Fatalf("state read: %v", err)
	}
	if !st.UpdatedAt.Equal(prior.UpdatedAt) {
		t.Fatalf("stored state changed on a rejected decision")
	}
}

func TestScoreBuyHourlySamplesLandStable(t *testing.T) {
	// eight hourly samples drifting up off a 4h-old low: near-flat
	// velocities, stable state, low recent enough to buy
	feed := &fakeFeed{series: testSeries(
		[2]float64{0, 998}, [2]float64{1, 997}, [2]float64{2, 994},
		[2]float64{3, 992}, [2]float64{4, 990}, [2]float64{5, 995},
		[2]float64{6, 1000}, [2]float64{7, 1000},
	)}
	audit := &fakeAudit{}
	e, _ := newTestEngine(feed, &fakeRanges{}, &fakePulse{}, audit)

	res, err := e.ScoreBuy(context.Background(), "158023", "ps")
	if err != nil {
		t.Fatalf("ScoreBuy: %v", err)
	}
	if v := res.Velocity.V1h; v < 0.05 || v > 0.15 {
		t.Fatalf("v1h = %.4f, want ~0.10", v)
	}
	if v := res.Velocity.V2h; v < 0.05 || v > 0.15 {
		t.Fatalf("v2h = %.4f, want ~0.10", v)
	}
	if res.State != models.StateStable {
		t.Fatalf("state = %s, want STABLE", res.State)
	}
	if res.Readiness != models.ReadinessReady {
		t.Fatalf("readiness = %s, want READY", res.Readiness)
	}
	// base 40 + timing 22 + 5 for holding stable, market and range absent
	if res.Score != 67 {
		t.Fatalf("score = %d, want 67", res.Score)
	}
	if res.Category != models.CategoryBuy {
		t.Fatalf("category = %s, want BUY", res.Category)
	}
}

func TestScoreSellStateless(t *testing.T) {
	feed := &fakeFeed{series: testSeries(
		[2]float64{0, 1400}, [2]float64{0.9, 1430}, [2]float64{1.5, 1460},
		[2]float64{2.8, 1500}, [2]float64{5.0, 1550},
	)}
	audit := &fakeAudit{}
	e, states := newTestEngine(feed, &fakeRanges{
		rng: &models.RangeSummary{
			ItemID: "158023", Market: "ps",
			AllTimeLow: 900, AllTimeHigh: 1500, Current: 1400,
			PositionInRange: 83, DataPoints: 120,
		},
	}, &fakePulse{mc: &models.MarketContext{Market: "ps", Status: models.MarketInflated}}, audit)

	res, err := e.ScoreSell(context.Background(), "158023", "ps", 1000)
	if err != nil {
		t.Fatalf("ScoreSell: %v", err)
	}
	// falling fast off a high position with big profit: a clear sell
	if res.Score < 60 {
		t.Fatalf("score = %d, want >= 60", res.Score)
	}
	if res.Category != models.CategorySell && res.Category != models.CategoryStrongSell {
		t.Fatalf("category = %s, want SELL or STRONG_SELL", res.Category)
	}
	if len(audit.records) != 1 {
		t.Fatalf("sell evaluations are always audited, got %d", len(audit.records))
	}
	if _, err := states.Get(context.Background(), "158023", "ps"); !errors.Is(err, models.ErrNoPriorState) {
		t.Fatalf("sell must not touch hysteresis state")
	}
}

func TestScoreBuyMissingContextDegradesGracefully(t *testing.T) {
	feed := &fakeFeed{series: testSeries(
		[2]float64{0, 1000}, [2]float64{0.9, 1001}, [2]float64{1.5, 1000},
		[2]float64{2.8, 1002}, [2]float64{5.0, 999}, [2]float64{7.0, 1001},
	)}
	e, _ := newTestEngine(feed,
		&fakeRanges{err: errors.New("cache miss")},
		&fakePulse{err: models.ErrContextUnavailable},
		&fakeAudit{})

	res, err := e.ScoreBuy(context.Background(), "158023", "ps")
	if err != nil {
		t.Fatalf("ScoreBuy: %v", err)
	}
	if res.Components["market"] != 0 || res.Components["position"] != 0 {
		t.Fatalf("missing context must zero market and position components, got %+v",
			res.Components)
	}
	if len(res.Warnings) < 2 {
		t.Fatalf("expected warnings for missing context and range, got %v", res.Warnings)
	}
}
