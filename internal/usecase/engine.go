package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CoinSage/internal/domain/models"
	domrepo "CoinSage/internal/domain/repository"
	domsvc "CoinSage/internal/domain/service"
	"CoinSage/internal/services/scoring"
	applogger "CoinSage/pkg/logger"
)

const casAttempts = 3

// SignalEngine orchestrates one evaluation: series, velocity,
// stability, market context and range summary feed the scorer, buy
// results then pass through hysteresis before persisting.
type SignalEngine struct {
	feed      domrepo.PriceFeed
	ranges    domrepo.RangeProvider
	states    domrepo.StateStore
	audit     domrepo.AuditLog
	analyzer  domsvc.MomentumAnalyzer
	stability domsvc.StabilityChecker
	pulse     domsvc.ContextProvider
	scorer    *scoring.Scorer
	hyst      *scoring.Hysteresis
	metrics   domrepo.Metrics
	l         *applogger.Logger

	window    time.Duration
	cacheOnly bool
	now       func() time.Time
}

// EngineDeps wires the engine's collaborators.
type EngineDeps struct {
	Feed      domrepo.PriceFeed
	Ranges    domrepo.RangeProvider
	States    domrepo.StateStore
	Audit     domrepo.AuditLog
	Analyzer  domsvc.MomentumAnalyzer
	Stability domsvc.StabilityChecker
	Pulse     domsvc.ContextProvider
	Scorer    *scoring.Scorer
	Hyst      *scoring.Hysteresis
	Metrics   domrepo.Metrics
	Logger    *applogger.Logger
}

// NewSignalEngine creates the engine. window bounds the series fetch;
// cacheOnly makes range summaries never touch storage on the hot path.
func NewSignalEngine(d EngineDeps, window time.Duration, cacheOnly bool) *SignalEngine {
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return &SignalEngine{
		feed:      d.Feed,
		ranges:    d.Ranges,
		states:    d.States,
		audit:     d.Audit,
		analyzer:  d.Analyzer,
		stability: d.Stability,
		pulse:     d.Pulse,
		scorer:    d.Scorer,
		hyst:      d.Hyst,
		metrics:   d.Metrics,
		l:         d.Logger,
		window:    window,
		cacheOnly: cacheOnly,
		now:       time.Now,
	}
}

// SetClock overrides the evaluation clock, for tests.
func (e *SignalEngine) SetClock(now func() time.Time) { e.now = now }

// ScoreBuy evaluates how attractive buying the item is right now.
func (e *SignalEngine) ScoreBuy(ctx context.Context, itemID, market string) (*models.SignalResult, error) {
	start := time.Now()
	now := e.now()

	vel, stab, degraded, err := e.analyze(ctx, itemID, market, now)
	if err != nil {
		return nil, err
	}
	if degraded != nil {
		res := e.degenerate(itemID, market, models.DirectionBuy, now, degraded)
		e.appendAudit(ctx, res, 0, nil)
		return res, nil
	}

	mc := e.marketContext(ctx, market)
	rng := e.rangeSummary(ctx, itemID, market)

	bd := e.scorer.Buy(scoring.BuyInput{
		Velocity:  vel,
		Stability: stab,
		Market:    mc,
		Range:     rng,
	})

	decision := e.applyHysteresis(ctx, itemID, market, vel, bd.Score, now)
	category := scoring.BuyCategory(decision.Score)

	res := &models.SignalResult{
		ItemID:     itemID,
		Market:     market,
		Direction:  models.DirectionBuy,
		Score:      decision.Score,
		Category:   category,
		State:      decision.State,
		Readiness:  decision.Readiness,
		Confidence: vel.Confidence,
		Components: bd.Components,
		Reasons:    bd.Reasons,
		Warnings:   bd.Warnings,
		Price:      vel.CurrentPrice,
		Velocity:   vel,
		Timestamp:  now,
	}
	if !decision.Accepted {
		res.Warnings = append(res.Warnings, "holding previous signal: "+decision.Reason)
	}

	e.record(models.DirectionBuy, category, decision.Score, start)
	// rejected decisions are audited too, the raw vs final gap is the
	// diagnostic signal there
	e.appendAudit(ctx, res, bd.Score, mc)
	return res, nil
}

// ScoreSell evaluates how urgent selling is, given the acquisition
// price. Sell results are stateless: hysteresis does not apply.
func (e *SignalEngine) ScoreSell(ctx context.Context, itemID, market string, buyPrice int) (*models.SignalResult, error) {
	start := time.Now()
	now := e.now()

	vel, _, degraded, err := e.analyze(ctx, itemID, market, now)
	if err != nil {
		return nil, err
	}
	if degraded != nil {
		res := e.degenerate(itemID, market, models.DirectionSell, now, degraded)
		e.appendAudit(ctx, res, 0, nil)
		return res, nil
	}

	mc := e.marketContext(ctx, market)
	rng := e.rangeSummary(ctx, itemID, market)

	bd := e.scorer.Sell(scoring.SellInput{
		Velocity:     vel,
		Market:       mc,
		Range:        rng,
		BuyPrice:     buyPrice,
		CurrentPrice: vel.CurrentPrice,
	})
	category := scoring.SellCategory(bd.Score)

	res := &models.SignalResult{
		ItemID:     itemID,
		Market:     market,
		Direction:  models.DirectionSell,
		Score:      bd.Score,
		Category:   category,
		State:      vel.State,
		Readiness:  vel.Readiness,
		Confidence: vel.Confidence,
		Components: bd.Components,
		Reasons:    bd.Reasons,
		Warnings:   bd.Warnings,
		Price:      vel.CurrentPrice,
		Velocity:   vel,
		Timestamp:  now,
	}

	e.record(models.DirectionSell, category, bd.Score, start)
	e.appendAudit(ctx, res, bd.Score, mc)
	return res, nil
}

// analyze fetches the series and runs the analyzers. A too-short
// series comes back as a degraded marker, not an error.
func (e *SignalEngine) analyze(ctx context.Context, itemID, market string, now time.Time) (*models.VelocityReport, *models.StabilityReport, error, error) {
	series, err := e.feed.Series(ctx, itemID, market, e.window)
	if err != nil {
		e.metrics.RecordError("series_fetch")
		return nil, nil, nil, fmt.Errorf("score %s/%s: %w", market, itemID, err)
	}

	vel, err := e.analyzer.Analyze(series, now)
	if errors.Is(err, models.ErrInsufficientData) {
		return nil, nil, err, nil
	}
	if err != nil {
		e.metrics.RecordError("invalid_series")
		return nil, nil, nil, fmt.Errorf("score %s/%s: %w", market, itemID, err)
	}

	stab, err := e.stability.Check(series, now)
	if err != nil {
		// analyzer already validated the series, this should not happen
		e.l.Warn("stability check failed", applogger.String("item", itemID), applogger.Error(err))
		stab = nil
	}
	return vel, stab, nil, nil
}

func (e *SignalEngine) marketContext(ctx context.Context, market string) *models.MarketContext {
	mc, err := e.pulse.Current(ctx, market)
	if err != nil {
		e.l.Debug("market context unavailable", applogger.String("market", market), applogger.Error(err))
		return nil
	}
	return mc
}

func (e *SignalEngine) rangeSummary(ctx context.Context, itemID, market string) *models.RangeSummary {
	rng, err := e.ranges.Summary(ctx, itemID, market, e.cacheOnly)
	if err != nil {
		e.l.Debug("range summary unavailable", applogger.String("item", itemID), applogger.Error(err))
		return nil
	}
	return rng
}

// applyHysteresis runs the state machine against the stored state and
// persists accepted decisions with compare-and-swap. A persistent
// conflict is logged and the computed decision still returned.
func (e *SignalEngine) applyHysteresis(ctx context.Context, itemID, market string, vel *models.VelocityReport, score int, now time.Time) scoring.Decision {
	fresh := scoring.Evaluation{
		State:     vel.State,
		Readiness: vel.Readiness,
		Score:     score,
		Price:     vel.CurrentPrice,
	}

	var decision scoring.Decision
	for attempt := 0; attempt < casAttempts; attempt++ {
		prior, err := e.states.Get(ctx, itemID, market)
		if err != nil && !errors.Is(err, models.ErrNoPriorState) {
			e.l.Warn("state read failed, scoring without prior",
				applogger.String("item", itemID), applogger.Error(err))
			e.metrics.RecordError("state_read")
			prior = nil
		}

		decision = e.hyst.Apply(prior, fresh, now)
		if !decision.Accepted {
			return decision
		}

		next := &models.ItemState{
			ItemID:    itemID,
			Market:    market,
			State:     decision.State,
			Readiness: decision.Readiness,
			Score:     decision.Score,
			Price:     vel.CurrentPrice,
			UpdatedAt: now,
		}
		ok, err := e.states.CompareAndSwap(ctx, prior, next)
		if err != nil {
			e.l.Warn("state write failed", applogger.String("item", itemID), applogger.Error(err))
			e.metrics.RecordError("state_write")
			return decision
		}
		if ok {
			return decision
		}
		// lost the race, re-read and re-apply
	}

	e.l.Warn("state conflict persisted, returning unpersisted decision",
		applogger.String("item", itemID), applogger.String("market", market))
	e.metrics.RecordError("state_conflict")
	return decision
}

func (e *SignalEngine) degenerate(itemID, market string, dir models.Direction, now time.Time, cause error) *models.SignalResult {
	category := models.CategoryWait
	if dir == models.DirectionSell {
		category = models.CategoryHold
	}
	return &models.SignalResult{
		ItemID:     itemID,
		Market:     market,
		Direction:  dir,
		Score:      0,
		Category:   category,
		State:      models.StateUnknown,
		Readiness:  models.ReadinessWait,
		Confidence: models.ConfidenceLow,
		Components: map[string]int{},
		Reasons:    []string{"insufficient data"},
		Warnings:   []string{cause.Error()},
		Timestamp:  now,
	}
}

func (e *SignalEngine) record(dir models.Direction, category models.Category, score int, start time.Time) {
	e.metrics.RecordEvaluation(string(dir), string(category))
	e.metrics.RecordScore(string(dir), float64(score))
	e.metrics.RecordLatency("score_"+string(dir), time.Since(start).Seconds())
}

// appendAudit is best-effort: a failed append must never fail the
// evaluation.
func (e *SignalEngine) appendAudit(ctx context.Context, res *models.SignalResult, rawScore int, mc *models.MarketContext) {
	status := models.MarketStatus("")
	if mc != nil {
		status = mc.Status
	}
	rec := &models.AuditRecord{
		ItemID:       res.ItemID,
		Market:       res.Market,
		Direction:    res.Direction,
		RawScore:     rawScore,
		FinalScore:   res.Score,
		Category:     res.Category,
		State:        res.State,
		Readiness:    res.Readiness,
		MarketStatus: status,
		Components:   res.Components,
		Price:        res.Price,
		Timestamp:    res.Timestamp,
	}
	if err := e.audit.Append(ctx, rec); err != nil {
		e.l.Warn("audit append failed",
			applogger.String("item", res.ItemID),
			applogger.String("direction", string(res.Direction)),
			applogger.Error(err))
		e.metrics.RecordError("audit_append")
	}
}
