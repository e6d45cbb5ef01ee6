package usecase

import (
	"context"
	"time"

	"CoinSage/internal/domain/models"
	domrepo "CoinSage/internal/domain/repository"
	domsvc "CoinSage/internal/domain/service"
	applogger "CoinSage/pkg/logger"
)

// Monitor is the background scan loop. Each pass warms the range
// cache, refreshes the market pulse and scores every tracked item,
// pushing alerts for the ones that cross the score threshold.
type Monitor struct {
	registry domrepo.ItemRegistry
	ranges   domrepo.RangeProvider
	engine   *SignalEngine
	pulse    domsvc.ContextProvider
	alerts   domsvc.AlertSink
	metrics  domrepo.Metrics
	l        *applogger.Logger

	market   string
	interval time.Duration
	minScore int

	stop chan struct{}
	done chan struct{}
}

func NewMonitor(
	registry domrepo.ItemRegistry,
	ranges domrepo.RangeProvider,
	engine *SignalEngine,
	pulse domsvc.ContextProvider,
	alerts domsvc.AlertSink,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	market string,
	interval time.Duration,
	minScore int,
) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Monitor{
		registry: registry,
		ranges:   ranges,
		engine:   engine,
		pulse:    pulse,
		alerts:   alerts,
		metrics:  metrics,
		l:        l,
		market:   market,
		interval: interval,
		minScore: minScore,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the scan loop in a goroutine. The first scan happens
// immediately, then every interval.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		m.Scan(ctx)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.Scan(ctx)
			}
		}
	}()
}

// Stop signals the loop to exit and waits for the current scan.
func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

// Scan runs one full pass over the tracked items.
func (m *Monitor) Scan(ctx context.Context) {
	start := time.Now()

	items, err := m.registry.ActiveItems(ctx, m.market)
	if err != nil {
		m.l.Error("scan: list items failed", applogger.Error(err))
		m.metrics.RecordError("scan_items")
		return
	}

	for _, it := range items {
		if err := m.ranges.Warm(ctx, it.ID, m.market); err != nil {
			m.l.Warn("scan: range warm failed",
				applogger.String("item", it.ID), applogger.Error(err))
			m.metrics.RecordError("scan_warm")
		}
	}

	if _, err := m.pulse.Current(ctx, m.market); err != nil {
		m.l.Warn("scan: pulse refresh failed", applogger.Error(err))
	}

	alerted := 0
	for _, it := range items {
		select {
		case <-ctx.Done():
			return
		default:
		}
		res, err := m.engine.ScoreBuy(ctx, it.ID, m.market)
		if err != nil {
			m.l.Warn("scan: score failed",
				applogger.String("item", it.ID), applogger.Error(err))
			continue
		}
		if res.Score < m.minScore {
			continue
		}
		if res.Category != models.CategoryBuy && res.Category != models.CategoryStrongBuy {
			continue
		}
		if err := m.alerts.Notify(ctx, res); err != nil {
			m.l.Warn("scan: alert publish failed",
				applogger.String("item", it.ID), applogger.Error(err))
			m.metrics.RecordError("scan_alert")
			continue
		}
		alerted++
	}

	m.metrics.RecordLatency("scan", time.Since(start).Seconds())
	m.l.Info("scan complete",
		applogger.String("market", m.market),
		applogger.Int("items", len(items)),
		applogger.Int("alerts", alerted),
		applogger.Duration("took", time.Since(start)),
	)
}
