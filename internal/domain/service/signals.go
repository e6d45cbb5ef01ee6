package service

import (
	"context"
	"time"

	"CoinSage/internal/domain/models"
)

// MomentumAnalyzer turns a price series into a velocity report.
type MomentumAnalyzer interface {
	Analyze(series models.PriceSeries, now time.Time) (*models.VelocityReport, error)
}

// StabilityChecker decides whether a falling price has stopped falling.
type StabilityChecker interface {
	Check(series models.PriceSeries, now time.Time) (*models.StabilityReport, error)
}

// ContextProvider serves the current market-wide context.
type ContextProvider interface {
	Current(ctx context.Context, market string) (*models.MarketContext, error)
}

// AlertSink receives evaluations that cleared the alert threshold.
type AlertSink interface {
	Notify(ctx context.Context, res *models.SignalResult) error
}
