package repository

import (
	"context"
	"time"

	"CoinSage/internal/domain/models"
)

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, items []models.Item) error
	Read(ctx context.Context) (<-chan *models.PriceSample, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, s *models.PriceSample) error
	PublishBatch(ctx context.Context, samples []*models.PriceSample) error
	Close() error
}

type SampleStorage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, s *models.PriceSample) error
	StoreBatch(ctx context.Context, samples []*models.PriceSample) error
	Health(ctx context.Context) error // ping
	Close() error
}

// PriceFeed serves historical series for analysis. Implementations
// return samples in unspecified order; callers normalize.
type PriceFeed interface {
	Series(ctx context.Context, itemID, market string, window time.Duration) (models.PriceSeries, error)
	LatestPrice(ctx context.Context, itemID, market string) (int, time.Time, error)
}

// StateStore persists hysteresis state per (item, market).
type StateStore interface {
	// Get returns models.ErrNoPriorState when the item was never scored.
	Get(ctx context.Context, itemID, market string) (*models.ItemState, error)
	Put(ctx context.Context, st *models.ItemState) error
	// CompareAndSwap writes next only if the stored state still equals
	// prev (nil prev means "must not exist"). Returns false on conflict.
	CompareAndSwap(ctx context.Context, prev, next *models.ItemState) (bool, error)
}

// AuditLog records accepted evaluations. Retention is the
// implementation's concern (30 days in the ClickHouse schema).
type AuditLog interface {
	Append(ctx context.Context, rec *models.AuditRecord) error
}

// RangeProvider computes or serves cached range summaries.
type RangeProvider interface {
	Summary(ctx context.Context, itemID, market string, cacheOnly bool) (*models.RangeSummary, error)
	// Warm recomputes and caches the summary from storage.
	Warm(ctx context.Context, itemID, market string) error
}

// ItemRegistry lists the items a market tracks.
type ItemRegistry interface {
	ActiveItems(ctx context.Context, market string) ([]models.Item, error)
	Lookup(ctx context.Context, itemID, market string) (*models.Item, error)
}

type Metrics interface {
	RecordEvaluation(direction, category string)
	RecordScore(direction string, score float64)
	RecordError(kind string)
	RecordLastPrice(itemID string, price float64)
	RecordLatency(op string, seconds float64)
	RecordSampleStored(backend, market string)
}
