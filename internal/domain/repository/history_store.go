package repository

import (
	"context"
	"time"

	"CoinSage/internal/domain/models"
)

// HistoryStore provides read-only aggregate access to stored samples,
// used for range summaries and daily trend grouping.
type HistoryStore interface {
	DailyAverages(ctx context.Context, itemID, market string, days int) ([]models.DailyPrice, error)
	Extremes(ctx context.Context, itemID, market string, since time.Time) (low, high, count int, err error)
}
