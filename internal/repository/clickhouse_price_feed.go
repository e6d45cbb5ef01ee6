package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
	pkgch "CoinSage/pkg/clickhouse"
	applogger "CoinSage/pkg/logger"
)

// CHPriceFeed implements PriceFeed and HistoryStore backed by ClickHouse.
type CHPriceFeed struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHPriceFeed(ch *pkgch.Client, table string) *CHPriceFeed {
	return &CHPriceFeed{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (f *CHPriceFeed) SetLogger(l *applogger.Logger) { f.l = l }

var (
	_ repository.PriceFeed    = (*CHPriceFeed)(nil)
	_ repository.HistoryStore = (*CHPriceFeed)(nil)
)

func (f *CHPriceFeed) Series(ctx context.Context, itemID, market string, window time.Duration) (models.PriceSeries, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT ts, price
        FROM %s
        WHERE item_id = ? AND market = ? AND ts >= ?
        ORDER BY ts DESC
    `, f.table)
	rows, err := f.db.QueryContext(ctx, q, itemID, market, time.Now().Add(-window))
	if err != nil {
		f.logError("series query error", itemID, market, err)
		return nil, fmt.Errorf("price series: %w", err)
	}
	defer rows.Close()

	out := make(models.PriceSeries, 0, 256)
	for rows.Next() {
		var (
			ts    time.Time
			price int64
		)
		if err := rows.Scan(&ts, &price); err != nil {
			f.logError("series scan error", itemID, market, err)
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, models.PriceSample{
			ItemID:   itemID,
			Market:   market,
			Price:    int(price),
			Observed: ts,
		})
	}
	if err := rows.Err(); err != nil {
		f.logError("series rows error", itemID, market, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	if f.l != nil {
		f.l.Debug("clickhouse series ok",
			applogger.String("item", itemID),
			applogger.String("market", market),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (f *CHPriceFeed) LatestPrice(ctx context.Context, itemID, market string) (int, time.Time, error) {
	q := fmt.Sprintf(`
        SELECT ts, price
        FROM %s
        WHERE item_id = ? AND market = ?
        ORDER BY ts DESC
        LIMIT 1
    `, f.table)
	var (
		ts    time.Time
		price int64
	)
	err := f.db.QueryRowContext(ctx, q, itemID, market).Scan(&ts, &price)
	if err == sql.ErrNoRows {
		return 0, time.Time{}, models.ErrInsufficientData
	}
	if err != nil {
		f.logError("latest price error", itemID, market, err)
		return 0, time.Time{}, fmt.Errorf("latest price: %w", err)
	}
	return int(price), ts, nil
}

func (f *CHPriceFeed) DailyAverages(ctx context.Context, itemID, market string, days int) ([]models.DailyPrice, error) {
	q := fmt.Sprintf(`
        SELECT toStartOfDay(ts) AS day, avg(price), min(price), max(price), count()
        FROM %s
        WHERE item_id = ? AND market = ? AND ts >= ?
        GROUP BY day
        ORDER BY day DESC
    `, f.table)
	since := time.Now().AddDate(0, 0, -days)
	rows, err := f.db.QueryContext(ctx, q, itemID, market, since)
	if err != nil {
		f.logError("daily averages error", itemID, market, err)
		return nil, fmt.Errorf("daily averages: %w", err)
	}
	defer rows.Close()

	out := make([]models.DailyPrice, 0, days)
	for rows.Next() {
		var (
			d      models.DailyPrice
			lo, hi int64
			count  uint64
		)
		if err := rows.Scan(&d.Day, &d.AvgPrice, &lo, &hi, &count); err != nil {
			return nil, fmt.Errorf("scan daily: %w", err)
		}
		d.MinPrice = int(lo)
		d.MaxPrice = int(hi)
		d.Samples = int(count)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (f *CHPriceFeed) Extremes(ctx context.Context, itemID, market string, since time.Time) (int, int, int, error) {
	q := fmt.Sprintf(`
        SELECT min(price), max(price), count()
        FROM %s
        WHERE item_id = ? AND market = ? AND ts >= ?
    `, f.table)
	var (
		low, high int64
		count     uint64
	)
	err := f.db.QueryRowContext(ctx, q, itemID, market, since).Scan(&low, &high, &count)
	if err != nil {
		f.logError("extremes error", itemID, market, err)
		return 0, 0, 0, fmt.Errorf("extremes: %w", err)
	}
	return int(low), int(high), int(count), nil
}

func (f *CHPriceFeed) logError(msg, itemID, market string, err error) {
	if f.l == nil {
		return
	}
	f.l.Error("clickhouse "+msg,
		applogger.String("item", itemID),
		applogger.String("market", market),
		applogger.Error(err),
	)
}
