package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
	pkgch "CoinSage/pkg/clickhouse"
)

// CHAuditLog appends accepted evaluations to the signal_audit table.
// The table carries a 30 day TTL, so retention needs no application
// side cleanup.
type CHAuditLog struct {
	db    *sql.DB
	table string
}

func NewCHAuditLog(ch *pkgch.Client, table string) *CHAuditLog {
	return &CHAuditLog{db: ch.DB(), table: table}
}

var _ repository.AuditLog = (*CHAuditLog)(nil)

func (a *CHAuditLog) Append(ctx context.Context, rec *models.AuditRecord) error {
	components, err := json.Marshal(rec.Components)
	if err != nil {
		components = []byte("{}")
	}
	q := fmt.Sprintf(`
        INSERT INTO %s
        (ts, item_id, market, direction, raw_score, final_score, category,
         state, readiness, market_status, components, price)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, a.table)
	_, err = a.db.ExecContext(ctx, q,
		rec.Timestamp,
		rec.ItemID,
		rec.Market,
		string(rec.Direction),
		int32(rec.RawScore),
		int32(rec.FinalScore),
		string(rec.Category),
		string(rec.State),
		string(rec.Readiness),
		string(rec.MarketStatus),
		string(components),
		int64(rec.Price),
	)
	if err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	return nil
}
