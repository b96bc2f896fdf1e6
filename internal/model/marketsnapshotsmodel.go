package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"coinwatch-api/pkg/market"
)

var _ MarketSnapshotsModel = (*defaultMarketSnapshotsModel)(nil)

type (
	// MarketSnapshotsModel persists dashboard snapshot rows.
	MarketSnapshotsModel interface {
		Insert(ctx context.Context, provider, currency string, row market.SnapshotRow, fetchedAt time.Time) error
	}

	defaultMarketSnapshotsModel struct {
		conn sqlx.SqlConn
	}
)

// NewMarketSnapshotsModel returns a model for the market_snapshots table.
func NewMarketSnapshotsModel(conn sqlx.SqlConn) MarketSnapshotsModel {
	return &defaultMarketSnapshotsModel{conn: conn}
}

func (m *defaultMarketSnapshotsModel) Insert(ctx context.Context, provider, currency string, row market.SnapshotRow, fetchedAt time.Time) error {
	stmt := `
INSERT INTO public.market_snapshots (
    provider, currency, coin_id, symbol, name,
    price, change_24h_pct, market_cap, volume_24h, market_cap_rank,
    fetched_at, created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW()
);`
	_, err := m.conn.ExecCtx(ctx, stmt,
		provider,
		currency,
		row.ID,
		row.Symbol,
		row.Name,
		nullFloat(row.CurrentPrice),
		nullFloat(row.Change24hPercent),
		nullFloat(row.MarketCap),
		nullFloat(row.Volume24h),
		nullInt(row.MarketCapRank),
		fetchedAt.UTC(),
	)
	return err
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
