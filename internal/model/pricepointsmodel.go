package model

import (
	"context"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"coinwatch-api/pkg/market"
)

var _ PricePointsModel = (*defaultPricePointsModel)(nil)

type (
	// PricePointsModel persists historical price/volume samples. Points are
	// idempotent on (provider, coin_id, currency, ts_ms): re-recording an
	// overlapping series is a no-op for rows already seen.
	PricePointsModel interface {
		Insert(ctx context.Context, provider, coinID, currency string, point market.HistoricalPoint) error
	}

	defaultPricePointsModel struct {
		conn sqlx.SqlConn
	}
)

// NewPricePointsModel returns a model for the price_points table.
func NewPricePointsModel(conn sqlx.SqlConn) PricePointsModel {
	return &defaultPricePointsModel{conn: conn}
}

func (m *defaultPricePointsModel) Insert(ctx context.Context, provider, coinID, currency string, point market.HistoricalPoint) error {
	stmt := `
INSERT INTO public.price_points (provider, coin_id, currency, ts_ms, price, volume, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (provider, coin_id, currency, ts_ms) DO NOTHING;`
	_, err := m.conn.ExecCtx(ctx, stmt, provider, coinID, currency, point.Timestamp, point.Price, point.Volume)
	return err
}
