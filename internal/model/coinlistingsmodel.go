package model

import (
	"context"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ CoinListingsModel = (*defaultCoinListingsModel)(nil)

type (
	// CoinListingsModel persists the name-to-id coin directory.
	CoinListingsModel interface {
		Upsert(ctx context.Context, provider, name, coinID string) error
	}

	defaultCoinListingsModel struct {
		conn sqlx.SqlConn
	}
)

// NewCoinListingsModel returns a model for the coin_listings table.
func NewCoinListingsModel(conn sqlx.SqlConn) CoinListingsModel {
	return &defaultCoinListingsModel{conn: conn}
}

func (m *defaultCoinListingsModel) Upsert(ctx context.Context, provider, name, coinID string) error {
	stmt := `
INSERT INTO public.coin_listings (provider, name, coin_id, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (provider, name) DO UPDATE SET
    coin_id = EXCLUDED.coin_id,
    updated_at = NOW();`
	_, err := m.conn.ExecCtx(ctx, stmt, provider, name, coinID)
	return err
}
