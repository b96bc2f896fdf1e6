// Package marketpersist records fetched market data to Postgres. It is an
// optional collaborator behind the market.Persistence hooks: the in-memory
// data model stays fully transient when no DSN is configured.
package marketpersist

import (
	"context"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"coinwatch-api/internal/model"
	"coinwatch-api/pkg/market"
)

// Service implements market.Persistence on top of the sqlx models.
type Service struct {
	listingsModel  model.CoinListingsModel
	snapshotsModel model.MarketSnapshotsModel
	pointsModel    model.PricePointsModel
	nowFn          func() time.Time
}

// Config enumerates dependencies required to persist market data.
type Config struct {
	SQLConn        sqlx.SqlConn
	ListingsModel  model.CoinListingsModel
	SnapshotsModel model.MarketSnapshotsModel
	PointsModel    model.PricePointsModel
}

// NewService wires a market persistence service. Returns nil when the
// database connection is missing, which disables the hooks entirely.
func NewService(cfg Config) market.Persistence {
	if cfg.SQLConn == nil {
		return nil
	}
	svc := &Service{
		listingsModel:  cfg.ListingsModel,
		snapshotsModel: cfg.SnapshotsModel,
		pointsModel:    cfg.PointsModel,
		nowFn:          time.Now,
	}
	if svc.listingsModel == nil {
		svc.listingsModel = model.NewCoinListingsModel(cfg.SQLConn)
	}
	if svc.snapshotsModel == nil {
		svc.snapshotsModel = model.NewMarketSnapshotsModel(cfg.SQLConn)
	}
	if svc.pointsModel == nil {
		svc.pointsModel = model.NewPricePointsModel(cfg.SQLConn)
	}
	return svc
}

// UpsertListings persists the name-to-id coin directory.
func (s *Service) UpsertListings(ctx context.Context, provider string, listings map[string]string) error {
	if s == nil || len(listings) == 0 {
		return nil
	}
	for name, coinID := range listings {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(coinID) == "" {
			continue
		}
		if err := s.listingsModel.Upsert(ctx, provider, name, coinID); err != nil {
			return err
		}
	}
	return nil
}

// RecordSnapshotRows persists one market snapshot fetch.
func (s *Service) RecordSnapshotRows(ctx context.Context, provider, currency string, rows []market.SnapshotRow) error {
	if s == nil || len(rows) == 0 {
		return nil
	}
	fetchedAt := s.nowFn().UTC()
	for _, row := range rows {
		if strings.TrimSpace(row.ID) == "" {
			continue
		}
		if err := s.snapshotsModel.Insert(ctx, provider, strings.ToLower(currency), row, fetchedAt); err != nil {
			return err
		}
	}
	return nil
}

// RecordPricePoints persists historical price/volume samples.
func (s *Service) RecordPricePoints(ctx context.Context, provider, coinID, currency string, points []market.HistoricalPoint) error {
	if s == nil || strings.TrimSpace(coinID) == "" || len(points) == 0 {
		return nil
	}
	for _, point := range points {
		if err := s.pointsModel.Insert(ctx, provider, coinID, strings.ToLower(currency), point); err != nil {
			return err
		}
	}
	return nil
}
