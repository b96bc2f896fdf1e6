package marketpersist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"coinwatch-api/pkg/market"
)

type recordingModels struct {
	listings  map[string]string
	snapshots []market.SnapshotRow
	points    []market.HistoricalPoint
}

func (r *recordingModels) Upsert(ctx context.Context, provider, name, coinID string) error {
	r.listings[name] = coinID
	return nil
}

func (r *recordingModels) Insert(ctx context.Context, provider, currency string, row market.SnapshotRow, fetchedAt time.Time) error {
	r.snapshots = append(r.snapshots, row)
	return nil
}

type pointRecorder struct {
	models *recordingModels
}

func (p *pointRecorder) Insert(ctx context.Context, provider, coinID, currency string, point market.HistoricalPoint) error {
	p.models.points = append(p.models.points, point)
	return nil
}

func newTestService(models *recordingModels) *Service {
	return &Service{
		listingsModel:  models,
		snapshotsModel: models,
		pointsModel:    &pointRecorder{models: models},
		nowFn:          time.Now,
	}
}

func TestUpsertListingsSkipsEmptyEntries(t *testing.T) {
	models := &recordingModels{listings: map[string]string{}}
	svc := newTestService(models)

	err := svc.UpsertListings(context.Background(), "coingecko", map[string]string{
		"bitcoin": "bitcoin",
		"":        "broken",
		"empty":   "",
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"bitcoin": "bitcoin"}, models.listings)
}

func TestRecordSnapshotRowsSkipsBlankIDs(t *testing.T) {
	models := &recordingModels{listings: map[string]string{}}
	svc := newTestService(models)

	err := svc.RecordSnapshotRows(context.Background(), "coingecko", "USD", []market.SnapshotRow{
		{ID: "bitcoin"},
		{ID: "  "},
		{ID: "ethereum"},
	})
	require.NoError(t, err)
	require.Len(t, models.snapshots, 2)
}

func TestRecordPricePoints(t *testing.T) {
	models := &recordingModels{listings: map[string]string{}}
	svc := newTestService(models)

	points := []market.HistoricalPoint{
		{Timestamp: 1000, Price: 1.5, Volume: 10},
		{Timestamp: 2000, Price: 1.6, Volume: 0},
	}
	require.NoError(t, svc.RecordPricePoints(context.Background(), "coingecko", "bitcoin", "usd", points))
	require.Len(t, models.points, 2)

	require.NoError(t, svc.RecordPricePoints(context.Background(), "coingecko", "", "usd", points))
	require.Len(t, models.points, 2, "blank coin id must be a no-op")
}

func TestNewServiceWithoutConnIsNil(t *testing.T) {
	require.Nil(t, NewService(Config{}))
}
