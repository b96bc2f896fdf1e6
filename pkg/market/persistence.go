package market

import "context"

// Persistence hooks allow callers to persist fetched market data to an
// external store. All hooks are optional; a nil Persistence disables them.
type Persistence interface {
	// UpsertListings persists the name-to-id coin directory.
	UpsertListings(ctx context.Context, provider string, listings map[string]string) error
	// RecordSnapshotRows persists one market snapshot fetch.
	RecordSnapshotRows(ctx context.Context, provider, currency string, rows []SnapshotRow) error
	// RecordPricePoints persists historical price/volume samples.
	RecordPricePoints(ctx context.Context, provider, coinID, currency string, points []HistoricalPoint) error
}
