// Package marketdata is the data access layer between the handlers and the
// market provider. Every operation absorbs fetch failures into its
// documented default value plus a Warning, and every result, degraded or
// not, is cached for the operation's TTL, so repeated failures inside the
// window never retry the network.
package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"coinwatch-api/internal/cache"
	"coinwatch-api/pkg/journal"
	"coinwatch-api/pkg/market"
)

// Warning is the user-visible side effect of a degraded fetch. Handlers
// attach them to responses; nothing above this layer sees raw errors.
type Warning struct {
	Operation string `json:"operation"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// Store wraps a market provider with the shared result cache.
type Store struct {
	provider market.Provider
	cache    *cache.Store
	journal  *journal.Writer
}

// Option configures a Store.
type Option func(*Store)

// WithJournal enables the fetch journal.
func WithJournal(w *journal.Writer) Option {
	return func(s *Store) {
		s.journal = w
	}
}

// NewStore builds the data access layer on top of a provider and cache.
func NewStore(provider market.Provider, cacheStore *cache.Store, opts ...Option) *Store {
	s := &Store{provider: provider, cache: cacheStore}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// envelope is what actually sits in the cache: the reshaped value together
// with the warnings produced while building it, so cache hits replay the
// same degraded view the original fetch produced.
type envelope[T any] struct {
	value    T
	warnings []Warning
}

// FetchCoinList returns the lowercased name-to-id directory, empty on
// failure.
func (s *Store) FetchCoinList(ctx context.Context) (map[string]string, []Warning) {
	return fetchCached(ctx, s, cache.ClassCoinList, cache.CoinListKey(), "coin_list", nil,
		s.provider.CoinList, map[string]string{})
}

// FetchMarkets returns the dashboard markets page, ranked by market cap
// descending, empty on failure.
func (s *Store) FetchMarkets(ctx context.Context, currency string, perPage int) ([]market.SnapshotRow, []Warning) {
	args := map[string]string{"currency": currency, "per_page": strconv.Itoa(perPage)}
	return fetchCached(ctx, s, cache.ClassMarkets, cache.MarketsKey(currency, perPage), "markets", args,
		func(ctx context.Context) ([]market.SnapshotRow, error) {
			rows, err := s.provider.Markets(ctx, currency, perPage)
			return clipRows(rows, perPage), err
		}, []market.SnapshotRow{})
}

// FetchScreenerMarkets returns the wider markets page the gainers/losers
// screener reads. Separately cached from FetchMarkets: the screener
// tolerates less staleness.
func (s *Store) FetchScreenerMarkets(ctx context.Context, currency string, perPage int) ([]market.SnapshotRow, []Warning) {
	args := map[string]string{"currency": currency, "per_page": strconv.Itoa(perPage)}
	return fetchCached(ctx, s, cache.ClassScreener, cache.ScreenerMarketsKey(currency, perPage), "screener_markets", args,
		func(ctx context.Context) ([]market.SnapshotRow, error) {
			rows, err := s.provider.ChangeMarkets(ctx, currency, perPage)
			return clipRows(rows, perPage), err
		}, []market.SnapshotRow{})
}

// FetchMarketChart returns the joined price/volume history for one coin,
// empty on failure.
func (s *Store) FetchMarketChart(ctx context.Context, coinID, currency string, days int) ([]market.HistoricalPoint, []Warning) {
	args := map[string]string{"coin_id": coinID, "currency": currency, "days": strconv.Itoa(days)}
	return fetchCached(ctx, s, cache.ClassChart, cache.ChartKey(coinID, currency, days), "market_chart", args,
		func(ctx context.Context) ([]market.HistoricalPoint, error) {
			return s.provider.MarketChart(ctx, coinID, currency, days)
		}, []market.HistoricalPoint{})
}

// FetchOHLC returns the candlestick series for one coin, empty on failure.
func (s *Store) FetchOHLC(ctx context.Context, coinID, currency string, days int) ([]market.OHLCBar, []Warning) {
	args := map[string]string{"coin_id": coinID, "currency": currency, "days": strconv.Itoa(days)}
	return fetchCached(ctx, s, cache.ClassOHLC, cache.OHLCKey(coinID, currency, days), "ohlc", args,
		func(ctx context.Context) ([]market.OHLCBar, error) {
			return s.provider.OHLC(ctx, coinID, currency, days)
		}, []market.OHLCBar{})
}

// FetchGlobal returns the market-wide aggregate stats, nil on failure.
func (s *Store) FetchGlobal(ctx context.Context) (*market.GlobalStats, []Warning) {
	return fetchCached[*market.GlobalStats](ctx, s, cache.ClassGlobal, cache.GlobalKey(), "global", nil,
		s.provider.Global, nil)
}

// FetchCoinDetail returns the detail payload for one coin, nil on failure.
func (s *Store) FetchCoinDetail(ctx context.Context, coinID, currency string) (*market.CoinDetail, []Warning) {
	args := map[string]string{"coin_id": coinID, "currency": currency}
	return fetchCached[*market.CoinDetail](ctx, s, cache.ClassDetail, cache.DetailKey(coinID, currency), "coin_detail", args,
		func(ctx context.Context) (*market.CoinDetail, error) {
			return s.provider.CoinDetail(ctx, coinID, currency)
		}, nil)
}

// FetchPrices returns a price per requested id, nil for ids the provider
// does not know. A bad id degrades only its own entry: it gets a warning
// naming it, while the rest of the batch keeps its prices.
func (s *Store) FetchPrices(ctx context.Context, coinIDs []string, currency string) (map[string]*float64, []Warning) {
	args := map[string]string{"ids": strings.Join(coinIDs, ","), "currency": currency}
	return fetchCached(ctx, s, cache.ClassPrices, cache.PricesKey(coinIDs, currency), "prices", args,
		func(ctx context.Context) (map[string]*float64, error) {
			return s.provider.SimplePrice(ctx, coinIDs, currency)
		}, map[string]*float64{},
		func(prices map[string]*float64) []Warning {
			var warnings []Warning
			for _, id := range coinIDs {
				id = strings.TrimSpace(id)
				if id == "" {
					continue
				}
				if price, ok := prices[id]; !ok || price == nil {
					warnings = append(warnings, Warning{
						Operation: "prices",
						Kind:      "data_quality",
						Message:   fmt.Sprintf("no %s price available for %q", strings.ToLower(currency), id),
					})
				}
			}
			return warnings
		})
}

// fetchCached runs one cached fetch. On a miss it calls fetch, absorbs any
// error into fallback plus a warning, optionally derives data-quality
// warnings from a successful value, and stores the whole envelope. The
// cache's per-key barrier means concurrent misses share a single fetch.
func fetchCached[T any](
	ctx context.Context,
	s *Store,
	class cache.Class,
	key, op string,
	args map[string]string,
	fetch func(context.Context) (T, error),
	fallback T,
	inspect ...func(T) []Warning,
) (T, []Warning) {
	raw, err := s.cache.Take(class, key, func() (any, error) {
		start := time.Now()
		value, fetchErr := fetch(ctx)
		elapsed := time.Since(start)

		if fetchErr != nil {
			warning := warnForError(op, fetchErr)
			logx.WithContext(ctx).Errorf("marketdata: %s failed (%s): %v", op, warning.Kind, fetchErr)
			s.record(op, args, elapsed, journal.StatusError, warning.Kind, fetchErr.Error())
			return envelope[T]{value: fallback, warnings: []Warning{warning}}, nil
		}

		env := envelope[T]{value: value}
		for _, fn := range inspect {
			env.warnings = append(env.warnings, fn(value)...)
		}
		status := journal.StatusOK
		if len(env.warnings) > 0 {
			status = journal.StatusDegraded
		}
		s.record(op, args, elapsed, status, "", "")
		return env, nil
	})
	if err != nil {
		// Only a cache misconfiguration lands here; degrade like a fetch
		// failure rather than surfacing an internal error.
		logx.WithContext(ctx).Errorf("marketdata: %s cache: %v", op, err)
		return fallback, []Warning{{Operation: op, Kind: "internal", Message: "cache unavailable"}}
	}
	env, ok := raw.(envelope[T])
	if !ok {
		logx.WithContext(ctx).Errorf("marketdata: %s cache returned %T", op, raw)
		return fallback, []Warning{{Operation: op, Kind: "internal", Message: "cache corrupted"}}
	}
	return env.value, env.warnings
}

// clipRows bounds a markets page to the requested size. Upstream pages can
// overshoot perPage; callers rely on the length bound holding.
func clipRows(rows []market.SnapshotRow, perPage int) []market.SnapshotRow {
	if perPage > 0 && len(rows) > perPage {
		return rows[:perPage]
	}
	return rows
}

// warnForError maps a classified fetch error onto its user-facing message.
func warnForError(op string, err error) Warning {
	kind := market.Classify(err)
	var message string
	switch kind {
	case market.KindRateLimited:
		message = "the market data provider is rate limiting requests; retry in a minute"
	case market.KindClient:
		message = fmt.Sprintf("the market data provider rejected the %s request", op)
	default:
		message = fmt.Sprintf("the market data provider is unreachable for %s", op)
	}
	return Warning{Operation: op, Kind: kind.String(), Message: message}
}

func (s *Store) record(op string, args map[string]string, elapsed time.Duration, status, errKind, errMsg string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(&journal.FetchRecord{
		Operation: op,
		Args:      args,
		Duration:  elapsed,
		Status:    status,
		ErrorKind: errKind,
		ErrorMsg:  errMsg,
	}); err != nil {
		logx.Errorf("marketdata: journal append: %v", err)
	}
}
