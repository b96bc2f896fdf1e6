package cache

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"coinwatch-api/internal/config"
)

// Namespace is the key prefix for all coinwatch cache entries.
const Namespace = "coinwatch"

// TTLSet normalises the per-operation cache TTLs from config into
// time.Duration values. Each operation carries its own staleness
// tolerance; the zero-config defaults match CacheTTL's.
type TTLSet struct {
	CoinList time.Duration
	Markets  time.Duration
	Chart    time.Duration
	OHLC     time.Duration
	Global   time.Duration
	Detail   time.Duration
	Screener time.Duration
	Prices   time.Duration
	News     time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		CoinList: durationOrDefault(cfg.CoinList, 6*time.Hour),
		Markets:  durationOrDefault(cfg.Markets, 10*time.Minute),
		Chart:    durationOrDefault(cfg.Chart, 2*time.Hour),
		OHLC:     durationOrDefault(cfg.OHLC, 2*time.Hour),
		Global:   durationOrDefault(cfg.Global, 5*time.Minute),
		Detail:   durationOrDefault(cfg.Detail, 5*time.Minute),
		Screener: durationOrDefault(cfg.Screener, 3*time.Minute),
		Prices:   durationOrDefault(cfg.Prices, time.Minute),
		News:     durationOrDefault(cfg.News, time.Hour),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// --- Market Data Keys -------------------------------------------------------

// CoinListKey holds the full name-to-id directory.
func CoinListKey() string {
	return formatKey("coins", "list")
}

// MarketsKey holds one dashboard markets page.
func MarketsKey(currency string, perPage int) string {
	return formatKey("markets", strings.ToLower(currency), strconv.Itoa(perPage))
}

// ScreenerMarketsKey holds the wider markets page the gainers/losers
// screener reads. Kept apart from MarketsKey so the two TTLs stay
// independent.
func ScreenerMarketsKey(currency string, perPage int) string {
	return formatKey("screener", strings.ToLower(currency), strconv.Itoa(perPage))
}

// ChartKey holds a joined price/volume history series.
func ChartKey(coinID, currency string, days int) string {
	return formatKey("chart", coinID, strings.ToLower(currency), strconv.Itoa(days))
}

// OHLCKey holds a candlestick series.
func OHLCKey(coinID, currency string, days int) string {
	return formatKey("ohlc", coinID, strings.ToLower(currency), strconv.Itoa(days))
}

// GlobalKey holds the market-wide aggregate payload.
func GlobalKey() string {
	return formatKey("global")
}

// DetailKey holds a single coin's detail payload.
func DetailKey(coinID, currency string) string {
	return formatKey("detail", coinID, strings.ToLower(currency))
}

// PricesKey holds a spot-price batch. The id set is sorted so argument
// order does not split cache entries.
func PricesKey(coinIDs []string, currency string) string {
	ids := make([]string, 0, len(coinIDs))
	for _, id := range coinIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return formatKey("prices", strings.ToLower(currency), strings.Join(ids, ","))
}

// NewsKey holds one news search result page.
func NewsKey(query string, from, to time.Time) string {
	return formatKey("news", strings.ToLower(query), from.Format("2006-01-02"), to.Format("2006-01-02"))
}
