package coingecko

import (
	"encoding/json"
	"sort"
	"strings"

	"coinwatch-api/pkg/market"
)

// buildCoinList reduces the coin directory to a lowercased-name → id map.
func buildCoinList(entries []CoinListEntry) map[string]string {
	listings := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		if name == "" || strings.TrimSpace(entry.ID) == "" {
			continue
		}
		listings[name] = entry.ID
	}
	return listings
}

// buildSnapshotRows converts raw market rows into normalized snapshot rows,
// ordered by market cap rank with unranked coins last.
func buildSnapshotRows(rows []MarketRow) []market.SnapshotRow {
	out := make([]market.SnapshotRow, 0, len(rows))
	for _, row := range rows {
		snapshot := market.SnapshotRow{
			ID:               row.ID,
			Name:             row.Name,
			Symbol:           row.Symbol,
			CurrentPrice:     row.CurrentPrice,
			Change24hPercent: row.PriceChangePercentage24h,
			MarketCap:        row.MarketCap,
			Volume24h:        row.TotalVolume,
			MarketCapRank:    row.MarketCapRank,
		}
		// Absent sparkline stays nil rather than breaking the row.
		if row.SparklineIn7d != nil && len(row.SparklineIn7d.Price) > 0 {
			snapshot.Sparkline7d = row.SparklineIn7d.Price
		}
		out = append(out, snapshot)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].MarketCapRank, out[j].MarketCapRank
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return *ri < *rj
		}
	})
	return out
}

// parsePair decomposes a raw [timestamp, value] chart row. The row is
// unusable without a numeric timestamp; a bad value component is reported
// as nil so the caller can decide between dropping and defaulting.
func parsePair(raw json.RawMessage) (int64, *float64, bool) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) < 2 {
		return 0, nil, false
	}
	var ts float64
	if err := json.Unmarshal(parts[0], &ts); err != nil {
		return 0, nil, false
	}
	var value *float64
	if err := json.Unmarshal(parts[1], &value); err != nil {
		value = nil
	}
	return int64(ts), value, true
}

// buildHistory joins the prices and total_volumes series on timestamp.
// Price is essential: rows without a numeric price are dropped. Volume is
// supplementary: missing or non-numeric volume becomes zero, and an absent
// volume series keeps every price row with volume zero.
func buildHistory(chart *MarketChartResponse) []market.HistoricalPoint {
	if chart == nil || len(chart.Prices) == 0 {
		return []market.HistoricalPoint{}
	}

	volumes := make(map[int64]float64, len(chart.TotalVolumes))
	for _, raw := range chart.TotalVolumes {
		ts, value, ok := parsePair(raw)
		if !ok {
			continue
		}
		if value != nil {
			volumes[ts] = *value
		} else {
			volumes[ts] = 0
		}
	}

	joinVolumes := len(chart.TotalVolumes) > 0

	points := make([]market.HistoricalPoint, 0, len(chart.Prices))
	seen := make(map[int64]struct{}, len(chart.Prices))
	for _, raw := range chart.Prices {
		ts, price, ok := parsePair(raw)
		if !ok || price == nil {
			continue
		}
		if _, dup := seen[ts]; dup {
			continue
		}
		volume := 0.0
		if joinVolumes {
			v, found := volumes[ts]
			if !found {
				// Inner join: a price sample without a volume sample at
				// the same timestamp is excluded.
				continue
			}
			volume = v
		}
		seen[ts] = struct{}{}
		points = append(points, market.HistoricalPoint{Timestamp: ts, Price: *price, Volume: volume})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	return points
}

// buildOHLC converts raw candle rows, dropping any row that misses one of
// the four prices. All four are needed for candlestick rendering.
func buildOHLC(rows []json.RawMessage) []market.OHLCBar {
	bars := make([]market.OHLCBar, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	for _, raw := range rows {
		var values []*float64
		if err := json.Unmarshal(raw, &values); err != nil || len(values) < 5 {
			continue
		}
		incomplete := false
		for _, v := range values[:5] {
			if v == nil {
				incomplete = true
				break
			}
		}
		if incomplete {
			continue
		}
		ts := int64(*values[0])
		if _, dup := seen[ts]; dup {
			continue
		}
		seen[ts] = struct{}{}
		bars = append(bars, market.OHLCBar{
			Timestamp: ts,
			Open:      *values[1],
			High:      *values[2],
			Low:       *values[3],
			Close:     *values[4],
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	return bars
}

func buildGlobal(payload *GlobalPayload) *market.GlobalStats {
	if payload == nil {
		return nil
	}
	return &market.GlobalStats{
		TotalMarketCap:       payload.TotalMarketCap,
		TotalVolume:          payload.TotalVolume,
		MarketCapPercentage:  payload.MarketCapPercentage,
		ActiveCryptoCurrency: payload.ActiveCryptocurrencies,
		MarketCapChange24h:   payload.MarketCapChangePercentage24h,
	}
}

// pricesFromSimple resolves the requested ids against the simple/price
// payload. Unknown ids map to nil entries so one bad id never blocks the
// prices of the rest.
func pricesFromSimple(payload map[string]map[string]*float64, coinIDs []string, currency string) map[string]*float64 {
	currency = strings.ToLower(currency)
	prices := make(map[string]*float64, len(coinIDs))
	for _, id := range coinIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if perCurrency, ok := payload[id]; ok {
			prices[id] = perCurrency[currency]
		} else {
			prices[id] = nil
		}
	}
	return prices
}

func buildDetail(payload *CoinDetailPayload, currency string) *market.CoinDetail {
	if payload == nil {
		return nil
	}
	currency = strings.ToLower(currency)
	detail := &market.CoinDetail{
		ID:            payload.ID,
		Name:          payload.Name,
		Symbol:        payload.Symbol,
		Description:   payload.Description.EN,
		MarketCapRank: payload.MarketCapRank,
	}
	if len(payload.Links.Homepage) > 0 {
		detail.Homepage = payload.Links.Homepage[0]
	}
	md := payload.MarketData
	if md == nil {
		return detail
	}
	detail.CurrentPrice = lookupCurrency(md.CurrentPrice, currency)
	detail.MarketCap = lookupCurrency(md.MarketCap, currency)
	detail.Volume24h = lookupCurrency(md.TotalVolume, currency)
	detail.High24h = lookupCurrency(md.High24h, currency)
	detail.Low24h = lookupCurrency(md.Low24h, currency)
	detail.ATH = lookupCurrency(md.ATH, currency)
	detail.ATHChangePct = lookupCurrency(md.ATHChangePercentage, currency)
	detail.ATL = lookupCurrency(md.ATL, currency)
	detail.ATLChangePct = lookupCurrency(md.ATLChangePercentage, currency)
	detail.Circulating = md.CirculatingSupply
	detail.TotalSupply = md.TotalSupply
	detail.MaxSupply = md.MaxSupply
	if md.Sparkline7d != nil && len(md.Sparkline7d.Price) > 0 {
		detail.Sparkline7d = md.Sparkline7d.Price
	}
	return detail
}

func lookupCurrency(values map[string]float64, currency string) *float64 {
	if values == nil {
		return nil
	}
	v, ok := values[currency]
	if !ok {
		return nil
	}
	return &v
}
