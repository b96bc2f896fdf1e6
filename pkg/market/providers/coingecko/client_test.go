package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"coinwatch-api/pkg/market"
)

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// newMockServer serves canned CoinGecko payloads for every endpoint the
// client knows about.
func newMockServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin"},
			{"id": "ethereum", "symbol": "eth", "name": "Ethereum"},
			{"id": "", "symbol": "x", "name": "Broken"},
		})
	})
	mux.HandleFunc("/coins/markets", func(w http.ResponseWriter, r *http.Request) {
		rows := []map[string]interface{}{
			{
				"id": "ethereum", "symbol": "eth", "name": "Ethereum",
				"current_price": 3200.5, "market_cap": 4.0e11, "market_cap_rank": 2,
				"total_volume": 2.1e10, "price_change_percentage_24h": -1.2,
			},
			{
				"id": "bitcoin", "symbol": "btc", "name": "Bitcoin",
				"current_price": 64000.0, "market_cap": 1.2e12, "market_cap_rank": 1,
				"total_volume": 3.5e10, "price_change_percentage_24h": 2.4,
			},
		}
		if r.URL.Query().Get("sparkline") == "true" {
			rows[1]["sparkline_in_7d"] = map[string]interface{}{"price": []float64{63000, 63500, 64000}}
		}
		writeJSON(w, rows)
	})
	mux.HandleFunc("/coins/bitcoin/market_chart", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"prices":        [][]interface{}{{1000.0, 100.0}, {2000.0, 101.0}, {3000.0, nil}, {4000.0, 103.0}},
			"total_volumes": [][]interface{}{{1000.0, 5.0}, {2000.0, nil}, {4000.0, 7.0}},
		})
	})
	mux.HandleFunc("/coins/bitcoin/ohlc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, [][]interface{}{
			{2000.0, 10.0, 12.0, 9.0, 11.0},
			{1000.0, 9.0, 11.0, 8.0, 10.0},
			{3000.0, 11.0, 13.0, nil, 12.0},
		})
	})
	mux.HandleFunc("/global", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"data": map[string]interface{}{
				"active_cryptocurrencies":              12000,
				"total_market_cap":                     map[string]float64{"usd": 2.4e12},
				"total_volume":                         map[string]float64{"usd": 9.0e10},
				"market_cap_percentage":                map[string]float64{"btc": 51.2, "eth": 17.5},
				"market_cap_change_percentage_24h_usd": 1.3,
			},
		})
	})
	mux.HandleFunc("/simple/price", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"bitcoin": map[string]float64{"usd": 64000},
		})
	})
	mux.HandleFunc("/coins/bitcoin", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "market_cap_rank": 1,
			"description": map[string]string{"en": "The original cryptocurrency."},
			"links":       map[string]interface{}{"homepage": []string{"https://bitcoin.org"}},
			"market_data": map[string]interface{}{
				"current_price":      map[string]float64{"usd": 64000, "eur": 59000},
				"market_cap":         map[string]float64{"usd": 1.2e12},
				"ath":                map[string]float64{"usd": 73000},
				"circulating_supply": 19700000.0,
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := NewClient(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	return server, client
}

func TestClientGetCoinList(t *testing.T) {
	_, client := newMockServer(t)

	entries, err := client.GetCoinList(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	listings := buildCoinList(entries)
	require.Len(t, listings, 2)
	require.Equal(t, "bitcoin", listings["bitcoin"])
	require.Equal(t, "ethereum", listings["ethereum"])
}

func TestClientGetMarkets(t *testing.T) {
	_, client := newMockServer(t)

	raw, err := client.GetMarkets(context.Background(), "usd", 5, true)
	require.NoError(t, err)
	rows := buildSnapshotRows(raw)
	require.Len(t, rows, 2)
	// Ranked ascending regardless of payload order.
	require.Equal(t, "bitcoin", rows[0].ID)
	require.Equal(t, 1, *rows[0].MarketCapRank)
	require.Equal(t, "ethereum", rows[1].ID)
	require.Len(t, rows[0].Sparkline7d, 3)
	require.Nil(t, rows[1].Sparkline7d)
}

func TestClientGetMarketChart(t *testing.T) {
	_, client := newMockServer(t)

	chart, err := client.GetMarketChart(context.Background(), "bitcoin", "usd", 30)
	require.NoError(t, err)
	points := buildHistory(chart)
	// ts=3000 dropped (null price), ts=2000 kept with volume 0 (null
	// volume sample), ts=1000 and ts=4000 joined normally.
	require.Len(t, points, 3)
	require.Equal(t, int64(1000), points[0].Timestamp)
	require.Equal(t, 5.0, points[0].Volume)
	require.Equal(t, int64(2000), points[1].Timestamp)
	require.Equal(t, 0.0, points[1].Volume)
	require.Equal(t, int64(4000), points[2].Timestamp)
}

func TestClientGetOHLC(t *testing.T) {
	_, client := newMockServer(t)

	rows, err := client.GetOHLC(context.Background(), "bitcoin", "usd", 30)
	require.NoError(t, err)
	bars := buildOHLC(rows)
	// The null-low row is gone and output is time ordered.
	require.Len(t, bars, 2)
	require.Equal(t, int64(1000), bars[0].Timestamp)
	require.Equal(t, int64(2000), bars[1].Timestamp)
	require.Equal(t, 12.0, bars[1].High)
}

func TestClientGetGlobal(t *testing.T) {
	_, client := newMockServer(t)

	payload, err := client.GetGlobal(context.Background())
	require.NoError(t, err)
	stats := buildGlobal(payload)
	require.Equal(t, 12000, stats.ActiveCryptoCurrency)
	require.InDelta(t, 51.2, stats.MarketCapPercentage["btc"], 1e-9)
	require.InDelta(t, 2.4e12, stats.TotalMarketCap["usd"], 1)
}

func TestClientGetSimplePrice(t *testing.T) {
	_, client := newMockServer(t)

	payload, err := client.GetSimplePrice(context.Background(), []string{"bitcoin", "not-a-real-id"}, "usd")
	require.NoError(t, err)
	prices := pricesFromSimple(payload, []string{"bitcoin", "not-a-real-id"}, "usd")
	require.Len(t, prices, 2)
	require.NotNil(t, prices["bitcoin"])
	require.InDelta(t, 64000.0, *prices["bitcoin"], 1e-9)
	require.Nil(t, prices["not-a-real-id"])
}

func TestClientGetCoinDetail(t *testing.T) {
	_, client := newMockServer(t)

	payload, err := client.GetCoinDetail(context.Background(), "bitcoin")
	require.NoError(t, err)
	detail := buildDetail(payload, "usd")
	require.Equal(t, "Bitcoin", detail.Name)
	require.Equal(t, "https://bitcoin.org", detail.Homepage)
	require.NotNil(t, detail.CurrentPrice)
	require.InDelta(t, 64000.0, *detail.CurrentPrice, 1e-9)
	require.NotNil(t, detail.ATH)
	require.Nil(t, detail.Low24h)
}

func TestClientErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantKind market.Kind
		wantIs   error
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantKind: market.KindRateLimited,
			wantIs:   market.ErrRateLimited,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantKind: market.KindClient,
			wantIs:   market.ErrNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantKind: market.KindClient,
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"this is": "not a list"`))
			},
			wantKind: market.KindClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
			_, err := client.GetCoinList(context.Background())
			require.Error(t, err)
			require.Equal(t, tt.wantKind, market.Classify(err))
			if tt.wantIs != nil {
				require.True(t, errors.Is(err, tt.wantIs))
			}
		})
	}
}

func TestClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	server.Close() // force a connection failure

	_, err := client.GetGlobal(context.Background())
	require.Error(t, err)
	require.Equal(t, market.KindTransport, market.Classify(err))
}

func TestClientMissingGlobalDataKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"unexpected": true})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := client.GetGlobal(context.Background())
	require.Error(t, err)
	require.Equal(t, market.KindClient, market.Classify(err))
}
