package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/rest/httpx"

	"coinwatch-api/internal/marketdata"
	"coinwatch-api/internal/portfolio"
	"coinwatch-api/internal/svc"
	"coinwatch-api/internal/types"
)

// Sessions are carried in a header rather than a cookie so non-browser
// clients can hold one without a jar.
const sessionHeader = "X-Session-Id"

// PortfolioHandler values the session's holdings at live prices.
func PortfolioHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, pf := resolveSession(svcCtx, w, r)

		currency := r.URL.Query().Get("currency")
		if currency == "" {
			currency = "usd"
		}

		warnings := []marketdata.Warning{}
		prices := map[string]*float64{}
		if ids := pf.CoinIDs(); len(ids) > 0 {
			prices, warnings = svcCtx.MarketData.FetchPrices(r.Context(), ids, currency)
		}

		httpx.OkJsonCtx(r.Context(), w, types.PortfolioResponse{
			SessionID: sessionID,
			Valuation: pf.Value(prices, currency),
			Warnings:  noNilWarnings(warnings),
		})
	}
}

// AddHoldingHandler adds a coin to the session portfolio, merging with an
// existing holding of the same coin.
func AddHoldingHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AddHoldingRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		quantity, err := parseQuantity(req.Quantity)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		price, err := parseOptionalPrice(req.PurchasePrice)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		sessionID, pf := resolveSession(svcCtx, w, r)
		if err := pf.AddOrMerge(portfolio.Holding{
			CoinID:        req.CoinID,
			Name:          req.Name,
			Quantity:      quantity,
			PurchasePrice: price,
		}); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		respondPortfolio(svcCtx, w, r, sessionID, pf)
	}
}

// EditHoldingHandler replaces a holding's quantity and purchase price.
func EditHoldingHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.EditHoldingRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		quantity, err := parseQuantity(req.Quantity)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		price, err := parseOptionalPrice(req.PurchasePrice)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		sessionID, pf := resolveSession(svcCtx, w, r)
		if err := pf.Edit(req.ID, quantity, price); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		respondPortfolio(svcCtx, w, r, sessionID, pf)
	}
}

// RemoveHoldingHandler drops a coin from the session portfolio.
func RemoveHoldingHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RemoveHoldingRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		sessionID, pf := resolveSession(svcCtx, w, r)
		if err := pf.Remove(req.ID); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		respondPortfolio(svcCtx, w, r, sessionID, pf)
	}
}

// resolveSession looks up the caller's portfolio by the session header,
// minting a fresh session when the header is absent or expired. The
// (possibly new) id is echoed back in the same header.
func resolveSession(svcCtx *svc.ServiceContext, w http.ResponseWriter, r *http.Request) (string, *portfolio.Portfolio) {
	id, pf := svcCtx.Sessions.GetOrCreate(strings.TrimSpace(r.Header.Get(sessionHeader)))
	w.Header().Set(sessionHeader, id)
	return id, pf
}

func respondPortfolio(svcCtx *svc.ServiceContext, w http.ResponseWriter, r *http.Request, sessionID string, pf *portfolio.Portfolio) {
	warnings := []marketdata.Warning{}
	prices := map[string]*float64{}
	if ids := pf.CoinIDs(); len(ids) > 0 {
		prices, warnings = svcCtx.MarketData.FetchPrices(r.Context(), ids, "usd")
	}
	httpx.OkJsonCtx(r.Context(), w, types.PortfolioResponse{
		SessionID: sessionID,
		Valuation: pf.Value(prices, "usd"),
		Warnings:  noNilWarnings(warnings),
	})
}

func parseQuantity(raw string) (decimal.Decimal, error) {
	quantity, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid quantity %q", raw)
	}
	return quantity, nil
}

func parseOptionalPrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase price %q", raw)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("purchase price cannot be negative")
	}
	return &price, nil
}
