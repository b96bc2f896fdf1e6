package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"coinwatch-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes([]rest.Route{
		{Method: http.MethodGet, Path: "/api/dashboard", Handler: DashboardHandler(serverCtx)},
		{Method: http.MethodGet, Path: "/api/global", Handler: GlobalHandler(serverCtx)},
		{Method: http.MethodGet, Path: "/api/screener", Handler: ScreenerHandler(serverCtx)},
		{Method: http.MethodGet, Path: "/api/news", Handler: NewsHandler(serverCtx)},
		{Method: http.MethodGet, Path: "/api/coins/:id", Handler: CoinHandler(serverCtx)},
		{Method: http.MethodGet, Path: "/api/coins/:id/analysis", Handler: AnalysisHandler(serverCtx)},
		{Method: http.MethodGet, Path: "/api/coins/:id/forecast", Handler: ForecastHandler(serverCtx)},
		{Method: http.MethodGet, Path: "/api/portfolio", Handler: PortfolioHandler(serverCtx)},
		{Method: http.MethodPost, Path: "/api/portfolio/holdings", Handler: AddHoldingHandler(serverCtx)},
		{Method: http.MethodPut, Path: "/api/portfolio/holdings/:id", Handler: EditHoldingHandler(serverCtx)},
		{Method: http.MethodDelete, Path: "/api/portfolio/holdings/:id", Handler: RemoveHoldingHandler(serverCtx)},
	})
}
