package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"coinwatch-api/internal/cache"
	"coinwatch-api/internal/marketdata"
	"coinwatch-api/internal/svc"
	"coinwatch-api/internal/types"
	"coinwatch-api/pkg/market"
	"coinwatch-api/pkg/news"
	"coinwatch-api/pkg/sentiment"
)

const dateLayout = "2006-01-02"

// newsEnvelope is the cached unit for one (query, from, to) search, so a
// degraded fetch replays its warnings for the full TTL like market data
// does.
type newsEnvelope struct {
	articles     []types.ScoredArticle
	distribution sentiment.Distribution
	warnings     []marketdata.Warning
}

// NewsHandler searches recent headlines for a topic and scores each one
// with the VADER sentiment model. Provider failures degrade to an empty
// article list plus a warning.
func NewsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.NewsRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		query := strings.TrimSpace(req.Query)
		if query == "" {
			query = svcCtx.NewsConfig.DefaultQuery
		}
		if query == "" {
			query = "cryptocurrency"
		}

		now := time.Now().UTC()
		to, err := parseDateOr(req.To, now)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		from, err := parseDateOr(req.From, to.AddDate(0, 0, -7))
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		key := cache.NewsKey(query, from, to)
		value, cacheErr := svcCtx.Cache.Take(cache.ClassNews, key, func() (any, error) {
			return fetchScoredNews(r.Context(), svcCtx, query, from, to), nil
		})

		resp := types.NewsResponse{Query: query, Articles: []types.ScoredArticle{}, Warnings: []marketdata.Warning{}}
		if cacheErr != nil {
			logx.WithContext(r.Context()).Errorf("news cache failure for %q: %v", query, cacheErr)
			resp.Warnings = append(resp.Warnings, marketdata.Warning{
				Operation: "news_everything",
				Kind:      "internal",
				Message:   "News is temporarily unavailable.",
			})
		} else if env, ok := value.(*newsEnvelope); ok {
			resp.Articles = env.articles
			resp.Distribution = env.distribution
			resp.Warnings = env.warnings
		}

		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func fetchScoredNews(ctx context.Context, svcCtx *svc.ServiceContext, query string, from, to time.Time) *newsEnvelope {
	env := &newsEnvelope{articles: []types.ScoredArticle{}, warnings: []marketdata.Warning{}}

	articles, err := svcCtx.NewsClient.Everything(ctx, news.Query{Query: query, From: from, To: to})
	if err != nil {
		kind := market.Classify(err)
		logx.WithContext(ctx).Errorf("news fetch for %q failed (%s): %v", query, kind, err)
		env.warnings = append(env.warnings, marketdata.Warning{
			Operation: "news_everything",
			Kind:      kind.String(),
			Message:   newsFailureMessage(kind),
		})
		return env
	}

	scores := make([]sentiment.Score, 0, len(articles))
	for _, article := range articles {
		score := sentiment.AnalyzeHeadline(article.Title, article.Description)
		scores = append(scores, score)
		env.articles = append(env.articles, types.ScoredArticle{Article: article, Sentiment: score})
	}
	env.distribution = sentiment.Aggregate(scores)
	return env
}

func parseDateOr(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}

func newsFailureMessage(kind market.Kind) string {
	switch kind {
	case market.KindRateLimited:
		return "News provider rate limit reached. Please retry in a minute."
	case market.KindClient:
		return "News provider rejected the request. Check the API key and query."
	default:
		return "Could not reach the news provider."
	}
}
