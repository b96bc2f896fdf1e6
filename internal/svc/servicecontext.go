package svc

import (
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"coinwatch-api/internal/cache"
	"coinwatch-api/internal/config"
	"coinwatch-api/internal/marketdata"
	marketpersist "coinwatch-api/internal/persistence/market"
	"coinwatch-api/internal/portfolio"
	"coinwatch-api/pkg/analysis"
	"coinwatch-api/pkg/journal"
	marketpkg "coinwatch-api/pkg/market"
	_ "coinwatch-api/pkg/market/providers/coingecko"
	newspkg "coinwatch-api/pkg/news"
)

type ServiceContext struct {
	Config config.Config

	MarketConfig    *marketpkg.Config
	MarketProviders map[string]marketpkg.Provider
	DefaultMarket   marketpkg.Provider

	Cache      *cache.Store
	MarketData *marketdata.Store

	AnalysisConfig *analysis.Config

	NewsConfig *newspkg.Config
	NewsClient *newspkg.Client

	Sessions *portfolio.Sessions

	Journal *journal.Writer

	// Optional snapshot recorder; nil without a Postgres DSN.
	DBConn   sqlx.SqlConn
	Recorder marketpkg.Persistence
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{
		Config:   c,
		Sessions: portfolio.NewSessions(time.Duration(c.SessionTTLMinutes) * time.Minute),
		Cache:    cache.MustNewStore(cache.NewTTLSet(c.TTL)),
	}

	// Market providers: use the hydrated section when present, otherwise a
	// bare coingecko provider on its public defaults.
	marketCfg := c.Market.Value
	if marketCfg == nil {
		marketCfg = &marketpkg.Config{
			Default:   "coingecko",
			Providers: map[string]*marketpkg.ProviderConfig{"coingecko": {Type: "coingecko"}},
		}
	}
	providers, err := marketCfg.BuildProviders()
	if err != nil {
		log.Fatalf("failed to build market providers: %v", err)
	}
	svc.MarketConfig = marketCfg
	svc.MarketProviders = providers
	if marketCfg.Default != "" {
		svc.DefaultMarket = providers[marketCfg.Default]
	}
	if svc.DefaultMarket == nil {
		for _, provider := range providers {
			svc.DefaultMarket = provider
			break
		}
	}
	if svc.DefaultMarket == nil {
		log.Fatalf("no market provider configured")
	}

	if c.JournalDir != "" {
		svc.Journal = journal.NewWriter(c.JournalDir)
	}

	dataOpts := []marketdata.Option{}
	if svc.Journal != nil {
		dataOpts = append(dataOpts, marketdata.WithJournal(svc.Journal))
	}
	svc.MarketData = marketdata.NewStore(svc.DefaultMarket, svc.Cache, dataOpts...)

	svc.AnalysisConfig = c.Analysis.Value
	if svc.AnalysisConfig == nil {
		svc.AnalysisConfig = analysis.DefaultConfig()
	}

	svc.NewsConfig = c.News.Value
	if svc.NewsConfig == nil {
		// Without a config file the news endpoint stays up but reports the
		// missing credential per request.
		svc.NewsConfig = &newspkg.Config{}
	}
	svc.NewsClient = newspkg.NewClientFromConfig(svc.NewsConfig)

	// Only wire the recorder when a DSN is provided; the data model stays
	// transient otherwise.
	if c.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
		svc.DBConn = conn
		svc.Recorder = marketpersist.NewService(marketpersist.Config{SQLConn: conn})
		if hook, ok := svc.DefaultMarket.(interface {
			SetPersistence(marketpkg.Persistence)
		}); ok {
			hook.SetPersistence(svc.Recorder)
		}
	}
	return svc
}

// Close releases the context's owned resources. Safe on a partially
// built context.
func (s *ServiceContext) Close() {
	if s.Journal != nil {
		if err := s.Journal.Close(); err != nil {
			log.Printf("closing fetch journal: %v", err)
		}
	}
}
