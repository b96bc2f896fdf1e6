// Command cron records periodic market snapshots into Postgres so the
// dashboard has history beyond what the upstream API serves. It shares
// the API server's configuration file and provider registry.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver

	"coinwatch-api/internal/cli"
	"coinwatch-api/internal/config"
	marketpersist "coinwatch-api/internal/persistence/market"
	"coinwatch-api/pkg/market"

	_ "coinwatch-api/pkg/market/providers/coingecko"
)

const (
	snapshotSpec = "@every 10m"
	chartSpec    = "@every 1h"
	listingSpec  = "@every 6h"

	jobTimeout      = 30 * time.Second
	snapshotPerPage = 100
)

var (
	configFile = flag.String("f", "etc/coinwatch.yaml", "the config file")
	coinsFlag  = flag.String("coins", "bitcoin,ethereum,solana", "comma-separated coin ids to record charts for")
	currency   = flag.String("currency", "usd", "quote currency for recorded data")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] starting snapshot recorder...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	for _, line := range cli.ConfigSummaryLines(cfg) {
		log.Printf("  - %s", line)
	}

	if cfg.Postgres.DSN == "" {
		log.Fatal("[main] postgres dsn is required to record snapshots")
	}

	marketCfg := cfg.Market.Value
	if marketCfg == nil {
		marketCfg = config.MustLoadMarket()
	}
	providers, err := marketCfg.BuildProviders()
	if err != nil {
		log.Fatalf("[main] failed to build market providers: %v", err)
	}
	provider, ok := providers[marketCfg.Default]
	if !ok {
		log.Fatalf("[main] default market provider %q not found", marketCfg.Default)
	}

	recorder := marketpersist.NewService(marketpersist.Config{
		SQLConn: sqlx.NewSqlConn("pgx", cfg.Postgres.DSN),
	})

	coins := splitCoins(*coinsFlag)
	log.Printf("[main] recording provider=%s currency=%s coins=%v", marketCfg.Default, *currency, coins)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &jobRunner{
		provider:     provider,
		providerName: marketCfg.Default,
		recorder:     recorder,
		currency:     *currency,
		coins:        coins,
	}

	scheduler := cron.New()
	mustSchedule(scheduler, snapshotSpec, func() { runner.recordSnapshot(ctx) })
	mustSchedule(scheduler, chartSpec, func() { runner.recordCharts(ctx) })
	mustSchedule(scheduler, listingSpec, func() { runner.recordListings(ctx) })

	// Prime each table once at startup so a fresh database is useful
	// before the first tick.
	runner.recordListings(ctx)
	runner.recordSnapshot(ctx)
	runner.recordCharts(ctx)

	scheduler.Start()
	log.Println("[main] recorder started. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Println("[main] shutdown signal received, stopping jobs...")
	<-scheduler.Stop().Done()
	log.Println("[main] recorder stopped")
}

type jobRunner struct {
	provider     market.Provider
	providerName string
	recorder     market.Persistence
	currency     string
	coins        []string
}

func (j *jobRunner) recordSnapshot(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	start := time.Now()
	rows, err := j.provider.ChangeMarkets(ctx, j.currency, snapshotPerPage)
	if err != nil {
		log.Printf("[snapshot] [ERROR] fetch: %v, took %dms", err, time.Since(start).Milliseconds())
		return
	}
	if err := j.recorder.RecordSnapshotRows(ctx, j.providerName, j.currency, rows); err != nil {
		log.Printf("[snapshot] [ERROR] persist: %v", err)
		return
	}
	log.Printf("[snapshot] [OK] recorded %d rows, took %dms", len(rows), time.Since(start).Milliseconds())
}

func (j *jobRunner) recordCharts(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	for _, coin := range j.coins {
		ctx, cancel := context.WithTimeout(parent, jobTimeout)
		start := time.Now()
		points, err := j.provider.MarketChart(ctx, coin, j.currency, 1)
		if err != nil {
			log.Printf("[chart.%s] [ERROR] fetch: %v, took %dms", coin, err, time.Since(start).Milliseconds())
			cancel()
			continue
		}
		if err := j.recorder.RecordPricePoints(ctx, j.providerName, coin, j.currency, points); err != nil {
			log.Printf("[chart.%s] [ERROR] persist: %v", coin, err)
			cancel()
			continue
		}
		log.Printf("[chart.%s] [OK] recorded %d points, took %dms", coin, len(points), time.Since(start).Milliseconds())
		cancel()
	}
}

func (j *jobRunner) recordListings(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	start := time.Now()
	listings, err := j.provider.CoinList(ctx)
	if err != nil {
		log.Printf("[listings] [ERROR] fetch: %v, took %dms", err, time.Since(start).Milliseconds())
		return
	}
	if err := j.recorder.UpsertListings(ctx, j.providerName, listings); err != nil {
		log.Printf("[listings] [ERROR] persist: %v", err)
		return
	}
	log.Printf("[listings] [OK] recorded %d coins, took %dms", len(listings), time.Since(start).Milliseconds())
}

func mustSchedule(scheduler *cron.Cron, spec string, job func()) {
	if _, err := scheduler.AddFunc(spec, job); err != nil {
		log.Fatalf("[main] bad schedule %q: %v", spec, err)
	}
}

func splitCoins(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
