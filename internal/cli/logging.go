package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"coinwatch-api/internal/config"
	"coinwatch-api/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Fetch journal: %s", presence(strings.TrimSpace(cfg.JournalDir) != "")),
		fmt.Sprintf("Session TTL: %dm", cfg.SessionTTLMinutes),
		fmt.Sprintf("TTL (prices/markets/global): %ds / %ds / %ds", cfg.TTL.Prices, cfg.TTL.Markets, cfg.TTL.Global),
		fmt.Sprintf("TTL (chart/ohlc/coin list): %ds / %ds / %ds", cfg.TTL.Chart, cfg.TTL.OHLC, cfg.TTL.CoinList),
		sectionLine("Market config", cfg.Market),
		sectionLine("Analysis config", cfg.Analysis),
		sectionLine("News config", cfg.News),
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
