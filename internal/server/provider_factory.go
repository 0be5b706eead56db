package server

import (
	"fmt"
	"log/slog"
	"strings"

	"nba-totals-service/internal/config"
	"nba-totals-service/internal/metrics"
	"nba-totals-service/internal/providers"
	"nba-totals-service/internal/providers/espn"
	"nba-totals-service/internal/providers/fixture"
)

// baseProvider is the upstream client before any wrappers: it serves both
// games and the team directory.
type baseProvider interface {
	providers.GameProvider
	providers.TeamProvider
}

// providerFactory assembles the provider chains shared by the poller and the
// historical cache.
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

func selectProvider(cfg config.Config, logger *slog.Logger) baseProvider {
	switch strings.ToLower(cfg.Provider) {
	case "fixture":
		return fixture.New()
	default:
		return espn.NewClient(espn.Config{
			BaseURL:  cfg.ESPN.BaseURL,
			Timezone: cfg.ESPN.Timezone,
		})
	}
}

// buildLive wraps the base provider for the poll loop: a shared rate limit to
// respect upstream quota, then a breaker and retries.
func (f providerFactory) buildLive(cfg config.Config, base baseProvider) providers.GameProvider {
	name := normalizeProviderName(cfg.Provider, base)
	limited := providers.NewRateLimitedProvider(base, cfg.PollInterval, f.logger)
	guarded := providers.NewBreakerProvider(limited, f.logger, name)
	return providers.NewRetryingProvider(guarded, f.logger, f.metrics, name, 0, 0)
}

// buildHistorical wraps the base provider for backfill fetches feeding the
// dated cache. No rate limit here: range queries walk many dates and the
// cache already deduplicates.
func (f providerFactory) buildHistorical(cfg config.Config, base baseProvider) providers.GameProvider {
	name := normalizeProviderName(cfg.Provider, base)
	guarded := providers.NewBreakerProvider(base, f.logger, name)
	return providers.NewRetryingProvider(guarded, f.logger, f.metrics, name, 0, 0)
}

// normalizeProviderName returns a lower-cased provider name, deriving from
// the instance when not explicitly configured.
func normalizeProviderName(raw string, provider providers.GameProvider) string {
	if raw != "" {
		return strings.ToLower(raw)
	}
	if provider != nil {
		return strings.ToLower(fmt.Sprintf("%T", provider))
	}
	return "provider"
}
