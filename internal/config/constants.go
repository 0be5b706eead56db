package config

import "time"

const (
	envPort           = "PORT"
	envPollInterval   = "POLL_INTERVAL"
	envProvider       = "PROVIDER"
	envMetricsPort    = "METRICS_PORT"
	envMetricsOn      = "METRICS_ENABLED"
	envOtelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService    = "OTEL_SERVICE_NAME"
	envOtelInsecure   = "OTEL_EXPORTER_OTLP_INSECURE"
	envGameCacheTTL   = "GAME_CACHE_TTL"
	envModelSetTTL    = "MODEL_SET_TTL"
	envHistoricalDays = "HISTORICAL_DAYS_LIMIT"

	defaultPort = "4000"
	// Live score poll cadence; the upstream scoreboard is unauthenticated but
	// polite clients stay at or above 30s.
	defaultPollInterval = 30 * Duration(time.Second)
	defaultProvider     = "espn"
	defaultMetricsPort  = "9090"
	// Dated game entries stay fresh for 10 hours; staleness is evaluated
	// lazily at read time.
	defaultGameCacheTTL = 10 * Duration(time.Hour)
	// Fitted model sets are served as-is for 10 minutes unless forced.
	defaultModelSetTTL = 10 * Duration(time.Minute)
	// Trailing window for historical analysis, in days.
	defaultHistoricalDays = 360
)
