package config

import "time"

// ModelingConfig controls cache windows for the analytical pipeline.
type ModelingConfig struct {
	GameCacheTTL   time.Duration // dated game cache freshness window
	ModelSetTTL    time.Duration // fitted model set freshness window
	HistoricalDays int           // trailing window for last-N lookups
}

func loadModeling() ModelingConfig {
	return ModelingConfig{
		GameCacheTTL:   durationEnvOrDefault(envGameCacheTTL, defaultGameCacheTTL),
		ModelSetTTL:    durationEnvOrDefault(envModelSetTTL, defaultModelSetTTL),
		HistoricalDays: intEnvOrDefault(envHistoricalDays, defaultHistoricalDays),
	}
}
