package providers

import (
	"context"

	"nba-totals-service/internal/domain"
)

// GameProvider defines how upstream game data is fetched and normalized.
// The date parameter, when provided, should be a YYYYMMDD key indicating which
// day's games to fetch. Providers should interpret an empty date as "today" in
// their configured timezone.
type GameProvider interface {
	FetchGames(ctx context.Context, date string) ([]domain.Game, error)
}

// TeamProvider fetches the normalized team directory.
type TeamProvider interface {
	FetchTeams(ctx context.Context) ([]domain.Team, error)
}

// DataProvider combines all provider capabilities.
type DataProvider interface {
	GameProvider
	TeamProvider
}
