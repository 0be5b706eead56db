package espn

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nba-totals-service/internal/domain"
)

// eventTimeLayout matches ESPN event timestamps, which omit seconds.
const eventTimeLayout = "2006-01-02T15:04Z07:00"

func mapGame(event eventResponse, date string) (domain.Game, bool) {
	if len(event.Competitions) == 0 {
		return domain.Game{}, false
	}
	competition := event.Competitions[0]

	var home, away *competitorResponse
	for i := range competition.Competitors {
		switch competition.Competitors[i].HomeAway {
		case "home":
			home = &competition.Competitors[i]
		case "away":
			away = &competition.Competitors[i]
		}
	}
	if home == nil || away == nil {
		return domain.Game{}, false
	}

	status := competition.Status
	completed := status.Type.Completed
	inProgress := !completed && status.Type.State == "in"

	id := event.ID
	if id == "" {
		id = fmt.Sprintf("%s-%s-vs-%s", date, home.Team.Abbreviation, away.Team.Abbreviation)
	}
	name := event.ShortName
	if name == "" {
		name = id
	}

	clock := ""
	if inProgress {
		clock = strings.TrimSpace(status.DisplayClock)
	}

	return domain.Game{
		ID:            id,
		Name:          name,
		Date:          date,
		StartTime:     parseEventTime(event.Date),
		HomeTeam:      mapTeam(home.Team),
		AwayTeam:      mapTeam(away.Team),
		HomeQuarters:  mapQuarters(home.Linescores),
		AwayQuarters:  mapQuarters(away.Linescores),
		HomeScore:     parseScore(home.Score),
		AwayScore:     parseScore(away.Score),
		Status:        status.Type.Description,
		Completed:     completed,
		InProgress:    inProgress,
		State:         domain.GameState(status.Type.State),
		CurrentPeriod: status.Period,
		Clock:         clock,
		Overtime:      status.Period > 4,
	}, true
}

func mapTeam(t teamResponse) domain.Team {
	logo := t.Logo
	if logo == "" && len(t.Logos) > 0 {
		logo = t.Logos[0].Href
	}
	return domain.Team{
		Abbreviation: t.Abbreviation,
		DisplayName:  t.DisplayName,
		Logo:         logo,
	}
}

// mapQuarters fills a fixed-size quarter line from upstream linescores.
// Quarters the upstream has not reported stay unplayed; they are never
// defaulted to zero. Overtime periods beyond the fourth slot are dropped.
func mapQuarters(linescores []linescoreResponse) domain.Quarters {
	var quarters domain.Quarters
	for i, ls := range linescores {
		if i >= len(quarters) {
			break
		}
		quarters[i] = domain.Period{Points: int(ls.Value), Played: true}
	}
	return quarters
}

func parseScore(raw string) int {
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || score < 0 {
		return 0
	}
	return score
}

func parseEventTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(eventTimeLayout, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}
