package domain

import "time"

// GameState mirrors the upstream lifecycle descriptor for a game.
type GameState string

const (
	StatePre  GameState = "pre"
	StateIn   GameState = "in"
	StatePost GameState = "post"
)

// Team describes one franchise as exposed by the team directory.
type Team struct {
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
	Logo         string `json:"logo,omitempty"`
}

// Period holds one quarter's points for one side of a game. Played
// distinguishes a genuine zero-point quarter from a quarter that has not been
// recorded; zero is never used as an absence sentinel.
type Period struct {
	Points int  `json:"points"`
	Played bool `json:"played"`
}

// Quarters is a fixed-size per-quarter score line. Slots beyond the recorded
// quarters stay unplayed.
type Quarters [4]Period

// Recorded returns how many quarter slots hold a recorded value.
func (q Quarters) Recorded() int {
	n := 0
	for _, p := range q {
		if p.Played {
			n++
		}
	}
	return n
}

// Sum3Q sums the first three quarter slots. Unplayed slots contribute zero;
// callers gate on Recorded() when at least three quarters are required.
func (q Quarters) Sum3Q() int {
	sum := 0
	for i := 0; i < 3; i++ {
		if q[i].Played {
			sum += q[i].Points
		}
	}
	return sum
}

// Contiguous scans quarter slots from the first and stops at the first
// unplayed one. It returns the 1-based index of the last contiguous recorded
// quarter and the point sum up to it; quarter is zero when no quarters are
// recorded from the start.
func (q Quarters) Contiguous() (quarter, sum int) {
	for i, p := range q {
		if !p.Played {
			break
		}
		sum += p.Points
		quarter = i + 1
	}
	return quarter, sum
}

// Game is the canonical game shape produced by the normalizer. Immutable once
// constructed.
type Game struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Date          string    `json:"date"`
	StartTime     time.Time `json:"startTime"`
	HomeTeam      Team      `json:"homeTeam"`
	AwayTeam      Team      `json:"awayTeam"`
	HomeQuarters  Quarters  `json:"homeQuarters"`
	AwayQuarters  Quarters  `json:"awayQuarters"`
	HomeScore     int       `json:"homeScore"`
	AwayScore     int       `json:"awayScore"`
	Status        string    `json:"status"`
	Completed     bool      `json:"completed"`
	InProgress    bool      `json:"inProgress"`
	State         GameState `json:"state"`
	CurrentPeriod int       `json:"currentPeriod,omitempty"`
	Clock         string    `json:"clock,omitempty"`
	Overtime      bool      `json:"overtime,omitempty"`
}

// Involves reports whether either side of the game carries the abbreviation.
func (g Game) Involves(abbr string) bool {
	return g.HomeTeam.Abbreviation == abbr || g.AwayTeam.Abbreviation == abbr
}

// Side returns the quarter line and running total for the named team, along
// with whether it played at home. ok is false when the team did not take part.
func (g Game) Side(abbr string) (quarters Quarters, total int, home, ok bool) {
	switch abbr {
	case g.HomeTeam.Abbreviation:
		return g.HomeQuarters, g.HomeScore, true, true
	case g.AwayTeam.Abbreviation:
		return g.AwayQuarters, g.AwayScore, false, true
	default:
		return Quarters{}, 0, false, false
	}
}

// Opponent returns the other side's team descriptor for the named team.
func (g Game) Opponent(abbr string) Team {
	if g.HomeTeam.Abbreviation == abbr {
		return g.AwayTeam
	}
	return g.HomeTeam
}
