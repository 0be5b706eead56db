package repo

import "nba-totals-service/internal/domain"

// TeamAverages summarizes per-quarter scoring for the team across games with
// at least three recorded quarters and a positive total. ok is false when no
// game qualifies.
func TeamAverages(abbr string, games []domain.Game) (domain.TeamAverages, bool) {
	var sums struct {
		q1, q2, q3, q4 int
		sum3Q, total   int
		count          int
	}

	for _, g := range games {
		quarters, total, _, involved := g.Side(abbr)
		if !involved || quarters.Recorded() < 3 || total <= 0 {
			continue
		}
		sums.q1 += quarters[0].Points
		sums.q2 += quarters[1].Points
		sums.q3 += quarters[2].Points
		sums.q4 += quarters[3].Points
		sums.sum3Q += quarters.Sum3Q()
		sums.total += total
		sums.count++
	}

	if sums.count == 0 {
		return domain.TeamAverages{}, false
	}

	n := float64(sums.count)
	return domain.TeamAverages{
		Team:          abbr,
		AvgQ1:         float64(sums.q1) / n,
		AvgQ2:         float64(sums.q2) / n,
		AvgQ3:         float64(sums.q3) / n,
		AvgQ4:         float64(sums.q4) / n,
		AvgSum3Q:      float64(sums.sum3Q) / n,
		AvgTotal:      float64(sums.total) / n,
		GamesAnalyzed: sums.count,
	}, true
}
