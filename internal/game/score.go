package game

import (
	"math"
	"sort"
	"time"
)

// Points computes the award for one accepted answer. A correct answer is
// worth 1000 at the instant the question appears, decaying linearly to 500
// at the deadline; incorrect answers and timeouts are worth nothing.
func Points(correct bool, elapsed, limit time.Duration) int {
	if !correct || limit <= 0 {
		return 0
	}
	factor := 1 - 0.5*(float64(elapsed)/float64(limit))
	p := int(math.Round(1000 * factor))
	if p < 0 {
		p = 0
	}
	return p
}

// RankingEntry is one row of a results or podium ranking.
type RankingEntry struct {
	Position  int    `json:"position"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	LastDelta int    `json:"last_points"`
}

// Rank orders players by score descending. Ties go to the lower logical
// timestamp of the latest awarded answer, then to the earlier seat.
func Rank(players []*Member) []RankingEntry {
	sorted := make([]*Member, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.lastAwardTS != b.lastAwardTS {
			return a.lastAwardTS < b.lastAwardTS
		}
		return a.Seat < b.Seat
	})

	out := make([]RankingEntry, 0, len(sorted))
	for i, m := range sorted {
		out = append(out, RankingEntry{
			Position:  i + 1,
			ID:        m.ID,
			Name:      m.Name,
			Score:     m.Score,
			LastDelta: m.LastDelta,
		})
	}
	return out
}
