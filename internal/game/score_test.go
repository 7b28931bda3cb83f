package game

import (
	"testing"
	"time"
)

func TestPoints(t *testing.T) {
	limit := 20 * time.Second

	tests := []struct {
		name    string
		correct bool
		elapsed time.Duration
		limit   time.Duration
		want    int
	}{
		{"instant answer", true, 0, limit, 1000},
		{"one tenth in", true, 2 * time.Second, limit, 950},
		{"half the window", true, 10 * time.Second, limit, 750},
		{"at the deadline", true, limit, limit, 500},
		{"past the deadline", true, 40 * time.Second, limit, 0},
		{"wrong answer", false, 0, limit, 0},
		{"wrong answer late", false, 19 * time.Second, limit, 0},
		{"zero limit", true, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Points(tt.correct, tt.elapsed, tt.limit); got != tt.want {
				t.Errorf("Points(%v, %v, %v) = %d, want %d",
					tt.correct, tt.elapsed, tt.limit, got, tt.want)
			}
		})
	}
}

func TestPointsRounding(t *testing.T) {
	// 1000 * (1 - 0.5*(1/3)) = 833.33… rounds to 833.
	if got := Points(true, 10*time.Second, 30*time.Second); got != 833 {
		t.Errorf("Points one third in = %d, want 833", got)
	}
}

func TestRankOrdersByScore(t *testing.T) {
	a := &Member{ID: "a", Name: "Ana", Score: 500, Seat: 0}
	b := &Member{ID: "b", Name: "Bia", Score: 900, Seat: 1}
	c := &Member{ID: "c", Name: "Caio", Score: 700, Seat: 2}

	ranking := Rank([]*Member{a, b, c})

	wantOrder := []string{"b", "c", "a"}
	for i, id := range wantOrder {
		if ranking[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i+1, ranking[i].ID, id)
		}
		if ranking[i].Position != i+1 {
			t.Errorf("entry %d carries position %d", i, ranking[i].Position)
		}
	}
}

func TestRankTieBreaks(t *testing.T) {
	// Same score: the earlier award timestamp wins.
	a := &Member{ID: "a", Score: 800, Seat: 0, lastAwardTS: 40}
	b := &Member{ID: "b", Score: 800, Seat: 1, lastAwardTS: 25}

	ranking := Rank([]*Member{a, b})
	if ranking[0].ID != "b" {
		t.Errorf("earlier award should rank first, got %s", ranking[0].ID)
	}

	// Same score and timestamp: the earlier seat wins.
	c := &Member{ID: "c", Score: 800, Seat: 3, lastAwardTS: 25}
	d := &Member{ID: "d", Score: 800, Seat: 2, lastAwardTS: 25}

	ranking = Rank([]*Member{c, d})
	if ranking[0].ID != "d" {
		t.Errorf("earlier seat should rank first, got %s", ranking[0].ID)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	a := &Member{ID: "a", Score: 1, Seat: 0}
	b := &Member{ID: "b", Score: 2, Seat: 1}
	players := []*Member{a, b}

	Rank(players)

	if players[0] != a || players[1] != b {
		t.Error("Rank must sort a copy, not the roster slice")
	}
}
