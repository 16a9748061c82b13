package prob

import (
	"math"
	"testing"
)

func TestHypergeometric_SumsToOne(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		successes int
		draws     int
	}{
		{name: "standard deck opening hand", total: 60, successes: 12, draws: 7},
		{name: "small population", total: 10, successes: 4, draws: 3},
		{name: "draws exceed successes", total: 60, successes: 2, draws: 7},
		{name: "all successes", total: 60, successes: 60, draws: 7},
		{name: "large population", total: 300, successes: 80, draws: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := 0.0
			upper := tt.successes
			if tt.draws < upper {
				upper = tt.draws
			}
			for k := 0; k <= upper; k++ {
				sum += Hypergeometric(k, tt.total, tt.successes, tt.draws)
			}
			if math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("distribution sums to %.12f, want 1.0", sum)
			}
		})
	}
}

func TestHypergeometric_EdgeCases(t *testing.T) {
	tests := []struct {
		name                       string
		k, total, successes, draws int
		want                       float64
	}{
		{name: "k exceeds successes", k: 3, total: 60, successes: 2, draws: 7, want: 0},
		{name: "k exceeds draws", k: 8, total: 60, successes: 20, draws: 7, want: 0},
		{name: "too many failures required", k: 0, total: 10, successes: 8, draws: 5, want: 0},
		{name: "zero population", k: 0, total: 0, successes: 0, draws: 0, want: 0},
		{name: "negative k", k: -1, total: 60, successes: 10, draws: 7, want: 0},
		{name: "certain draw", k: 7, total: 7, successes: 7, draws: 7, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hypergeometric(tt.k, tt.total, tt.successes, tt.draws)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Hypergeometric(%d,%d,%d,%d) = %v, want %v",
					tt.k, tt.total, tt.successes, tt.draws, got, tt.want)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("Hypergeometric returned non-finite %v", got)
			}
		})
	}
}

func TestMulliganProbability(t *testing.T) {
	// Known value: 10 basics in a 60-card deck, 7-card hand.
	got := MulliganProbability(10, 60, 7)
	if math.Abs(got-0.2586) > 0.005 {
		t.Errorf("MulliganProbability(10,60,7) = %.4f, want ~0.2586", got)
	}

	if got := MulliganProbability(0, 60, 7); got != 1 {
		t.Errorf("MulliganProbability(0,60,7) = %v, want 1", got)
	}
	if got := MulliganProbability(60, 60, 7); got != 0 {
		t.Errorf("MulliganProbability(60,60,7) = %v, want 0", got)
	}
	if got := MulliganProbability(5, 0, 7); got != 1 {
		t.Errorf("MulliganProbability with zero deck = %v, want 1", got)
	}
}

func TestMulliganProbability_NonIncreasing(t *testing.T) {
	prev := 1.0
	for basics := 0; basics <= 60; basics++ {
		p := MulliganProbability(basics, 60, 7)
		if p > prev+1e-12 {
			t.Fatalf("mulligan probability increased at basics=%d: %v > %v", basics, p, prev)
		}
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range at basics=%d: %v", basics, p)
		}
		prev = p
	}
}

func TestAtLeastOne(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		successes int
		draws     int
		want      float64
		tol       float64
	}{
		{name: "no successes", total: 60, successes: 0, draws: 7, want: 0, tol: 0},
		{name: "all successes", total: 60, successes: 60, draws: 7, want: 1, tol: 0},
		{name: "four copies in opening hand", total: 60, successes: 4, draws: 7, want: 0.3995, tol: 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AtLeastOne(tt.total, tt.successes, tt.draws)
			if math.Abs(got-tt.want) > tt.tol+1e-9 {
				t.Errorf("AtLeastOne(%d,%d,%d) = %.4f, want %.4f",
					tt.total, tt.successes, tt.draws, got, tt.want)
			}
		})
	}
}

func TestAtLeast(t *testing.T) {
	// AtLeast(c,1,...) must agree with AtLeastOne.
	a := AtLeast(4, 1, 60, 7)
	b := AtLeastOne(60, 4, 7)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("AtLeast(4,1,60,7) = %v, AtLeastOne = %v", a, b)
	}

	if got := AtLeast(4, 0, 60, 7); got != 1 {
		t.Errorf("AtLeast with min=0 = %v, want 1", got)
	}
	if got := AtLeast(0, 1, 60, 7); got != 0 {
		t.Errorf("AtLeast with no copies = %v, want 0", got)
	}

	// Tail sums must be monotonically non-increasing in min.
	prev := 1.0
	for min := 1; min <= 4; min++ {
		p := AtLeast(4, min, 60, 7)
		if p > prev+1e-12 {
			t.Errorf("AtLeast increased at min=%d: %v > %v", min, p, prev)
		}
		prev = p
	}
}

func TestByTurn(t *testing.T) {
	// More turns seen means equal or better odds.
	t1 := ByTurn(4, 60, 1)
	t2 := ByTurn(4, 60, 2)
	t3 := ByTurn(4, 60, 3)
	if t2 < t1 || t3 < t2 {
		t.Errorf("ByTurn not monotone: t1=%v t2=%v t3=%v", t1, t2, t3)
	}
	if t4 := ByTurn(4, 60, 4); t4 != t3 {
		t.Errorf("turns past 3 should reuse turn-3 estimate: %v != %v", t4, t3)
	}

	// Cards seen capped at deck size.
	if got := ByTurn(4, 10, 3); got <= 0 || got > 1 {
		t.Errorf("ByTurn with small deck = %v, want (0,1]", got)
	}
}
