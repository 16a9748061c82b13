// Package prob implements the combinatorial probability math used by the
// deck analysis pipeline: hypergeometric draw probabilities, mulligan rates
// and turn-based draw estimates.
package prob

import "math"

// Cards seen by a given turn, counting the opening hand. Curated estimates
// that assume one natural draw per turn plus average draw-supporter usage;
// not derived from game simulation.
const (
	CardsSeenTurn1 = 7
	CardsSeenTurn2 = 15
	CardsSeenTurn3 = 20
)

// HandSize is the opening hand size.
const HandSize = 7

// logChoose returns log(C(n, k)) computed term by term to avoid overflow for
// populations up to several hundred cards. Invalid inputs return -Inf.
func logChoose(n, k int) float64 {
	if k < 0 || n < 0 || k > n {
		return math.Inf(-1)
	}
	// C(n,k) == C(n,n-k); sum the smaller side.
	if k > n-k {
		k = n - k
	}
	sum := 0.0
	for i := 0; i < k; i++ {
		sum += math.Log(float64(n-i)) - math.Log(float64(i+1))
	}
	return sum
}

// Hypergeometric returns the probability of drawing exactly k successes in n
// draws without replacement from a population of size total containing
// successes success cards. Out-of-range combinations return 0 rather than
// NaN.
func Hypergeometric(k, total, successes, draws int) float64 {
	if total <= 0 || draws < 0 || successes < 0 {
		return 0
	}
	if k < 0 || k > successes || k > draws || draws-k > total-successes {
		return 0
	}
	if draws > total {
		draws = total
	}
	logP := logChoose(successes, k) +
		logChoose(total-successes, draws-k) -
		logChoose(total, draws)
	p := math.Exp(logP)
	if math.IsNaN(p) {
		return 0
	}
	return clamp01(p)
}

// AtLeastOne returns the probability of drawing one or more successes in
// draws cards.
func AtLeastOne(total, successes, draws int) float64 {
	if successes <= 0 || total <= 0 || draws <= 0 {
		return 0
	}
	if successes >= total {
		return 1
	}
	return clamp01(1 - Hypergeometric(0, total, successes, draws))
}

// AtLeast returns the probability of drawing min or more of the given copies
// in draws cards, summing the upper tail of the distribution.
func AtLeast(copies, min, total, draws int) float64 {
	if min <= 0 {
		return 1
	}
	if copies <= 0 || total <= 0 || draws <= 0 {
		return 0
	}
	upper := copies
	if draws < upper {
		upper = draws
	}
	sum := 0.0
	for k := min; k <= upper; k++ {
		sum += Hypergeometric(k, total, copies, draws)
	}
	return clamp01(sum)
}

// MulliganProbability returns the probability of an opening hand with no
// Basic Pokémon. A deck with no basics always mulligans; a deck of all
// basics never does.
func MulliganProbability(basics, deckSize, handSize int) float64 {
	if deckSize <= 0 || handSize <= 0 {
		return 1
	}
	if basics <= 0 {
		return 1
	}
	if basics >= deckSize {
		return 0
	}
	return Hypergeometric(0, deckSize, basics, handSize)
}

// ByTurn returns the probability of having seen at least one of the given
// copies by the end of the given turn, using the curated cards-seen
// constants. Turns past 3 reuse the turn-3 estimate.
func ByTurn(copies, deckSize, turn int) float64 {
	seen := CardsSeenTurn1
	switch {
	case turn <= 1:
		seen = CardsSeenTurn1
	case turn == 2:
		seen = CardsSeenTurn2
	default:
		seen = CardsSeenTurn3
	}
	if seen > deckSize {
		seen = deckSize
	}
	return AtLeastOne(deckSize, copies, seen)
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
