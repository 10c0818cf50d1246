// Package hand scores 1–5 card poker hands and computes terminal
// utilities, per spec.md §4.2.
package hand

import (
	"sort"

	"github.com/mkemp/pokercfr/pkg/cards"
)

// Category orders hand categories from weakest to strongest. Hands of
// fewer than five cards reach only the categories their card count allows
// (a 2-card Leduc hand is HighCard or Pair; Kuhn's single card is always
// HighCard).
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	Trips
	Straight
	Flush
	FullHouse
	Quads
	StraightFlush
)

// Score is a lexicographically comparable hand value: category first,
// then descending rank tiebreakers (trip rank before kickers, etc.).
type Score struct {
	Category Category
	Ranks    []int
}

// Compare returns -1, 0, or 1 as s compares to other. Higher is better.
func (s Score) Compare(other Score) int {
	if s.Category != other.Category {
		if s.Category < other.Category {
			return -1
		}
		return 1
	}
	for i := 0; i < len(s.Ranks) && i < len(other.Ranks); i++ {
		if s.Ranks[i] != other.Ranks[i] {
			if s.Ranks[i] < other.Ranks[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Evaluate scores 1 to 5 cards, per spec.md §4.2: derive the (count, rank)
// pairs sorted descending; a full 5-card hand with all-distinct ranks
// checks for straight/flush, otherwise the pairing pattern itself is the
// category.
func Evaluate(hs []cards.Card, suits int) Score {
	if len(hs) == 0 || len(hs) > 5 {
		panic("hand.Evaluate: requires 1 to 5 cards")
	}

	type rankSuit struct{ rank, suit int }
	parsed := make([]rankSuit, len(hs))
	for i, c := range hs {
		parsed[i] = rankSuit{c.Rank(suits), c.Suit(suits)}
	}

	counts := map[int]int{}
	for _, p := range parsed {
		counts[p.rank]++
	}

	type countRank struct{ count, rank int }
	groups := make([]countRank, 0, len(counts))
	for r, c := range counts {
		groups = append(groups, countRank{c, r})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	pattern := make([]int, len(groups))
	ranks := make([]int, len(groups))
	for i, g := range groups {
		pattern[i] = g.count
		ranks[i] = g.rank
	}

	if len(hs) == 5 && len(groups) == 5 {
		// Candidate straight/flush: all five ranks distinct.
		straightRanks := append([]int(nil), ranks...)
		sort.Sort(sort.Reverse(sort.IntSlice(straightRanks)))
		if straightRanks[0] == 12 && straightRanks[1] == 3 {
			// Wheel: A-2-3-4-5 remaps {12,3,2,1,0} -> {3,2,1,0,-1}.
			straightRanks = []int{3, 2, 1, 0, -1}
		}
		isStraight := straightRanks[0]-straightRanks[4] == 4
		isFlush := true
		for _, p := range parsed[1:] {
			if p.suit != parsed[0].suit {
				isFlush = false
				break
			}
		}
		switch {
		case isFlush && isStraight:
			return Score{Category: StraightFlush, Ranks: straightRanks}
		case isStraight:
			return Score{Category: Straight, Ranks: straightRanks}
		case isFlush:
			return Score{Category: Flush, Ranks: ranks}
		}
		return Score{Category: HighCard, Ranks: ranks}
	}

	category := categoryFromPattern(pattern)
	return Score{Category: category, Ranks: ranks}
}

// categoryFromPattern maps a descending (count,count,...) pattern to a
// Category, covering every grouping up to 5 cards: (1)=high card,
// (2)=pair, (3)=trips, (2,1)=pair, (2,2)=two pair, (3,1)=trips,
// (3,2)=full house, (4)=quads, (4,1)=quads, (1,1,1,1,1)=high card, etc.
func categoryFromPattern(pattern []int) Category {
	switch {
	case len(pattern) > 0 && pattern[0] == 4:
		return Quads
	case len(pattern) >= 2 && pattern[0] == 3 && pattern[1] == 2:
		return FullHouse
	case len(pattern) > 0 && pattern[0] == 3:
		return Trips
	case len(pattern) >= 2 && pattern[0] == 2 && pattern[1] == 2:
		return TwoPair
	case len(pattern) > 0 && pattern[0] == 2:
		return Pair
	default:
		return HighCard
	}
}

// Winners returns, among the hands where folded[i] is false, the indices
// achieving the lexicographically maximum Score (possibly more than one on
// ties). Folded hands are ignored entirely, including a nil hand.
func Winners(hands [][]cards.Card, folded []bool, suits int) []int {
	best := -1
	var bestScore Score
	var winners []int
	for i, h := range hands {
		if folded[i] || h == nil {
			continue
		}
		s := Evaluate(h, suits)
		if best == -1 || s.Compare(bestScore) > 0 {
			bestScore = s
			best = i
			winners = []int{i}
		} else if s.Compare(bestScore) == 0 {
			winners = append(winners, i)
		}
	}
	return winners
}

// TerminalUtility computes per-player utility at a terminal node, per
// spec.md §4.2: the sole unfolded player wins the whole pot; otherwise the
// pot splits evenly among Winners(). holeCards[p] may be nil for a folded
// player. board is appended to each unfolded player's hole cards before
// scoring.
func TerminalUtility(holeCards [][]cards.Card, board []cards.Card, folded []bool, potCommitment []int, suits int) []float64 {
	numPlayers := len(potCommitment)
	utility := make([]float64, numPlayers)

	liveCount := 0
	lastLive := -1
	for p := 0; p < numPlayers; p++ {
		if !folded[p] {
			liveCount++
			lastLive = p
		}
	}

	pot := 0
	for _, c := range potCommitment {
		pot += c
	}

	if liveCount == 1 {
		for p := 0; p < numPlayers; p++ {
			utility[p] = -float64(potCommitment[p])
		}
		utility[lastLive] += float64(pot)
		return utility
	}

	hands := make([][]cards.Card, numPlayers)
	for p := 0; p < numPlayers; p++ {
		if folded[p] {
			continue
		}
		combined := make([]cards.Card, 0, len(holeCards[p])+len(board))
		combined = append(combined, holeCards[p]...)
		combined = append(combined, board...)
		hands[p] = combined
	}

	winners := Winners(hands, folded, suits)
	share := float64(pot) / float64(len(winners))
	isWinner := make(map[int]bool, len(winners))
	for _, w := range winners {
		isWinner[w] = true
	}
	for p := 0; p < numPlayers; p++ {
		utility[p] = -float64(potCommitment[p])
		if isWinner[p] {
			utility[p] += share
		}
	}
	return utility
}
