package tree

import "github.com/mkemp/pokercfr/pkg/cards"

// Combinations returns every k-element subset of deck, each preserving
// deck's relative ordering, enumerated in a fixed combinatorial-index
// order so that two builds of the same game produce identical
// insertion-ordered child keys (spec.md §8 "tree determinism").
func Combinations(deck []cards.Card, k int) [][]cards.Card {
	n := len(deck)
	if k <= 0 {
		return [][]cards.Card{{}}
	}
	if k > n {
		return nil
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	var result [][]cards.Card
	for {
		combo := make([]cards.Card, k)
		for i, ix := range idx {
			combo[i] = deck[ix]
		}
		result = append(result, combo)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return result
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// removeCards returns deck with every card in remove filtered out,
// preserving relative order.
func removeCards(deck []cards.Card, remove []cards.Card) []cards.Card {
	skip := make(map[cards.Card]bool, len(remove))
	for _, c := range remove {
		skip[c] = true
	}
	out := make([]cards.Card, 0, len(deck)-len(remove))
	for _, c := range deck {
		if !skip[c] {
			out = append(out, c)
		}
	}
	return out
}
