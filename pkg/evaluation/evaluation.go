// Package evaluation computes the expected utility of a strategy profile
// and the exploitability of a strategy, per spec.md §4.6.
package evaluation

import (
	"github.com/mkemp/pokercfr/pkg/bestresponse"
	"github.com/mkemp/pokercfr/pkg/cards"
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/hand"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// Evaluate returns, for each of the given profiles, its expected utility
// averaged over every assignment of the profiles to player seats (so the
// first profile is scored once from every seat), per spec.md §4.6. Chance
// nodes are resolved exactly: HoleCardsNode enumerates every jointly
// disjoint hole-card assignment, BoardCardsNode the intersection of legal
// keys across all seats' current views.
func Evaluate(g *game.Game, root *tree.Node, profiles []strategy.Profile) []float64 {
	n := len(profiles)
	e := &evaluator{g: g}
	result := make([]float64, n)
	permutations := 0

	permute(n, func(perm []int) {
		permutations++
		seatProfiles := make([]strategy.Profile, n)
		for seat, idx := range perm {
			seatProfiles[seat] = profiles[idx]
		}
		nodes := make([]*tree.Node, n)
		for i := range nodes {
			nodes[i] = root
		}
		u := e.eval(nodes, seatProfiles, nil, nil, make([]bool, n))
		for seat, idx := range perm {
			result[idx] += u[seat]
		}
	})

	for i := range result {
		result[i] /= float64(permutations)
	}
	return result
}

// Exploitability returns the exploitability of s: the utility a best
// response extracts from it, non-negative by construction (spec.md §8).
// Two-player only, since it calls bestresponse.Solve.
func Exploitability(g *game.Game, root *tree.Node, s strategy.Profile) (float64, error) {
	if g.NumPlayers() != 2 {
		return 0, errs.New(errs.UnsupportedGame, "exploitability supports exactly 2 players, got %d", g.NumPlayers())
	}
	br, err := bestresponse.Solve(g, root, s)
	if err != nil {
		return 0, err
	}
	values := Evaluate(g, root, []strategy.Profile{s, br})
	return -values[0], nil
}

type evaluator struct {
	g *game.Game
}

func (e *evaluator) eval(nodes []*tree.Node, seatProfiles []strategy.Profile, holeCards [][]cards.Card, boardCards []cards.Card, folded []bool) []float64 {
	switch nodes[0].Kind {
	case tree.TerminalKind:
		return hand.TerminalUtility(holeCards, boardCards, folded, nodes[0].PotCommitment, e.g.Suits)
	case tree.HoleCardsKind:
		return e.holeCards(nodes, seatProfiles, boardCards, folded)
	case tree.BoardCardsKind:
		return e.boardCards(nodes, seatProfiles, holeCards, boardCards, folded)
	default:
		return e.action(nodes, seatProfiles, holeCards, boardCards, folded)
	}
}

func (e *evaluator) holeCards(nodes []*tree.Node, seatProfiles []strategy.Profile, boardCards []cards.Card, folded []bool) []float64 {
	n := len(nodes)
	combos := make([][]cards.Card, n)
	sum := make([]float64, n)
	count := 0

	var choose func(p int)
	choose = func(p int) {
		if p == n {
			count++
			nextNodes := make([]*tree.Node, n)
			dealt := make([][]cards.Card, n)
			for i := range nodes {
				nextNodes[i] = nodes[i].CardChildren[cards.Key(combos[i])]
				dealt[i] = combos[i]
			}
			u := e.eval(nextNodes, seatProfiles, dealt, boardCards, folded)
			for i := range sum {
				sum[i] += u[i]
			}
			return
		}
		for _, key := range nodes[p].CardOrder {
			combo := nodes[p].CardKeyCards[key]
			conflict := false
			for q := 0; q < p; q++ {
				if cardsOverlap(combo, combos[q]) {
					conflict = true
					break
				}
			}
			if conflict {
				continue
			}
			combos[p] = combo
			choose(p + 1)
		}
	}
	choose(0)

	if count == 0 {
		panic("evaluate: no disjoint hole-card assignment found")
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum
}

func (e *evaluator) boardCards(nodes []*tree.Node, seatProfiles []strategy.Profile, holeCards [][]cards.Card, boardCards []cards.Card, folded []bool) []float64 {
	n := len(nodes)
	sum := make([]float64, n)
	count := 0

	for _, key := range nodes[0].CardOrder {
		nextNodes := make([]*tree.Node, n)
		nextNodes[0] = nodes[0].CardChildren[key]
		ok := true
		for i := 1; i < n; i++ {
			child, exists := nodes[i].CardChildren[key]
			if !exists {
				ok = false
				break
			}
			nextNodes[i] = child
		}
		if !ok {
			continue
		}
		count++
		nextBoard := append(append([]cards.Card(nil), boardCards...), nodes[0].CardKeyCards[key]...)
		u := e.eval(nextNodes, seatProfiles, holeCards, nextBoard, folded)
		for i := range sum {
			sum[i] += u[i]
		}
	}

	if count == 0 {
		panic("evaluate: no common board-card combination found")
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum
}

func (e *evaluator) action(nodes []*tree.Node, seatProfiles []strategy.Profile, holeCards [][]cards.Card, boardCards []cards.Card, folded []bool) []float64 {
	actor := nodes[0].Player
	node := nodes[actor]
	sigma := seatProfiles[actor].At(node)

	nodeUtil := make([]float64, len(nodes))
	for _, a := range node.ActionOrder {
		w := sigma[a]
		if w == 0 {
			continue
		}
		nextFolded := folded
		if a == tree.ActionFold {
			nextFolded = append([]bool(nil), folded...)
			nextFolded[actor] = true
		}
		nextNodes := make([]*tree.Node, len(nodes))
		for p, nd := range nodes {
			nextNodes[p] = nd.ActionChildren[a]
		}
		u := e.eval(nextNodes, seatProfiles, holeCards, boardCards, nextFolded)
		for p := range nodeUtil {
			nodeUtil[p] += w * u[p]
		}
	}
	return nodeUtil
}

// permute calls fn with every permutation of [0, n).
func permute(n int, fn func(perm []int)) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	var rec func(k int)
	rec = func(k int) {
		if k == n {
			fn(append([]int(nil), perm...))
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			rec(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	rec(0)
}

func cardsOverlap(a, b []cards.Card) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
