// Package bestresponse computes an exact pointwise best response to a
// fixed 2-player strategy profile, per spec.md §4.5.
package bestresponse

import (
	"github.com/mkemp/pokercfr/pkg/cards"
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/hand"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

const tieEpsilon = 1e-9

// solver carries the fixed parameters of one Solve call; the recursive
// belief state (own branch pointer, opponent hypothesis nodes and their
// hole cards, revealed board, folds) is threaded through explore's
// parameters instead, so one solver is reused across both player
// positions without aliasing state between them.
type solver struct {
	g        *game.Game
	position int
	opponent strategy.Profile
	result   strategy.Map
}

// Solve computes the best response to opponent for both positions of a
// 2-player game and returns the deterministic-per-infoset response
// strategy (ties split uniformly over the argmax action set), per
// spec.md §4.5 and §8's tie-splitting invariant.
func Solve(g *game.Game, root *tree.Node, opponent strategy.Profile) (strategy.Map, error) {
	if g.NumPlayers() != 2 {
		return nil, errs.New(errs.UnsupportedGame, "best response supports exactly 2 players, got %d", g.NumPlayers())
	}
	result := strategy.Map{}
	s := &solver{g: g, opponent: opponent, result: result}
	for position := 0; position < 2; position++ {
		s.position = position
		s.explore(root, nil, nil, nil, nil, []bool{false, false})
	}
	return result, nil
}

// explore evaluates the responder's expected utility from own (the
// responder's current position in the shared tree) given oppNodes, the
// belief distribution over the opponent's current position (one node per
// still-consistent hypothesis of the opponent's hole cards, with oppCards
// the matching hole-card hypothesis).
func (s *solver) explore(own *tree.Node, oppNodes []*tree.Node, ownCards []cards.Card, oppCards [][]cards.Card, boardCards []cards.Card, folded []bool) float64 {
	switch own.Kind {
	case tree.TerminalKind:
		return s.terminal(own, ownCards, oppCards, boardCards, folded)
	case tree.HoleCardsKind:
		return s.holeCards(own, boardCards, folded)
	case tree.BoardCardsKind:
		return s.boardCards(own, oppNodes, ownCards, oppCards, boardCards, folded)
	default:
		return s.action(own, oppNodes, ownCards, oppCards, boardCards, folded)
	}
}

func (s *solver) holeCards(own *tree.Node, boardCards []cards.Card, folded []bool) float64 {
	sum := 0.0
	for _, ownKey := range own.CardOrder {
		ownCombo := own.CardKeyCards[ownKey]

		var nextOppNodes []*tree.Node
		var nextOppCards [][]cards.Card
		for _, oppKey := range own.CardOrder {
			oppCombo := own.CardKeyCards[oppKey]
			if cardsOverlap(ownCombo, oppCombo) {
				continue
			}
			nextOppNodes = append(nextOppNodes, own.CardChildren[oppKey])
			nextOppCards = append(nextOppCards, oppCombo)
		}

		sum += s.explore(own.CardChildren[ownKey], nextOppNodes, ownCombo, nextOppCards, boardCards, folded)
	}
	return sum / float64(len(own.CardOrder))
}

func (s *solver) boardCards(own *tree.Node, oppNodes []*tree.Node, ownCards []cards.Card, oppCards [][]cards.Card, boardCards []cards.Card, folded []bool) float64 {
	sum := 0.0
	for _, key := range own.CardOrder {
		combo := own.CardKeyCards[key]

		var nextOppNodes []*tree.Node
		var nextOppCards [][]cards.Card
		for i, n := range oppNodes {
			child, ok := n.CardChildren[key]
			if !ok {
				continue
			}
			nextOppNodes = append(nextOppNodes, child)
			nextOppCards = append(nextOppCards, oppCards[i])
		}

		nextBoard := append(append([]cards.Card(nil), boardCards...), combo...)
		sum += s.explore(own.CardChildren[key], nextOppNodes, ownCards, nextOppCards, nextBoard, folded)
	}
	return sum / float64(len(own.CardOrder))
}

func (s *solver) action(own *tree.Node, oppNodes []*tree.Node, ownCards []cards.Card, oppCards [][]cards.Card, boardCards []cards.Card, folded []bool) float64 {
	if own.Player == s.position {
		return s.respond(own, oppNodes, ownCards, oppCards, boardCards, folded)
	}
	return s.opponentMove(own, oppNodes, ownCards, oppCards, boardCards, folded)
}

// respond evaluates every legal action at the responder's own decision
// node, records the uniform-over-argmax response, and returns its value.
func (s *solver) respond(own *tree.Node, oppNodes []*tree.Node, ownCards []cards.Card, oppCards [][]cards.Card, boardCards []cards.Card, folded []bool) float64 {
	var bestValue float64
	var bestActions []int

	for _, a := range own.ActionOrder {
		v := s.exploreAction(own, a, oppNodes, ownCards, oppCards, boardCards, folded)
		switch {
		case len(bestActions) == 0 || v > bestValue+tieEpsilon:
			bestValue = v
			bestActions = []int{a}
		case v > bestValue-tieEpsilon:
			bestActions = append(bestActions, a)
		}
	}

	var dist [tree.NumActions]float64
	u := 1.0 / float64(len(bestActions))
	for _, a := range bestActions {
		dist[a] = u
	}
	s.result[own.InfoSetKey] = dist
	return bestValue
}

// opponentMove mixes child values by the opponent's marginal strategy,
// averaged over the still-live hypotheses for the opponent's hand.
func (s *solver) opponentMove(own *tree.Node, oppNodes []*tree.Node, ownCards []cards.Card, oppCards [][]cards.Card, boardCards []cards.Card, folded []bool) float64 {
	avg := make(map[int]float64, len(own.ActionOrder))
	for _, a := range own.ActionOrder {
		sum := 0.0
		for _, n := range oppNodes {
			sum += s.opponent.At(n)[a]
		}
		avg[a] = sum / float64(len(oppNodes))
	}

	total := 0.0
	for _, a := range own.ActionOrder {
		total += avg[a] * s.exploreAction(own, a, oppNodes, ownCards, oppCards, boardCards, folded)
	}
	return total
}

func (s *solver) exploreAction(own *tree.Node, a int, oppNodes []*tree.Node, ownCards []cards.Card, oppCards [][]cards.Card, boardCards []cards.Card, folded []bool) float64 {
	nextFolded := folded
	if a == tree.ActionFold {
		nextFolded = []bool{folded[0], folded[1]}
		nextFolded[own.Player] = true
	}
	nextOpp := make([]*tree.Node, len(oppNodes))
	for i, n := range oppNodes {
		nextOpp[i] = n.ActionChildren[a]
	}
	return s.explore(own.ActionChildren[a], nextOpp, ownCards, oppCards, boardCards, nextFolded)
}

func (s *solver) terminal(own *tree.Node, ownCards []cards.Card, oppCards [][]cards.Card, boardCards []cards.Card, folded []bool) float64 {
	sum := 0.0
	for _, opp := range oppCards {
		var hole [][]cards.Card
		if s.position == 0 {
			hole = [][]cards.Card{ownCards, opp}
		} else {
			hole = [][]cards.Card{opp, ownCards}
		}
		u := hand.TerminalUtility(hole, boardCards, folded, own.PotCommitment, s.g.Suits)
		sum += u[s.position]
	}
	return sum / float64(len(oppCards))
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
