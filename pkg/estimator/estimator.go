// Package estimator implements the off-policy utility estimators of
// spec.md §4.8: Chips, imaginary observations, and AIVAT. All three take a
// single realized hand (an Observation) played under a sampling strategy
// and return, for each of a set of evaluated strategies, what that hand
// would be worth to the evaluated strategy instead — without retraining or
// replaying the match. Two-player only.
package estimator

import (
	"github.com/mkemp/pokercfr/pkg/cards"
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/evaluation"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/hand"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// Observation is one realized hand from Player's point of view. OppHole is
// nil unless the hand reached a showdown (no one folded) and the log
// revealed the opponent's cards.
type Observation struct {
	Player     int
	HoleCards  []cards.Card
	OppHole    []cards.Card
	BoardCards []cards.Card
	Actions    []int
	Folded     []bool
}

func validateTwoPlayer(g *game.Game) error {
	if g.NumPlayers() != 2 {
		return errs.New(errs.UnsupportedGame, "utility estimators support exactly 2 players, got %d", g.NumPlayers())
	}
	return nil
}

// walk drives a single node pointer for player through own hole cards, the
// realized board cards, and the realized action sequence to a terminal
// node, calling onAction at every one of player's own decision points
// before advancing past it.
func walk(root *tree.Node, own []cards.Card, board []cards.Card, actions []int, player int, onAction func(n *tree.Node, a int)) (*tree.Node, error) {
	n := root
	boardPos, actionPos := 0, 0
	for {
		switch n.Kind {
		case tree.TerminalKind:
			return n, nil
		case tree.HoleCardsKind:
			child, ok := n.CardChild(own)
			if !ok {
				return nil, errs.New(errs.IOFailure, "hole cards %v not found at tree root", own)
			}
			n = child
		case tree.BoardCardsKind:
			count := n.CardCount
			if boardPos+count > len(board) {
				return nil, errs.New(errs.IOFailure, "observation is short %d board cards", count)
			}
			combo := board[boardPos : boardPos+count]
			boardPos += count
			child, ok := n.CardChild(combo)
			if !ok {
				return nil, errs.New(errs.IOFailure, "board cards %v not found", combo)
			}
			n = child
		default:
			if actionPos >= len(actions) {
				return nil, errs.New(errs.IOFailure, "observation ended before reaching a terminal node")
			}
			a := actions[actionPos]
			actionPos++
			if n.Player == player && onAction != nil {
				onAction(n, a)
			}
			child := n.ActionChildren[a]
			if child == nil {
				return nil, errs.New(errs.IOFailure, "action %d illegal at infoset %s", a, n.InfoSetKey)
			}
			n = child
		}
	}
}

// walkToPosition replays own hole cards, then board and action history,
// stopping as soon as both are exhausted — the position reached need not
// be terminal. Used to find the node a companion hole-card hypothesis
// reaches at the same position as an already-walked node.
func walkToPosition(root *tree.Node, own []cards.Card, board []cards.Card, actions []int) (*tree.Node, error) {
	n := root
	boardPos, actionPos := 0, 0
	for {
		switch n.Kind {
		case tree.TerminalKind:
			return n, nil
		case tree.HoleCardsKind:
			child, ok := n.CardChild(own)
			if !ok {
				return nil, errs.New(errs.IOFailure, "hole cards %v not found at tree root", own)
			}
			n = child
		case tree.BoardCardsKind:
			if boardPos >= len(board) {
				return n, nil
			}
			count := n.CardCount
			if boardPos+count > len(board) {
				return nil, errs.New(errs.IOFailure, "observation is short %d board cards", count)
			}
			combo := board[boardPos : boardPos+count]
			boardPos += count
			child, ok := n.CardChild(combo)
			if !ok {
				return nil, errs.New(errs.IOFailure, "board cards %v not found", combo)
			}
			n = child
		default:
			if actionPos >= len(actions) {
				return n, nil
			}
			a := actions[actionPos]
			actionPos++
			child := n.ActionChildren[a]
			if child == nil {
				return nil, errs.New(errs.IOFailure, "action %d illegal at infoset %s", a, n.InfoSetKey)
			}
			n = child
		}
	}
}

// realizedUtility is the payoff to obs.Player of the terminal reached by a
// player holding hole, the opponent holding obs.OppHole (nil is fine when
// the opponent folded, since TerminalUtility never reads a folded hand).
func realizedUtility(g *game.Game, obs Observation, hole []cards.Card, terminal *tree.Node) float64 {
	opponent := 1 - obs.Player
	h := make([][]cards.Card, 2)
	h[obs.Player] = hole
	h[opponent] = obs.OppHole
	return hand.TerminalUtility(h, obs.BoardCards, obs.Folded, terminal.PotCommitment, g.Suits)[obs.Player]
}

// ChipsEstimate is spec.md §4.8's Chips estimator: realized chips on the
// terminal reached, reweighted by the ratio of evaluated-to-sampling
// action probabilities along the acting player's own decision nodes on
// the realized path.
func ChipsEstimate(g *game.Game, root *tree.Node, obs Observation, sampling strategy.Profile, evaluated []strategy.Profile) ([]float64, error) {
	if err := validateTwoPlayer(g); err != nil {
		return nil, err
	}

	ratioDen := 1.0
	ratioNum := make([]float64, len(evaluated))
	for i := range ratioNum {
		ratioNum[i] = 1
	}

	terminal, err := walk(root, obs.HoleCards, obs.BoardCards, obs.Actions, obs.Player, func(n *tree.Node, a int) {
		ratioDen *= sampling.At(n)[a]
		for i, ev := range evaluated {
			ratioNum[i] *= ev.At(n)[a]
		}
	})
	if err != nil {
		return nil, err
	}

	u := realizedUtility(g, obs, obs.HoleCards, terminal)

	result := make([]float64, len(evaluated))
	if ratioDen == 0 {
		return result, nil
	}
	for i := range result {
		result[i] = u * ratioNum[i] / ratioDen
	}
	return result, nil
}

// hypothesesForPlayer enumerates every hole-card combination for the
// acting player consistent with the realized public information: disjoint
// from the board cards, and from the opponent's hole cards if shown at
// showdown, per spec.md §4.8.
func hypothesesForPlayer(g *game.Game, obs Observation) ([][]cards.Card, error) {
	excluded := append([]cards.Card(nil), obs.BoardCards...)
	if obs.OppHole != nil {
		excluded = append(excluded, obs.OppHole...)
	}
	return disjointCombos(g, excluded)
}

func disjointCombos(g *game.Game, excluded []cards.Card) ([][]cards.Card, error) {
	excludeSet := make(map[cards.Card]bool, len(excluded))
	for _, c := range excluded {
		excludeSet[c] = true
	}
	deck := cards.Deck(g.Ranks, g.Suits)
	remaining := make([]cards.Card, 0, len(deck))
	for _, c := range deck {
		if !excludeSet[c] {
			remaining = append(remaining, c)
		}
	}
	combos := tree.Combinations(remaining, g.HoleCards)
	if len(combos) == 0 {
		return nil, errs.New(errs.InvalidStrategy, "no hole-card hypothesis is consistent with the realized public information")
	}
	return combos, nil
}

// ImaginaryObservationsEstimate is spec.md §4.8's imaginary-observations
// estimator: replays the realized action sequence once per hole-card
// hypothesis for the acting player, weighting each hypothesis's utility by
// its reach probability under each evaluated profile and dividing by the
// sampling profile's reach summed over every hypothesis.
func ImaginaryObservationsEstimate(g *game.Game, root *tree.Node, obs Observation, sampling strategy.Profile, evaluated []strategy.Profile) ([]float64, error) {
	if err := validateTwoPlayer(g); err != nil {
		return nil, err
	}

	hypotheses, err := hypothesesForPlayer(g, obs)
	if err != nil {
		return nil, err
	}

	numer := make([]float64, len(evaluated))
	denom := 0.0

	for _, hyp := range hypotheses {
		sWeight := 1.0
		eWeights := make([]float64, len(evaluated))
		for i := range eWeights {
			eWeights[i] = 1
		}

		terminal, err := walk(root, hyp, obs.BoardCards, obs.Actions, obs.Player, func(n *tree.Node, a int) {
			sWeight *= sampling.At(n)[a]
			for i, ev := range evaluated {
				eWeights[i] *= ev.At(n)[a]
			}
		})
		if err != nil {
			// Every hole-card branch has the same shape, so a hypothesis
			// failing to reach the realized action sequence shouldn't
			// happen; skip it rather than fail the whole estimate.
			continue
		}

		u := realizedUtility(g, obs, hyp, terminal)
		denom += sWeight
		for i := range numer {
			numer[i] += u * eWeights[i]
		}
	}

	if denom == 0 {
		return nil, errs.New(errs.MissingInfoset, "imaginary observations: every hole-card hypothesis had zero sampling-strategy reach")
	}
	result := make([]float64, len(evaluated))
	for i := range result {
		result[i] = numer[i] / denom
	}
	return result, nil
}

// Baseline lazily computes and memoizes, for a known equilibrium profile
// played by both seats, the expected utility of a tree position averaged
// over every opponent hand consistent with reaching it — the control
// variate AIVAT subtracts at every public transition, per spec.md §4.8.
// Values are memoized by node pointer, since the tree graph is built once
// and shared by every caller; the "Resource policy" note's "per-infoset
// equilibrium-utility table ... computed once and cached" is satisfied
// lazily here rather than by an eager whole-tree pass, since most hands in
// a log only ever touch a small fraction of the tree.
type Baseline struct {
	g         *game.Game
	e         strategy.Profile
	cache     map[*tree.Node][2]float64
	rootCache *[2]float64
}

// NewBaseline builds a Baseline against equilibrium e for g.
func NewBaseline(g *game.Game, e strategy.Profile) (*Baseline, error) {
	if err := validateTwoPlayer(g); err != nil {
		return nil, err
	}
	return &Baseline{g: g, e: e, cache: make(map[*tree.Node][2]float64)}, nil
}

// rootValue is the fully unconditional expected utility under e-vs-e,
// before any cards are dealt.
func (b *Baseline) rootValue(root *tree.Node, player int) float64 {
	if b.rootCache == nil {
		values := evaluation.Evaluate(b.g, root, []strategy.Profile{b.e, b.e})
		b.rootCache = &[2]float64{values[0], values[1]}
	}
	return b.rootCache[player]
}

// valueAt is the expected utility for seat of being at x — seat's own node
// after being dealt ownHole and following actionsSoFar/boardSoFar from
// root — averaged over every opponent hand consistent with that path,
// both seats continuing to play e from here on.
func (b *Baseline) valueAt(root, x *tree.Node, seat int, ownHole []cards.Card, actionsSoFar []int, boardSoFar []cards.Card, folded []bool) (float64, error) {
	if v, ok := b.cache[x]; ok {
		return v[seat], nil
	}

	opponent := 1 - seat
	excluded := append(append([]cards.Card(nil), ownHole...), boardSoFar...)
	hypotheses, err := disjointCombos(b.g, excluded)
	if err != nil {
		return 0, err
	}

	var sum [2]float64
	valid := 0
	for _, y := range hypotheses {
		oppNode, err := walkToPosition(root, y, boardSoFar, actionsSoFar)
		if err != nil {
			continue
		}
		var nodes [2]*tree.Node
		nodes[seat] = x
		nodes[opponent] = oppNode
		holeCards := make([][]cards.Card, 2)
		holeCards[seat] = ownHole
		holeCards[opponent] = y
		u := b.pairValue(nodes, holeCards, boardSoFar, folded)
		sum[0] += u[0]
		sum[1] += u[1]
		valid++
	}
	if valid == 0 {
		return 0, errs.New(errs.MissingInfoset, "baseline: no opponent hole-card hypothesis reaches this position")
	}

	v := [2]float64{sum[0] / float64(valid), sum[1] / float64(valid)}
	b.cache[x] = v
	return v[seat], nil
}

// pairValue evaluates the subtree rooted at nodes (one pointer per seat,
// both already past the hole-cards level) under e played by both seats.
func (b *Baseline) pairValue(nodes [2]*tree.Node, holeCards [][]cards.Card, boardCards []cards.Card, folded []bool) [2]float64 {
	switch nodes[0].Kind {
	case tree.TerminalKind:
		u := hand.TerminalUtility(holeCards, boardCards, folded, nodes[0].PotCommitment, b.g.Suits)
		return [2]float64{u[0], u[1]}
	case tree.BoardCardsKind:
		var sum [2]float64
		count := 0
		for _, k := range nodes[0].CardOrder {
			child1, ok := nodes[1].CardChildren[k]
			if !ok {
				continue
			}
			next := [2]*tree.Node{nodes[0].CardChildren[k], child1}
			nextBoard := append(append([]cards.Card(nil), boardCards...), nodes[0].CardKeyCards[k]...)
			u := b.pairValue(next, holeCards, nextBoard, folded)
			sum[0] += u[0]
			sum[1] += u[1]
			count++
		}
		if count == 0 {
			return [2]float64{}
		}
		return [2]float64{sum[0] / float64(count), sum[1] / float64(count)}
	default: // ActionKind
		actor := nodes[0].Player
		node := nodes[actor]
		sigma := b.e.At(node)
		var nodeUtil [2]float64
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
			next := [2]*tree.Node{nodes[0].ActionChildren[a], nodes[1].ActionChildren[a]}
			u := b.pairValue(next, holeCards, boardCards, nextFolded)
			nodeUtil[0] += w * u[0]
			nodeUtil[1] += w * u[1]
		}
		return nodeUtil
	}
}

// AIVATEstimate is spec.md §4.8's AIVAT estimator: imaginary observations
// extended with a control-variate correction against baseline. At every
// public transition on the realized trajectory for the acting player's own
// hand hypothesis — hole cards dealt, each round's board cards dealt, and
// the player's own actions — it subtracts baseline's value drop across the
// transition from the hypothesis's realized utility before weighting by
// the importance ratio, same as ImaginaryObservationsEstimate. Opponent
// action transitions are not corrected, matching spec.md's transition
// list. Fails with MissingInfoset if the hand reached a showdown but the
// log never revealed the opponent's hole cards.
func AIVATEstimate(g *game.Game, root *tree.Node, obs Observation, baseline *Baseline, sampling strategy.Profile, evaluated []strategy.Profile) ([]float64, error) {
	if err := validateTwoPlayer(g); err != nil {
		return nil, err
	}
	showdown := !obs.Folded[obs.Player] && !obs.Folded[1-obs.Player]
	if showdown && obs.OppHole == nil {
		return nil, errs.New(errs.MissingInfoset, "aivat: opponent hole cards were not revealed at showdown")
	}

	hypotheses, err := hypothesesForPlayer(g, obs)
	if err != nil {
		return nil, err
	}

	numer := make([]float64, len(evaluated))
	denom := 0.0

	for _, hyp := range hypotheses {
		u, correction, sWeight, eWeights, err := aivatWalk(g, root, obs, hyp, baseline, sampling, evaluated)
		if err != nil {
			continue
		}
		denom += sWeight
		for i := range numer {
			numer[i] += (u - correction) * eWeights[i]
		}
	}

	if denom == 0 {
		return nil, errs.New(errs.MissingInfoset, "aivat: every hole-card hypothesis had zero sampling-strategy reach")
	}
	result := make([]float64, len(evaluated))
	for i := range result {
		result[i] = numer[i] / denom
	}
	return result, nil
}

// aivatWalk replays the realized trajectory under one hole-card hypothesis,
// accumulating the same reach-probability ratios as ImaginaryObservationsEstimate
// plus the running baseline correction across every public transition.
func aivatWalk(g *game.Game, root *tree.Node, obs Observation, hyp []cards.Card, baseline *Baseline, sampling strategy.Profile, evaluated []strategy.Profile) (u, correction, sWeight float64, eWeights []float64, err error) {
	eWeights = make([]float64, len(evaluated))
	for i := range eWeights {
		eWeights[i] = 1
	}
	sWeight = 1

	var actionsSoFar []int
	var boardSoFar []cards.Card
	folded := make([]bool, 2)

	prevValue := baseline.rootValue(root, obs.Player)
	n := root
	boardPos, actionPos := 0, 0

	for {
		switch n.Kind {
		case tree.TerminalKind:
			u = realizedUtility(g, obs, hyp, n)
			return u, correction, sWeight, eWeights, nil
		case tree.HoleCardsKind:
			child, ok := n.CardChild(hyp)
			if !ok {
				return 0, 0, 0, nil, errs.New(errs.IOFailure, "hole cards %v not found at tree root", hyp)
			}
			n = child
			v, verr := baseline.valueAt(root, n, obs.Player, hyp, actionsSoFar, boardSoFar, folded)
			if verr != nil {
				return 0, 0, 0, nil, verr
			}
			correction += prevValue - v
			prevValue = v
		case tree.BoardCardsKind:
			pre := prevValue
			count := n.CardCount
			if boardPos+count > len(obs.BoardCards) {
				return 0, 0, 0, nil, errs.New(errs.IOFailure, "observation is short %d board cards", count)
			}
			combo := obs.BoardCards[boardPos : boardPos+count]
			boardPos += count
			child, ok := n.CardChild(combo)
			if !ok {
				return 0, 0, 0, nil, errs.New(errs.IOFailure, "board cards %v not found", combo)
			}
			boardSoFar = append(append([]cards.Card(nil), boardSoFar...), combo...)
			n = child
			post, verr := baseline.valueAt(root, n, obs.Player, hyp, actionsSoFar, boardSoFar, folded)
			if verr != nil {
				return 0, 0, 0, nil, verr
			}
			correction += pre - post
			prevValue = post
		default: // ActionKind
			if actionPos >= len(obs.Actions) {
				return 0, 0, 0, nil, errs.New(errs.IOFailure, "observation ended before reaching a terminal node")
			}
			a := obs.Actions[actionPos]
			actionPos++

			if n.Player == obs.Player {
				sWeight *= sampling.At(n)[a]
				for i, ev := range evaluated {
					eWeights[i] *= ev.At(n)[a]
				}
				pre, verr := baseline.valueAt(root, n, obs.Player, hyp, actionsSoFar, boardSoFar, folded)
				if verr != nil {
					return 0, 0, 0, nil, verr
				}
				actionsSoFar = append(append([]int(nil), actionsSoFar...), a)
				if a == tree.ActionFold {
					folded = append([]bool(nil), folded...)
					folded[obs.Player] = true
				}
				child := n.ActionChildren[a]
				if child == nil {
					return 0, 0, 0, nil, errs.New(errs.IOFailure, "action %d illegal", a)
				}
				n = child
				post, verr := baseline.valueAt(root, n, obs.Player, hyp, actionsSoFar, boardSoFar, folded)
				if verr != nil {
					return 0, 0, 0, nil, verr
				}
				correction += pre - post
				prevValue = post
			} else {
				actionsSoFar = append(append([]int(nil), actionsSoFar...), a)
				if a == tree.ActionFold {
					folded = append([]bool(nil), folded...)
					folded[n.Player] = true
				}
				child := n.ActionChildren[a]
				if child == nil {
					return 0, 0, 0, nil, errs.New(errs.IOFailure, "action %d illegal", a)
				}
				n = child
				// prevValue is deliberately left stale here: opponent
				// action transitions aren't corrected, so the swing across
				// this step folds into whichever correction spans it next.
			}
		}
	}
}
