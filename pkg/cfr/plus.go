package cfr

import (
	"math"

	"github.com/mkemp/pokercfr/pkg/cards"
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/hand"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// PlusTrainer runs CFR+ over a built tree: two-player only, full chance
// enumeration instead of sampling, regrets floored at 0, and delayed
// linear strategy-sum weighting with alternating trainer seats, per
// spec.md §4.3.
type PlusTrainer struct {
	g     *game.Game
	root  *tree.Node
	store *Store
}

// NewPlusTrainer validates the game against CFR+'s requirements and
// returns a trainer over root.
func NewPlusTrainer(g *game.Game, root *tree.Node) (*PlusTrainer, error) {
	if err := ValidateTwoPlayerLimit(g); err != nil {
		return nil, err
	}
	return &PlusTrainer{g: g, root: root, store: NewStore(root)}, nil
}

// ValidateTwoPlayerLimit fails with UnsupportedGame — distinct from the
// builder's InvalidGameDefinition — per spec.md §4.3's "Fails with
// UnsupportedGame" clause. CFR+ and its RNR/DBR derivatives share this
// requirement.
func ValidateTwoPlayerLimit(g *game.Game) error {
	if g.BettingType != game.Limit {
		return errs.New(errs.UnsupportedGame, "CFR+ requires betting_type LIMIT")
	}
	if g.NumPlayers() != 2 {
		return errs.New(errs.UnsupportedGame, "CFR+ supports exactly 2 players, got %d", g.NumPlayers())
	}
	if err := g.ValidateHandEvaluable(); err != nil {
		return errs.New(errs.UnsupportedGame, "%v", err)
	}
	return nil
}

// Store returns the trainer's regret/strategy table.
func (t *PlusTrainer) Store() *Store { return t.store }

// Train runs opts.Iterations CFR+ iterations, each alternating the
// trainer seat between player 0 and player 1, checkpointing per
// opts.CheckpointIterations.
func (t *PlusTrainer) Train(opts Options) error {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}

	checkpointIndex := 0
	for i := 1; i <= opts.Iterations; i++ {
		weight := math.Max(float64(i-opts.WeightDelay), 0)
		for trainer := 0; trainer < 2; trainer++ {
			nodes := []*tree.Node{t.root, t.root}
			t.cfrPlus(nodes, trainer, weight, []float64{1, 1}, nil, nil, []bool{false, false})
		}

		if i%opts.CheckpointIterations == 0 || i == opts.Iterations {
			t.store.ComputeAveragedStrategy(t.root, opts.MinimalActionProbability)
			checkpointIndex++
			opts.CheckpointCallback(t.root, checkpointIndex, i)
		}
	}
	return nil
}

func (t *PlusTrainer) cfrPlus(nodes []*tree.Node, trainer int, weight float64, reach []float64, holeCards [][]cards.Card, boardCards []cards.Card, folded []bool) []float64 {
	switch nodes[0].Kind {
	case tree.TerminalKind:
		return hand.TerminalUtility(holeCards, boardCards, folded, nodes[0].PotCommitment, t.g.Suits)
	case tree.HoleCardsKind:
		return t.cfrPlusHoleCards(nodes, trainer, weight, reach, boardCards, folded)
	case tree.BoardCardsKind:
		return t.cfrPlusBoardCards(nodes, trainer, weight, reach, holeCards, boardCards, folded)
	default:
		return t.cfrPlusAction(nodes, trainer, weight, reach, holeCards, boardCards, folded)
	}
}

// cfrPlusHoleCards enumerates every disjoint pair of hole-card
// combinations across the two players and averages the returned utility,
// per spec.md §4.3's full-enumeration chance handling.
func (t *PlusTrainer) cfrPlusHoleCards(nodes []*tree.Node, trainer int, weight float64, reach []float64, boardCards []cards.Card, folded []bool) []float64 {
	sum := [2]float64{}
	count := 0
	for _, k0 := range nodes[0].CardOrder {
		c0 := nodes[0].CardKeyCards[k0]
		for _, k1 := range nodes[1].CardOrder {
			c1 := nodes[1].CardKeyCards[k1]
			if cardsOverlap(c0, c1) {
				continue
			}
			count++
			next := []*tree.Node{nodes[0].CardChildren[k0], nodes[1].CardChildren[k1]}
			u := t.cfrPlus(next, trainer, weight, reach, [][]cards.Card{c0, c1}, boardCards, folded)
			sum[0] += u[0]
			sum[1] += u[1]
		}
	}
	if count == 0 {
		panic("cfr+: no disjoint hole-card combination found")
	}
	return []float64{sum[0] / float64(count), sum[1] / float64(count)}
}

// cfrPlusBoardCards enumerates the intersection of legal board-card keys
// across both players' current views, respecting cards each player's
// hole-card branch already removed from the deck.
func (t *PlusTrainer) cfrPlusBoardCards(nodes []*tree.Node, trainer int, weight float64, reach []float64, holeCards [][]cards.Card, boardCards []cards.Card, folded []bool) []float64 {
	sum := [2]float64{}
	count := 0
	for _, k := range nodes[0].CardOrder {
		child1, ok := nodes[1].CardChildren[k]
		if !ok {
			continue
		}
		count++
		next := []*tree.Node{nodes[0].CardChildren[k], child1}
		nextBoard := append(append([]cards.Card(nil), boardCards...), nodes[0].CardKeyCards[k]...)
		u := t.cfrPlus(next, trainer, weight, reach, holeCards, nextBoard, folded)
		sum[0] += u[0]
		sum[1] += u[1]
	}
	if count == 0 {
		panic("cfr+: no common board-card combination found")
	}
	return []float64{sum[0] / float64(count), sum[1] / float64(count)}
}

func (t *PlusTrainer) cfrPlusAction(nodes []*tree.Node, trainer int, weight float64, reach []float64, holeCards [][]cards.Card, boardCards []cards.Card, folded []bool) []float64 {
	actor := nodes[0].Player
	node := nodes[actor]
	st := t.store.At(node)
	strat := RegretMatch(node, st)

	util := make([][]float64, tree.NumActions)
	nodeUtil := []float64{0, 0}

	for _, a := range node.ActionOrder {
		nextReach := []float64{reach[0], reach[1]}
		nextReach[actor] *= strat[a]

		nextFolded := folded
		if a == tree.ActionFold {
			nextFolded = []bool{folded[0], folded[1]}
			nextFolded[actor] = true
		}

		nextNodes := []*tree.Node{nodes[0].ActionChildren[a], nodes[1].ActionChildren[a]}
		u := t.cfrPlus(nextNodes, trainer, weight, nextReach, holeCards, boardCards, nextFolded)
		util[a] = u
		nodeUtil[0] += strat[a] * u[0]
		nodeUtil[1] += strat[a] * u[1]
	}

	if actor == trainer {
		opponentReach := reach[1-actor]
		for _, a := range node.ActionOrder {
			regret := util[a][actor] - nodeUtil[actor]
			newRegret := st.RegretSum[a] + regret*opponentReach
			if newRegret < 0 {
				newRegret = 0
			}
			st.RegretSum[a] = newRegret
			st.StrategySum[a] += weight * opponentReach * strat[a]
		}
	}

	return nodeUtil
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
