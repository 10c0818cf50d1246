package cfr

import (
	"math/rand"

	"github.com/mkemp/pokercfr/pkg/cards"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/hand"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// ClassicTrainer runs chance-sampled CFR over a built tree, per spec.md
// §4.3's classic variant, grounded on the original Cfr._cfr family of
// methods. One Store is shared by every player's ActionNodes, since the
// tree's HoleCardsNode branches are each a complete, symmetric view of the
// game from one player's own hole cards.
type ClassicTrainer struct {
	g          *game.Game
	root       *tree.Node
	store      *Store
	rng        *rand.Rand
	numPlayers int
}

// NewClassicTrainer builds a trainer over root, seeded deterministically
// from seed (spec.md §9's "explicit RNG handle" design note — no global
// RNG is touched).
func NewClassicTrainer(g *game.Game, root *tree.Node, seed int64) *ClassicTrainer {
	return &ClassicTrainer{
		g:          g,
		root:       root,
		store:      NewStore(root),
		rng:        rand.New(rand.NewSource(seed)),
		numPlayers: g.NumPlayers(),
	}
}

// Store returns the trainer's regret/strategy table.
func (t *ClassicTrainer) Store() *Store { return t.store }

// Train runs opts.Iterations chance-sampled CFR iterations, checkpointing
// per opts.CheckpointIterations. Training is resumable: calling Train
// again continues from the current regret_sum/strategy_sum state.
func (t *ClassicTrainer) Train(opts Options) error {
	opts = opts.WithDefaults()
	// Classic CFR keeps no delayed strategy-sum weighting, so weight_delay
	// places no bound on its iteration count.
	check := opts
	check.WeightDelay = 0
	if err := check.Validate(); err != nil {
		return err
	}
	if err := t.g.ValidateLimit(); err != nil {
		return err
	}

	deck := cards.Deck(t.g.Ranks, t.g.Suits)
	checkpointIndex := 0

	for i := 1; i <= opts.Iterations; i++ {
		shuffled := append([]cards.Card(nil), deck...)
		t.rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		reach := make([]float64, t.numPlayers)
		for p := range reach {
			reach[p] = 1
		}
		folded := make([]bool, t.numPlayers)
		nodes := make([]*tree.Node, t.numPlayers)
		for p := range nodes {
			nodes[p] = t.root
		}

		t.cfr(nodes, reach, nil, nil, shuffled, folded)

		if i%opts.CheckpointIterations == 0 || i == opts.Iterations {
			t.store.ComputeAveragedStrategy(t.root, opts.MinimalActionProbability)
			checkpointIndex++
			opts.CheckpointCallback(t.root, checkpointIndex, i)
		}
	}
	return nil
}

func (t *ClassicTrainer) cfr(nodes []*tree.Node, reach []float64, holeCards [][]cards.Card, boardCards, deck []cards.Card, folded []bool) []float64 {
	switch nodes[0].Kind {
	case tree.TerminalKind:
		return hand.TerminalUtility(holeCards, boardCards, folded, nodes[0].PotCommitment, t.g.Suits)
	case tree.HoleCardsKind:
		return t.cfrHoleCards(nodes, reach, boardCards, deck, folded)
	case tree.BoardCardsKind:
		return t.cfrBoardCards(nodes, reach, holeCards, boardCards, deck, folded)
	default:
		return t.cfrAction(nodes, reach, holeCards, boardCards, deck, folded)
	}
}

func (t *ClassicTrainer) cfrHoleCards(nodes []*tree.Node, reach []float64, boardCards, deck []cards.Card, folded []bool) []float64 {
	h := nodes[0].CardCount
	holeCards := make([][]cards.Card, t.numPlayers)
	remaining := deck
	for p := 0; p < t.numPlayers; p++ {
		holeCards[p] = cards.Sorted(append([]cards.Card(nil), remaining[:h]...))
		remaining = remaining[h:]
	}

	nextNodes := make([]*tree.Node, t.numPlayers)
	for p, n := range nodes {
		child, ok := n.CardChild(holeCards[p])
		if !ok {
			panic("cfr: hole-card deal missing from tree")
		}
		nextNodes[p] = child
	}
	return t.cfr(nextNodes, reach, holeCards, boardCards, remaining, folded)
}

func (t *ClassicTrainer) cfrBoardCards(nodes []*tree.Node, reach []float64, holeCards [][]cards.Card, boardCards, deck []cards.Card, folded []bool) []float64 {
	n := nodes[0].CardCount
	selected := cards.Sorted(append([]cards.Card(nil), deck[:n]...))

	nextNodes := make([]*tree.Node, t.numPlayers)
	for p, node := range nodes {
		child, ok := node.CardChild(selected)
		if !ok {
			panic("cfr: board-card deal missing from tree")
		}
		nextNodes[p] = child
	}
	nextBoard := append(append([]cards.Card(nil), boardCards...), selected...)
	return t.cfr(nextNodes, reach, holeCards, nextBoard, deck[n:], folded)
}

func (t *ClassicTrainer) cfrAction(nodes []*tree.Node, reach []float64, holeCards [][]cards.Card, boardCards, deck []cards.Card, folded []bool) []float64 {
	actor := nodes[0].Player
	node := nodes[actor]
	st := t.store.At(node)
	strat := RegretMatch(node, st)

	util := make([][]float64, tree.NumActions)
	nodeUtil := make([]float64, t.numPlayers)

	for _, a := range node.ActionOrder {
		nextReach := append([]float64(nil), reach...)
		nextReach[actor] *= strat[a]

		nextFolded := folded
		if a == tree.ActionFold {
			nextFolded = append([]bool(nil), folded...)
			nextFolded[actor] = true
		}

		nextNodes := make([]*tree.Node, t.numPlayers)
		for p, n := range nodes {
			nextNodes[p] = n.ActionChildren[a]
		}

		actionUtil := t.cfr(nextNodes, nextReach, holeCards, boardCards, deck, nextFolded)
		util[a] = actionUtil
		for p := 0; p < t.numPlayers; p++ {
			nodeUtil[p] += strat[a] * actionUtil[p]
		}
	}

	opponentReach := 1.0
	for p, r := range reach {
		if p != actor {
			opponentReach *= r
		}
	}
	for _, a := range node.ActionOrder {
		regret := util[a][actor] - nodeUtil[actor]
		st.RegretSum[a] += regret * opponentReach
		st.StrategySum[a] += reach[actor] * strat[a]
	}

	return nodeUtil
}
