// Package response implements Restricted Nash Response (RNR) and
// Data-Biased Response (DBR): CFR+ variants where the non-training seat's
// action, with some per-infoset probability, is drawn from a fixed opponent
// policy instead of from regret matching, per spec.md §4.4.
package response

import (
	"math/rand"

	"github.com/mkemp/pokercfr/pkg/cards"
	"github.com/mkemp/pokercfr/pkg/cfr"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/hand"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// OpponentPolicy supplies the fixed mixing policy biasing a response
// trainer's non-training seat.
type OpponentPolicy interface {
	// MixProbability is the chance, at n, that the opponent plays
	// FixedStrategy rather than its own regret-matched strategy.
	MixProbability(n *tree.Node) float64
	// FixedStrategy is the distribution played when the mix fires.
	FixedStrategy(n *tree.Node) [tree.NumActions]float64
	// PerIteration reports whether MixProbability is constant across the
	// whole tree, so the fixed-vs-regret-matched choice must be drawn
	// once per training iteration and reused at every opponent node
	// visited that iteration (RNR, spec.md §4.4, matching
	// restricted_nash_response.py's single self.play_fix draw in
	// _start_iteration). DBR's p_conf varies by infoset, so it draws
	// fresh at every node instead and reports false here.
	PerIteration() bool
}

// RNRPolicy fixes the opponent to a supplied averaged strategy at every
// infoset with constant probability P, per spec.md §4.4's "RNR fixed
// distribution = the opponent's supplied averaged strategy".
type RNRPolicy struct {
	Fixed strategy.Profile
	P     float64
}

func (p RNRPolicy) MixProbability(n *tree.Node) float64 { return p.P }

func (p RNRPolicy) FixedStrategy(n *tree.Node) [tree.NumActions]float64 { return p.Fixed.At(n) }

func (p RNRPolicy) PerIteration() bool { return true }

// DBRPolicy fixes the opponent to the empirical action frequencies observed
// at each infoset in a match-log sample tree, with mixing weight
// p_conf = p_max * min(1, samples/10), per spec.md §4.4.
type DBRPolicy struct {
	Counts map[string][tree.NumActions]int
	PMax   float64
}

func (p DBRPolicy) MixProbability(n *tree.Node) float64 {
	samples := p.samples(n)
	if samples == 0 {
		return 0
	}
	frac := float64(samples) / 10
	if frac > 1 {
		frac = 1
	}
	return p.PMax * frac
}

func (p DBRPolicy) FixedStrategy(n *tree.Node) [tree.NumActions]float64 {
	samples := p.samples(n)
	if samples == 0 {
		return uniform(n)
	}
	counts := p.Counts[n.InfoSetKey]
	var dist [tree.NumActions]float64
	for _, a := range n.ActionOrder {
		dist[a] = float64(counts[a]) / float64(samples)
	}
	return dist
}

// PerIteration is false: p_conf depends on the specific node's sample
// count, so DBR must draw fresh at every opponent node, matching
// data_biased_response.py's per-query random.random() <= p_conf.
func (p DBRPolicy) PerIteration() bool { return false }

func (p DBRPolicy) samples(n *tree.Node) int {
	counts, ok := p.Counts[n.InfoSetKey]
	if !ok {
		return 0
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

func uniform(n *tree.Node) [tree.NumActions]float64 {
	var s [tree.NumActions]float64
	if len(n.ActionOrder) == 0 {
		return s
	}
	u := 1.0 / float64(len(n.ActionOrder))
	for _, a := range n.ActionOrder {
		s[a] = u
	}
	return s
}

// Trainer runs CFR+ with opponent mixed in on the non-training seat. Its
// own seat always trains by full regret matching, unaffected by opponent.
type Trainer struct {
	g        *game.Game
	root     *tree.Node
	store    *cfr.Store
	opponent OpponentPolicy
	rng      *rand.Rand
}

// NewTrainer validates the game against CFR+'s requirements (2-player,
// limit betting, <=5 combined cards) and returns a response trainer.
func NewTrainer(g *game.Game, root *tree.Node, opponent OpponentPolicy, seed int64) (*Trainer, error) {
	if err := cfr.ValidateTwoPlayerLimit(g); err != nil {
		return nil, err
	}
	return &Trainer{
		g:        g,
		root:     root,
		store:    cfr.NewStore(root),
		opponent: opponent,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Store returns the trainer's regret/strategy table. It covers both
// seats: Train alternates the training seat within every iteration, so
// each ActionNode's RegretSum/StrategySum entries are written during the
// pass in which its player is the trainer.
func (t *Trainer) Store() *cfr.Store { return t.store }

// Train runs opts.Iterations CFR+ iterations biasing the opponent seat
// toward the fixed policy, alternating trainer seats per iteration exactly
// as PlusTrainer does.
func (t *Trainer) Train(opts cfr.Options) error {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}

	checkpointIndex := 0
	for i := 1; i <= opts.Iterations; i++ {
		weight := float64(i - opts.WeightDelay)
		if weight < 0 {
			weight = 0
		}
		// Drawn once per iteration and reused at every opponent node
		// visited this iteration, for policies whose mixing probability
		// is iteration-global (RNR). Per-node policies (DBR) ignore this
		// and draw fresh in cfrAction instead.
		playFix := false
		if t.opponent.PerIteration() {
			playFix = t.rng.Float64() <= t.opponent.MixProbability(t.root)
		}

		for trainer := 0; trainer < 2; trainer++ {
			nodes := []*tree.Node{t.root, t.root}
			t.cfr(nodes, trainer, weight, []float64{1, 1}, nil, nil, []bool{false, false}, playFix)
		}

		if i%opts.CheckpointIterations == 0 || i == opts.Iterations {
			t.store.ComputeAveragedStrategy(t.root, opts.MinimalActionProbability)
			checkpointIndex++
			opts.CheckpointCallback(t.root, checkpointIndex, i)
		}
	}
	return nil
}

func (t *Trainer) cfr(nodes []*tree.Node, trainer int, weight float64, reach []float64, holeCards [][]cards.Card, boardCards []cards.Card, folded []bool, playFix bool) []float64 {
	switch nodes[0].Kind {
	case tree.TerminalKind:
		return hand.TerminalUtility(holeCards, boardCards, folded, nodes[0].PotCommitment, t.g.Suits)
	case tree.HoleCardsKind:
		return t.cfrHoleCards(nodes, trainer, weight, reach, boardCards, folded, playFix)
	case tree.BoardCardsKind:
		return t.cfrBoardCards(nodes, trainer, weight, reach, holeCards, boardCards, folded, playFix)
	default:
		return t.cfrAction(nodes, trainer, weight, reach, holeCards, boardCards, folded, playFix)
	}
}

func (t *Trainer) cfrHoleCards(nodes []*tree.Node, trainer int, weight float64, reach []float64, boardCards []cards.Card, folded []bool, playFix bool) []float64 {
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
			u := t.cfr(next, trainer, weight, reach, [][]cards.Card{c0, c1}, boardCards, folded, playFix)
			sum[0] += u[0]
			sum[1] += u[1]
		}
	}
	if count == 0 {
		panic("response: no disjoint hole-card combination found")
	}
	return []float64{sum[0] / float64(count), sum[1] / float64(count)}
}

func (t *Trainer) cfrBoardCards(nodes []*tree.Node, trainer int, weight float64, reach []float64, holeCards [][]cards.Card, boardCards []cards.Card, folded []bool, playFix bool) []float64 {
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
		u := t.cfr(next, trainer, weight, reach, holeCards, nextBoard, folded, playFix)
		sum[0] += u[0]
		sum[1] += u[1]
	}
	if count == 0 {
		panic("response: no common board-card combination found")
	}
	return []float64{sum[0] / float64(count), sum[1] / float64(count)}
}

// cfrAction trains the trainer seat exactly as PlusTrainer does. On the
// opponent's seat, it substitutes the fixed policy for the regret-matched
// strategy: for per-iteration policies (RNR) the choice is the playFix
// value drawn once by Train and reused at every node this iteration; for
// per-node policies (DBR, opponent.PerIteration() == false) it draws fresh
// here against MixProbability(node), matching data_biased_response.py's
// per-query draw. The opponent seat's regret/strategy-sum are never
// updated either way, matching plain CFR+'s non-trainer branch.
func (t *Trainer) cfrAction(nodes []*tree.Node, trainer int, weight float64, reach []float64, holeCards [][]cards.Card, boardCards []cards.Card, folded []bool, playFix bool) []float64 {
	actor := nodes[0].Player
	node := nodes[actor]
	st := t.store.At(node)

	var strat [tree.NumActions]float64
	if actor == trainer {
		strat = cfr.RegretMatch(node, st)
	} else {
		useFixed := playFix
		if !t.opponent.PerIteration() {
			useFixed = t.rng.Float64() <= t.opponent.MixProbability(node)
		}
		if useFixed {
			strat = t.opponent.FixedStrategy(node)
		} else {
			strat = cfr.RegretMatch(node, st)
		}
	}

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
		u := t.cfr(nextNodes, trainer, weight, nextReach, holeCards, boardCards, nextFolded, playFix)
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
