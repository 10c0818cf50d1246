// Package cfr implements Counterfactual Regret Minimization (classic CFR,
// chance-sampled) and CFR+ (full chance enumeration, floored regrets,
// delayed-linear averaging, alternating trainer seats) over the tree
// built by pkg/tree, per spec.md §4.3.
package cfr

import (
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// Stats holds the four per-ActionNode arrays spec.md §3 describes:
// regret_sum, current_strategy, strategy_sum, averaged_strategy.
type Stats struct {
	RegretSum        [tree.NumActions]float64
	CurrentStrategy  [tree.NumActions]float64
	StrategySum      [tree.NumActions]float64
	AveragedStrategy [tree.NumActions]float64
}

// Store is the parallel-array statistics table spec.md §9 calls for:
// indexed directly by ActionNode.ID rather than walked via a map or
// embedded on the (shared, immutable) tree itself. One Store belongs to
// exactly one trainee; many Stores can share one built tree concurrently.
type Store struct {
	stats []Stats
}

// NewStore allocates a Store sized to root's ActionNode IDs.
func NewStore(root *tree.Node) *Store {
	return &Store{stats: make([]Stats, tree.MaxActionID(root)+1)}
}

// At returns the Stats slot for n, which must be an ActionNode.
func (s *Store) At(n *tree.Node) *Stats {
	return &s.stats[n.ID]
}

// AveragedProfile adapts a Store's averaged_strategy column to
// strategy.Profile, for handing a trained strategy to best response,
// evaluation, or strategy-file export without copying it out to a Map.
type AveragedProfile struct{ store *Store }

// Averaged returns a strategy.Profile view over s's averaged_strategy.
func (s *Store) Averaged() AveragedProfile { return AveragedProfile{store: s} }

func (p AveragedProfile) At(n *tree.Node) [tree.NumActions]float64 {
	return p.store.At(n).AveragedStrategy
}

// CurrentProfile adapts a Store's current_strategy column.
type CurrentProfile struct{ store *Store }

// Current returns a strategy.Profile view over s's current_strategy.
func (s *Store) Current() CurrentProfile { return CurrentProfile{store: s} }

func (p CurrentProfile) At(n *tree.Node) [tree.NumActions]float64 {
	return p.store.At(n).CurrentStrategy
}

// RegretMatch computes n's current strategy from its stored regret_sum
// (floored at 0, per spec.md §4.3's σ[a] = max(regret_sum[a],0)/Σ, uniform
// over legal actions when the sum is 0) and caches it on st.
func RegretMatch(n *tree.Node, st *Stats) [tree.NumActions]float64 {
	var strat [tree.NumActions]float64
	sum := 0.0
	for _, a := range n.ActionOrder {
		v := st.RegretSum[a]
		if v < 0 {
			v = 0
		}
		strat[a] = v
		sum += v
	}
	if sum > 0 {
		for _, a := range n.ActionOrder {
			strat[a] /= sum
		}
	} else {
		uniform := 1.0 / float64(len(n.ActionOrder))
		for _, a := range n.ActionOrder {
			strat[a] = uniform
		}
	}
	st.CurrentStrategy = strat
	return strat
}

// ComputeAveragedStrategy recomputes averaged_strategy at every ActionNode
// in the tree rooted at root from strategy_sum, per spec.md §4.3: uniform
// over legal actions if the node was never reached with positive weight.
// minAction zeros out probabilities below the threshold and renormalizes
// (spec.md §9's minimal_action_probability option); pass 0 to disable.
func (s *Store) ComputeAveragedStrategy(root *tree.Node, minAction float64) {
	tree.Visit(root, func(n *tree.Node) bool {
		if n.Kind != tree.ActionKind {
			return true
		}
		st := s.At(n)
		sum := 0.0
		for _, a := range n.ActionOrder {
			sum += st.StrategySum[a]
		}

		var avg [tree.NumActions]float64
		if sum > 0 {
			for _, a := range n.ActionOrder {
				avg[a] = st.StrategySum[a] / sum
			}
		} else {
			uniform := 1.0 / float64(len(n.ActionOrder))
			for _, a := range n.ActionOrder {
				avg[a] = uniform
			}
		}

		if minAction > 0 {
			applyMinimalActionProbability(n, &avg, minAction)
		}
		st.AveragedStrategy = avg
		return true
	})
}

// SnapshotAveraged copies s's averaged_strategy column at every ActionNode
// under root into a detached strategy.Map, for exporting a trained
// strategy or capturing a mid-training checkpoint independent of further
// training against s.
func (s *Store) SnapshotAveraged(root *tree.Node) strategy.Map {
	m := make(strategy.Map)
	tree.Visit(root, func(n *tree.Node) bool {
		if n.Kind == tree.ActionKind {
			m[n.InfoSetKey] = s.At(n).AveragedStrategy
		}
		return true
	})
	return m
}

func applyMinimalActionProbability(n *tree.Node, avg *[tree.NumActions]float64, threshold float64) {
	kept := 0.0
	for _, a := range n.ActionOrder {
		if avg[a] < threshold {
			avg[a] = 0
		} else {
			kept += avg[a]
		}
	}
	if kept <= 0 {
		return
	}
	for _, a := range n.ActionOrder {
		avg[a] /= kept
	}
}
