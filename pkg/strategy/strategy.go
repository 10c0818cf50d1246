// Package strategy defines the Profile read interface shared by every
// consumer of a trained or hand-built strategy — best response,
// evaluation, the RNR/DBR fixed opponent policy, the utility estimators,
// and strategy-file I/O — independent of which trainer produced it.
package strategy

import "github.com/mkemp/pokercfr/pkg/tree"

// Profile gives read-only access to the probability distribution over an
// ActionNode's legal actions.
type Profile interface {
	At(n *tree.Node) [tree.NumActions]float64
}

// Map is a Profile backed by an in-memory table keyed by a node's
// canonical InfoSetKey — the representation read from and written to a
// strategy file (spec.md §6) and used as the RNR fixed opponent
// distribution.
type Map map[string][tree.NumActions]float64

// At implements Profile, falling back to uniform-over-legal-actions for
// an infoset the map has no entry for. Callers that must distinguish a
// missing infoset from an explicit uniform entry (RNR/DBR, strategy-file
// validation) should use Lookup instead.
func (m Map) At(n *tree.Node) [tree.NumActions]float64 {
	if p, ok := m[n.InfoSetKey]; ok {
		return p
	}
	return uniform(n)
}

// Lookup returns the stored distribution for n and whether one exists.
func (m Map) Lookup(n *tree.Node) ([tree.NumActions]float64, bool) {
	p, ok := m[n.InfoSetKey]
	return p, ok
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
