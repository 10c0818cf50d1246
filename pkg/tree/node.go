// Package tree builds and represents the canonical extensive-form game
// tree: HoleCards, BoardCards, Action, and Terminal nodes, per spec.md §3.
//
// Per spec.md §9's design note on "deep class hierarchy of nodes", all
// four variants share one struct tagged by Kind; callers dispatch on Kind
// at each visitor site instead of relying on a vtable. Per §9's note on
// "parent-pointer cycles", the canonical infoset-key string is computed
// once during the build and cached on the node rather than walked from
// parent pointers at traversal time.
//
// The tree itself is shape-only and immutable once built: regret_sum,
// current_strategy, strategy_sum, and averaged_strategy live in a
// separate Store keyed by Node.ID (see pkg/cfr), not on the Node. This
// lets many independent trainees (plain CFR, CFR+, each RNR/DBR response
// in a portfolio) share one built tree concurrently, per spec.md §5's "no
// shared mutable state during training" and §9's note that these arrays
// should be "parallel arrays indexed by a shared node id".
package tree

import (
	"fmt"
	"strings"

	"github.com/mkemp/pokercfr/pkg/cards"
)

// Kind tags which of the four node variants a Node is.
type Kind int

const (
	HoleCardsKind Kind = iota
	BoardCardsKind
	ActionKind
	TerminalKind
)

// NumActions is the fixed action arity (fold, call, raise) every
// ActionNode's regret/strategy arrays are sized to, per spec.md §3.
const NumActions = 3

const (
	ActionFold = 0
	ActionCall = 1
	ActionRaise = 2
)

// ActionName renders an action index using the strategy-file single-char
// codes of spec.md §6 (f/c/r).
func ActionName(a int) string {
	switch a {
	case ActionFold:
		return "f"
	case ActionCall:
		return "c"
	case ActionRaise:
		return "r"
	default:
		return "?"
	}
}

// Node is the tagged variant of spec.md §3's four node types.
type Node struct {
	Kind   Kind
	Parent *Node

	// ID is a dense, zero-based identifier assigned to every ActionNode in
	// traversal order at build time (spec.md §9 / SPEC_FULL.md §8), used
	// to index Store arrays directly instead of through a map.
	ID int

	// InfoSetKey is the canonical (hole-cards)::(board)(history) string of
	// spec.md's GLOSSARY (e.g. "Ks::c"), cached once at build time.
	InfoSetKey string

	// --- HoleCardsNode / BoardCardsNode fields ---
	CardCount    int
	CardOrder    []string             // insertion order of child keys
	CardChildren map[string]*Node     // keyed by cards.Key(sorted tuple)
	CardKeyCards map[string][]cards.Card

	// --- ActionNode fields ---
	Player         int
	ActionOrder    []int // legal actions, insertion order (call, fold, raise)
	ActionChildren [NumActions]*Node
	Legal          [NumActions]bool

	// --- TerminalNode fields ---
	PotCommitment []int
}

// newCardNode builds an empty HoleCards/BoardCards node.
func newCardNode(kind Kind, parent *Node, cardCount int) *Node {
	return &Node{
		Kind:         kind,
		Parent:       parent,
		CardCount:    cardCount,
		CardChildren: make(map[string]*Node),
		CardKeyCards: make(map[string][]cards.Card),
	}
}

// setCardChild attaches a child keyed by a (already-sorted) card tuple.
func (n *Node) setCardChild(key []cards.Card, child *Node) {
	k := cards.Key(key)
	if _, exists := n.CardChildren[k]; !exists {
		n.CardOrder = append(n.CardOrder, k)
	}
	n.CardChildren[k] = child
	n.CardKeyCards[k] = cards.Sorted(key)
}

// CardChild looks up a HoleCards/BoardCards child by its card tuple.
func (n *Node) CardChild(key []cards.Card) (*Node, bool) {
	child, ok := n.CardChildren[cards.Key(key)]
	return child, ok
}

// newActionNode builds an ActionNode with no children yet; legality is
// filled in by the builder.
func newActionNode(parent *Node, player int, infoSetKey string) *Node {
	return &Node{
		Kind:       ActionKind,
		Parent:     parent,
		Player:     player,
		InfoSetKey: infoSetKey,
	}
}

// setActionChild records a legal action and its child, preserving
// insertion order.
func (n *Node) setActionChild(action int, child *Node) {
	if !n.Legal[action] {
		n.Legal[action] = true
		n.ActionOrder = append(n.ActionOrder, action)
	}
	n.ActionChildren[action] = child
}

// newTerminalNode builds a TerminalNode with the given per-player pot
// commitment.
func newTerminalNode(parent *Node, potCommitment []int) *Node {
	return &Node{
		Kind:          TerminalKind,
		Parent:        parent,
		PotCommitment: append([]int(nil), potCommitment...),
	}
}

// String renders a human-readable summary, in the teacher's style.
func (n *Node) String() string {
	switch n.Kind {
	case HoleCardsKind:
		return fmt.Sprintf("HoleCards{count=%d, children=%d}", n.CardCount, len(n.CardChildren))
	case BoardCardsKind:
		return fmt.Sprintf("BoardCards{count=%d, children=%d}", n.CardCount, len(n.CardChildren))
	case ActionKind:
		actions := make([]string, len(n.ActionOrder))
		for i, a := range n.ActionOrder {
			actions[i] = ActionName(a)
		}
		return fmt.Sprintf("Action{player=%d, infoset=%s, legal=%s}", n.Player, n.InfoSetKey, strings.Join(actions, ","))
	case TerminalKind:
		return fmt.Sprintf("Terminal{pot=%v}", n.PotCommitment)
	default:
		return "Node{?}"
	}
}
