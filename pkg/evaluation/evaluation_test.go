package evaluation

import (
	"math"
	"testing"

	"github.com/mkemp/pokercfr/pkg/bestresponse"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// alwaysCall puts all weight on Call wherever it is legal (always, per the
// builder's legal-action ordering).
type alwaysCall struct{}

func (alwaysCall) At(n *tree.Node) [tree.NumActions]float64 {
	var d [tree.NumActions]float64
	d[tree.ActionCall] = 1
	return d
}

// alwaysFoldWhenLegal folds whenever fold is a legal action, and calls
// otherwise (the only decision node where fold is never legal is one
// already facing no outstanding bet).
type alwaysFoldWhenLegal struct{}

func (alwaysFoldWhenLegal) At(n *tree.Node) [tree.NumActions]float64 {
	var d [tree.NumActions]float64
	if n.Legal[tree.ActionFold] {
		d[tree.ActionFold] = 1
	} else {
		d[tree.ActionCall] = 1
	}
	return d
}

func buildTree(t *testing.T, g *game.Game) *tree.Node {
	t.Helper()
	root, err := tree.New(g).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return root
}

func approxEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

// TestKuhnAlwaysCallExploitability is spec.md §8 scenario 1: Kuhn
// always-call versus its best response has game value [-1/3, 1/3] for hero
// seat 0, and [1/3, -1/3] when the argument order is reversed.
func TestKuhnAlwaysCallExploitability(t *testing.T) {
	g := game.Kuhn()
	root := buildTree(t, g)

	br, err := bestresponse.Solve(g, root, alwaysCall{})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	values := Evaluate(g, root, []strategy.Profile{alwaysCall{}, br})
	if !approxEqual(values[0], -1.0/3.0, 1e-9) || !approxEqual(values[1], 1.0/3.0, 1e-9) {
		t.Fatalf("Evaluate(S, BR(S)) = %v, want [-1/3, 1/3]", values)
	}

	swapped := Evaluate(g, root, []strategy.Profile{br, alwaysCall{}})
	if !approxEqual(swapped[0], 1.0/3.0, 1e-9) || !approxEqual(swapped[1], -1.0/3.0, 1e-9) {
		t.Fatalf("Evaluate(BR(S), S) = %v, want [1/3, -1/3]", swapped)
	}
}

// TestKuhnAlwaysFoldExploitability is spec.md §8 scenario 2: Kuhn
// always-fold-when-legal versus its best response has game value [-1, 1].
func TestKuhnAlwaysFoldExploitability(t *testing.T) {
	g := game.Kuhn()
	root := buildTree(t, g)

	br, err := bestresponse.Solve(g, root, alwaysFoldWhenLegal{})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	values := Evaluate(g, root, []strategy.Profile{alwaysFoldWhenLegal{}, br})
	if !approxEqual(values[0], -1, 1e-9) || !approxEqual(values[1], 1, 1e-9) {
		t.Fatalf("Evaluate(S, BR(S)) = %v, want [-1, 1]", values)
	}

	swapped := Evaluate(g, root, []strategy.Profile{br, alwaysFoldWhenLegal{}})
	if !approxEqual(swapped[0], 1, 1e-9) || !approxEqual(swapped[1], -1, 1e-9) {
		t.Fatalf("Evaluate(BR(S), S) = %v, want [1, -1]", swapped)
	}
}

// TestLeducAlwaysFoldExploitability is spec.md §8 scenario 3: the same
// always-fold-when-legal check, on Leduc.
func TestLeducAlwaysFoldExploitability(t *testing.T) {
	g := game.Leduc()
	root := buildTree(t, g)

	br, err := bestresponse.Solve(g, root, alwaysFoldWhenLegal{})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	values := Evaluate(g, root, []strategy.Profile{alwaysFoldWhenLegal{}, br})
	if !approxEqual(values[0], -1, 1e-9) || !approxEqual(values[1], 1, 1e-9) {
		t.Fatalf("Evaluate(S, BR(S)) = %v, want [-1, 1]", values)
	}
}

// TestExploitabilityNonNegative checks the sign convention from spec.md §8:
// exploitability is the non-negative amount a best response extracts.
func TestExploitabilityNonNegative(t *testing.T) {
	g := game.Kuhn()
	root := buildTree(t, g)

	exp, err := Exploitability(g, root, alwaysCall{})
	if err != nil {
		t.Fatalf("Exploitability() error = %v", err)
	}
	if !approxEqual(exp, 1.0/3.0, 1e-9) {
		t.Fatalf("Exploitability(always-call) = %f, want 1/3", exp)
	}
}
