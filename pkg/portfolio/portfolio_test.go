package portfolio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkemp/pokercfr/pkg/cfr"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

type alwaysCall struct{}

func (alwaysCall) At(n *tree.Node) [tree.NumActions]float64 {
	var d [tree.NumActions]float64
	d[tree.ActionCall] = 1
	return d
}

type alwaysFoldWhenLegal struct{}

func (alwaysFoldWhenLegal) At(n *tree.Node) [tree.NumActions]float64 {
	var d [tree.NumActions]float64
	for _, a := range n.ActionOrder {
		if a == tree.ActionFold {
			d[tree.ActionFold] = 1
			return d
		}
	}
	d[n.ActionOrder[0]] = 1
	return d
}

func buildKuhn(t *testing.T) *tree.Node {
	t.Helper()
	root, err := tree.New(game.Kuhn()).Build()
	require.NoError(t, err)
	return root
}

func TestOptimizeRNRRejectsNonPositiveMaxDelta(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	_, err := OptimizeRNR(g, root, alwaysCall{}, 0, 0, cfr.Options{Iterations: 10, WeightDelay: 1}, nil)
	require.Error(t, err)
}

func TestOptimizeRNRReturnsAResponseWithinTolerance(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)

	// A generous tolerance and a small iteration budget keep this test fast;
	// the point is that OptimizeRNR terminates and returns a usable
	// snapshot, not that it hits a tight target.
	result, err := OptimizeRNR(g, root, alwaysCall{}, 0.5, 0.5, cfr.Options{Iterations: 40, WeightDelay: 4, CheckpointIterations: 10}, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Strategy)
	require.GreaterOrEqual(t, result.P, 0.0)
	require.LessOrEqual(t, result.P, 1.0)
}

func TestTrainResponsesRejectsEmptySpecs(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	_, err := TrainResponses(context.Background(), g, root, nil, cfr.Options{Iterations: 10, WeightDelay: 1}, nil)
	require.Error(t, err)
}

func TestTrainResponsesTrainsOnePerOpponent(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	specs := []OpponentSpec{
		{Opponent: alwaysCall{}, TargetExploitability: 0, MaxExploitabilityDelta: 1},
		{Opponent: alwaysFoldWhenLegal{}, TargetExploitability: 0, MaxExploitabilityDelta: 1},
	}

	results, err := TrainResponses(context.Background(), g, root, specs, cfr.Options{Iterations: 40, WeightDelay: 4, CheckpointIterations: 10}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NotNil(t, r.Strategy)
	}
}

func TestSelectRejectsMismatchedLengths(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	_, _, err := Select(g, root, []strategy.Profile{alwaysCall{}}, nil, 1, 0)
	require.Error(t, err)
}

func TestSelectGrowsACumulativeCurveAndHonorsFixedSize(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)

	opponents := []strategy.Profile{alwaysCall{}, alwaysFoldWhenLegal{}, alwaysCall{}}
	responses := []strategy.Map{
		strategy.Map{},
		strategy.Map{},
		strategy.Map{},
	}

	indices, curve, err := Select(g, root, opponents, responses, 2, 0)
	require.NoError(t, err)
	require.Len(t, indices, 2)
	require.Len(t, curve, 2)
	// The cumulative curve can never decrease as more responses are folded in.
	require.GreaterOrEqual(t, curve[1], curve[0]-1e-9)
}

func TestBuildEndToEnd(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	specs := []OpponentSpec{
		{Opponent: alwaysCall{}, TargetExploitability: 0, MaxExploitabilityDelta: 1},
		{Opponent: alwaysFoldWhenLegal{}, TargetExploitability: 0, MaxExploitabilityDelta: 1},
	}

	portfolio, err := Build(context.Background(), g, root, specs, 1, 0, cfr.Options{Iterations: 40, WeightDelay: 4, CheckpointIterations: 10}, nil)
	require.NoError(t, err)
	require.Len(t, portfolio.Responses, 1)
	require.Len(t, portfolio.Opponents, 1)
	require.Len(t, portfolio.Curve, 1)
}
