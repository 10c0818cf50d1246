package estimator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkemp/pokercfr/pkg/cards"
	"github.com/mkemp/pokercfr/pkg/errs"
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

// uniformLegal spreads probability evenly across whatever actions are
// legal at n, so it assigns positive weight to a raise where alwaysCall
// would not.
type uniformLegal struct{}

func (uniformLegal) At(n *tree.Node) [tree.NumActions]float64 {
	var d [tree.NumActions]float64
	k := len(n.ActionOrder)
	if k == 0 {
		return d
	}
	p := 1.0 / float64(k)
	for _, a := range n.ActionOrder {
		d[a] = p
	}
	return d
}

func buildKuhn(t *testing.T) *tree.Node {
	t.Helper()
	root, err := tree.New(game.Kuhn()).Build()
	require.NoError(t, err)
	return root
}

// kingOverJackObservation builds a Kuhn check-check hand where player 0 is
// dealt the top card and player 1 the bottom card: player 0 wins the 2-chip
// pot, netting +1 after its own ante.
func kingOverJackObservation(g *game.Game) Observation {
	deck := cards.Deck(g.Ranks, g.Suits)
	return Observation{
		Player:     0,
		HoleCards:  []cards.Card{deck[2]},
		OppHole:    []cards.Card{deck[0]},
		BoardCards: nil,
		Actions:    []int{tree.ActionCall, tree.ActionCall},
		Folded:     []bool{false, false},
	}
}

func TestChipsEstimateRealizedCheckCheck(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	obs := kingOverJackObservation(g)

	result, err := ChipsEstimate(g, root, obs, alwaysCall{}, []strategy.Profile{alwaysCall{}})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.InDelta(t, 1.0, result[0], 1e-9)
}

func TestChipsEstimateRejectsMultiPlayerGame(t *testing.T) {
	g := &game.Game{Players: 3}
	_, err := ChipsEstimate(g, nil, Observation{}, alwaysCall{}, nil)
	require.Error(t, err)
	require.NotZero(t, errs.ExitCode(err))
}

func TestImaginaryObservationsEstimateMatchesChipsWhenHandDominates(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	obs := kingOverJackObservation(g)

	// Every hypothesis for player 0's own hand that's disjoint from the
	// opponent's revealed jack (queen or king) still beats a jack, so the
	// imaginary-observations estimate collapses to the same value as the
	// realized chips estimate.
	chips, err := ChipsEstimate(g, root, obs, alwaysCall{}, []strategy.Profile{alwaysCall{}})
	require.NoError(t, err)
	io, err := ImaginaryObservationsEstimate(g, root, obs, alwaysCall{}, []strategy.Profile{alwaysCall{}})
	require.NoError(t, err)
	require.Len(t, io, 1)
	require.InDelta(t, chips[0], io[0], 1e-9)
}

func TestImaginaryObservationsEstimateWithoutOpponentHole(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	obs := kingOverJackObservation(g)
	obs.OppHole = nil
	obs.Folded = []bool{false, true}
	obs.Actions = []int{tree.ActionRaise, tree.ActionFold}

	result, err := ImaginaryObservationsEstimate(g, root, obs, uniformLegal{}, []strategy.Profile{uniformLegal{}})
	require.NoError(t, err)
	// The opponent folded, so every hole-card hypothesis for player 0 wins
	// the same pot regardless of what it holds.
	require.Len(t, result, 1)
	require.InDelta(t, 1.0, result[0], 1e-9)
}

func TestAIVATEstimateFailsWithoutShowdownReveal(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	obs := kingOverJackObservation(g)
	obs.OppHole = nil

	baseline, err := NewBaseline(g, alwaysCall{})
	require.NoError(t, err)

	_, err = AIVATEstimate(g, root, obs, baseline, alwaysCall{}, []strategy.Profile{alwaysCall{}})
	require.Error(t, err)

	var estErr *errs.Error
	require.True(t, errors.As(err, &estErr))
	require.Equal(t, errs.MissingInfoset, estErr.Kind)
}

func TestAIVATEstimateProducesFiniteValue(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	obs := kingOverJackObservation(g)

	baseline, err := NewBaseline(g, alwaysCall{})
	require.NoError(t, err)

	result, err := AIVATEstimate(g, root, obs, baseline, alwaysCall{}, []strategy.Profile{alwaysCall{}})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.False(t, math.IsNaN(result[0]))
	require.False(t, math.IsInf(result[0], 0))
}
