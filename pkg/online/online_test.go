package online

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

type fixedDist [tree.NumActions]float64

func (d fixedDist) At(n *tree.Node) [tree.NumActions]float64 { return [tree.NumActions]float64(d) }

func TestNewEXP3GRejectsInvalidParameters(t *testing.T) {
	_, err := NewEXP3G(0, 0.02, 0.025)
	require.Error(t, err)

	_, err = NewEXP3G(3, -0.1, 0.025)
	require.Error(t, err)

	_, err = NewEXP3G(3, 1.1, 0.025)
	require.Error(t, err)
}

// TestEXP3GUpdateMatchesWorkedExample is spec.md §8 scenario 8: starting
// w=[1,1,1], γ=0.02, η=0.025, reward=[0,10,0] yields new w=[1,e^0.25,1],
// and probabilities 0.98·w/Σw + 0.02/3.
func TestEXP3GUpdateMatchesWorkedExample(t *testing.T) {
	bandit, err := NewEXP3G(3, 0.02, 0.025)
	require.NoError(t, err)

	require.NoError(t, bandit.Update([]float64{0, 10, 0}))

	want := []float64{1, math.Exp(0.25), 1}
	got := bandit.Weights()
	require.Len(t, got, 3)
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-9)
	}

	sum := want[0] + want[1] + want[2]
	wantProbs := []float64{
		0.98*(want[0]/sum) + 0.02/3,
		0.98*(want[1]/sum) + 0.02/3,
		0.98*(want[2]/sum) + 0.02/3,
	}
	gotProbs := bandit.Probabilities()
	require.Len(t, gotProbs, 3)
	for i := range wantProbs {
		require.InDelta(t, wantProbs[i], gotProbs[i], 1e-9)
	}
}

func TestEXP3GUpdateRejectsWrongPayoffCount(t *testing.T) {
	bandit, err := NewEXP3G(3, 0.02, 0.025)
	require.NoError(t, err)
	require.Error(t, bandit.Update([]float64{1, 2}))
}

func TestEXP3GProbabilitiesSumToOne(t *testing.T) {
	bandit, err := NewEXP3G(4, 0.1, 0.05)
	require.NoError(t, err)
	require.NoError(t, bandit.Update([]float64{3, -2, 0, 7}))

	sum := 0.0
	for _, p := range bandit.Probabilities() {
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestWeightedMixtureAveragesUnderlyingDistributions(t *testing.T) {
	a := fixedDist{tree.ActionFold: 1}
	b := fixedDist{tree.ActionRaise: 1}
	mix := WeightedMixture{
		Profiles: []strategy.Profile{a, b},
		Weights:  []float64{0.25, 0.75},
	}

	dist := mix.At(&tree.Node{ActionOrder: []int{tree.ActionFold, tree.ActionRaise}})
	require.InDelta(t, 0.25, dist[tree.ActionFold], 1e-9)
	require.InDelta(t, 0.75, dist[tree.ActionRaise], 1e-9)
	require.InDelta(t, 0, dist[tree.ActionCall], 1e-9)
}
