// Package online implements the EXP3G bandit and weighted-mixture
// strategy that compose a portfolio of trained responses into a single
// real-time playing strategy, per spec.md §4.9.
package online

import (
	"math"

	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// EXP3G maintains non-negative weights over K experts (portfolio
// responses) and mixes them with a uniform-exploration floor, per
// spec.md §4.9, grounded on
// _examples/original_source/implicit_modelling/exp3g.py.
type EXP3G struct {
	gamma, eta float64
	weights    []float64
}

// NewEXP3G returns a bandit over k experts, all weighted equally, mixing
// gamma of its probability mass uniformly and scaling weight updates by
// eta.
func NewEXP3G(k int, gamma, eta float64) (*EXP3G, error) {
	if k <= 0 {
		return nil, errs.New(errs.ParameterOutOfRange, "EXP3G requires at least one expert, got %d", k)
	}
	if gamma < 0 || gamma > 1 {
		return nil, errs.New(errs.ParameterOutOfRange, "gamma must be in [0,1], got %v", gamma)
	}
	weights := make([]float64, k)
	for i := range weights {
		weights[i] = 1
	}
	return &EXP3G{gamma: gamma, eta: eta, weights: weights}, nil
}

// Probabilities returns the current mixing distribution over experts:
// (1-γ)·w/Σw + γ/K.
func (e *EXP3G) Probabilities() []float64 {
	sum := 0.0
	for _, w := range e.weights {
		sum += w
	}
	k := float64(len(e.weights))
	p := make([]float64, len(e.weights))
	for i, w := range e.weights {
		p[i] = (1-e.gamma)*(w/sum) + e.gamma/k
	}
	return p
}

// Update scales each expert's weight by exp(η·payoff), one payoff per
// expert, called once per hand with that hand's realized (or estimated)
// per-expert payoff.
func (e *EXP3G) Update(payoffs []float64) error {
	if len(payoffs) != len(e.weights) {
		return errs.New(errs.ParameterOutOfRange, "expected %d payoffs, got %d", len(e.weights), len(payoffs))
	}
	for i, payoff := range payoffs {
		e.weights[i] *= math.Exp(e.eta * payoff)
	}
	return nil
}

// Weights returns a copy of the bandit's current raw weights.
func (e *EXP3G) Weights() []float64 {
	return append([]float64(nil), e.weights...)
}

// WeightedMixture is a strategy.Profile that, at every ActionNode, mixes
// the distributions of K underlying profiles using per-expert weights
// (typically EXP3G.Probabilities()), per spec.md §4.9's "the mixed σ is
// the weighted average of the K portfolio strategies at that node using
// the current EXP3G probabilities". Grounded on
// _examples/original_source/implicit_modelling/strategies_weighted_mixeture.py.
// Weights must be the same length as Profiles and is the caller's to keep
// in sync (e.g. by refreshing it from EXP3G.Probabilities() each hand).
type WeightedMixture struct {
	Profiles []strategy.Profile
	Weights  []float64
}

func (m WeightedMixture) At(n *tree.Node) [tree.NumActions]float64 {
	var mixed [tree.NumActions]float64
	for i, p := range m.Profiles {
		dist := p.At(n)
		w := m.Weights[i]
		for a := range mixed {
			mixed[a] += w * dist[a]
		}
	}
	return mixed
}
