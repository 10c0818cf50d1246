package portfolio

import (
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/evaluation"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// Select implements build_portfolio.py's greedy growth: starting from the
// single response with the best mean utility across all opponents, it
// repeatedly adds whichever remaining response most improves the mean of
// each opponent's best-of-portfolio utility, until every response has been
// ordered. It then truncates that order to portfolioSize responses, or, if
// portfolioSize <= 0, to the first prefix whose per-step utility gain is
// still at least threshold · (final - initial) of the fully-greedy curve's
// total improvement — SPEC_FULL.md §9's literal per-step-vs-total-
// improvement reading of the cutoff, not a diminishing-returns-against-
// remaining-improvement variant.
//
// Select returns the response indices in the order they were added and the
// cumulative portfolio-utility curve (one entry per prefix length).
func Select(g *game.Game, root *tree.Node, opponents []strategy.Profile, responses []strategy.Map, portfolioSize int, threshold float64) ([]int, []float64, error) {
	if len(opponents) != len(responses) {
		return nil, nil, errs.New(errs.ParameterOutOfRange, "opponents (%d) and responses (%d) must have equal length", len(opponents), len(responses))
	}
	if portfolioSize <= 0 && threshold <= 0 {
		return nil, nil, errs.New(errs.ParameterOutOfRange, "either portfolio_size or threshold greater than 0 must be provided")
	}
	n := len(opponents)
	if n == 0 {
		return nil, nil, errs.New(errs.ParameterOutOfRange, "Select requires at least one opponent/response pair")
	}

	utilities := make([][]float64, n)
	for i := range utilities {
		utilities[i] = make([]float64, n)
		for j := range opponents {
			u := evaluation.Evaluate(g, root, []strategy.Profile{responses[i], opponents[j]})
			utilities[i][j] = u[0]
		}
	}

	added := make([]int, n)
	curve := make([]float64, n)
	available := make([]bool, n)
	for i := range available {
		available[i] = true
	}

	best, bestMean := -1, 0.0
	for i := 0; i < n; i++ {
		mean := meanOf(utilities[i])
		if best == -1 || mean > bestMean {
			best, bestMean = i, mean
		}
	}
	added[0] = best
	curve[0] = bestMean
	available[best] = false
	maxUtilities := append([]float64(nil), utilities[best]...)

	for step := 1; step < n; step++ {
		bestCandidate := -1
		var bestCandidateUtilities []float64
		var bestCandidateMean float64
		for j := 0; j < n; j++ {
			if !available[j] {
				continue
			}
			candidate := make([]float64, n)
			for k := range candidate {
				candidate[k] = maxFloat(maxUtilities[k], utilities[j][k])
			}
			mean := meanOf(candidate)
			if bestCandidate == -1 || mean > bestCandidateMean {
				bestCandidate = j
				bestCandidateUtilities = candidate
				bestCandidateMean = mean
			}
		}
		available[bestCandidate] = false
		maxUtilities = bestCandidateUtilities
		added[step] = bestCandidate
		curve[step] = bestCandidateMean
	}

	finalSize := portfolioSize
	if finalSize <= 0 {
		totalImprovement := curve[n-1] - curve[0]
		minimalImprovement := totalImprovement * threshold
		finalSize = 1
		for i := 1; i < n; i++ {
			if curve[i]-curve[i-1] >= minimalImprovement {
				finalSize++
			} else {
				break
			}
		}
	}
	if finalSize > n {
		finalSize = n
	}

	return added[:finalSize], curve[:finalSize], nil
}

func meanOf(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
