package portfolio

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/mkemp/pokercfr/pkg/cfr"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// Portfolio is the end result of Build: the selected responses, in
// selection order, alongside the opponent each was trained against and the
// cumulative mean-utility curve Select grew it from.
type Portfolio struct {
	Responses []RNRResult
	Opponents []strategy.Profile
	Curve     []float64
}

// Build trains one RNR response per opponent spec and greedily selects a
// subset into a portfolio, end to end, per build_portfolio.py.
func Build(ctx context.Context, g *game.Game, root *tree.Node, specs []OpponentSpec, portfolioSize int, threshold float64, trainOpts cfr.Options, logger *log.Logger) (Portfolio, error) {
	responses, err := TrainResponses(ctx, g, root, specs, trainOpts, logger)
	if err != nil {
		return Portfolio{}, err
	}

	opponents := make([]strategy.Profile, len(specs))
	responseMaps := make([]strategy.Map, len(specs))
	for i, spec := range specs {
		opponents[i] = spec.Opponent
		responseMaps[i] = responses[i].Strategy
	}

	indices, curve, err := Select(g, root, opponents, responseMaps, portfolioSize, threshold)
	if err != nil {
		return Portfolio{}, err
	}

	selectedResponses := make([]RNRResult, len(indices))
	selectedOpponents := make([]strategy.Profile, len(indices))
	for i, idx := range indices {
		selectedResponses[i] = responses[idx]
		selectedOpponents[i] = opponents[idx]
	}

	if logger != nil {
		logger.Info("portfolio built", "opponents", len(specs), "selected", len(indices))
	}

	return Portfolio{Responses: selectedResponses, Opponents: selectedOpponents, Curve: curve}, nil
}
