// Package portfolio trains one Restricted Nash Response per opponent
// strategy, searches for the tilt probability that hits a target
// exploitability, and greedily selects a subset of the trained responses
// into a portfolio, per spec.md §4.9.
package portfolio

import (
	"context"
	"math"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/mkemp/pokercfr/pkg/cfr"
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/evaluation"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/response"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// maxBisectionSteps bounds OptimizeRNR's search: the original tooling
// bisects p ∈ [0,1] in an unbounded loop, trusting the caller's target/
// tolerance to be reachable. A production solver needs a guaranteed exit;
// 40 halvings narrows the interval to about 1e-12, far finer than any
// tolerance a caller would set, so the cap never binds in practice.
const maxBisectionSteps = 40

// RNRResult is the outcome of OptimizeRNR: the trained response, its
// measured exploitability, and the tilt probability that produced it.
type RNRResult struct {
	Strategy       strategy.Map
	Exploitability float64
	P              float64
}

// OptimizeRNR binary-searches RNR's tilt probability p so that training
// against opponent for trainOpts.Iterations (ignoring checkpoints before
// 3/4 of the budget, so convergence has had time to settle) produces a
// response whose exploitability lands within maxDelta of
// targetExploitability, per spec.md §4.9's RNR parameter search.
func OptimizeRNR(g *game.Game, root *tree.Node, opponent strategy.Profile, targetExploitability, maxDelta float64, trainOpts cfr.Options, logger *log.Logger) (RNRResult, error) {
	if maxDelta <= 0 {
		return RNRResult{}, errs.New(errs.ParameterOutOfRange, "max_exploitability_delta must be positive, got %v", maxDelta)
	}
	trainOpts = trainOpts.WithDefaults()
	if err := trainOpts.Validate(); err != nil {
		return RNRResult{}, err
	}

	pLow, pHigh := 0.0, 1.0
	var fallback RNRResult
	haveFallback := false
	fallbackDelta := math.Inf(1)

	for step := 0; step < maxBisectionSteps; step++ {
		p := pLow + (pHigh-pLow)/2

		trainer, err := response.NewTrainer(g, root, response.RNRPolicy{Fixed: opponent, P: p}, trainOpts.Seed)
		if err != nil {
			return RNRResult{}, err
		}

		bestExploitability := math.Inf(1)
		bestDelta := math.Inf(1)
		var bestSnapshot strategy.Map

		opts := trainOpts
		opts.CheckpointCallback = func(checkpointRoot *tree.Node, checkpointIndex, iterationsSoFar int) {
			if iterationsSoFar <= (3*trainOpts.Iterations)/4 {
				return
			}
			exploitability, err := evaluation.Exploitability(g, checkpointRoot, trainer.Store().Averaged())
			if err != nil {
				return
			}
			delta := math.Abs(exploitability - targetExploitability)
			if delta < bestDelta {
				bestDelta = delta
				bestExploitability = exploitability
				bestSnapshot = trainer.Store().SnapshotAveraged(checkpointRoot)
			}
		}

		if err := trainer.Train(opts); err != nil {
			return RNRResult{}, err
		}

		if logger != nil {
			logger.Info("RNR bisection step", "step", step, "p", p, "exploitability", bestExploitability, "delta", bestDelta)
		}

		if bestDelta < fallbackDelta {
			fallbackDelta = bestDelta
			if bestSnapshot == nil {
				bestSnapshot = trainer.Store().SnapshotAveraged(root)
			}
			fallback = RNRResult{Strategy: bestSnapshot, Exploitability: bestExploitability, P: p}
			haveFallback = true
		}

		if bestDelta <= maxDelta {
			return RNRResult{Strategy: bestSnapshot, Exploitability: bestExploitability, P: p}, nil
		}

		if bestExploitability > targetExploitability {
			pHigh = p
		} else {
			pLow = p
		}
	}

	if !haveFallback {
		return RNRResult{}, errs.New(errs.MissingInfoset, "RNR bisection never produced a checkpoint")
	}
	if logger != nil {
		logger.Warn("RNR bisection exhausted its step budget without reaching the requested tolerance", "best_delta", fallbackDelta, "p", fallback.P)
	}
	return fallback, nil
}

// OpponentSpec bundles one opponent's fixed policy with the target
// exploitability and tolerance its RNR response should hit, mirroring the
// per-opponent rnr_params entries in build_portfolio.py.
type OpponentSpec struct {
	Opponent               strategy.Profile
	TargetExploitability   float64
	MaxExploitabilityDelta float64
}

// TrainResponses trains one RNR response per opponent spec, bounded at
// max(runtime.NumCPU()/2, 2) concurrent workers per spec.md §5, grounded
// on lox-pokerforbots/internal/evaluator/equity.go's errgroup worker pool.
func TrainResponses(ctx context.Context, g *game.Game, root *tree.Node, specs []OpponentSpec, trainOpts cfr.Options, logger *log.Logger) ([]RNRResult, error) {
	if len(specs) == 0 {
		return nil, errs.New(errs.ParameterOutOfRange, "TrainResponses requires at least one opponent")
	}

	workers := runtime.NumCPU() / 2
	if workers < 2 {
		workers = 2
	}
	if workers > len(specs) {
		workers = len(specs)
	}

	results := make([]RNRResult, len(specs))
	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	for i, spec := range specs {
		i, spec := i, spec
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				return egCtx.Err()
			}
			defer func() { <-sem }()

			result, err := OptimizeRNR(g, root, spec.Opponent, spec.TargetExploitability, spec.MaxExploitabilityDelta, trainOpts, logger)
			if err != nil {
				return err
			}
			results[i] = result
			if logger != nil {
				logger.Info("trained response", "opponent", i+1, "of", len(specs), "p", result.P, "exploitability", result.Exploitability)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
