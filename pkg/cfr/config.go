package cfr

import (
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// CheckpointFunc is invoked after every CheckpointIterations iterations
// (and once at the end of training) with the tree root, the checkpoint's
// sequence number, and the total iterations completed so far. It must not
// panic; a checkpoint failure is the caller's problem to catch.
type CheckpointFunc func(root *tree.Node, checkpointIndex, iterationsSoFar int)

// Options is the CFR+ "dynamic configuration object" spec.md §9 calls for,
// made explicit: every field that type can take is named here instead of
// threaded through an open-ended options map.
type Options struct {
	Iterations             int
	WeightDelay            int // default 700
	CheckpointIterations   int // default: Iterations
	CheckpointCallback     CheckpointFunc
	MinimalActionProbability float64
	Seed                   int64
}

// WithDefaults returns a copy of o with zero-value fields replaced by the
// defaults spec.md §9 names.
func (o Options) WithDefaults() Options {
	if o.WeightDelay == 0 {
		o.WeightDelay = 700
	}
	if o.CheckpointIterations == 0 {
		o.CheckpointIterations = o.Iterations
	}
	if o.CheckpointCallback == nil {
		o.CheckpointCallback = func(*tree.Node, int, int) {}
	}
	return o
}

// Validate enforces spec.md §7's ParameterOutOfRange conditions: iteration
// count must exceed weight_delay (CFR+'s delayed averaging needs room to
// start weighting), and neither may be negative.
func (o Options) Validate() error {
	if o.Iterations <= 0 {
		return errs.New(errs.ParameterOutOfRange, "iterations must be positive, got %d", o.Iterations)
	}
	if o.WeightDelay < 0 {
		return errs.New(errs.ParameterOutOfRange, "weight_delay must be non-negative, got %d", o.WeightDelay)
	}
	if o.Iterations <= o.WeightDelay {
		return errs.New(errs.ParameterOutOfRange, "iterations (%d) must exceed weight_delay (%d)", o.Iterations, o.WeightDelay)
	}
	if o.MinimalActionProbability < 0 || o.MinimalActionProbability >= 1 {
		return errs.New(errs.ParameterOutOfRange, "minimal_action_probability must be in [0,1), got %f", o.MinimalActionProbability)
	}
	return nil
}
