package main

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mkemp/pokercfr/pkg/cfr"
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/strategyio"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// TrainCmd runs classic CFR or CFR+ to approximate a Nash equilibrium,
// writing the resulting averaged strategy to Out.
type TrainCmd struct {
	Game       string `arg:"" enum:"kuhn,leduc" help:"Game to train against (kuhn or leduc)"`
	Iterations int    `arg:"" help:"Training iterations"`
	Out        string `arg:"" help:"Strategy file to write"`

	Algorithm string `help:"cfr or cfr+" enum:"cfr,cfr+" default:"cfr+"`
}

func (c *TrainCmd) Run(app *appContext) error {
	g, err := loadGame(c.Game)
	if err != nil {
		return err
	}
	root, err := tree.New(g).Build()
	if err != nil {
		return err
	}

	runID := uuid.New()
	opts := cfr.Options{
		Iterations:               c.Iterations,
		WeightDelay:              app.Config.CFR.WeightDelay,
		CheckpointIterations:     app.Config.CFR.CheckpointIterations,
		MinimalActionProbability: app.Config.CFR.MinimalActionProbability,
		Seed:                     app.Config.CFR.Seed,
		CheckpointCallback: func(_ *tree.Node, checkpointIndex, iterationsSoFar int) {
			app.Logger.Info("checkpoint", "run_id", runID, "checkpoint", checkpointIndex, "iterations", iterationsSoFar)
		},
	}

	var store *cfr.Store
	switch c.Algorithm {
	case "cfr":
		trainer := cfr.NewClassicTrainer(g, root, opts.Seed)
		if err := trainer.Train(opts); err != nil {
			return err
		}
		store = trainer.Store()
	case "cfr+":
		trainer, err := cfr.NewPlusTrainer(g, root)
		if err != nil {
			return err
		}
		if err := trainer.Train(opts); err != nil {
			return err
		}
		store = trainer.Store()
	default:
		return errs.New(errs.ParameterOutOfRange, "unknown algorithm %q", c.Algorithm)
	}

	snapshot := store.SnapshotAveraged(root)
	comments := []string{
		fmt.Sprintf("run_id=%s game=%s algorithm=%s iterations=%d", runID, c.Game, c.Algorithm, c.Iterations),
	}
	if err := strategyio.WriteStrategy(c.Out, snapshot, comments); err != nil {
		return err
	}
	app.Logger.Info("training complete", "run_id", runID, "infosets", len(snapshot), "out", c.Out)
	return nil
}
