package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mkemp/pokercfr/pkg/cfr"
	"github.com/mkemp/pokercfr/pkg/portfolio"
	"github.com/mkemp/pokercfr/pkg/strategyio"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// BuildPortfolioCmd trains one RNR response per opponent strategy and
// greedily selects a subset into a portfolio, per spec.md §4.9.
//
// spec.md §6 writes this command's arguments as
// "<game> <opponent_strategies…> <out_dir>", with the variadic opponent
// list in the middle; kong only allows a slice positional last, so
// out_dir is a flag here instead of trailing positional.
type BuildPortfolioCmd struct {
	Game               string   `arg:"" enum:"kuhn,leduc" help:"Game every strategy was trained over"`
	OpponentStrategies []string `arg:"" help:"One or more opponent strategy files to train RNR responses against"`

	OutDir string `required:"" help:"Directory the selected responses are written under"`
}

func (c *BuildPortfolioCmd) Run(app *appContext) error {
	g, err := loadGame(c.Game)
	if err != nil {
		return err
	}
	root, err := tree.New(g).Build()
	if err != nil {
		return err
	}

	specs := make([]portfolio.OpponentSpec, len(c.OpponentStrategies))
	for i, path := range c.OpponentStrategies {
		m, err := readStrategyFile(path)
		if err != nil {
			return err
		}
		specs[i] = portfolio.OpponentSpec{
			Opponent:               m,
			TargetExploitability:   app.Config.RNR.TargetExploitability,
			MaxExploitabilityDelta: app.Config.RNR.MaxExploitabilityDelta,
		}
	}

	trainOpts := cfr.Options{
		Iterations:               app.Config.CFR.Iterations,
		WeightDelay:              app.Config.CFR.WeightDelay,
		CheckpointIterations:     app.Config.CFR.CheckpointIterations,
		MinimalActionProbability: app.Config.CFR.MinimalActionProbability,
		Seed:                     app.Config.CFR.Seed,
	}

	runID := uuid.New()
	result, err := portfolio.Build(context.Background(), g, root, specs, app.Config.Portfolio.Size, app.Config.Portfolio.Threshold, trainOpts, app.Logger)
	if err != nil {
		return err
	}

	outDir := filepath.Join(c.OutDir, runID.String())
	for i, r := range result.Responses {
		path := filepath.Join(outDir, fmt.Sprintf("response-%d.txt", i))
		comments := []string{
			fmt.Sprintf("run_id=%s p=%v exploitability=%v", runID, r.P, r.Exploitability),
		}
		if err := strategyio.WriteStrategy(path, r.Strategy, comments); err != nil {
			return err
		}
	}
	app.Logger.Info("portfolio built", "run_id", runID, "opponents", len(specs), "selected", len(result.Responses), "out", outDir)
	return nil
}
