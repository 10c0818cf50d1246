package main

import (
	"fmt"

	"github.com/mkemp/pokercfr/pkg/evaluation"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// EvaluateCmd plays two strategy files against each other over every
// seat assignment and prints the resulting utility vector, per spec.md
// §4.6's game-value evaluator.
type EvaluateCmd struct {
	Game      string `arg:"" enum:"kuhn,leduc" help:"Game both strategy files were trained over"`
	Strategy1 string `arg:"" help:"First strategy file"`
	Strategy2 string `arg:"" help:"Second strategy file"`
}

func (c *EvaluateCmd) Run(app *appContext) error {
	g, err := loadGame(c.Game)
	if err != nil {
		return err
	}
	root, err := tree.New(g).Build()
	if err != nil {
		return err
	}

	s1, err := readStrategyFile(c.Strategy1)
	if err != nil {
		return err
	}
	s2, err := readStrategyFile(c.Strategy2)
	if err != nil {
		return err
	}

	utilities := evaluation.Evaluate(g, root, []strategy.Profile{s1, s2})
	fmt.Printf("%s: %v\n%s: %v\n", c.Strategy1, utilities[0], c.Strategy2, utilities[1])
	app.Logger.Info("evaluation complete", "strategy1", c.Strategy1, "strategy2", c.Strategy2, "utilities", utilities)
	return nil
}
