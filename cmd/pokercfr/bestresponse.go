package main

import (
	"os"

	"github.com/mkemp/pokercfr/pkg/bestresponse"
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/strategyio"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// BestResponseCmd computes the exact best response to a fixed strategy,
// per spec.md §4.5.
type BestResponseCmd struct {
	Game     string `arg:"" enum:"kuhn,leduc" help:"Game the strategy file was trained over"`
	Strategy string `arg:"" help:"Strategy file to respond to"`
	Out      string `arg:"" help:"Strategy file to write the best response to"`
}

func (c *BestResponseCmd) Run(app *appContext) error {
	g, err := loadGame(c.Game)
	if err != nil {
		return err
	}
	root, err := tree.New(g).Build()
	if err != nil {
		return err
	}

	opponent, err := readStrategyFile(c.Strategy)
	if err != nil {
		return err
	}

	response, err := bestresponse.Solve(g, root, opponent)
	if err != nil {
		return err
	}

	if err := strategyio.WriteStrategy(c.Out, response, []string{"best response to " + c.Strategy}); err != nil {
		return err
	}
	app.Logger.Info("best response computed", "opponent", c.Strategy, "out", c.Out)
	return nil
}

func readStrategyFile(path string) (strategy.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, err, "opening strategy file %s", path)
	}
	defer f.Close()
	return strategyio.ReadStrategy(f)
}
