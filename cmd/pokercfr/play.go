package main

import (
	"context"
	"errors"
	"io"
	"math/rand"

	"github.com/mkemp/pokercfr/pkg/online"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// PlayCmd plays a trained strategy seat-by-seat against a DealerSession.
// Per SPEC_FULL.md's dealer-transport scope, a real ACPC client that
// speaks to DealerHost:DealerPort is out of scope; this wires the loaded
// strategy against the in-process StubDealerSession instead, so the
// strategy-selection loop below is exactly what a real client would
// drive once it existed.
type PlayCmd struct {
	Game       string `arg:"" enum:"kuhn,leduc" help:"Game the strategy was trained over"`
	DealerHost string `arg:"" help:"Dealer host (accepted for the real ACPC client this module does not implement)"`
	DealerPort int    `arg:"" help:"Dealer port (accepted for the real ACPC client this module does not implement)"`
	Strategy   string `arg:"" help:"Strategy file to play"`
	Seed       int64  `help:"Seed for action sampling" default:"1"`
}

func (c *PlayCmd) Run(app *appContext) error {
	g, err := loadGame(c.Game)
	if err != nil {
		return err
	}
	root, err := tree.New(g).Build()
	if err != nil {
		return err
	}

	profile, err := readStrategyFile(c.Strategy)
	if err != nil {
		return err
	}

	app.Logger.Warn("no ACPC dealer client is implemented; playing against an in-process stub instead",
		"dealer_host", c.DealerHost, "dealer_port", c.DealerPort)

	var ourNodes []*tree.Node
	tree.Visit(root, func(n *tree.Node) bool {
		if n.Kind == tree.ActionKind && n.Player == 0 {
			ourNodes = append(ourNodes, n)
		}
		return true
	})

	session := &online.StubDealerSession{Nodes: ourNodes}
	rng := rand.New(rand.NewSource(c.Seed))
	ctx := context.Background()

	for {
		node, err := session.NextDecisionPoint(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		dist := profile.At(node)
		action, err := online.SampleAction(rng, node, dist)
		if err != nil {
			return err
		}
		if err := session.SubmitAction(ctx, action); err != nil {
			return err
		}
		app.Logger.Info("acted", "infoset", node.InfoSetKey, "action", tree.ActionName(action))
	}

	app.Logger.Info("play complete", "decisions", len(session.Actions))
	return nil
}
