package online

import (
	"context"
	"io"
	"math/rand"

	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/tree"
)

// DealerSession is the transport boundary between a playing strategy and
// a live game: ask for the next decision point this seat must act on, and
// report back the action chosen for it. A real client would satisfy this
// by speaking the ACPC dealer wire protocol over dealer_host:dealer_port;
// per spec.md §1's Non-goals, this module ships only the interface and
// the in-process stub below, not that client.
type DealerSession interface {
	// NextDecisionPoint blocks until this seat must act, returning the
	// ActionNode it must act on. It returns io.EOF once the session is
	// over (the match has no further hands).
	NextDecisionPoint(ctx context.Context) (*tree.Node, error)
	// SubmitAction reports the action chosen for the node most recently
	// returned by NextDecisionPoint.
	SubmitAction(ctx context.Context, action int) error
}

// StubDealerSession replays a fixed, pre-built sequence of decision
// points in order, recording the actions submitted for each. It exercises
// the DealerSession contract end to end without a live dealer connection,
// e.g. for driving a portfolio's WeightedMixture over a scripted hand.
type StubDealerSession struct {
	Nodes   []*tree.Node
	Actions []int

	next int
}

// NextDecisionPoint returns the stub's nodes in order, then io.EOF.
func (s *StubDealerSession) NextDecisionPoint(ctx context.Context) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.Nodes) {
		return nil, io.EOF
	}
	n := s.Nodes[s.next]
	s.next++
	return n, nil
}

// SubmitAction records action against the node most recently handed out.
func (s *StubDealerSession) SubmitAction(ctx context.Context, action int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Actions = append(s.Actions, action)
	return nil
}

// SampleAction draws one action from dist using rng, weighted by dist's
// probabilities over n's legal actions. It falls back to n's first legal
// action if dist sums to 0 (e.g. an infoset strategy-io didn't cover).
func SampleAction(rng *rand.Rand, n *tree.Node, dist [tree.NumActions]float64) (int, error) {
	if len(n.ActionOrder) == 0 {
		return 0, errs.New(errs.InvalidStrategy, "node %q has no legal actions", n.InfoSetKey)
	}
	draw := rng.Float64()
	cumulative := 0.0
	for _, a := range n.ActionOrder {
		cumulative += dist[a]
		if draw <= cumulative {
			return a, nil
		}
	}
	return n.ActionOrder[0], nil
}
