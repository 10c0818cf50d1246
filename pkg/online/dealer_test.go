package online

import (
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkemp/pokercfr/pkg/tree"
)

func TestStubDealerSessionReplaysNodesThenEOF(t *testing.T) {
	n1 := &tree.Node{ActionOrder: []int{tree.ActionFold, tree.ActionCall}}
	n2 := &tree.Node{ActionOrder: []int{tree.ActionCall, tree.ActionRaise}}
	stub := &StubDealerSession{Nodes: []*tree.Node{n1, n2}}
	ctx := context.Background()

	got1, err := stub.NextDecisionPoint(ctx)
	require.NoError(t, err)
	require.Same(t, n1, got1)
	require.NoError(t, stub.SubmitAction(ctx, tree.ActionCall))

	got2, err := stub.NextDecisionPoint(ctx)
	require.NoError(t, err)
	require.Same(t, n2, got2)
	require.NoError(t, stub.SubmitAction(ctx, tree.ActionRaise))

	_, err = stub.NextDecisionPoint(ctx)
	require.ErrorIs(t, err, io.EOF)

	require.Equal(t, []int{tree.ActionCall, tree.ActionRaise}, stub.Actions)
}

func TestSampleActionRespectsDistribution(t *testing.T) {
	n := &tree.Node{ActionOrder: []int{tree.ActionFold, tree.ActionCall, tree.ActionRaise}}
	dist := [tree.NumActions]float64{tree.ActionFold: 0, tree.ActionCall: 1, tree.ActionRaise: 0}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		a, err := SampleAction(rng, n, dist)
		require.NoError(t, err)
		require.Equal(t, tree.ActionCall, a)
	}
}

func TestSampleActionRejectsNodeWithNoLegalActions(t *testing.T) {
	n := &tree.Node{}
	rng := rand.New(rand.NewSource(1))
	_, err := SampleAction(rng, n, [tree.NumActions]float64{})
	require.Error(t, err)
}
