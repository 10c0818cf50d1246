package sampler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mkemp/pokercfr/pkg/cards"
	"github.com/mkemp/pokercfr/pkg/game"
	"github.com/mkemp/pokercfr/pkg/tree"
)

func buildKuhn(t *testing.T) *tree.Node {
	t.Helper()
	root, err := tree.New(game.Kuhn()).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return root
}

func TestReadLogAccumulatesCheckCheckDecision(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	deck := cards.Deck(g.Ranks, g.Suits)

	line := fmt.Sprintf(
		"STATE:0:cc:%s|%s:0|0:p1|p2\n",
		cards.FormatCard(deck[0], g.Suits),
		cards.FormatCard(deck[1], g.Suits),
	)

	tables, err := NewReader(g, root).ReadLog(strings.NewReader(line))
	if err != nil {
		t.Fatalf("ReadLog() error = %v", err)
	}

	if len(tables) != 2 {
		t.Fatalf("got %d player tables, want 2", len(tables))
	}

	p1Key := cards.FormatCard(deck[0], g.Suits) + "::"
	counts, ok := tables["p1"][p1Key]
	if !ok {
		t.Fatalf("p1 table missing infoset %q; got %+v", p1Key, tables["p1"])
	}
	if counts[tree.ActionCall] != 1 {
		t.Fatalf("p1 call count = %d, want 1", counts[tree.ActionCall])
	}

	p2Key := cards.FormatCard(deck[1], g.Suits) + "::c"
	counts2, ok := tables["p2"][p2Key]
	if !ok {
		t.Fatalf("p2 table missing infoset %q; got %+v", p2Key, tables["p2"])
	}
	if counts2[tree.ActionCall] != 1 {
		t.Fatalf("p2 call count = %d, want 1", counts2[tree.ActionCall])
	}
}

func TestReadLogIgnoresCommentsAndScoreLines(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	log := "# comment\n\nSCORE:0|0:p1|p2\n"

	tables, err := NewReader(g, root).ReadLog(strings.NewReader(log))
	if err != nil {
		t.Fatalf("ReadLog() error = %v", err)
	}
	if len(tables) != 0 {
		t.Fatalf("got %d tables from a log with no STATE lines, want 0", len(tables))
	}
}

func TestReadLogRejectsWrongPlayerCount(t *testing.T) {
	g := game.Kuhn()
	root := buildKuhn(t)
	line := "STATE:0:cc:Ks|Qs|Js:0|0|0:p1|p2|p3\n"

	if _, err := NewReader(g, root).ReadLog(strings.NewReader(line)); err == nil {
		t.Fatal("expected an error for a 3-name line in a 2-player game")
	}
}
