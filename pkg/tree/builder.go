package tree

import (
	"strings"

	"github.com/mkemp/pokercfr/pkg/cards"
	"github.com/mkemp/pokercfr/pkg/game"
)

// Builder constructs the single canonical tree for a Game, per spec.md
// §4.1, grounded on GameTreeBuilder.build_tree in the original
// implementation. Because every player's possible hole cards deal the
// same deck down to the same remaining size, the builder emits one
// HoleCardsNode root whose C(deck,H) children are reused by whichever
// player walks that branch during training — it does not build a
// separate tree per seat.
type Builder struct {
	g      *game.Game
	nextID int
}

// New returns a Builder for g.
func New(g *game.Game) *Builder {
	return &Builder{g: g}
}

// buildState threads the mutable traversal state the recursive generators
// need; it is cloned (never mutated in place) at every branch point so
// sibling branches never share state.
type buildState struct {
	deck          []cards.Card
	holeCards     []cards.Card // this branch's hole-card deal, fixed for its lifetime
	boardCards    []cards.Card // cumulative revealed board cards
	actionHistory []int

	playersFolded   []bool
	potCommitment   []int
	roundsLeft      int
	roundRaiseCount int
	playersActed    int
	currentPlayer   int
}

func (s *buildState) clone() *buildState {
	return &buildState{
		deck:            append([]cards.Card(nil), s.deck...),
		holeCards:       s.holeCards,
		boardCards:      s.boardCards,
		actionHistory:   s.actionHistory,
		playersFolded:   append([]bool(nil), s.playersFolded...),
		potCommitment:   append([]int(nil), s.potCommitment...),
		roundsLeft:      s.roundsLeft,
		roundRaiseCount: s.roundRaiseCount,
		playersActed:    s.playersActed,
		currentPlayer:   s.currentPlayer,
	}
}

// Build constructs and returns the tree's root, failing with
// InvalidGameDefinition if the game's betting type isn't LIMIT.
func (b *Builder) Build() (*Node, error) {
	if err := b.g.ValidateLimit(); err != nil {
		return nil, err
	}

	deck := cards.Deck(b.g.Ranks, b.g.Suits)
	root := newCardNode(HoleCardsKind, nil, b.g.NumHoleCards())

	for _, combo := range Combinations(deck, b.g.NumHoleCards()) {
		key := combo
		st := &buildState{
			deck:          removeCards(deck, combo),
			holeCards:     cards.Sorted(combo),
			playersFolded: make([]bool, b.g.NumPlayers()),
			potCommitment: append([]int(nil), b.g.Blind...),
			roundsLeft:    b.g.NumRounds(),
			currentPlayer: b.g.GetFirstPlayer(0),
		}
		b.generateBoardCardsNode(func(child *Node) { root.setCardChild(key, child) }, root, 0, st)
	}
	return root, nil
}

// generateBoardCardsNode emits round's BoardCardsNode (skipped when the
// round reveals no cards) and recurses into the action subtree for each
// combination of the remaining deck.
func (b *Builder) generateBoardCardsNode(attach func(*Node), trueParent *Node, round int, st *buildState) {
	numBoard := b.g.NumBoardCards(round)
	if numBoard <= 0 {
		b.generateActionNode(attach, trueParent, round, st)
		return
	}

	node := newCardNode(BoardCardsKind, trueParent, numBoard)
	attach(node)

	for _, combo := range Combinations(st.deck, numBoard) {
		key := combo
		st2 := st.clone()
		st2.deck = removeCards(st.deck, combo)
		st2.boardCards = append(append([]cards.Card(nil), st.boardCards...), combo...)
		b.generateActionNode(func(child *Node) { node.setCardChild(key, child) }, node, round, st2)
	}
}

// generateActionNode emits the betting subtree for round, recursing to
// the next round's BoardCardsNode or to a TerminalNode once bets are
// settled, per spec.md §4.1.
func (b *Builder) generateActionNode(attach func(*Node), trueParent *Node, round int, st *buildState) {
	settled := betsSettled(st.potCommitment, st.playersFolded)
	liveCount := countLive(st.playersFolded)
	allActed := st.playersActed >= liveCount

	if settled && allActed {
		if st.roundsLeft > 1 && liveCount > 1 {
			st2 := st.clone()
			st2.roundsLeft--
			st2.roundRaiseCount = 0
			st2.playersActed = 0
			st2.currentPlayer = b.g.GetFirstPlayer(round + 1)
			b.generateBoardCardsNode(attach, trueParent, round+1, st2)
		} else {
			attach(newTerminalNode(trueParent, st.potCommitment))
		}
		return
	}

	node := newActionNode(trueParent, st.currentPlayer, b.infosetKey(st))
	node.ID = b.nextID
	b.nextID++
	attach(node)

	maxCommit := 0
	for _, c := range st.potCommitment {
		if c > maxCommit {
			maxCommit = c
		}
	}

	actions := []int{ActionCall}
	if !settled {
		actions = append(actions, ActionFold)
	}
	if st.roundRaiseCount < b.g.GetMaxRaises(round) {
		actions = append(actions, ActionRaise)
	}

	actor := st.currentPlayer
	nextPlayer := (actor + 1) % b.g.NumPlayers()
	for _, a := range actions {
		st2 := st.clone()
		st2.playersActed++
		st2.currentPlayer = nextPlayer
		st2.actionHistory = append(append([]int(nil), st.actionHistory...), a)

		switch a {
		case ActionFold:
			st2.playersFolded[actor] = true
		case ActionCall:
			st2.potCommitment[actor] = maxCommit
		case ActionRaise:
			// round_raise_count advances by 1 per raise, per SPEC_FULL.md §9
			// resolution of the open question between the two disagreeing
			// original code paths (+1 vs +2).
			st2.roundRaiseCount = st.roundRaiseCount + 1
			st2.potCommitment[actor] = maxCommit + b.g.RaiseAmount(round)
		}

		action := a
		b.generateActionNode(func(child *Node) { node.setActionChild(action, child) }, node, round, st2)
	}
}

// infosetKey renders the canonical (hole cards):(board cards)(actions)
// key of the GLOSSARY, in the §6 strategy-line grammar.
func (b *Builder) infosetKey(st *buildState) string {
	hole := formatCardBlock(st.holeCards, b.g.Suits)
	board := formatCardBlock(st.boardCards, b.g.Suits)
	actions := make([]byte, len(st.actionHistory))
	for i, a := range st.actionHistory {
		actions[i] = ActionName(a)[0]
	}
	return hole + "::" + board + string(actions)
}

func formatCardBlock(cs []cards.Card, suits int) string {
	sorted := cards.Sorted(cs)
	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = cards.FormatCard(c, suits)
	}
	return strings.Join(parts, ":")
}

func betsSettled(pot []int, folded []bool) bool {
	first := -1
	for i, f := range folded {
		if f {
			continue
		}
		if first == -1 {
			first = pot[i]
			continue
		}
		if pot[i] != first {
			return false
		}
	}
	return true
}

func countLive(folded []bool) int {
	live := 0
	for _, f := range folded {
		if !f {
			live++
		}
	}
	return live
}
