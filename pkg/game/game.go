// Package game defines the immutable Game record that a game-definition
// provider supplies, per spec.md §3. Reading a game file is an external
// collaborator's job (spec.md §1); this package only models and validates
// the record the rest of the core consumes.
package game

import (
	"github.com/mkemp/pokercfr/pkg/errs"
)

// BettingType enumerates the betting structures a Game can declare. Only
// Limit is supported by this module (spec.md's explicit non-goal of
// no-limit games).
type BettingType int

const (
	Limit BettingType = iota
	NoLimit
)

// Game is the immutable record spec.md §3 describes: players, rounds,
// hole/board card counts, blinds, raise sizes, max raises, first-to-act,
// and betting type. Suits is the deck's suit count (4 for a standard
// deck); Ranks is the deck's rank count (13 standard, 3 for Kuhn).
type Game struct {
	Players      int
	Rounds       int
	HoleCards    int
	BoardCards   []int // length Rounds, per-round board card count
	Blind        []int // length Players
	RaiseSize    []int // length Rounds
	MaxRaises    []int // length Rounds
	FirstPlayer  []int // length Rounds
	BettingType  BettingType
	Ranks, Suits int
}

// NumPlayers returns the player count.
func (g *Game) NumPlayers() int { return g.Players }

// NumRounds returns the betting-round count.
func (g *Game) NumRounds() int { return g.Rounds }

// NumHoleCards returns the hole cards dealt to each player.
func (g *Game) NumHoleCards() int { return g.HoleCards }

// NumBoardCards returns the board cards revealed in round r (0-based).
func (g *Game) NumBoardCards(round int) int { return g.BoardCards[round] }

// TotalBoardCards returns the cumulative board cards revealed through and
// including round (0-based).
func (g *Game) TotalBoardCards(round int) int {
	total := 0
	for r := 0; r <= round; r++ {
		total += g.BoardCards[r]
	}
	return total
}

// GetBlind returns player p's forced initial pot commitment.
func (g *Game) GetBlind(p int) int { return g.Blind[p] }

// RaiseAmount returns the fixed raise size for round r.
func (g *Game) RaiseAmount(round int) int { return g.RaiseSize[round] }

// GetMaxRaises returns the raise budget for round r.
func (g *Game) GetMaxRaises(round int) int { return g.MaxRaises[round] }

// GetFirstPlayer returns the player who acts first in round r.
func (g *Game) GetFirstPlayer(round int) int { return g.FirstPlayer[round] }

// DeckSize returns the total number of distinct cards.
func (g *Game) DeckSize() int { return g.Ranks * g.Suits }

// TotalPrivateAndPublicCards returns H + ΣB, the invariant spec.md §3
// requires to be ≤5 for any hand-evaluating consumer.
func (g *Game) TotalPrivateAndPublicCards() int {
	total := g.HoleCards
	for _, b := range g.BoardCards {
		total += b
	}
	return total
}

// ValidateLimit fails with InvalidGameDefinition if betting_type != LIMIT,
// per spec.md §4.1.
func (g *Game) ValidateLimit() error {
	if g.BettingType != Limit {
		return errs.New(errs.InvalidGameDefinition, "betting_type must be LIMIT, got %v", g.BettingType)
	}
	return nil
}

// ValidateHandEvaluable fails with InvalidGameDefinition if H+ΣB > 5, per
// spec.md §3/§4.1 ("for algorithms that call the hand evaluator").
func (g *Game) ValidateHandEvaluable() error {
	if total := g.TotalPrivateAndPublicCards(); total > 5 {
		return errs.New(errs.InvalidGameDefinition, "H+ΣB = %d exceeds the 5-card hand evaluator limit", total)
	}
	return nil
}

// Kuhn returns the canonical 2-player, 1-round, 1-hole-card, no-board
// Kuhn poker game: 3 ranks (J,Q,K), ante 1, a single bet of size 1, at
// most 1 raise per round.
func Kuhn() *Game {
	return &Game{
		Players:     2,
		Rounds:      1,
		HoleCards:   1,
		BoardCards:  []int{0},
		Blind:       []int{1, 1},
		RaiseSize:   []int{1},
		MaxRaises:   []int{1},
		FirstPlayer: []int{0},
		BettingType: Limit,
		Ranks:       3,
		Suits:       1,
	}
}

// Leduc returns the canonical 2-player, 2-round, 1-hole-card, 1-board-card
// Leduc hold'em game: 6 cards (3 ranks, 2 suits), ante 1, small/big bet
// sizes 2 and 4, at most 2 raises per round.
func Leduc() *Game {
	return &Game{
		Players:     2,
		Rounds:      2,
		HoleCards:   1,
		BoardCards:  []int{0, 1},
		Blind:       []int{1, 1},
		RaiseSize:   []int{2, 4},
		MaxRaises:   []int{2, 2},
		FirstPlayer: []int{0, 0},
		BettingType: Limit,
		Ranks:       3,
		Suits:       2,
	}
}
