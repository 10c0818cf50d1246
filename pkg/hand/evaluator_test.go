package hand

import (
	"reflect"
	"testing"

	"github.com/mkemp/pokercfr/pkg/cards"
)

func cs(ids ...int) []cards.Card {
	out := make([]cards.Card, len(ids))
	for i, id := range ids {
		out[i] = cards.Card(id)
	}
	return out
}

func TestWinnersLeduc(t *testing.T) {
	tests := []struct {
		name   string
		hands  [][]cards.Card
		folded []bool
		want   []int
	}{
		{"high card beats high card", [][]cards.Card{cs(43, 22), cs(51, 23)}, []bool{false, false}, []int{1}},
		{"pair beats high card", [][]cards.Card{cs(22, 23), cs(51, 23)}, []bool{false, false}, []int{0}},
		{"tie on kicker-equivalent", [][]cards.Card{cs(50, 23), cs(51, 23)}, []bool{false, false}, []int{0, 1}},
		{"folded opponent", [][]cards.Card{cs(51, 47, 43, 39, 35), nil}, []bool{false, true}, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Winners(tt.hands, tt.folded, 4)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Winners() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTerminalUtility(t *testing.T) {
	tests := []struct {
		name   string
		hole   [][]cards.Card
		board  []cards.Card
		folded []bool
		pot    []int
		want   []float64
	}{
		{
			"fold",
			[][]cards.Card{cs(51), cs(47)}, nil, []bool{true, false}, []int{1, 1},
			[]float64{-1, 1},
		},
		{
			"showdown uneven pot",
			[][]cards.Card{cs(51), cs(47)}, nil, []bool{false, false}, []int{5, 1},
			[]float64{1, -1},
		},
		{
			"board pairs opponent",
			[][]cards.Card{cs(51), cs(47)}, cs(46), []bool{false, false}, []int{1, 1},
			[]float64{-1, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TerminalUtility(tt.hole, tt.board, tt.folded, tt.pot, 4)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TerminalUtility() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoryOrdering(t *testing.T) {
	straightFlush := Evaluate(cs(51, 47, 43, 39, 35), 4)
	if straightFlush.Category != StraightFlush {
		t.Fatalf("expected StraightFlush, got %v", straightFlush.Category)
	}
	pair := Evaluate(cs(22, 23), 4)
	if pair.Category != Pair {
		t.Fatalf("expected Pair, got %v", pair.Category)
	}
	if pair.Compare(straightFlush) >= 0 {
		t.Fatalf("pair should rank below straight flush")
	}
}
