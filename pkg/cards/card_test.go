package cards

import "testing"

func TestRankSuit(t *testing.T) {
	tests := []struct {
		card     Card
		suits    int
		wantRank int
		wantSuit int
	}{
		{New(0, 0, 4), 4, 0, 0},
		{New(12, 3, 4), 4, 12, 3},
		{New(5, 2, 4), 4, 5, 2},
	}
	for _, tt := range tests {
		if got := tt.card.Rank(tt.suits); got != tt.wantRank {
			t.Errorf("Rank(%d) = %d, want %d", tt.card, got, tt.wantRank)
		}
		if got := tt.card.Suit(tt.suits); got != tt.wantSuit {
			t.Errorf("Suit(%d) = %d, want %d", tt.card, got, tt.wantSuit)
		}
	}
}

func TestDeck(t *testing.T) {
	deck := Deck(13, 4)
	if len(deck) != 52 {
		t.Fatalf("len(deck) = %d, want 52", len(deck))
	}
	seen := make(map[Card]bool)
	for _, c := range deck {
		if seen[c] {
			t.Fatalf("duplicate card %d", c)
		}
		seen[c] = true
	}
}

func TestSortedAndKey(t *testing.T) {
	cs := []Card{5, 1, 3}
	sorted := Sorted(cs)
	want := []Card{1, 3, 5}
	for i := range want {
		if sorted[i] != want[i] {
			t.Fatalf("Sorted(%v) = %v, want %v", cs, sorted, want)
		}
	}
	if Key([]Card{5, 1, 3}) != Key([]Card{1, 3, 5}) {
		t.Fatalf("Key should be order-independent")
	}
}
