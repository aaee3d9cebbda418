package domain

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize() {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize())
	}

	uids := make(map[string]bool, len(deck))
	perID := make(map[string]int)
	for _, c := range deck {
		if uids[c.UID] {
			t.Fatalf("duplicate uid %q", c.UID)
		}
		uids[c.UID] = true
		perID[c.ID]++
	}
	for id, count := range perID {
		if count != CopiesPerCard {
			t.Fatalf("card %q appears %d times, want %d", id, count, CopiesPerCard)
		}
	}
}

func TestShuffleDeckLeavesInputUntouched(t *testing.T) {
	deck := NewDeck()
	before := append([]Card(nil), deck...)
	ShuffleDeck(deck, rand.New(rand.NewSource(7)))
	if !reflect.DeepEqual(deck, before) {
		t.Fatalf("shuffle mutated its input")
	}
}

func TestDeckForSeedDeterminism(t *testing.T) {
	a := DeckForSeed(123456)
	b := DeckForSeed(123456)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different decks")
	}

	c := DeckForSeed(123457)
	if reflect.DeepEqual(a, c) {
		t.Fatalf("different seeds produced identical decks")
	}
	if len(c) != DeckSize() {
		t.Fatalf("seeded deck size = %d, want %d", len(c), DeckSize())
	}
}

func TestSeededRandReseedsFresh(t *testing.T) {
	first := NewSeededRand(42).Next()
	second := NewSeededRand(42).Next()
	if first != second {
		t.Fatalf("fresh generators diverged: %v vs %v", first, second)
	}
	if first < 0 || first >= 1 {
		t.Fatalf("value out of [0,1): %v", first)
	}
}

func TestSeededRandIntnBounds(t *testing.T) {
	rng := NewSeededRand(99)
	for i := 0; i < 1000; i++ {
		if v := rng.Intn(8); v < 0 || v >= 8 {
			t.Fatalf("Intn(8) = %d out of range", v)
		}
	}
}
