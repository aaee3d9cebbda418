package domain

import "math/rand"

// NewDeck builds one instance per catalog entry per copy, in catalog order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize())
	for _, def := range Cards {
		for i := 0; i < CopiesPerCard; i++ {
			deck = append(deck, Card{ID: def.ID, UID: instanceUID(def.ID, i)})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck using the provided
// random source.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SeededRand is a 32-bit linear congruential generator. Every participant in
// an online match replays it from the shared seed, so shuffle and effect
// outcomes are derivable without transmitting them. Each use reseeds fresh;
// no generator state survives between calls.
type SeededRand struct {
	s uint32
}

// NewSeededRand returns a generator positioned at the given seed.
func NewSeededRand(seed uint32) *SeededRand {
	return &SeededRand{s: seed}
}

// Next advances the generator and returns a uniform value in [0, 1).
func (r *SeededRand) Next() float64 {
	r.s = r.s*1664525 + 1013904223
	return float64(r.s) / float64(1<<32)
}

// Intn returns a uniform value in [0, n). n must be positive.
func (r *SeededRand) Intn(n int) int {
	return int(r.Next() * float64(n))
}

// DeckForSeed derives the full match deck for a seed. Two calls with the
// same seed, in any process, produce the same ordering.
func DeckForSeed(seed uint32) []Card {
	deck := NewDeck()
	rng := NewSeededRand(seed)
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
