package bot

import (
	"math/rand"

	"gradrace/internal/domain"
)

// Move represents the decision made by the AI for one action opportunity.
type Move struct {
	Pass      bool
	CardIndex int
}

// Brain is the interface that all bot strategies must implement. Decisions
// may only use what a seated player sees for itself: its own hand, both
// computed credit totals, and the turn clock. Given the same state and the
// same random draws, the move is the same.
type Brain interface {
	CalculateMove(cfg domain.Config, state domain.GameState, rng *rand.Rand) (Move, error)
}
