package bot

import (
	"math/rand"
	"time"

	"gradrace/internal/domain"
)

// Agent represents an autonomous opponent seat.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
	rng      *rand.Rand
}

// NewAgent builds the agent for a provisioned bot user id, using the
// difficulty from its identity. rng may be nil for a time-seeded default.
func NewAgent(userID string, rng *rand.Rand) (*Agent, error) {
	identity, _ := GetBotConfig(userID)
	brain, err := NewBrain(LevelFromDifficulty(identity.Difficulty))
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	name := identity.DisplayName
	if name == "" {
		name = userID
	}
	return &Agent{ID: userID, Name: name, Strategy: brain, rng: rng}, nil
}

// TakeTurn drives a full CPU turn through the ordinary engine operations:
// draw, then act until the turn advances or the match ends. It never calls
// an operation outside its precondition, same as a human-driven UI.
func (a *Agent) TakeTurn(eng *domain.Engine, state domain.GameState) domain.GameState {
	if state.Phase == domain.PhaseDraw && !domain.IsPlayerTurn(state.Turn) {
		state = eng.Draw(state)
	}

	for state.Phase == domain.PhaseAction && !domain.IsPlayerTurn(state.Turn) {
		move, err := a.Strategy.CalculateMove(eng.Config(), state, a.rng)
		if err != nil || move.Pass {
			state = eng.Pass(state)
			continue
		}
		if move.CardIndex < 0 || move.CardIndex >= len(state.CPUHand) {
			// A broken move must not stall the match.
			state = eng.Pass(state)
			continue
		}
		state = eng.UseCard(state, move.CardIndex)
	}
	return state
}
