package bot

import (
	"math/rand"
	"testing"

	"gradrace/internal/domain"
)

func TestTakeTurnYieldsControl(t *testing.T) {
	cfg := domain.DefaultConfig()
	eng := domain.NewEngine(cfg, rand.New(rand.NewSource(11)))
	agent, err := NewAgent("bot-under-test", rand.New(rand.NewSource(12)))
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	state := eng.NewGame()
	// Hand turn 1 back to reach the opponent's turn.
	state = eng.Draw(state)
	state = eng.Pass(state)
	if domain.IsPlayerTurn(state.Turn) {
		t.Fatalf("expected opponent turn after pass, got turn %d", state.Turn)
	}

	state = agent.TakeTurn(eng, state)
	if state.Phase != domain.PhaseEnded && !domain.IsPlayerTurn(state.Turn) {
		t.Errorf("agent left the match mid-opponent-turn: phase %v turn %d", state.Phase, state.Turn)
	}
}

func TestAgentPlaysFullGame(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		cfg := domain.DefaultConfig()
		eng := domain.NewEngine(cfg, rand.New(rand.NewSource(seed)))
		agent, err := NewAgent("bot-under-test", rand.New(rand.NewSource(seed+1000)))
		if err != nil {
			t.Fatalf("NewAgent: %v", err)
		}

		state := eng.NewGame()
		for steps := 0; state.Phase != domain.PhaseEnded; steps++ {
			if steps > 10*cfg.TotalTurns {
				t.Fatalf("seed %d: match did not finish after %d steps", seed, steps)
			}
			if domain.IsPlayerTurn(state.Turn) {
				state = eng.Draw(state)
				state = eng.Pass(state)
				continue
			}
			before := state.Turn
			state = agent.TakeTurn(eng, state)
			if state.Phase != domain.PhaseEnded && state.Turn == before {
				t.Fatalf("seed %d: agent stalled on turn %d", seed, before)
			}
		}
		if state.Turn != cfg.TotalTurns {
			t.Errorf("seed %d: ended on turn %d, want %d", seed, state.Turn, cfg.TotalTurns)
		}
	}
}

func TestNewAgentUnknownUserFallsBack(t *testing.T) {
	agent, err := NewAgent("nobody", nil)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	if agent.Name != "nobody" {
		t.Errorf("got name %q, want the user id as fallback", agent.Name)
	}
	if agent.Strategy == nil {
		t.Error("agent has no strategy")
	}
}
