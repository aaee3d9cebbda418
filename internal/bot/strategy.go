package bot

import (
	"math/rand"

	"gradrace/internal/domain"
)

// StandardBot decides from the credit race whether to act, then picks the
// most damaging card available: disruption first, big self boosts second,
// any positive boost late, a random card otherwise.
type StandardBot struct {
	Tuning BotTuning
}

func (b *StandardBot) CalculateMove(cfg domain.Config, state domain.GameState, rng *rand.Rand) (Move, error) {
	hand := state.CPUHand
	if len(hand) == 0 {
		return Move{Pass: true}, nil
	}

	if rng.Float64() >= b.actProbability(cfg, state) {
		return Move{Pass: true}, nil
	}

	if idx := attackIndex(hand); idx >= 0 {
		return Move{CardIndex: idx}, nil
	}
	if idx := boostIndex(hand, b.Tuning.BigBonusMin); idx >= 0 {
		return Move{CardIndex: idx}, nil
	}
	if cfg.TotalTurns-state.Turn <= b.Tuning.LateTurnsLeft {
		if idx := boostIndex(hand, 1); idx >= 0 {
			return Move{CardIndex: idx}, nil
		}
	}
	return Move{CardIndex: rng.Intn(len(hand))}, nil
}

// actProbability adjusts the base chance for the current standings.
func (b *StandardBot) actProbability(cfg domain.Config, state domain.GameState) float64 {
	t := b.Tuning
	mine := domain.CPUCredits(cfg, state)
	theirs := domain.PlayerCredits(cfg, state)
	turnsLeft := cfg.TotalTurns - state.Turn

	p := t.BaseActProbability
	if mine < theirs && turnsLeft <= t.LateTurnsLeft {
		p += t.BehindLateBoost
	}
	if mine >= cfg.GraduationCredits && mine > theirs {
		p -= t.AheadPastGoalCut
	}
	if mine < cfg.GraduationCredits && cfg.GraduationCredits-mine <= t.NearGoalBand {
		p += t.NearGoalBoost
	}

	if p < t.MinActProbability {
		p = t.MinActProbability
	}
	if p > t.MaxActProbability {
		p = t.MaxActProbability
	}
	return p
}

// attackIndex finds the first card that hurts the opponent.
func attackIndex(hand []domain.Card) int {
	for i, c := range hand {
		eff := c.Def().Effect
		if op, ok := eff.Op(domain.EffectOpponentBonus); ok && op.Amount < 0 {
			return i
		}
		if op, ok := eff.Op(domain.EffectDiscardOpponent); ok && op.Amount > 0 {
			return i
		}
	}
	return -1
}

// boostIndex finds the first card whose self bonus is at least min.
func boostIndex(hand []domain.Card, min int) int {
	for i, c := range hand {
		if op, ok := c.Def().Effect.Op(domain.EffectSelfBonus); ok && op.Amount >= min {
			return i
		}
	}
	return -1
}
