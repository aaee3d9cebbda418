package bot

import "fmt"

// BotLevel selects a strategy temperament.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelNormal
	BotLevelHard
)

// NewBrain creates a new AI brain for the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return &StandardBot{Tuning: TimidTuning}, nil
	case BotLevelNormal:
		return &StandardBot{Tuning: DefaultTuning}, nil
	case BotLevelHard:
		return &StandardBot{Tuning: AggressiveTuning}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// LevelFromDifficulty maps an identity's difficulty tag to a level.
// Unknown tags fall back to normal.
func LevelFromDifficulty(difficulty string) BotLevel {
	switch difficulty {
	case "easy":
		return BotLevelEasy
	case "hard":
		return BotLevelHard
	default:
		return BotLevelNormal
	}
}
