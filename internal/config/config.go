package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"gradrace/internal/domain"
)

type GameConfig struct {
	StartingCredits   int `json:"starting_credits"`
	GraduationCredits int `json:"graduation_credits"`
	TotalTurns        int `json:"total_turns"`
	InitialHandSize   int `json:"initial_hand_size"`
	MaxHandSize       int `json:"max_hand_size"`
	OverachieverMin   int `json:"overachiever_min"`
	RetryMin          int `json:"retry_min"`

	TurnDurationSeconds int `json:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	BotActionDelayMinMs     int `json:"bot_action_delay_min_ms"`
	BotActionDelayMaxMs     int `json:"bot_action_delay_max_ms"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// Rules merges the loaded config over the built-in defaults and returns the
// domain ruleset. Zero-valued fields keep their defaults, so a partial file
// only overrides what it names.
func Rules() domain.Config {
	rules := domain.DefaultConfig()
	if cfg == nil {
		return rules
	}
	if cfg.StartingCredits > 0 {
		rules.StartingCredits = cfg.StartingCredits
	}
	if cfg.GraduationCredits > 0 {
		rules.GraduationCredits = cfg.GraduationCredits
	}
	if cfg.TotalTurns > 0 {
		rules.TotalTurns = cfg.TotalTurns
	}
	if cfg.InitialHandSize > 0 {
		rules.InitialHandSize = cfg.InitialHandSize
	}
	if cfg.MaxHandSize > 0 {
		rules.MaxHandSize = cfg.MaxHandSize
	}
	if cfg.OverachieverMin > 0 {
		rules.OverachieverMin = cfg.OverachieverMin
	}
	if cfg.RetryMin > 0 {
		rules.RetryMin = cfg.RetryMin
	}
	return rules
}

// TurnDurationSeconds returns the per-turn time budget for hosted matches.
func TurnDurationSeconds() int {
	if cfg == nil || cfg.TurnDurationSeconds <= 0 {
		return 30
	}
	return cfg.TurnDurationSeconds
}

// BotAutoFillDelaySeconds returns the solo-lobby wait before seating a bot.
func BotAutoFillDelaySeconds() int {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return 10
	}
	return cfg.BotAutoFillDelaySeconds
}

// BotActionDelayMs returns the min and max artificial thinking time for bot
// moves in hosted matches.
func BotActionDelayMs() (int, int) {
	min, max := 600, 1800
	if cfg != nil && cfg.BotActionDelayMinMs > 0 {
		min = cfg.BotActionDelayMinMs
	}
	if cfg != nil && cfg.BotActionDelayMaxMs >= min {
		max = cfg.BotActionDelayMaxMs
	}
	if max < min {
		max = min
	}
	return min, max
}
