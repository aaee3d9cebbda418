package nakama

import (
	"context"
	"database/sql"

	"gradrace/internal/bot"
	"gradrace/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and match handlers for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: Could not load game config: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameGradRace, NewMatch); err != nil {
		return err
	}

	// The rating leaderboard backs the online ranking screen. Creation is
	// idempotent across restarts.
	if err := nk.LeaderboardCreate(ctx, LeaderboardRating, true, "desc", "set", "", nil, true); err != nil {
		logger.Warn("InitModule: Could not create rating leaderboard: %v", err)
	}

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else if err := bot.ProvisionBots(ctx, nk, logger); err != nil {
		logger.Warn("InitModule: Could not provision bots: %v", err)
	}

	logger.Info("Graduation race Go module loaded.")
	return nil
}
