package ports

import "context"

// Notifier delivers out-of-band messages to players who are not currently
// looking at the match screen.
type Notifier interface {
	// NotifyTurn tells a player the opponent moved and it is their turn.
	NotifyTurn(ctx context.Context, userID, gameID string) error

	// NotifyGameOver tells a player the match finished and whether they won.
	NotifyGameOver(ctx context.Context, userID, gameID string, won bool) error
}
