package nakama

import (
	"context"
	"fmt"

	"gradrace/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Notification codes delivered to clients.
const (
	NotificationCodeYourTurn = 10
	NotificationCodeGameOver = 11
)

// NakamaNotifierAdapter implements ports.Notifier using Nakama notifications.
type NakamaNotifierAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaNotifierAdapter creates a new notifier adapter.
func NewNakamaNotifierAdapter(nk runtime.NakamaModule) *NakamaNotifierAdapter {
	return &NakamaNotifierAdapter{nk: nk}
}

func (a *NakamaNotifierAdapter) NotifyTurn(ctx context.Context, userID, gameID string) error {
	content := map[string]interface{}{"game_id": gameID}
	if err := a.nk.NotificationSend(ctx, userID, "Your turn!", content, NotificationCodeYourTurn, "", true); err != nil {
		return fmt.Errorf("failed to send turn notification to %s: %w", userID, err)
	}
	return nil
}

func (a *NakamaNotifierAdapter) NotifyGameOver(ctx context.Context, userID, gameID string, won bool) error {
	subject := "You got overtaken..."
	if won {
		subject = "You graduated first!"
	}
	content := map[string]interface{}{"game_id": gameID, "won": won}
	if err := a.nk.NotificationSend(ctx, userID, subject, content, NotificationCodeGameOver, "", true); err != nil {
		return fmt.Errorf("failed to send game-over notification to %s: %w", userID, err)
	}
	return nil
}

var _ ports.Notifier = (*NakamaNotifierAdapter)(nil)
