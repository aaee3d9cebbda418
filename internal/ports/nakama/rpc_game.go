package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gradrace/internal/app/online"
	"gradrace/internal/app/rating"
	"gradrace/internal/config"
	"gradrace/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

func onlineService(nk runtime.NakamaModule) *online.Service {
	ratings := rating.NewService(NewNakamaRatingStoreAdapter(nk))
	return online.NewService(
		config.Rules(),
		NewNakamaGameStoreAdapter(nk),
		ratings,
		NewNakamaNotifierAdapter(nk),
		nil,
	)
}

func callerID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", errors.New("missing user id in context")
	}
	return userID, nil
}

// CreateGameRequest is the payload for the create_game RPC.
type CreateGameRequest struct {
	LobbyID string `json:"lobby_id"`
}

// rpcCreateGame starts (or fetches) the match for a matched lobby. Both
// members call it after pairing; whichever write lands first wins and the
// other adopts the same document.
func rpcCreateGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	var req CreateGameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}
	if req.LobbyID == "" {
		return "", errors.New("lobby_id is required")
	}

	lobby, _, err := readLobby(ctx, nk, req.LobbyID)
	if err != nil {
		return "", err
	}
	if lobby.Status != LobbyStatusMatched {
		return "", fmt.Errorf("lobby %s is not matched yet", req.LobbyID)
	}
	if userID != lobby.HostID && userID != lobby.GuestID {
		return "", errors.New("caller is not a member of this lobby")
	}

	svc := onlineService(nk)
	game, err := svc.CreateGame(ctx, lobby.ID, lobby.HostID, lobby.GuestID)
	if err != nil {
		logger.Error("rpcCreateGame: Failed to create game for lobby %s: %v", req.LobbyID, err)
		return "", err
	}

	view, err := svc.ViewFor(game, userID)
	if err != nil {
		return "", err
	}
	return marshalResponse(view)
}

// SubmitActionRequest is the payload for the submit_action RPC.
type SubmitActionRequest struct {
	GameID string        `json:"game_id"`
	Action domain.Action `json:"action"`
}

// SubmitActionResponse reports whether the action applied plus the caller's
// refreshed view. A rejected action (out of turn, duplicate, invalid card)
// is a normal response, not an error; the view tells the client where the
// game actually is.
type SubmitActionResponse struct {
	Applied bool            `json:"applied"`
	View    online.GameView `json:"view"`
}

func rpcSubmitAction(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	var req SubmitActionRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}
	if req.GameID == "" {
		return "", errors.New("game_id is required")
	}

	svc := onlineService(nk)
	result, err := svc.SubmitAction(ctx, req.GameID, userID, req.Action)
	if err != nil {
		logger.Error("rpcSubmitAction: User %s action on game %s failed: %v", userID, req.GameID, err)
		return "", err
	}
	if result.RatingErr != nil {
		logger.Error("rpcSubmitAction: Rating settlement for game %s failed: %v", req.GameID, result.RatingErr)
	}
	if result.NotifyErr != nil {
		logger.Warn("rpcSubmitAction: Notification for game %s failed: %v", req.GameID, result.NotifyErr)
	}

	view, err := svc.ViewFor(result.Game, userID)
	if err != nil {
		return "", err
	}
	return marshalResponse(SubmitActionResponse{Applied: result.Applied, View: view})
}

// GetGameRequest is the payload for the get_game RPC.
type GetGameRequest struct {
	GameID string `json:"game_id"`
}

func rpcGetGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	var req GetGameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}
	if req.GameID == "" {
		return "", errors.New("game_id is required")
	}

	svc := onlineService(nk)
	game, err := svc.GetGame(ctx, req.GameID)
	if err != nil {
		return "", err
	}
	view, err := svc.ViewFor(game, userID)
	if err != nil {
		return "", err
	}
	return marshalResponse(view)
}
