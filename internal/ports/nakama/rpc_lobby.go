package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Lobby statuses.
const (
	LobbyStatusWaiting = "waiting"
	LobbyStatusMatched = "matched"
)

// Lobby is the pairing document for asynchronous online play. Hosts park one
// open lobby each; a joiner claims it with a conditional write, so a lobby
// is never matched twice.
type Lobby struct {
	ID        string `json:"id"`
	HostID    string `json:"host_id"`
	GuestID   string `json:"guest_id,omitempty"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// FindLobbyResponse is returned from the find_lobby RPC.
type FindLobbyResponse struct {
	Lobby   Lobby `json:"lobby"`
	Matched bool  `json:"matched"`
}

// rpcFindLobby pairs the caller with a waiting host, or parks a new lobby
// for them. Joining is a conditional write against the version read during
// the scan; a lost race just moves on to the next candidate.
func rpcFindLobby(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", errors.New("missing user id in context")
	}

	objects, _, err := nk.StorageList(ctx, "", "", CollectionLobbies, 20, "")
	if err != nil {
		logger.Error("rpcFindLobby: Failed to list lobbies: %v", err)
		return "", err
	}

	for _, obj := range objects {
		var lobby Lobby
		if err := json.Unmarshal([]byte(obj.GetValue()), &lobby); err != nil {
			logger.Warn("rpcFindLobby: Skipping malformed lobby %s: %v", obj.GetKey(), err)
			continue
		}
		if lobby.Status != LobbyStatusWaiting || lobby.HostID == userID {
			continue
		}

		lobby.GuestID = userID
		lobby.Status = LobbyStatusMatched
		if err := writeLobby(ctx, nk, lobby, obj.GetVersion()); err != nil {
			// Someone else claimed it between our read and write.
			continue
		}

		logger.Info("rpcFindLobby: User %s joined lobby %s", userID, lobby.ID)
		return marshalResponse(FindLobbyResponse{Lobby: lobby, Matched: true})
	}

	// No open lobby to join; park one. The key is per-host, so a retry
	// returns the same lobby instead of stacking new ones.
	lobby := Lobby{
		ID:        lobbyKey(userID),
		HostID:    userID,
		Status:    LobbyStatusWaiting,
		CreatedAt: time.Now().Unix(),
	}
	if err := writeLobby(ctx, nk, lobby, ""); err != nil {
		logger.Error("rpcFindLobby: Failed to park lobby for %s: %v", userID, err)
		return "", err
	}

	logger.Info("rpcFindLobby: User %s is hosting lobby %s", userID, lobby.ID)
	return marshalResponse(FindLobbyResponse{Lobby: lobby})
}

// GetLobbyRequest is the payload for the get_lobby RPC.
type GetLobbyRequest struct {
	LobbyID string `json:"lobby_id"`
}

// rpcGetLobby returns the current lobby document; hosts poll it to learn
// when a guest arrived.
func rpcGetLobby(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req GetLobbyRequest
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
	return marshalResponse(lobby)
}

func lobbyKey(hostID string) string {
	return "lobby-" + hostID
}

func readLobby(ctx context.Context, nk runtime.NakamaModule, lobbyID string) (Lobby, string, error) {
	objects, err := nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: CollectionLobbies, Key: lobbyID},
	})
	if err != nil {
		return Lobby{}, "", fmt.Errorf("failed to read lobby %s: %w", lobbyID, err)
	}
	if len(objects) == 0 {
		return Lobby{}, "", fmt.Errorf("lobby %s not found", lobbyID)
	}
	var lobby Lobby
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &lobby); err != nil {
		return Lobby{}, "", fmt.Errorf("failed to unmarshal lobby %s: %w", lobbyID, err)
	}
	return lobby, objects[0].GetVersion(), nil
}

func writeLobby(ctx context.Context, nk runtime.NakamaModule, lobby Lobby, version string) error {
	value, err := json.Marshal(lobby)
	if err != nil {
		return fmt.Errorf("failed to marshal lobby %s: %w", lobby.ID, err)
	}
	_, err = nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      CollectionLobbies,
			Key:             lobby.ID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write lobby %s: %w", lobby.ID, err)
	}
	return nil
}

func marshalResponse(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}
	return string(b), nil
}
