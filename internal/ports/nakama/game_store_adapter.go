package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gradrace/internal/domain"
	"gradrace/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaGameStoreAdapter implements ports.GameStore over Nakama storage.
// Documents are system-owned with public read so both participants can load
// them; every write is conditional on the version from the preceding read.
type NakamaGameStoreAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaGameStoreAdapter creates a new game store adapter.
func NewNakamaGameStoreAdapter(nk runtime.NakamaModule) *NakamaGameStoreAdapter {
	return &NakamaGameStoreAdapter{nk: nk}
}

func (a *NakamaGameStoreAdapter) Create(ctx context.Context, gameID string, game domain.SyncedGame) (string, error) {
	// Version "*" makes the write fail if any document already exists.
	return a.write(ctx, gameID, game, "*")
}

func (a *NakamaGameStoreAdapter) Get(ctx context.Context, gameID string) (domain.SyncedGame, string, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: CollectionGames, Key: gameID},
	})
	if err != nil {
		return domain.SyncedGame{}, "", fmt.Errorf("failed to read game %s: %w", gameID, err)
	}
	if len(objects) == 0 {
		return domain.SyncedGame{}, "", ports.ErrGameNotFound
	}

	var game domain.SyncedGame
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &game); err != nil {
		return domain.SyncedGame{}, "", fmt.Errorf("failed to unmarshal game %s: %w", gameID, err)
	}
	return game, objects[0].GetVersion(), nil
}

func (a *NakamaGameStoreAdapter) Update(ctx context.Context, gameID string, game domain.SyncedGame, version string) (string, error) {
	return a.write(ctx, gameID, game, version)
}

func (a *NakamaGameStoreAdapter) write(ctx context.Context, gameID string, game domain.SyncedGame, version string) (string, error) {
	value, err := json.Marshal(game)
	if err != nil {
		return "", fmt.Errorf("failed to marshal game %s: %w", gameID, err)
	}

	acks, err := a.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      CollectionGames,
			Key:             gameID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return "", ports.ErrVersionConflict
		}
		return "", fmt.Errorf("failed to write game %s: %w", gameID, err)
	}
	if len(acks) == 0 {
		return "", fmt.Errorf("no ack for game write %s", gameID)
	}
	return acks[0].GetVersion(), nil
}

var _ ports.GameStore = (*NakamaGameStoreAdapter)(nil)
