package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gradrace/internal/app/rating"
	"gradrace/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const ratingKey = "rating_v1"

// NakamaRatingStoreAdapter implements ports.RatingStore using Nakama storage
// for the record of truth and a leaderboard for ranking.
type NakamaRatingStoreAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaRatingStoreAdapter creates a new rating store adapter.
func NewNakamaRatingStoreAdapter(nk runtime.NakamaModule) *NakamaRatingStoreAdapter {
	return &NakamaRatingStoreAdapter{nk: nk}
}

func (a *NakamaRatingStoreAdapter) Load(ctx context.Context, userID string) (ports.PlayerRating, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: CollectionRatings, Key: ratingKey, UserID: userID},
	})
	if err != nil {
		return ports.PlayerRating{}, fmt.Errorf("failed to read rating for %s: %w", userID, err)
	}
	if len(objects) == 0 {
		return rating.InitialRecord(userID), nil
	}

	var rec ports.PlayerRating
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &rec); err != nil {
		return ports.PlayerRating{}, fmt.Errorf("failed to unmarshal rating for %s: %w", userID, err)
	}
	return rec, nil
}

func (a *NakamaRatingStoreAdapter) Save(ctx context.Context, rec ports.PlayerRating) error {
	if err := a.write(ctx, rec, ""); err != nil {
		return err
	}

	// Publish to the leaderboard; ranking is a projection of the record.
	if _, err := a.nk.LeaderboardRecordWrite(ctx, LeaderboardRating, rec.UserID, "", int64(rec.Rating), 0, nil, nil); err != nil {
		return fmt.Errorf("failed to publish rating for %s: %w", rec.UserID, err)
	}
	return nil
}

func (a *NakamaRatingStoreAdapter) EnsureInitial(ctx context.Context, userID string, rec ports.PlayerRating) (bool, error) {
	err := a.write(ctx, rec, "*")
	if err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			return false, nil
		}
		return false, err
	}
	if _, err := a.nk.LeaderboardRecordWrite(ctx, LeaderboardRating, userID, "", int64(rec.Rating), 0, nil, nil); err != nil {
		return true, fmt.Errorf("failed to publish initial rating for %s: %w", userID, err)
	}
	return true, nil
}

func (a *NakamaRatingStoreAdapter) write(ctx context.Context, rec ports.PlayerRating, version string) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal rating for %s: %w", rec.UserID, err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      CollectionRatings,
			Key:             ratingKey,
			UserID:          rec.UserID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return ports.ErrVersionConflict
		}
		return fmt.Errorf("failed to write rating for %s: %w", rec.UserID, err)
	}
	return nil
}

var _ ports.RatingStore = (*NakamaRatingStoreAdapter)(nil)
