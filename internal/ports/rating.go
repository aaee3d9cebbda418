package ports

import "context"

// PlayerRating is a user's persistent competitive record.
type PlayerRating struct {
	UserID      string `json:"user_id"`
	Rating      int    `json:"rating"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
}

// RatingStore defines the interface for reading and writing ratings.
type RatingStore interface {
	// Load retrieves the rating record for a user. Users who have never
	// played get a record at the initial rating.
	Load(ctx context.Context, userID string) (PlayerRating, error)

	// Save persists the record and publishes the rating for ranking.
	Save(ctx context.Context, rating PlayerRating) error

	// EnsureInitial writes the starting record at most once per user.
	// Returns created=false when a record already exists.
	EnsureInitial(ctx context.Context, userID string, rating PlayerRating) (bool, error)
}
