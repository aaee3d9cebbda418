package rating

import (
	"context"
	"fmt"

	"gradrace/internal/ports"
)

// Service settles the rating exchange after a rated match.
type Service struct {
	store ports.RatingStore
}

// NewService constructs a rating service over a store.
func NewService(store ports.RatingStore) *Service {
	return &Service{store: store}
}

// InitialRecord is the record written for a player's first appearance.
func InitialRecord(userID string) ports.PlayerRating {
	return ports.PlayerRating{UserID: userID, Rating: InitialRating}
}

// SettleMatch moves rating from the loser to the winner and updates both
// play counts. Both records are loaded before either new rating is computed,
// so the exchange is symmetric.
func (s *Service) SettleMatch(ctx context.Context, winnerID, loserID string) (ports.PlayerRating, ports.PlayerRating, error) {
	winner, err := s.store.Load(ctx, winnerID)
	if err != nil {
		return ports.PlayerRating{}, ports.PlayerRating{}, fmt.Errorf("load winner rating: %w", err)
	}
	loser, err := s.store.Load(ctx, loserID)
	if err != nil {
		return ports.PlayerRating{}, ports.PlayerRating{}, fmt.Errorf("load loser rating: %w", err)
	}

	newWinner := Next(winner.Rating, loser.Rating, 1)
	newLoser := Next(loser.Rating, winner.Rating, 0)

	winner.Rating = newWinner
	winner.GamesPlayed++
	winner.Wins++

	loser.Rating = newLoser
	loser.GamesPlayed++

	if err := s.store.Save(ctx, winner); err != nil {
		return ports.PlayerRating{}, ports.PlayerRating{}, fmt.Errorf("save winner rating: %w", err)
	}
	if err := s.store.Save(ctx, loser); err != nil {
		return ports.PlayerRating{}, ports.PlayerRating{}, fmt.Errorf("save loser rating: %w", err)
	}
	return winner, loser, nil
}

// EnsureInitial writes the starting record for a new player, once.
func (s *Service) EnsureInitial(ctx context.Context, userID string) (bool, error) {
	return s.store.EnsureInitial(ctx, userID, InitialRecord(userID))
}
