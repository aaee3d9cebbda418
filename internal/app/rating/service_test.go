package rating

import (
	"context"
	"errors"
	"testing"

	"gradrace/internal/ports"
)

type mockRatingStore struct {
	records map[string]ports.PlayerRating
	loadErr error
	saveErr error
}

func newMockRatingStore() *mockRatingStore {
	return &mockRatingStore{records: make(map[string]ports.PlayerRating)}
}

func (m *mockRatingStore) Load(ctx context.Context, userID string) (ports.PlayerRating, error) {
	if m.loadErr != nil {
		return ports.PlayerRating{}, m.loadErr
	}
	if rec, ok := m.records[userID]; ok {
		return rec, nil
	}
	return InitialRecord(userID), nil
}

func (m *mockRatingStore) Save(ctx context.Context, rec ports.PlayerRating) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[rec.UserID] = rec
	return nil
}

func (m *mockRatingStore) EnsureInitial(ctx context.Context, userID string, rec ports.PlayerRating) (bool, error) {
	if _, ok := m.records[userID]; ok {
		return false, nil
	}
	m.records[userID] = rec
	return true, nil
}

func TestExpectedSymmetry(t *testing.T) {
	if got := Expected(1000, 1000); got != 0.5 {
		t.Errorf("equal ratings expectancy = %v, want 0.5", got)
	}
	sum := Expected(1200, 1000) + Expected(1000, 1200)
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("expectancies sum to %v, want 1", sum)
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name      string
		us, them  int
		score     float64
		want      int
	}{
		{"even win", 1000, 1000, 1, 1016},
		{"even loss", 1000, 1000, 0, 984},
		{"upset win gains more", 1000, 1200, 1, 1024},
		{"favored win gains less", 1200, 1000, 1, 1208},
		{"floor holds", FloorRating, 2000, 0, FloorRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.us, tt.them, tt.score); got != tt.want {
				t.Errorf("Next(%d, %d, %v) = %d, want %d", tt.us, tt.them, tt.score, got, tt.want)
			}
		})
	}
}

func TestSettleMatch(t *testing.T) {
	store := newMockRatingStore()
	store.records["w"] = ports.PlayerRating{UserID: "w", Rating: 1000, GamesPlayed: 4, Wins: 1}
	store.records["l"] = ports.PlayerRating{UserID: "l", Rating: 1000, GamesPlayed: 2, Wins: 2}
	svc := NewService(store)

	winner, loser, err := svc.SettleMatch(context.Background(), "w", "l")
	if err != nil {
		t.Fatalf("settle error: %v", err)
	}
	if winner.Rating != 1016 || winner.GamesPlayed != 5 || winner.Wins != 2 {
		t.Errorf("winner record = %+v", winner)
	}
	if loser.Rating != 984 || loser.GamesPlayed != 3 || loser.Wins != 2 {
		t.Errorf("loser record = %+v", loser)
	}
	if store.records["w"].Rating != 1016 || store.records["l"].Rating != 984 {
		t.Errorf("store not updated: %+v", store.records)
	}
}

func TestSettleMatchFirstTimers(t *testing.T) {
	store := newMockRatingStore()
	svc := NewService(store)

	winner, loser, err := svc.SettleMatch(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("settle error: %v", err)
	}
	if winner.Rating != InitialRating+16 || loser.Rating != InitialRating-16 {
		t.Errorf("ratings = %d/%d, want %d/%d", winner.Rating, loser.Rating, InitialRating+16, InitialRating-16)
	}
}

func TestSettleMatchPropagatesErrors(t *testing.T) {
	store := newMockRatingStore()
	store.loadErr = errors.New("storage down")
	svc := NewService(store)
	if _, _, err := svc.SettleMatch(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected an error when the store fails")
	}
}

func TestEnsureInitialOnce(t *testing.T) {
	store := newMockRatingStore()
	svc := NewService(store)

	created, err := svc.EnsureInitial(context.Background(), "u1")
	if err != nil || !created {
		t.Fatalf("first ensure: created=%v err=%v", created, err)
	}
	created, err = svc.EnsureInitial(context.Background(), "u1")
	if err != nil || created {
		t.Fatalf("second ensure: created=%v err=%v", created, err)
	}
}
