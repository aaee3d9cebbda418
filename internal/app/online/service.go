package online

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gradrace/internal/app/rating"
	"gradrace/internal/domain"
	"gradrace/internal/ports"
)

const (
	// maxSeed bounds freshly rolled deck seeds to keep them short in logs
	// and payloads.
	maxSeed = 1_000_000

	// maxCommitAttempts bounds the read-apply-write retry loop when another
	// participant commits between our read and write.
	maxCommitAttempts = 3
)

var (
	ErrNotParticipant   = errors.New("user is not a participant of this game")
	ErrCommitContention = errors.New("could not commit action, too much contention")
)

// Service runs asynchronous online matches over a shared, versioned game
// document. It holds no per-match state: every operation is a fresh
// read-modify-write against the store.
type Service struct {
	cfg      domain.Config
	store    ports.GameStore
	ratings  *rating.Service
	notifier ports.Notifier
	rng      *rand.Rand
}

// NewService constructs the online match service. ratings and notifier may
// be nil to disable settlement and push messages; rng may be nil for a
// time-seeded default.
func NewService(cfg domain.Config, store ports.GameStore, ratings *rating.Service, notifier ports.Notifier, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{cfg: cfg, store: store, ratings: ratings, notifier: notifier, rng: rng}
}

// CreateGame starts the match for a full lobby, or returns the match that
// already exists for it. Both lobby members call this on transition; the
// store's conditional create makes exactly one of them win the race, and the
// loser adopts the winner's document.
func (s *Service) CreateGame(ctx context.Context, lobbyID, player1ID, player2ID string) (domain.SyncedGame, error) {
	if existing, _, err := s.store.Get(ctx, lobbyID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ports.ErrGameNotFound) {
		return domain.SyncedGame{}, fmt.Errorf("load game for lobby %s: %w", lobbyID, err)
	}

	seed := uint32(s.rng.Intn(maxSeed))
	game := domain.NewSyncedGame(s.cfg, seed, lobbyID, player1ID, player2ID)

	if _, err := s.store.Create(ctx, lobbyID, game); err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			// The other player created it first; use theirs.
			created, _, getErr := s.store.Get(ctx, lobbyID)
			if getErr != nil {
				return domain.SyncedGame{}, fmt.Errorf("load game after create race: %w", getErr)
			}
			return created, nil
		}
		return domain.SyncedGame{}, fmt.Errorf("create game for lobby %s: %w", lobbyID, err)
	}
	return game, nil
}

// GetGame loads the current document.
func (s *Service) GetGame(ctx context.Context, gameID string) (domain.SyncedGame, error) {
	game, _, err := s.store.Get(ctx, gameID)
	if err != nil {
		return domain.SyncedGame{}, err
	}
	return game, nil
}

// SubmitResult reports the outcome of one action submission. RatingErr and
// NotifyErr are non-fatal: the action itself committed.
type SubmitResult struct {
	Game    domain.SyncedGame
	Applied bool

	RatingErr error
	NotifyErr error
}

// SubmitAction applies one action for a player. The apply is a conditional
// write: if another commit lands between our read and write, we re-read and
// re-apply, which naturally rejects actions whose turn has passed. An action
// that does not apply (wrong turn, duplicate submission, invalid card) is
// reported with Applied=false and no error.
func (s *Service) SubmitAction(ctx context.Context, gameID, playerID string, action domain.Action) (SubmitResult, error) {
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		game, version, err := s.store.Get(ctx, gameID)
		if err != nil {
			return SubmitResult{}, fmt.Errorf("load game %s: %w", gameID, err)
		}
		if playerID != game.Player1ID && playerID != game.Player2ID {
			return SubmitResult{}, ErrNotParticipant
		}

		next, applied := domain.ApplySyncedAction(s.cfg, game, playerID, action)
		if !applied {
			return SubmitResult{Game: game}, nil
		}

		if _, err := s.store.Update(ctx, gameID, next, version); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				continue
			}
			return SubmitResult{}, fmt.Errorf("store game %s: %w", gameID, err)
		}

		result := SubmitResult{Game: next, Applied: true}
		if next.Status == domain.StatusEnded {
			result.RatingErr = s.settle(ctx, next)
			result.NotifyErr = s.notifyGameOver(ctx, next)
		} else {
			result.NotifyErr = s.notifyTurn(ctx, next)
		}
		return result, nil
	}
	return SubmitResult{}, ErrCommitContention
}

// ViewFor filters the document down to what one participant may see.
func (s *Service) ViewFor(game domain.SyncedGame, playerID string) (GameView, error) {
	var yours, theirs []domain.Card
	var yourBonus, theirBonus int
	switch playerID {
	case game.Player1ID:
		yours, theirs = game.Player1Hand, game.Player2Hand
		yourBonus, theirBonus = game.Player1BonusCredits, game.Player2BonusCredits
	case game.Player2ID:
		yours, theirs = game.Player2Hand, game.Player1Hand
		yourBonus, theirBonus = game.Player2BonusCredits, game.Player1BonusCredits
	default:
		return GameView{}, ErrNotParticipant
	}

	isYourTurn := game.Status == domain.StatusPlaying &&
		(playerID == game.Player1ID) == domain.IsPlayer1Turn(game.CurrentTurn)

	return GameView{
		LobbyID:           game.LobbyID,
		CurrentTurn:       game.CurrentTurn,
		TotalTurns:        s.cfg.TotalTurns,
		IsYourTurn:        isYourTurn,
		Hand:              yours,
		OpponentHandCount: len(theirs),
		YourCredits:       domain.SyncedCredits(s.cfg, yours, yourBonus),
		OpponentCredits:   domain.SyncedCredits(s.cfg, theirs, theirBonus),
		GraduationGoal:    s.cfg.GraduationCredits,
		Status:            game.Status,
		WinnerID:          game.WinnerID,
		Log:               game.Log,
	}, nil
}

// GameView is the participant-filtered projection of a game document.
type GameView struct {
	LobbyID           string        `json:"lobby_id"`
	CurrentTurn       int           `json:"current_turn"`
	TotalTurns        int           `json:"total_turns"`
	IsYourTurn        bool          `json:"is_your_turn"`
	Hand              []domain.Card `json:"hand"`
	OpponentHandCount int           `json:"opponent_hand_count"`
	YourCredits       int           `json:"your_credits"`
	OpponentCredits   int           `json:"opponent_credits"`
	GraduationGoal    int           `json:"graduation_goal"`
	Status            string        `json:"status"`
	WinnerID          string        `json:"winner_id,omitempty"`
	Log               []string      `json:"log"`
}

func (s *Service) settle(ctx context.Context, game domain.SyncedGame) error {
	if s.ratings == nil || game.WinnerID == "" {
		return nil
	}
	loserID := game.Player1ID
	if game.WinnerID == game.Player1ID {
		loserID = game.Player2ID
	}
	if _, _, err := s.ratings.SettleMatch(ctx, game.WinnerID, loserID); err != nil {
		return fmt.Errorf("settle ratings: %w", err)
	}
	return nil
}

func (s *Service) notifyTurn(ctx context.Context, game domain.SyncedGame) error {
	if s.notifier == nil {
		return nil
	}
	next := game.Player2ID
	if domain.IsPlayer1Turn(game.CurrentTurn) {
		next = game.Player1ID
	}
	return s.notifier.NotifyTurn(ctx, next, game.LobbyID)
}

func (s *Service) notifyGameOver(ctx context.Context, game domain.SyncedGame) error {
	if s.notifier == nil {
		return nil
	}
	var firstErr error
	for _, userID := range []string{game.Player1ID, game.Player2ID} {
		if err := s.notifier.NotifyGameOver(ctx, userID, game.LobbyID, userID == game.WinnerID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
