package ports

import (
	"context"
	"errors"

	"gradrace/internal/domain"
)

// ErrVersionConflict is returned by Update when the stored document changed
// since it was read. Callers re-read and retry.
var ErrVersionConflict = errors.New("game document version conflict")

// ErrGameNotFound is returned when no document exists for the requested game.
var ErrGameNotFound = errors.New("game not found")

// GameStore defines the interface for the shared remote game document.
// Every write is conditional on the version returned by the read that
// produced it, so two clients can never commit over each other.
type GameStore interface {
	// Create stores a fresh game document. Returns the version of the
	// stored document. Fails if a document already exists for the game.
	Create(ctx context.Context, gameID string, game domain.SyncedGame) (string, error)

	// Get loads the document and its current version.
	Get(ctx context.Context, gameID string) (domain.SyncedGame, string, error)

	// Update stores the document only if version still matches the stored
	// one. Returns the new version, or ErrVersionConflict.
	Update(ctx context.Context, gameID string, game domain.SyncedGame, version string) (string, error)
}
