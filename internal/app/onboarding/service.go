package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gradrace/internal/app/rating"
	"gradrace/internal/ports"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// RatingCreated reports whether this call wrote the initial rating.
	RatingCreated bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	ratings  *rating.Service
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/ratings must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, ratings *rating.Service, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		ratings:  ratings,
		rng:      rng,
	}
}

// OnboardNewUser initializes profile and rating for a newly created account.
// userID identifies the new account to initialize.
// Returns a Result with any non-fatal issues and an error if the initial
// rating cannot be written.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.ratings == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		// Profile updates are best-effort; the rating record is what every
		// later match settlement depends on.
		result.ProfileUpdateErr = err
	}

	created, err := s.ratings.EnsureInitial(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("failed to write initial rating: %w", err)
	}
	result.RatingCreated = created

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Sleepy", "Caffeinated", "Crafty", "Slacking", "Panicked", "Breezy", "Scheming", "Lucky", "Frantic", "Chill"}
	nouns := []string{"Freshman", "Senior", "Slacker", "Valedictorian", "Undergrad", "Crammer", "Napper", "Repeater", "Scholar", "Dropout"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
