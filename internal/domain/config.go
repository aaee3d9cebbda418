package domain

// Config carries the tunable rules for a match. Zero values are never valid;
// start from DefaultConfig and override fields as needed.
type Config struct {
	// StartingCredits is the base total both sides begin with.
	StartingCredits int
	// GraduationCredits is the threshold at or above which a side graduates.
	GraduationCredits int
	// TotalTurns is the shared turn budget; the match ends when a turn past
	// it would begin.
	TotalTurns int
	// InitialHandSize is dealt to each side from the draw end of the deck.
	InitialHandSize int
	// MaxHandSize caps a hand; draws degrade silently at the cap.
	MaxHandSize int
	// OverachieverMin is the lowest final credit total classified as the
	// overachiever ending.
	OverachieverMin int
	// RetryMin is the lowest final credit total classified as the retry
	// ending; anything below is a dropout.
	RetryMin int
}

// DefaultConfig returns the standard ruleset.
func DefaultConfig() Config {
	return Config{
		StartingCredits:   24,
		GraduationCredits: 100,
		TotalTurns:        20,
		InitialHandSize:   3,
		MaxHandSize:       8,
		OverachieverMin:   131,
		RetryMin:          94,
	}
}
