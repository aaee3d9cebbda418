package rating

import "math"

const (
	// InitialRating is assigned to players on their first rated match.
	InitialRating = 1000
	// FloorRating is the lowest a rating can fall.
	FloorRating = 100
	// KFactor scales how far one result moves a rating.
	KFactor = 32
)

// Expected is the standard Elo win expectancy for `us` against `them`.
func Expected(us, them int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(them-us)/400.0))
}

// Next computes the post-match rating for one side. score is 1 for a win
// and 0 for a loss. Results never push a rating below the floor.
func Next(us, them int, score float64) int {
	next := float64(us) + KFactor*(score-Expected(us, them))
	rounded := int(math.Round(next))
	if rounded < FloorRating {
		return FloorRating
	}
	return rounded
}
