package domain

// Ending names the narrative tier for a final credit total. Cosmetic only.
type Ending string

const (
	EndingPerfect      Ending = "perfect"
	EndingOverachiever Ending = "overachiever"
	EndingGraduate     Ending = "graduate"
	EndingRetry        Ending = "retry"
	EndingDropout      Ending = "dropout"
)

// Result is the final outcome of a local match.
type Result struct {
	PlayerCredits   int
	CPUCredits      int
	PlayerGraduated bool
	CPUGraduated    bool
	PlayerWon       bool
	Ending          Ending
	EndingTitle     string
}

// Resolve compares final credit totals. If exactly one side graduated, it
// wins; otherwise the side closer to the threshold wins. At equal distance
// the CPU side wins, the same direction the online resolver uses.
func Resolve(cfg Config, s GameState) Result {
	playerCredits := PlayerCredits(cfg, s)
	cpuCredits := CPUCredits(cfg, s)
	playerGrad := playerCredits >= cfg.GraduationCredits
	cpuGrad := cpuCredits >= cfg.GraduationCredits

	var playerWon bool
	switch {
	case playerGrad && !cpuGrad:
		playerWon = true
	case !playerGrad && cpuGrad:
		playerWon = false
	default:
		playerWon = distance(playerCredits, cfg.GraduationCredits) < distance(cpuCredits, cfg.GraduationCredits)
	}

	ending, title := ClassifyEnding(cfg, playerCredits)

	return Result{
		PlayerCredits:   playerCredits,
		CPUCredits:      cpuCredits,
		PlayerGraduated: playerGrad,
		CPUGraduated:    cpuGrad,
		PlayerWon:       playerWon,
		Ending:          ending,
		EndingTitle:     title,
	}
}

// ClassifyEnding buckets a final credit total into its narrative tier.
// Boundaries come from the config, not the catalog.
func ClassifyEnding(cfg Config, credits int) (Ending, string) {
	switch {
	case credits == cfg.GraduationCredits:
		return EndingPerfect, "Legendary Minimal-Effort Graduation"
	case credits >= cfg.OverachieverMin:
		return EndingOverachiever, "Grade Grinder, Zero Friends"
	case credits >= cfg.GraduationCredits:
		return EndingGraduate, "Graduated"
	case credits >= cfg.RetryMin:
		return EndingRetry, "Held Back a Year"
	default:
		return EndingDropout, "Dropped Out and Ran Away"
	}
}

func distance(credits, threshold int) int {
	if credits >= threshold {
		return credits - threshold
	}
	return threshold - credits
}
