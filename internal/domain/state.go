package domain

// Phase represents the lifecycle stage within one turn of a match.
type Phase string

const (
	// PhaseDraw is the start of a turn, before the acting side has drawn.
	PhaseDraw Phase = "draw"
	// PhaseAction follows the draw; the acting side uses cards or passes.
	PhaseAction Phase = "action"
	// PhaseEnded is terminal; only the result resolver reads it.
	PhaseEnded Phase = "ended"
)

// GameState is the single source of truth for one local match. Transitions
// never mutate a state in place; every operation returns a fresh value.
type GameState struct {
	Phase Phase
	// Turn is 1-based; odd turns belong to the player side, even to the CPU.
	Turn int
	Deck []Card

	PlayerHand []Card
	CPUHand    []Card

	// Bonus accumulators from spent-card effects. Unclamped; may go negative.
	PlayerBonusCredits int
	CPUBonusCredits    int

	// One-shot flags consumed on that side's next draw phase.
	PlayerSkipDraw bool
	CPUSkipDraw    bool

	// ActionsRemaining counts card-uses or passes left before the turn
	// advances. Reset to 1 when a turn's action phase begins.
	ActionsRemaining int

	// Log is an append-only record of human-readable events. Informational
	// only; no transition reads it.
	Log []string
}

// IsPlayerTurn reports whether the 1-based turn belongs to the player side.
func IsPlayerTurn(turn int) bool {
	return turn%2 == 1
}

// HandValue sums keep values over a hand.
func HandValue(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += c.KeepValue()
	}
	return total
}

// PlayerCredits recomputes the player side's total. Totals are never cached:
// hand contents and the bonus accumulator mutate independently.
func PlayerCredits(cfg Config, s GameState) int {
	return cfg.StartingCredits + HandValue(s.PlayerHand) + s.PlayerBonusCredits
}

// CPUCredits recomputes the CPU side's total.
func CPUCredits(cfg Config, s GameState) int {
	return cfg.StartingCredits + HandValue(s.CPUHand) + s.CPUBonusCredits
}

// clone deep-copies the state so transitions can build their result without
// touching the input.
func (s GameState) clone() GameState {
	out := s
	out.Deck = append([]Card(nil), s.Deck...)
	out.PlayerHand = append([]Card(nil), s.PlayerHand...)
	out.CPUHand = append([]Card(nil), s.CPUHand...)
	out.Log = append([]string(nil), s.Log...)
	return out
}
