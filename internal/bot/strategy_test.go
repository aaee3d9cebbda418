package bot

import (
	"math/rand"
	"testing"

	"gradrace/internal/domain"
)

// alwaysAct removes the probabilistic gate so card selection can be tested
// deterministically.
var alwaysAct = BotTuning{
	BaseActProbability: 1.0,
	LateTurnsLeft:      6,
	BigBonusMin:        16,
	MinActProbability:  1.0,
	MaxActProbability:  1.0,
}

func handOf(t *testing.T, ids ...string) []domain.Card {
	t.Helper()
	hand := make([]domain.Card, 0, len(ids))
	for _, id := range ids {
		if _, ok := domain.CardByID(id); !ok {
			t.Fatalf("unknown card id %q", id)
		}
		hand = append(hand, domain.Card{ID: id, UID: "t"})
	}
	return hand
}

func cpuState(hand []domain.Card, turn int) domain.GameState {
	return domain.GameState{
		Phase:            domain.PhaseAction,
		Turn:             turn,
		CPUHand:          hand,
		ActionsRemaining: 1,
	}
}

func TestCalculateMoveEmptyHandPasses(t *testing.T) {
	b := &StandardBot{Tuning: alwaysAct}
	rng := rand.New(rand.NewSource(1))

	move, err := b.CalculateMove(domain.DefaultConfig(), cpuState(nil, 2), rng)
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if !move.Pass {
		t.Errorf("expected pass with an empty hand, got card %d", move.CardIndex)
	}
}

func TestCalculateMovePrefersDisruption(t *testing.T) {
	b := &StandardBot{Tuning: alwaysAct}
	cfg := domain.DefaultConfig()

	tests := []struct {
		name string
		hand []string
		want int
	}{
		{"opponent penalty over boost", []string{"ghostwriter", "grade_hack"}, 1},
		{"forced discard over boost", []string{"native_helper", "drop_course"}, 1},
		{"first disruption wins", []string{"grade_hack", "nightlife"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			move, err := b.CalculateMove(cfg, cpuState(handOf(t, tt.hand...), 2), rng)
			if err != nil {
				t.Fatalf("CalculateMove: %v", err)
			}
			if move.Pass || move.CardIndex != tt.want {
				t.Errorf("got pass=%v index=%d, want index %d", move.Pass, move.CardIndex, tt.want)
			}
		})
	}
}

func TestCalculateMoveBigBoostFallback(t *testing.T) {
	b := &StandardBot{Tuning: alwaysAct}
	rng := rand.New(rand.NewSource(3))

	// native_helper grants 10, under the 16 threshold; ghostwriter grants 16.
	hand := handOf(t, "native_helper", "ghostwriter")
	move, err := b.CalculateMove(domain.DefaultConfig(), cpuState(hand, 2), rng)
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if move.Pass || move.CardIndex != 1 {
		t.Errorf("got pass=%v index=%d, want the big boost at 1", move.Pass, move.CardIndex)
	}
}

func TestCalculateMoveLateGameTakesAnyBoost(t *testing.T) {
	tuning := alwaysAct
	tuning.BigBonusMin = 50 // no card qualifies as big
	b := &StandardBot{Tuning: tuning}
	cfg := domain.DefaultConfig()
	rng := rand.New(rand.NewSource(3))

	hand := handOf(t, "flame", "native_helper")
	move, err := b.CalculateMove(cfg, cpuState(hand, cfg.TotalTurns-1), rng)
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if move.Pass || move.CardIndex != 1 {
		t.Errorf("got pass=%v index=%d, want the positive boost at 1", move.Pass, move.CardIndex)
	}
}

func TestActProbabilityAdjustments(t *testing.T) {
	cfg := domain.DefaultConfig()
	b := &StandardBot{Tuning: DefaultTuning}

	base := cpuState(nil, 2)

	// Trailing badly in the final turns raises the urge to act.
	behind := base
	behind.Turn = cfg.TotalTurns - 2
	behind.PlayerBonusCredits = 60
	if got, want := b.actProbability(cfg, behind), b.actProbability(cfg, base); got <= want {
		t.Errorf("behind-late probability %v not above base %v", got, want)
	}

	// Leading past the threshold lowers it.
	ahead := base
	ahead.CPUBonusCredits = cfg.GraduationCredits
	if got, want := b.actProbability(cfg, ahead), b.actProbability(cfg, base); got >= want {
		t.Errorf("ahead probability %v not below base %v", got, want)
	}
}

func TestActProbabilityClamps(t *testing.T) {
	cfg := domain.DefaultConfig()

	low := DefaultTuning
	low.BaseActProbability = -0.5
	b := &StandardBot{Tuning: low}
	if got := b.actProbability(cfg, cpuState(nil, 2)); got != low.MinActProbability {
		t.Errorf("got %v, want clamp to %v", got, low.MinActProbability)
	}

	high := DefaultTuning
	high.BaseActProbability = 2.0
	b = &StandardBot{Tuning: high}
	if got := b.actProbability(cfg, cpuState(nil, 2)); got != high.MaxActProbability {
		t.Errorf("got %v, want clamp to %v", got, high.MaxActProbability)
	}
}

func TestCalculateMoveDeterministic(t *testing.T) {
	cfg := domain.DefaultConfig()
	b := &StandardBot{Tuning: DefaultTuning}
	state := cpuState(handOf(t, "gacha", "oversleep", "planned_nap"), 4)

	first, err := b.CalculateMove(cfg, state, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	second, err := b.CalculateMove(cfg, state, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if first != second {
		t.Errorf("same seed produced %+v and %+v", first, second)
	}
}

func TestNewBrainLevels(t *testing.T) {
	for _, level := range []BotLevel{BotLevelEasy, BotLevelNormal, BotLevelHard} {
		if _, err := NewBrain(level); err != nil {
			t.Errorf("NewBrain(%d): %v", level, err)
		}
	}
	if _, err := NewBrain(BotLevel(42)); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestLevelFromDifficulty(t *testing.T) {
	tests := []struct {
		tag  string
		want BotLevel
	}{
		{"easy", BotLevelEasy},
		{"normal", BotLevelNormal},
		{"hard", BotLevelHard},
		{"", BotLevelNormal},
		{"nightmare", BotLevelNormal},
	}
	for _, tt := range tests {
		if got := LevelFromDifficulty(tt.tag); got != tt.want {
			t.Errorf("LevelFromDifficulty(%q) = %d, want %d", tt.tag, got, tt.want)
		}
	}
}
