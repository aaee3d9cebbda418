package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// Engine applies local match transitions. Operations are pure with respect
// to their input: a state whose phase does not match an operation's
// precondition is returned unchanged, and valid inputs yield fresh values.
type Engine struct {
	cfg Config
	rng *rand.Rand
}

// NewEngine constructs an engine with the provided rules and random source.
// rng may be nil to use a time-seeded default; tests pass a seeded one so
// gamble and discard outcomes are reproducible.
func NewEngine(cfg Config, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{cfg: cfg, rng: rng}
}

// Config returns the ruleset this engine runs under.
func (e *Engine) Config() Config {
	return e.cfg
}

// sideRef points at one side's mutable fields within a cloned state.
type sideRef struct {
	hand  *[]Card
	bonus *int
	skip  *bool
}

func playerSide(s *GameState) sideRef {
	return sideRef{hand: &s.PlayerHand, bonus: &s.PlayerBonusCredits, skip: &s.PlayerSkipDraw}
}

func cpuSide(s *GameState) sideRef {
	return sideRef{hand: &s.CPUHand, bonus: &s.CPUBonusCredits, skip: &s.CPUSkipDraw}
}

// actingSides resolves the acting and opposing side for the current turn.
func actingSides(s *GameState) (self, opp sideRef) {
	if IsPlayerTurn(s.Turn) {
		return playerSide(s), cpuSide(s)
	}
	return cpuSide(s), playerSide(s)
}

// NewGame builds a fresh match: shuffled deck, both initial hands dealt from
// the draw end, turn 1 to the player side.
func (e *Engine) NewGame() GameState {
	deck := ShuffleDeck(NewDeck(), e.rng)
	n := len(deck)
	h := e.cfg.InitialHandSize

	s := GameState{
		Phase:            PhaseDraw,
		Turn:             1,
		Deck:             append([]Card(nil), deck[:n-2*h]...),
		PlayerHand:       append([]Card(nil), deck[n-h:]...),
		CPUHand:          append([]Card(nil), deck[n-2*h:n-h]...),
		ActionsRemaining: 1,
		Log:              []string{},
	}
	return s
}

// Draw resolves the draw phase for the acting side. A set skip flag consumes
// itself instead of a card; an empty deck or a full hand degrades to the
// action phase without drawing.
func (e *Engine) Draw(s GameState) GameState {
	if s.Phase != PhaseDraw {
		return s
	}

	out := s.clone()
	player := IsPlayerTurn(out.Turn)
	self, _ := actingSides(&out)
	out.Phase = PhaseAction
	out.ActionsRemaining = 1

	if *self.skip {
		*self.skip = false
		if player {
			out.Log = append(out.Log, "Draw skipped")
		} else {
			out.Log = append(out.Log, "Opponent's draw skipped")
		}
		return out
	}

	if len(out.Deck) == 0 || len(*self.hand) >= e.cfg.MaxHandSize {
		return out
	}

	card := out.Deck[len(out.Deck)-1]
	out.Deck = out.Deck[:len(out.Deck)-1]
	*self.hand = append(*self.hand, card)
	if player {
		out.Log = append(out.Log, fmt.Sprintf("Drew a card: %s", card.Def().Name))
	} else {
		out.Log = append(out.Log, "Opponent drew a card")
	}
	return out
}

// UseCard spends the card at cardIndex from the acting side's hand and
// resolves its effect. An invalid index is a no-op. The action cost applies
// before any granted extra actions; if none remain afterwards the turn
// advances.
func (e *Engine) UseCard(s GameState, cardIndex int) GameState {
	if s.Phase != PhaseAction {
		return s
	}

	hand := s.PlayerHand
	if !IsPlayerTurn(s.Turn) {
		hand = s.CPUHand
	}
	if cardIndex < 0 || cardIndex >= len(hand) {
		return s
	}

	out := s.clone()
	self, opp := actingSides(&out)

	card := (*self.hand)[cardIndex]
	*self.hand = append((*self.hand)[:cardIndex:cardIndex], (*self.hand)[cardIndex+1:]...)
	out.ActionsRemaining--

	e.resolveEffect(&out, card, self, opp)

	if out.ActionsRemaining <= 0 {
		return e.advanceTurn(out)
	}
	return out
}

// resolveEffect applies the card's effect components in the fixed kind
// order, so compound cards log and resolve identically everywhere.
func (e *Engine) resolveEffect(out *GameState, card Card, self, opp sideRef) {
	def := card.Def()
	eff := def.Effect
	msg := fmt.Sprintf("Used %s!", def.Name)

	if op, ok := eff.Op(EffectSelfBonus); ok && op.Amount != 0 {
		*self.bonus += op.Amount
		msg += fmt.Sprintf(" %+d credits", op.Amount)
	}
	if op, ok := eff.Op(EffectOpponentBonus); ok && op.Amount != 0 {
		*opp.bonus += op.Amount
		msg += fmt.Sprintf(" opponent %+d credits", op.Amount)
	}
	if _, ok := eff.Op(EffectSkipNextDraw); ok {
		*self.skip = true
	}
	if op, ok := eff.Op(EffectExtraActions); ok {
		out.ActionsRemaining += op.Amount
	}
	if op, ok := eff.Op(EffectGamble); ok {
		if e.rng.Float64() >= 0.5 {
			*self.bonus += op.Win
			msg += fmt.Sprintf(" Jackpot! %+d credits", op.Win)
		} else {
			*self.bonus += op.Lose
			msg += fmt.Sprintf(" Busted... %+d credits", op.Lose)
		}
	}
	out.Log = append(out.Log, msg)

	if op, ok := eff.Op(EffectDiscardOpponent); ok {
		for i := 0; i < op.Amount && len(*opp.hand) > 0; i++ {
			removed := removeAt(opp.hand, e.rng.Intn(len(*opp.hand)))
			out.Log = append(out.Log, fmt.Sprintf("Discarded opponent's %s!", removed.Def().Name))
		}
	}
	if op, ok := eff.Op(EffectDiscardSelf); ok {
		for i := 0; i < op.Amount && len(*self.hand) > 0; i++ {
			removed := removeAt(self.hand, e.rng.Intn(len(*self.hand)))
			out.Log = append(out.Log, fmt.Sprintf("Discarded own %s", removed.Def().Name))
		}
	}
	if op, ok := eff.Op(EffectDrawCards); ok {
		for i := 0; i < op.Amount; i++ {
			if len(out.Deck) == 0 || len(*self.hand) >= e.cfg.MaxHandSize {
				break
			}
			card := out.Deck[len(out.Deck)-1]
			out.Deck = out.Deck[:len(out.Deck)-1]
			*self.hand = append(*self.hand, card)
			out.Log = append(out.Log, fmt.Sprintf("Bonus draw: %s", card.Def().Name))
		}
	}
}

// removeAt removes and returns the element at idx.
func removeAt(hand *[]Card, idx int) Card {
	removed := (*hand)[idx]
	*hand = append((*hand)[:idx:idx], (*hand)[idx+1:]...)
	return removed
}

// Pass forfeits the remaining actions; held cards keep their value.
func (e *Engine) Pass(s GameState) GameState {
	if s.Phase != PhaseAction {
		return s
	}

	out := s.clone()
	out.ActionsRemaining = 0
	if IsPlayerTurn(out.Turn) {
		out.Log = append(out.Log, "Passed (keeping hand)")
	} else {
		out.Log = append(out.Log, "Opponent passed")
	}
	return e.advanceTurn(out)
}

// advanceTurn moves to the next turn's draw phase, or ends the match once
// the turn budget is spent. Callers pass an already-cloned state.
func (e *Engine) advanceTurn(s GameState) GameState {
	if s.Turn >= e.cfg.TotalTurns {
		s.Phase = PhaseEnded
		return s
	}
	s.Turn++
	s.Phase = PhaseDraw
	return s
}
