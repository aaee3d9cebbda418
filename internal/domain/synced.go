package domain

import "fmt"

// ActionType identifies a submitted player decision.
type ActionType string

const (
	ActionUse  ActionType = "use"
	ActionPass ActionType = "pass"
)

// Action is one decision submitted by a player in an online match.
type Action struct {
	Type      ActionType `json:"type"`
	CardIndex int        `json:"card_index"`
}

// Game document status values.
const (
	StatusPlaying = "playing"
	StatusEnded   = "ended"
)

// Salts mixed into the shared seed so each random effect outcome has its own
// reproducible stream per turn.
const (
	gambleSalt      = 997
	discardOppSalt  = 1009
	discardSelfSalt = 1013
)

// SyncedGame is the shared match document for online play. The deck is never
// persisted: every reader derives it from DeckSeed. Transient turn state
// (skip flags, extra actions) lives in explicit fields because each action
// is applied by a fresh, isolated read-modify-write with no in-memory
// continuity between participants.
type SyncedGame struct {
	LobbyID   string `json:"lobby_id"`
	Player1ID string `json:"player1_id"`
	Player2ID string `json:"player2_id"`

	DeckSeed uint32 `json:"deck_seed"`

	// CurrentTurn is 1-based; odd turns belong to player 1.
	CurrentTurn int `json:"current_turn"`

	Player1Hand []Card `json:"player1_hand"`
	Player2Hand []Card `json:"player2_hand"`

	Player1BonusCredits int `json:"player1_bonus_credits"`
	Player2BonusCredits int `json:"player2_bonus_credits"`

	Player1SkipDraw bool `json:"player1_skip_draw"`
	Player2SkipDraw bool `json:"player2_skip_draw"`

	Player1ExtraActions int `json:"player1_extra_actions"`
	Player2ExtraActions int `json:"player2_extra_actions"`

	// ExtraDrawCount tracks how many effect draws have consumed cards from
	// the deck's effect-draw region, keeping every draw derivable from the
	// seed without a cursor per hand.
	ExtraDrawCount int `json:"extra_draw_count"`

	Status   string   `json:"status"`
	WinnerID string   `json:"winner_id,omitempty"`
	Log      []string `json:"log"`
}

// NewSyncedGame creates the shared document for a fresh online match.
// Initial hands come off the derived deck's tail: player 1 takes the slice
// before the last, player 2 the last.
func NewSyncedGame(cfg Config, seed uint32, lobbyID, player1ID, player2ID string) SyncedGame {
	deck := DeckForSeed(seed)
	n := len(deck)
	h := cfg.InitialHandSize

	return SyncedGame{
		LobbyID:     lobbyID,
		Player1ID:   player1ID,
		Player2ID:   player2ID,
		DeckSeed:    seed,
		CurrentTurn: 1,
		Player1Hand: append([]Card(nil), deck[n-2*h:n-h]...),
		Player2Hand: append([]Card(nil), deck[n-h:]...),
		Status:      StatusPlaying,
		Log:         []string{"Graduation chicken race begins!"},
	}
}

// IsPlayer1Turn reports whether the 1-based turn belongs to player 1.
func IsPlayer1Turn(turn int) bool {
	return turn%2 == 1
}

// SyncedCredits recomputes a side's total from its hand and bonus.
func SyncedCredits(cfg Config, hand []Card, bonus int) int {
	return cfg.StartingCredits + HandValue(hand) + bonus
}

// SyncedWinner picks the winner id from final totals. At equal distance from
// the threshold player 2 wins, matching the local resolver's tie direction.
func SyncedWinner(cfg Config, g SyncedGame) string {
	p1 := SyncedCredits(cfg, g.Player1Hand, g.Player1BonusCredits)
	p2 := SyncedCredits(cfg, g.Player2Hand, g.Player2BonusCredits)
	p1Grad := p1 >= cfg.GraduationCredits
	p2Grad := p2 >= cfg.GraduationCredits

	if p1Grad && !p2Grad {
		return g.Player1ID
	}
	if !p1Grad && p2Grad {
		return g.Player2ID
	}
	if distance(p1, cfg.GraduationCredits) < distance(p2, cfg.GraduationCredits) {
		return g.Player1ID
	}
	return g.Player2ID
}

// syncedSide groups one side's mutable fields during an apply.
type syncedSide struct {
	hand    *[]Card
	bonus   *int
	skip    *bool
	actions *int
}

// ApplySyncedAction applies at most one state transition for the submitted
// action. It returns the updated document and whether the action applied.
// Ended games, out-of-turn or unknown submitters, and invalid card indexes
// leave the document untouched with applied=false; a retried submission
// whose turn already advanced fails the ownership check the same way.
//
// All randomness is derived from (DeckSeed, CurrentTurn, salt), so any
// participant recomputes identical outcomes from the persisted fields alone.
func ApplySyncedAction(cfg Config, g SyncedGame, playerID string, action Action) (SyncedGame, bool) {
	if g.Status != StatusPlaying {
		return g, false
	}
	if playerID != g.Player1ID && playerID != g.Player2ID {
		return g, false
	}

	isP1 := playerID == g.Player1ID
	turn := g.CurrentTurn
	if isP1 != IsPlayer1Turn(turn) {
		return g, false
	}

	out := g
	out.Player1Hand = append([]Card(nil), g.Player1Hand...)
	out.Player2Hand = append([]Card(nil), g.Player2Hand...)
	out.Log = append([]string(nil), g.Log...)

	self := syncedSide{hand: &out.Player1Hand, bonus: &out.Player1BonusCredits, skip: &out.Player1SkipDraw, actions: &out.Player1ExtraActions}
	opp := syncedSide{hand: &out.Player2Hand, bonus: &out.Player2BonusCredits, skip: &out.Player2SkipDraw, actions: &out.Player2ExtraActions}
	if !isP1 {
		self, opp = opp, self
	}

	deck := DeckForSeed(g.DeckSeed)
	isExtraAction := *self.actions > 0

	// A turn's first action starts with the draw phase. Extra actions reuse
	// the already-persisted hand; their turn draw happened on the first one.
	if !isExtraAction {
		if *self.skip {
			*self.skip = false
			if isP1 {
				out.Log = append(out.Log, "Draw skipped")
			} else {
				out.Log = append(out.Log, "Opponent's draw skipped")
			}
		} else if turn-1 < len(deck) && len(*self.hand) < cfg.MaxHandSize {
			// Turn n always draws the deck's fixed slot n-1; a skipped or
			// capped turn simply leaves its slot card unused.
			*self.hand = append(*self.hand, deck[turn-1])
		}
	}

	if action.Type == ActionUse {
		if action.CardIndex < 0 || action.CardIndex >= len(*self.hand) {
			return g, false
		}
		card := removeAt(self.hand, action.CardIndex)
		applySyncedEffect(cfg, &out, card, self, opp, deck)
	} else {
		if isP1 {
			out.Log = append(out.Log, "Passed (keeping hand)")
		} else {
			out.Log = append(out.Log, "Opponent passed")
		}
	}

	if isExtraAction && *self.actions > 0 {
		*self.actions--
	}

	shouldAdvance := *self.actions <= 0
	nextTurn := turn
	if shouldAdvance {
		nextTurn = turn + 1
	}

	if shouldAdvance && nextTurn > cfg.TotalTurns {
		out.Status = StatusEnded
		out.WinnerID = SyncedWinner(cfg, out)
		if out.WinnerID == out.Player1ID {
			out.Log = append(out.Log, "Player 1 wins!")
		} else {
			out.Log = append(out.Log, "Player 2 wins!")
		}
	} else {
		out.CurrentTurn = nextTurn
	}

	return out, true
}

// applySyncedEffect resolves a spent card with seed-derived randomness,
// following the same fixed kind order as the local engine.
func applySyncedEffect(cfg Config, out *SyncedGame, card Card, self, opp syncedSide, deck []Card) {
	def := card.Def()
	eff := def.Effect
	turn := out.CurrentTurn
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
	if op, ok := eff.Op(EffectExtraActions); ok && op.Amount > 0 {
		*self.actions += op.Amount
	}
	if op, ok := eff.Op(EffectGamble); ok {
		won := NewSeededRand(out.DeckSeed+uint32(turn)*gambleSalt).Next() >= 0.5
		if won {
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
			rng := NewSeededRand(out.DeckSeed + uint32(turn)*discardOppSalt + uint32(i))
			removed := removeAt(opp.hand, rng.Intn(len(*opp.hand)))
			out.Log = append(out.Log, fmt.Sprintf("Discarded opponent's %s!", removed.Def().Name))
		}
	}
	if op, ok := eff.Op(EffectDiscardSelf); ok {
		for i := 0; i < op.Amount && len(*self.hand) > 0; i++ {
			rng := NewSeededRand(out.DeckSeed + uint32(turn)*discardSelfSalt + uint32(i))
			removed := removeAt(self.hand, rng.Intn(len(*self.hand)))
			out.Log = append(out.Log, fmt.Sprintf("Discarded own %s", removed.Def().Name))
		}
	}
	if op, ok := eff.Op(EffectDrawCards); ok {
		// Effect draws consume the fixed region after the turn slots; the
		// deck tail is reserved for the initial hands.
		regionEnd := len(deck) - 2*cfg.InitialHandSize
		for i := 0; i < op.Amount; i++ {
			idx := cfg.TotalTurns + out.ExtraDrawCount
			if idx >= regionEnd || len(*self.hand) >= cfg.MaxHandSize {
				break
			}
			*self.hand = append(*self.hand, deck[idx])
			out.ExtraDrawCount++
			out.Log = append(out.Log, fmt.Sprintf("Bonus draw: %s", deck[idx].Def().Name))
		}
	}
}
