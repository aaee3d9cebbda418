package domain

import "fmt"

// Category classifies a card for display purposes only; resolution never
// inspects it.
type Category string

const (
	CategoryStable Category = "stable"
	CategoryMinus  Category = "minus"
	CategoryChaos  Category = "chaos"
)

// EffectKind identifies one component of a card's use effect. The declared
// order is the resolution order: effects always apply kind by kind in this
// sequence, no matter how a card lists them.
type EffectKind int

const (
	EffectSelfBonus EffectKind = iota
	EffectOpponentBonus
	EffectSkipNextDraw
	EffectExtraActions
	EffectGamble
	EffectDiscardOpponent
	EffectDiscardSelf
	EffectDrawCards
)

// EffectOp is a single effect component. Amount carries the bonus delta,
// action count, draw count or discard count depending on Kind; Win/Lose are
// only meaningful for EffectGamble.
type EffectOp struct {
	Kind   EffectKind
	Amount int
	Win    int
	Lose   int
}

// UseEffect is the structured effect of spending a card.
type UseEffect []EffectOp

// Op returns the component of the given kind, if the effect has one.
func (e UseEffect) Op(kind EffectKind) (EffectOp, bool) {
	for _, op := range e {
		if op.Kind == kind {
			return op, true
		}
	}
	return EffectOp{}, false
}

// CardDef is an immutable catalog entry. Exactly one definition exists per
// id; card instances reference it by id.
type CardDef struct {
	ID          string
	Name        string
	Description string
	KeepValue   int
	Effect      UseEffect
	Category    Category
}

// Card is one instance of a catalog definition inside a deck. Instances of
// the same definition are told apart by UID.
type Card struct {
	ID  string `json:"id"`
	UID string `json:"uid"`
}

// Def resolves the catalog definition for this instance. Unknown ids yield a
// zero definition; they cannot appear in decks built from the catalog.
func (c Card) Def() CardDef {
	def, _ := CardByID(c.ID)
	return def
}

// KeepValue is the credit value this card contributes while held unused.
func (c Card) KeepValue() int {
	return c.Def().KeepValue
}

// CopiesPerCard is how many instances of each definition a deck contains.
const CopiesPerCard = 3

// Cards is the full catalog.
var Cards = []CardDef{
	{
		ID:          "clone_thesis",
		Name:        "Thesis Clone",
		Description: "Resubmit a cloned thesis for 24 credits. Skip your next draw.",
		KeepValue:   12,
		Effect:      UseEffect{{Kind: EffectSelfBonus, Amount: 24}, {Kind: EffectSkipNextDraw}},
		Category:    CategoryStable,
	},
	{
		ID:          "dogeza",
		Name:        "Beg the Professor",
		Description: "A tearful apology earns 16 credits. Draw 1 card.",
		KeepValue:   8,
		Effect:      UseEffect{{Kind: EffectSelfBonus, Amount: 16}, {Kind: EffectDrawCards, Amount: 1}},
		Category:    CategoryStable,
	},
	{
		ID:          "ghostwriter",
		Name:        "Ghostwriter",
		Description: "A hired wordsmith churns out reports for 16 credits.",
		KeepValue:   10,
		Effect:      UseEffect{{Kind: EffectSelfBonus, Amount: 16}},
		Category:    CategoryStable,
	},
	{
		ID:          "native_helper",
		Name:        "Native Speaker Ringer",
		Description: "Summon a native speaker to language class for 10 credits.",
		KeepValue:   7,
		Effect:      UseEffect{{Kind: EffectSelfBonus, Amount: 10}},
		Category:    CategoryStable,
	},
	{
		ID:          "sit_in",
		Name:        "Camp-Out Attendance",
		Description: "Wait in the classroom overnight for 8 credits. +1 action this turn.",
		KeepValue:   6,
		Effect:      UseEffect{{Kind: EffectSelfBonus, Amount: 8}, {Kind: EffectExtraActions, Amount: 1}},
		Category:    CategoryStable,
	},
	{
		ID:          "oversleep",
		Name:        "Dead Asleep",
		Description: "Sleep through a pile of lectures for 0 credits. +1 action this turn.",
		KeepValue:   8,
		Effect:      UseEffect{{Kind: EffectSelfBonus, Amount: 0}, {Kind: EffectExtraActions, Amount: 1}},
		Category:    CategoryMinus,
	},
	{
		ID:          "planned_nap",
		Name:        "Scheduled Nap",
		Description: "Skip the afternoon block for 5 credits. Draw 1 card.",
		KeepValue:   10,
		Effect:      UseEffect{{Kind: EffectSelfBonus, Amount: 5}, {Kind: EffectDrawCards, Amount: 1}},
		Category:    CategoryMinus,
	},
	{
		ID:          "flame",
		Name:        "Viral Scandal",
		Description: "Your reputation burns down on social media. Lose 10 credits.",
		KeepValue:   5,
		Effect:      UseEffect{{Kind: EffectSelfBonus, Amount: -10}},
		Category:    CategoryMinus,
	},
	{
		ID:          "gacha",
		Name:        "Seminar Gacha",
		Description: "Random lab placement: 50% for +20 credits, 50% for -15.",
		KeepValue:   6,
		Effect:      UseEffect{{Kind: EffectGamble, Win: 20, Lose: -15}},
		Category:    CategoryChaos,
	},
	{
		ID:          "all_nighter",
		Name:        "Double All-Nighter",
		Description: "Grind assignments at any cost. +2 actions, skip your next draw.",
		KeepValue:   10,
		Effect:      UseEffect{{Kind: EffectExtraActions, Amount: 2}, {Kind: EffectSkipNextDraw}},
		Category:    CategoryChaos,
	},
	{
		ID:          "drop_course",
		Name:        "Course Withdrawal",
		Description: "Drop a course for 0 credits. Discard 1 of yours and 1 of theirs.",
		KeepValue:   2,
		Effect:      UseEffect{{Kind: EffectSelfBonus, Amount: 0}, {Kind: EffectDiscardSelf, Amount: 1}, {Kind: EffectDiscardOpponent, Amount: 1}},
		Category:    CategoryChaos,
	},
	{
		ID:          "grade_hack",
		Name:        "Transcript Tampering",
		Description: "Rewrite the grade ledger. Opponent loses 10 credits.",
		KeepValue:   10,
		Effect:      UseEffect{{Kind: EffectOpponentBonus, Amount: -10}},
		Category:    CategoryChaos,
	},
	{
		ID:          "nightlife",
		Name:        "Night Out Invitation",
		Description: "Late-night mahjong drags you both down: you -6, opponent -16. Draw 1.",
		KeepValue:   4,
		Effect:      UseEffect{{Kind: EffectSelfBonus, Amount: -6}, {Kind: EffectOpponentBonus, Amount: -16}, {Kind: EffectDrawCards, Amount: 1}},
		Category:    CategoryChaos,
	},
}

var cardIndex = func() map[string]CardDef {
	idx := make(map[string]CardDef, len(Cards))
	for _, def := range Cards {
		idx[def.ID] = def
	}
	return idx
}()

// CardByID looks up a catalog definition.
func CardByID(id string) (CardDef, bool) {
	def, ok := cardIndex[id]
	return def, ok
}

// DeckSize is the total number of card instances in a full deck.
func DeckSize() int {
	return len(Cards) * CopiesPerCard
}

// instanceUID derives the unique id for a copy of a definition.
func instanceUID(cardID string, copy int) string {
	return fmt.Sprintf("%s-%d", cardID, copy)
}
