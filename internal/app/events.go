package app

import "gradrace/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted  EventKind = "game_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventStateUpdated EventKind = "state_updated"
	EventGameEnded    EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	TotalTurns      int    `json:"total_turns"`
	GraduationGoal  int    `json:"graduation_goal"`
	FirstTurnUserID string `json:"first_turn_user_id"`
}

type HandDealtPayload struct {
	UserID string        `json:"user_id"`
	Hand   []domain.Card `json:"hand"`
}

// SeatView is what one seat is allowed to see: its own hand, the opponent's
// hand size, and both computed credit totals.
type SeatView struct {
	Seat              int           `json:"seat"`
	Turn              int           `json:"turn"`
	Phase             domain.Phase  `json:"phase"`
	IsYourTurn        bool          `json:"is_your_turn"`
	ActionsRemaining  int           `json:"actions_remaining"`
	Hand              []domain.Card `json:"hand"`
	OpponentHandCount int           `json:"opponent_hand_count"`
	YourCredits       int           `json:"your_credits"`
	OpponentCredits   int           `json:"opponent_credits"`
	DeckRemaining     int           `json:"deck_remaining"`
	Log               []string      `json:"log"`
}

type StateUpdatedPayload struct {
	UserID string   `json:"user_id"`
	View   SeatView `json:"view"`
}

type GameEndedPayload struct {
	WinnerUserID string       `json:"winner_user_id"`
	Credits      []int        `json:"credits"` // by seat
	Endings      []EndingInfo `json:"endings"`
}

type EndingInfo struct {
	UserID    string        `json:"user_id"`
	Ending    domain.Ending `json:"ending"`
	Title     string        `json:"title"`
	Credits   int           `json:"credits"`
	Graduated bool          `json:"graduated"`
}
