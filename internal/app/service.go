package app

import (
	"errors"
	"fmt"

	"gradrace/internal/domain"
)

// Service contains the hosted-match use-cases operating on domain state. The
// domain transitions treat precondition violations as silent no-ops; the
// service layer turns them into explicit errors for the transport to report.
type Service struct {
	engine *domain.Engine
	seats  [SeatCount]string // user id per seat; seat 0 acts on odd turns
}

// NewService constructs a Service around an engine. Seats are bound at
// StartGame.
func NewService(engine *domain.Engine) *Service {
	return &Service{engine: engine}
}

var (
	ErrWrongPhase    = errors.New("operation not valid in this phase")
	ErrOutOfTurn     = errors.New("not this player's turn")
	ErrBadCardIndex  = errors.New("card index out of range")
	ErrUnknownPlayer = errors.New("player not found")
	ErrTooFewPlayers = errors.New("not enough players to start")
)

// Config exposes the rules the service plays under.
func (s *Service) Config() domain.Config {
	return s.engine.Config()
}

// StartGame binds the seats, deals a fresh match and emits the opening
// events. playerIDs is in seat order; both seats must be occupied.
func (s *Service) StartGame(playerIDs []string) (domain.GameState, []Event, error) {
	if len(playerIDs) < SeatCount || playerIDs[0] == "" || playerIDs[1] == "" {
		return domain.GameState{}, nil, ErrTooFewPlayers
	}
	copy(s.seats[:], playerIDs)

	state := s.engine.NewGame()

	events := make([]Event, 0, SeatCount+2)
	cfg := s.engine.Config()
	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			TotalTurns:      cfg.TotalTurns,
			GraduationGoal:  cfg.GraduationCredits,
			FirstTurnUserID: s.seats[0],
		},
	})
	for seat, userID := range s.seats {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: userID, Hand: s.handFor(seat, state)},
			Recipients: []string{userID},
		})
	}
	events = append(events, s.stateEvents(state)...)

	return state, events, nil
}

// Draw performs the acting seat's start-of-turn draw.
func (s *Service) Draw(state domain.GameState, actorUserID string) (domain.GameState, []Event, error) {
	if err := s.checkActor(state, actorUserID, domain.PhaseDraw); err != nil {
		return state, nil, err
	}
	next := s.engine.Draw(state)
	return next, s.stateEvents(next), nil
}

// UseCard spends one card from the acting seat's hand.
func (s *Service) UseCard(state domain.GameState, actorUserID string, cardIndex int) (domain.GameState, []Event, error) {
	if err := s.checkActor(state, actorUserID, domain.PhaseAction); err != nil {
		return state, nil, err
	}
	if cardIndex < 0 || cardIndex >= len(s.handFor(s.seatForTurn(state.Turn), state)) {
		return state, nil, ErrBadCardIndex
	}
	next := s.engine.UseCard(state, cardIndex)
	return next, s.afterAction(next), nil
}

// Pass forfeits one of the acting seat's remaining actions.
func (s *Service) Pass(state domain.GameState, actorUserID string) (domain.GameState, []Event, error) {
	if err := s.checkActor(state, actorUserID, domain.PhaseAction); err != nil {
		return state, nil, err
	}
	next := s.engine.Pass(state)
	return next, s.afterAction(next), nil
}

// ViewFor builds the filtered view one user may see.
func (s *Service) ViewFor(state domain.GameState, userID string) (SeatView, error) {
	seat, ok := s.seatOf(userID)
	if !ok {
		return SeatView{}, ErrUnknownPlayer
	}
	return s.view(seat, state), nil
}

// SeatUserID returns the user occupying a seat.
func (s *Service) SeatUserID(seat int) string {
	if seat < 0 || seat >= SeatCount {
		return ""
	}
	return s.seats[seat]
}

// Resolve produces the final outcome once the match has ended.
func (s *Service) Resolve(state domain.GameState) (domain.Result, error) {
	if state.Phase != domain.PhaseEnded {
		return domain.Result{}, ErrWrongPhase
	}
	return domain.Resolve(s.engine.Config(), state), nil
}

func (s *Service) checkActor(state domain.GameState, actorUserID string, want domain.Phase) error {
	seat, ok := s.seatOf(actorUserID)
	if !ok {
		return ErrUnknownPlayer
	}
	if state.Phase != want {
		return fmt.Errorf("%w: have %s, want %s", ErrWrongPhase, state.Phase, want)
	}
	if seat != s.seatForTurn(state.Turn) {
		return ErrOutOfTurn
	}
	return nil
}

func (s *Service) seatOf(userID string) (int, bool) {
	for seat, id := range s.seats {
		if id != "" && id == userID {
			return seat, true
		}
	}
	return 0, false
}

func (s *Service) seatForTurn(turn int) int {
	if domain.IsPlayerTurn(turn) {
		return 0
	}
	return 1
}

func (s *Service) handFor(seat int, state domain.GameState) []domain.Card {
	if seat == 0 {
		return state.PlayerHand
	}
	return state.CPUHand
}

func (s *Service) creditsFor(seat int, state domain.GameState) int {
	cfg := s.engine.Config()
	if seat == 0 {
		return domain.PlayerCredits(cfg, state)
	}
	return domain.CPUCredits(cfg, state)
}

func (s *Service) view(seat int, state domain.GameState) SeatView {
	other := 1 - seat
	return SeatView{
		Seat:              seat,
		Turn:              state.Turn,
		Phase:             state.Phase,
		IsYourTurn:        state.Phase != domain.PhaseEnded && seat == s.seatForTurn(state.Turn),
		ActionsRemaining:  state.ActionsRemaining,
		Hand:              s.handFor(seat, state),
		OpponentHandCount: len(s.handFor(other, state)),
		YourCredits:       s.creditsFor(seat, state),
		OpponentCredits:   s.creditsFor(other, state),
		DeckRemaining:     len(state.Deck),
		Log:               state.Log,
	}
}

func (s *Service) stateEvents(state domain.GameState) []Event {
	events := make([]Event, 0, SeatCount)
	for seat, userID := range s.seats {
		events = append(events, Event{
			Kind:       EventStateUpdated,
			Payload:    StateUpdatedPayload{UserID: userID, View: s.view(seat, state)},
			Recipients: []string{userID},
		})
	}
	return events
}

// afterAction emits the routine state updates plus the terminal event when
// the action ended the match.
func (s *Service) afterAction(state domain.GameState) []Event {
	events := s.stateEvents(state)
	if state.Phase != domain.PhaseEnded {
		return events
	}

	res := domain.Resolve(s.engine.Config(), state)
	winner := s.seats[1]
	if res.PlayerWon {
		winner = s.seats[0]
	}

	cfg := s.engine.Config()
	endings := make([]EndingInfo, 0, SeatCount)
	for seat, userID := range s.seats {
		credits := s.creditsFor(seat, state)
		ending, title := domain.ClassifyEnding(cfg, credits)
		endings = append(endings, EndingInfo{
			UserID:    userID,
			Ending:    ending,
			Title:     title,
			Credits:   credits,
			Graduated: credits >= cfg.GraduationCredits,
		})
	}

	events = append(events, Event{
		Kind: EventGameEnded,
		Payload: GameEndedPayload{
			WinnerUserID: winner,
			Credits:      []int{s.creditsFor(0, state), s.creditsFor(1, state)},
			Endings:      endings,
		},
	})
	return events
}
