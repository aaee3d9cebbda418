package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"gradrace/internal/app"
	"gradrace/internal/app/rating"
	"gradrace/internal/bot"
	"gradrace/internal/config"
	"gradrace/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

const matchTickRate = 1 // ticks per second

// MatchLabel is the JSON label quick_match filters on.
type MatchLabel struct {
	Open  string `json:"open"` // "T" when a seat is free
	Game  string `json:"game"`
	Phase string `json:"phase"` // "lobby" or "playing"
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats     [app.SeatCount]string       `json:"seats"` // user IDs, empty string means seat is empty
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"` // UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`
	Game      *domain.GameState           `json:"-"` // nil while in lobby

	BotsEnabled          bool   `json:"bots_enabled"`
	BotMinDelay          int    `json:"bot_min_delay"`       // min seconds a bot waits before acting
	BotMaxDelay          int    `json:"bot_max_delay"`       // max seconds a bot waits before acting
	BotAutoFillDelay     int    `json:"bot_auto_fill_delay"` // seconds a solo human waits before a bot is seated
	BotWaitUntil         int64  `json:"bot_wait_until"`
	LastSinglePlayerTick int64  `json:"last_single_player_tick"`
	TurnDeadlineTick     int64  `json:"turn_deadline_tick"`
	TurnKey              string `json:"turn_key"` // identifies the turn/phase the deadline was armed for

	Bots    map[string]*bot.Agent `json:"-"`
	Ratings *rating.Service       `json:"-"`
	Rng     *rand.Rand            `json:"-"`
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	for _, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return false
		}
	}
	return true
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	state := &MatchState{
		Tick:      time.Now().Unix(),
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(domain.NewEngine(config.Rules(), rng)),
		Bots:      make(map[string]*bot.Agent),
		Ratings:   rating.NewService(NewNakamaRatingStoreAdapter(nk)),
		Rng:       rng,
	}

	// Environment overrides win over the config file.
	minMs, maxMs := config.BotActionDelayMs()
	state.BotMinDelay = (minMs + 999) / 1000
	state.BotMaxDelay = (maxMs + 999) / 1000
	state.BotAutoFillDelay = config.BotAutoFillDelaySeconds()
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["gradrace_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["gradrace_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["gradrace_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["gradrace_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}
	if state.BotMinDelay <= 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}
	if state.BotAutoFillDelay <= 0 {
		state.BotAutoFillDelay = 5
	}

	return state, matchTickRate, makeLabel(state)
}

func makeLabel(state *MatchState) string {
	open := "F"
	if state.GetOpenSeatsCount() > 0 {
		open = "T"
	}
	phase := "lobby"
	if state.Game != nil {
		phase = "playing"
	}
	b, _ := json.Marshal(MatchLabel{Open: open, Game: "gradrace", Phase: phase})
	return string(b)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat OR a bot to replace before the game starts.
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.Game == nil {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && matchState.Game == nil {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}

		mh.broadcastSeatEvent(matchState, dispatcher, OpPlayerJoined, p.GetUserId())
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
				break
			}
		}
		mh.broadcastSeatEvent(matchState, dispatcher, OpPlayerLeft, p.GetUserId())
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpDraw:
			mh.handleDraw(ctx, matchState, dispatcher, logger, msg)
		case OpUseCard:
			mh.handleUseCard(ctx, matchState, dispatcher, logger, msg)
		case OpPass:
			mh.handlePass(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}
	mh.enforceTurnDeadline(ctx, matchState, dispatcher, logger)

	return matchState
}

// currentActor returns the user id whose turn it is, or "" outside a game.
func currentActor(state *MatchState) string {
	if state.Game == nil || state.Game.Phase == domain.PhaseEnded {
		return ""
	}
	if domain.IsPlayerTurn(state.Game.Turn) {
		return state.Seats[0]
	}
	return state.Seats[1]
}

func turnKey(g *domain.GameState) string {
	return strconv.Itoa(g.Turn) + "/" + string(g.Phase)
}

// enforceTurnDeadline passes for a stalled human so one absent player cannot
// freeze the match. Bots have their own pacing.
func (mh *matchHandler) enforceTurnDeadline(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	actor := currentActor(state)
	if actor == "" || isBotUserId(actor) {
		state.TurnKey = ""
		return
	}

	key := turnKey(state.Game)
	if state.TurnKey != key {
		state.TurnKey = key
		state.TurnDeadlineTick = state.Tick + int64(config.TurnDurationSeconds()*matchTickRate)
		return
	}
	if state.Tick < state.TurnDeadlineTick {
		return
	}

	logger.Info("enforceTurnDeadline: User %s timed out on turn %d, forcing pass.", actor, state.Game.Turn)
	if state.Game.Phase == domain.PhaseDraw {
		next, events, err := state.App.Draw(*state.Game, actor)
		if err != nil {
			logger.Error("enforceTurnDeadline: Forced draw failed: %v", err)
			return
		}
		mh.applyTransition(ctx, state, dispatcher, logger, next, events)
	}
	if state.Game != nil && state.Game.Phase == domain.PhaseAction {
		next, events, err := state.App.Pass(*state.Game, actor)
		if err != nil {
			logger.Error("enforceTurnDeadline: Forced pass failed: %v", err)
			return
		}
		mh.applyTransition(ctx, state, dispatcher, logger, next, events)
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill the lobby with a bot if one human has waited long enough.
	if state.Game == nil {
		humanCount := state.GetHumanPlayerCount()
		if humanCount == 1 && state.GetOpenSeatsCount() > 0 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				for i, seat := range state.Seats {
					if seat != "" {
						continue
					}
					identity := bot.GetBotIdentity(i)
					botID := identity.UserID
					state.Seats[i] = botID

					agent, err := bot.NewAgent(botID, state.Rng)
					if err != nil {
						logger.Error("processBots: Failed to create bot agent for %s: %v", botID, err)
						state.Seats[i] = ""
						continue
					}
					state.Bots[botID] = agent
					logger.Info("processBots: Added bot %s (%s) to seat %d", agent.Name, botID, i)
					mh.broadcastSeatEvent(state, dispatcher, OpPlayerJoined, botID)
				}
				mh.updateLabel(state, dispatcher, logger)
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Handle the bot's turn in-game, one action per tick window.
	actor := currentActor(state)
	if actor == "" || !isBotUserId(actor) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.Rng.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", actor, state.BotWaitUntil, state.Tick)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[actor]
	if !exists {
		var err error
		agent, err = bot.NewAgent(actor, state.Rng)
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[actor] = agent
	}

	if state.Game.Phase == domain.PhaseDraw {
		next, events, err := state.App.Draw(*state.Game, actor)
		if err != nil {
			logger.Error("processBots: Bot draw failed: %v", err)
			return
		}
		mh.applyTransition(ctx, state, dispatcher, logger, next, events)
		return
	}

	move, err := agent.Strategy.CalculateMove(state.App.Config(), *state.Game, state.Rng)
	if err != nil {
		logger.Error("processBots: Bot %s failed to calculate move: %v", actor, err)
		move.Pass = true
	}

	var next domain.GameState
	var events []app.Event
	if move.Pass || move.CardIndex < 0 || move.CardIndex >= len(state.Game.CPUHand) {
		next, events, err = state.App.Pass(*state.Game, actor)
	} else {
		next, events, err = state.App.UseCard(*state.Game, actor, move.CardIndex)
	}
	if err != nil {
		logger.Error("processBots: Bot %s action failed: %v", actor, err)
		return
	}
	mh.applyTransition(ctx, state, dispatcher, logger, next, events)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	if state.Game != nil {
		logger.Warn("StartGame: Game already in progress, ignoring request from %s", senderID)
		return
	}
	if state.GetOccupiedSeatCount() < app.SeatCount {
		logger.Warn("StartGame: Cannot start with %d players.", state.GetOccupiedSeatCount())
		return
	}

	game, events, err := state.App.StartGame(state.Seats[:])
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.applyTransition(ctx, state, dispatcher, logger, game, events)
	mh.updateLabel(state, dispatcher, logger)
	logger.Info("StartGame: Game started by %s.", senderID)
}

// UseCardRequest is the client payload for the use-card opcode.
type UseCardRequest struct {
	CardIndex int `json:"card_index"`
}

func (mh *matchHandler) handleDraw(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		logger.Warn("handleDraw: Game not started.")
		return
	}

	next, events, err := state.App.Draw(*state.Game, senderID)
	if err != nil {
		logger.Warn("handleDraw: User %s failed to draw: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	mh.applyTransition(ctx, state, dispatcher, logger, next, events)
}

func (mh *matchHandler) handleUseCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		logger.Warn("handleUseCard: Game not started.")
		return
	}

	var req UseCardRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleUseCard: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
		return
	}

	next, events, err := state.App.UseCard(*state.Game, senderID, req.CardIndex)
	if err != nil {
		logger.Warn("handleUseCard: User %s failed to use card %d: %v", senderID, req.CardIndex, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	mh.applyTransition(ctx, state, dispatcher, logger, next, events)
}

func (mh *matchHandler) handlePass(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		logger.Warn("handlePass: Game not started.")
		return
	}

	next, events, err := state.App.Pass(*state.Game, senderID)
	if err != nil {
		logger.Warn("handlePass: User %s failed to pass: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	mh.applyTransition(ctx, state, dispatcher, logger, next, events)
}

// applyTransition stores the new game state and dispatches its events.
func (mh *matchHandler) applyTransition(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, next domain.GameState, events []app.Event) {
	state.Game = &next
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64

	switch ev.Kind {
	case app.EventGameStarted:
		opCode = OpGameStarted
	case app.EventHandDealt:
		opCode = OpHandDealt
	case app.EventStateUpdated:
		opCode = OpStateUpdated
	case app.EventGameEnded:
		opCode = OpGameEnded
		mh.settleRatings(ctx, state, logger, ev)
		// Game over: back to lobby for a rematch.
		state.Game = nil
		mh.updateLabel(state, dispatcher, logger)
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they
		// are bots), we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settleRatings exchanges rating after a human-vs-human match. Bot matches
// are unrated.
func (mh *matchHandler) settleRatings(ctx context.Context, state *MatchState, logger runtime.Logger, ev app.Event) {
	payload, ok := ev.Payload.(app.GameEndedPayload)
	if !ok || state.Ratings == nil {
		return
	}
	for _, seat := range state.Seats {
		if seat == "" || isBotUserId(seat) {
			return
		}
	}

	loserID := state.Seats[0]
	if payload.WinnerUserID == loserID {
		loserID = state.Seats[1]
	}
	if _, _, err := state.Ratings.SettleMatch(ctx, payload.WinnerUserID, loserID); err != nil {
		logger.Error("settleRatings: Failed to settle match: %v", err)
	}
}

// SeatEventPayload announces seat membership changes.
type SeatEventPayload struct {
	UserID string   `json:"user_id"`
	Seats  []string `json:"seats"`
}

func (mh *matchHandler) broadcastSeatEvent(state *MatchState, dispatcher runtime.MatchDispatcher, opCode int64, userID string) {
	bytes, _ := json.Marshal(SeatEventPayload{UserID: userID, Seats: state.Seats[:]})
	dispatcher.BroadcastMessage(opCode, bytes, nil, nil, true)
}

// ErrorPayload is sent privately when a client request is rejected.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(ErrorPayload{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal error payload: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(makeLabel(state)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
