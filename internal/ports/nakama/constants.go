package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a hosted live match.
	RpcQuickMatch = "quick_match"

	// RPC ids for asynchronous online play over the shared game document.
	RpcFindLobby    = "find_lobby"
	RpcGetLobby     = "get_lobby"
	RpcCreateGame   = "create_game"
	RpcSubmitAction = "submit_action"
	RpcGetGame      = "get_game"

	// MatchNameGradRace is the authoritative match handler name registered with Nakama.
	MatchNameGradRace = "gradrace_match"
)

// Storage collections for online play.
const (
	CollectionGames   = "games"
	CollectionLobbies = "lobbies"
	CollectionRatings = "ratings"
)

// LeaderboardRating is the global ranking fed from rating settlements.
const LeaderboardRating = "rating"

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame int64 = 1
	OpDraw      int64 = 2
	OpUseCard   int64 = 3
	OpPass      int64 = 4

	// Server -> Client events
	OpPlayerJoined int64 = 101
	OpPlayerLeft   int64 = 102
	OpGameStarted  int64 = 103
	OpHandDealt    int64 = 104 // send privately
	OpStateUpdated int64 = 105 // send privately, per-seat view
	OpGameEnded    int64 = 106
	OpGameError    int64 = 107
)
