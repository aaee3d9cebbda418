package bot

// BotTuning holds the knobs for the standard strategy. Probabilities are in
// [0,1]; credit and turn values are absolute.
type BotTuning struct {
	// BaseActProbability is the chance of spending a card before any
	// situational adjustment.
	BaseActProbability float64
	// BehindLateBoost is added when trailing with few turns left.
	BehindLateBoost float64
	// AheadPastGoalCut is subtracted when already graduated and leading.
	AheadPastGoalCut float64
	// NearGoalBoost is added when within NearGoalBand below the threshold.
	NearGoalBoost float64
	NearGoalBand  int
	// LateTurnsLeft bounds what counts as "few turns remaining".
	LateTurnsLeft int
	// BigBonusMin is the self bonus from which a card counts as a big boost.
	BigBonusMin int
	// Clamps applied after all adjustments.
	MinActProbability float64
	MaxActProbability float64
}

// DefaultTuning matches the classic opponent's temperament.
var DefaultTuning = BotTuning{
	BaseActProbability: 0.65,
	BehindLateBoost:    0.20,
	AheadPastGoalCut:   0.30,
	NearGoalBoost:      0.15,
	NearGoalBand:       10,
	LateTurnsLeft:      6,
	BigBonusMin:        10,
	MinActProbability:  0.05,
	MaxActProbability:  0.95,
}

// TimidTuning hoards cards and rarely presses an advantage.
var TimidTuning = BotTuning{
	BaseActProbability: 0.45,
	BehindLateBoost:    0.10,
	AheadPastGoalCut:   0.35,
	NearGoalBoost:      0.10,
	NearGoalBand:       6,
	LateTurnsLeft:      4,
	BigBonusMin:        16,
	MinActProbability:  0.05,
	MaxActProbability:  0.80,
}

// AggressiveTuning spends early and chases the threshold hard.
var AggressiveTuning = BotTuning{
	BaseActProbability: 0.80,
	BehindLateBoost:    0.15,
	AheadPastGoalCut:   0.20,
	NearGoalBoost:      0.15,
	NearGoalBand:       14,
	LateTurnsLeft:      8,
	BigBonusMin:        8,
	MinActProbability:  0.10,
	MaxActProbability:  0.98,
}
