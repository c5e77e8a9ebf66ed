package event

// Effect is the signed base deltas one action applies to the primary
// target faction and to the acting character's alignment.
type Effect struct {
	Reputation float64 // faction standing toward the player
	Awareness  float64 // faction alertness
	Alignment  float64 // actor's Light/Dark shift, positive is Light
}

// Table maps every action type to its base deltas. Keeping the rules in
// one lookup table makes the whole ruleset a single reviewable artifact.
var Table = map[ActionType]Effect{
	ActionAid:        {Reputation: 10, Awareness: -2, Alignment: 5},
	ActionBetray:     {Reputation: -20, Awareness: 10, Alignment: -10},
	ActionTrade:      {Reputation: 5, Awareness: 2, Alignment: 0},
	ActionAttack:     {Reputation: -15, Awareness: 20, Alignment: -8},
	ActionIntimidate: {Reputation: -8, Awareness: 12, Alignment: -4},
	ActionNegotiate:  {Reputation: 3, Awareness: 1, Alignment: 2},
	ActionIgnore:     {Reputation: 0, Awareness: -1, Alignment: 0},
	ActionCooldown:   {Reputation: 0, Awareness: -1, Alignment: 0},
}

// RivalFactor scales the opposite-signed delta a rival faction receives
// when its enemy is helped or harmed.
const RivalFactor = 0.5
