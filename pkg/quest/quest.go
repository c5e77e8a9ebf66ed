package quest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ObjectiveType enumerates the kinds of work a faction offers.
type ObjectiveType string

const (
	ObjectiveRetrieval    ObjectiveType = "retrieval"
	ObjectiveElimination  ObjectiveType = "elimination"
	ObjectiveNegotiation  ObjectiveType = "negotiation"
	ObjectiveSabotage     ObjectiveType = "sabotage"
	ObjectiveEscort       ObjectiveType = "escort"
	ObjectiveInfiltration ObjectiveType = "infiltration"
)

// ObjectiveTypes lists every objective in a stable order.
var ObjectiveTypes = []ObjectiveType{
	ObjectiveRetrieval,
	ObjectiveElimination,
	ObjectiveNegotiation,
	ObjectiveSabotage,
	ObjectiveEscort,
	ObjectiveInfiltration,
}

// RiskTier is an ordinal difficulty derived from the sponsor's awareness:
// the more alert the faction's enemies, the more dangerous the work.
type RiskTier int

const (
	RiskLow RiskTier = iota
	RiskModerate
	RiskHigh
	RiskCritical
)

func (r RiskTier) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskModerate:
		return "moderate"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return fmt.Sprintf("risk(%d)", int(r))
	}
}

// RiskFromAwareness buckets a sponsor's awareness into a risk tier.
func RiskFromAwareness(awareness float64) RiskTier {
	switch {
	case awareness < 25:
		return RiskLow
	case awareness < 50:
		return RiskModerate
	case awareness < 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// RewardProfile is the deltas to apply when the quest completes.
type RewardProfile struct {
	Credits    int      `json:"credits"`
	Reputation float64  `json:"reputation"` // with the sponsor
	Items      []string `json:"items,omitempty"`
}

// State is the quest lifecycle. The engine only ever creates quests in
// StateOffered; transition authority belongs to the session flow.
type State string

const (
	StateOffered   State = "offered"
	StateAccepted  State = "accepted"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateExpired   State = "expired"
)

var transitions = map[State][]State{
	StateOffered:  {StateAccepted, StateExpired},
	StateAccepted: {StateCompleted, StateFailed, StateExpired},
}

// Snapshot records the values that produced a quest, for auditability and
// to keep regeneration from producing near-duplicates.
type Snapshot struct {
	SponsorReputation  float64 `json:"sponsor_reputation"`
	SponsorAwareness   float64 `json:"sponsor_awareness"`
	OpponentReputation float64 `json:"opponent_reputation,omitempty"`
	OpponentAwareness  float64 `json:"opponent_awareness,omitempty"`
	Alignment          float64 `json:"alignment"`
}

// Quest is a generated objective tied to a sponsoring faction.
type Quest struct {
	ID            uuid.UUID     `json:"id"`
	Character     string        `json:"character"`
	Title         string        `json:"title"`
	Sponsor       string        `json:"sponsor"` // faction key
	Opponent      string        `json:"opponent,omitempty"`
	Objective     ObjectiveType `json:"objective"`
	Risk          RiskTier      `json:"risk"`
	Reward        RewardProfile `json:"reward"`
	State         State         `json:"state"`
	Degraded      bool          `json:"degraded,omitempty"` // no sponsor met the trust floor
	GeneratedFrom Snapshot      `json:"generated_from"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TransitionTo moves the quest to a new state, rejecting transitions the
// lifecycle does not allow.
func (q *Quest) TransitionTo(next State) error {
	for _, allowed := range transitions[q.State] {
		if allowed == next {
			q.State = next
			return nil
		}
	}
	return fmt.Errorf("invalid quest state transition: %s -> %s", q.State, next)
}
