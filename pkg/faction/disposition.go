package faction

import "fmt"

// Standing buckets reputation into a small ordinal set used for dialogue
// tone and quest eligibility display.
type Standing string

const (
	StandingHostile  Standing = "hostile"
	StandingWary     Standing = "wary"
	StandingNeutral  Standing = "neutral"
	StandingFriendly Standing = "friendly"
	StandingAllied   Standing = "allied"
)

// Posture buckets awareness into how actively the faction is watching
// for the player.
type Posture string

const (
	PostureCalm    Posture = "calm"
	PostureAlert   Posture = "alert"
	PostureHunting Posture = "hunting"
)

// Disposition is the crossed (standing, posture) label pair. It is a pure
// function of current reputation and awareness.
type Disposition struct {
	Standing Standing `json:"standing"`
	Posture  Posture  `json:"posture"`
}

func (d Disposition) String() string {
	return fmt.Sprintf("%s/%s", d.Standing, d.Posture)
}

// Bucketing cut-offs. Tunable defaults, not contracts.
const (
	hostileBelow  = -50.0
	waryBelow     = -10.0
	neutralBelow  = 10.0
	friendlyBelow = 50.0

	calmBelow  = 30.0
	alertBelow = 70.0
)

// StandingOf derives the reputation label.
func StandingOf(reputation float64) Standing {
	switch {
	case reputation < hostileBelow:
		return StandingHostile
	case reputation < waryBelow:
		return StandingWary
	case reputation < neutralBelow:
		return StandingNeutral
	case reputation < friendlyBelow:
		return StandingFriendly
	default:
		return StandingAllied
	}
}

// PostureOf derives the awareness label.
func PostureOf(awareness float64) Posture {
	switch {
	case awareness < calmBelow:
		return PostureCalm
	case awareness < alertBelow:
		return PostureAlert
	default:
		return PostureHunting
	}
}

// Disposition returns the faction's current disposition labels.
func (f *Faction) Disposition() Disposition {
	return Disposition{
		Standing: StandingOf(f.Reputation),
		Posture:  PostureOf(f.Awareness),
	}
}

// ResponseLines describes a state change in player-facing terms.
// Used by the console and the faction endpoints.
func ResponseLines(old, updated *Faction) []string {
	var lines []string

	repChange := updated.Reputation - old.Reputation
	awrChange := updated.Awareness - old.Awareness

	if repChange > 10 {
		lines = append(lines, fmt.Sprintf("%s regards you more favorably", updated.Name))
	} else if repChange < -10 {
		lines = append(lines, fmt.Sprintf("%s is displeased with your actions", updated.Name))
	}

	if awrChange > 15 {
		lines = append(lines, fmt.Sprintf("%s is now actively tracking you", updated.Name))
	} else if awrChange > 5 {
		lines = append(lines, fmt.Sprintf("%s has taken notice of your activities", updated.Name))
	}

	if updated.Disposition().Posture == PostureHunting && PostureOf(old.Awareness) != PostureHunting {
		lines = append(lines, fmt.Sprintf("%s has issued a priority alert on your activities", updated.Name))
	}

	return lines
}
