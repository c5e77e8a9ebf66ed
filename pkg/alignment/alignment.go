package alignment

import "time"

// Alignment scalar bounds on the Light-Dark spectrum. Positive is Light,
// negative is Dark.
const (
	Min = -100.0
	Max = 100.0
)

// Label bands. Tunable defaults, not contracts.
const (
	LightAbove = 35.0
	DarkBelow  = -35.0

	// StrongSkew marks the point where quest generation starts biasing
	// objective selection toward the character's moral lean.
	StrongSkew = 50.0
)

// Label is the coarse alignment band used for dialogue and quest tone.
type Label string

const (
	LabelLight Label = "Light"
	LabelGrey  Label = "Grey"
	LabelDark  Label = "Dark"
)

// Shift is one append-only history entry: when the alignment moved, by
// how much, and why. History is never rewritten.
type Shift struct {
	Timestamp time.Time `json:"timestamp"`
	Delta     float64   `json:"delta"`
	Cause     string    `json:"cause"`
}

// Record is a character's Force-alignment scalar plus its full history.
type Record struct {
	Character string  `json:"character"`
	Value     float64 `json:"value"`
	History   []Shift `json:"history,omitempty"`
}

// LabelOf derives the alignment band for a raw scalar.
func LabelOf(value float64) Label {
	switch {
	case value >= LightAbove:
		return LabelLight
	case value <= DarkBelow:
		return LabelDark
	default:
		return LabelGrey
	}
}

// Label returns the record's current alignment band.
func (r *Record) Label() Label {
	return LabelOf(r.Value)
}

// Trend summarizes the recent trajectory of a character's alignment:
// which direction it is moving and how volatile it has been.
type Trend struct {
	Direction  string  `json:"direction"` // "toward_light", "toward_dark", "steady"
	Momentum   float64 `json:"momentum"`  // net delta over the window
	Volatility float64 `json:"volatility"`
}

// trendWindow is how many recent shifts feed the trend calculation.
const trendWindow = 5

// Trend analyzes the last few shifts. An empty or single-entry history
// reads as steady.
func (r *Record) Trend() Trend {
	if len(r.History) < 2 {
		return Trend{Direction: "steady"}
	}

	recent := r.History
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	var net, totalAbs float64
	for _, s := range recent {
		net += s.Delta
		if s.Delta < 0 {
			totalAbs -= s.Delta
		} else {
			totalAbs += s.Delta
		}
	}

	dir := "steady"
	if net > 1 {
		dir = "toward_light"
	} else if net < -1 {
		dir = "toward_dark"
	}

	return Trend{
		Direction:  dir,
		Momentum:   net,
		Volatility: totalAbs / float64(len(recent)),
	}
}
