package faction

import (
	"fmt"
	"time"
)

// Reputation and awareness bounds. Values are clamped to these after
// every update; clamping is silent and never an error.
const (
	ReputationMin = -100.0
	ReputationMax = 100.0
	AwarenessMin  = 0.0
	AwarenessMax  = 100.0
)

// Faction is a named in-world organization with standing toward the player.
// Reputation is the player-facing standing; awareness is how alert the
// faction is to the player, independent of reputation sign.
type Faction struct {
	Key        string    `json:"key"`  // stable identity, lowercase snake_case
	Name       string    `json:"name"` // display name
	Reputation float64   `json:"reputation"`
	Awareness  float64   `json:"awareness"`
	Tags       []string  `json:"tags,omitempty"`  // thematic descriptors for quest flavor
	Rival      string    `json:"rival,omitempty"` // key of a mutually hostile faction
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

// Clamp forces reputation and awareness back into their declared bounds.
func (f *Faction) Clamp() {
	f.Reputation = clamp(f.Reputation, ReputationMin, ReputationMax)
	f.Awareness = clamp(f.Awareness, AwarenessMin, AwarenessMax)
}

func (f *Faction) Validate() error {
	if f.Key == "" {
		return fmt.Errorf("faction key cannot be empty")
	}
	if f.Name == "" {
		return fmt.Errorf("faction name cannot be empty")
	}
	if f.Rival == f.Key {
		return fmt.Errorf("faction %q cannot be its own rival", f.Key)
	}
	return nil
}

// HasTag reports whether the faction carries the given thematic tag.
func (f *Faction) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Defaults returns the seed factions for a new campaign.
func Defaults() []*Faction {
	return []*Faction{
		{
			Key:   "galactic_empire",
			Name:  "Galactic Empire",
			Tags:  []string{"military", "authority", "intelligence"},
			Rival: "rebel_alliance",
		},
		{
			Key:   "rebel_alliance",
			Name:  "Rebel Alliance",
			Tags:  []string{"insurgent", "idealist", "sabotage"},
			Rival: "galactic_empire",
		},
		{
			Key:  "corporate_sector",
			Name: "Corporate Sector Authority",
			Tags: []string{"trade", "wealth", "security"},
		},
		{
			Key:       "hutt_cartel",
			Name:      "Hutt Cartel",
			Tags:      []string{"criminal", "smuggling", "wealth"},
			Awareness: 10,
		},
	}
}
