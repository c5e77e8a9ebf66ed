// Package dialogue projects faction and alignment state into a bounded,
// structured context for the external text generator. It performs no
// text generation itself.
package dialogue

import (
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/event"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
)

// ErrUnknownEntity is returned when the character or faction identity
// does not exist. Malformed input is the only failure mode here.
var ErrUnknownEntity = errors.New("unknown entity")

// RecentEventLimit bounds the events included in a context, so the
// downstream generator receives a fixed-size summary rather than
// unbounded history.
const RecentEventLimit = 5

// EventSummary is one recent action in compact form.
type EventSummary struct {
	Action    event.ActionType `json:"action"`
	Targets   []string         `json:"targets"`
	Magnitude float64          `json:"magnitude"`
	Timestamp time.Time        `json:"timestamp"`
}

// Context is the bounded descriptor handed to the text generator.
type Context struct {
	Character      string              `json:"character"`
	Faction        string              `json:"faction"`
	FactionName    string              `json:"faction_name"`
	Disposition    faction.Disposition `json:"disposition"`
	AlignmentLabel alignment.Label     `json:"alignment_label"`
	AlignmentTrend string              `json:"alignment_trend"`
	RecentEvents   []EventSummary      `json:"recent_events,omitempty"` // most recent first
}

// Builder assembles dialogue contexts from current state. It is a pure
// projection: identical underlying state produces identical labels.
type Builder struct {
	registry *faction.Registry
	tracker  *alignment.Tracker
}

// NewBuilder creates a context builder over the given registry and tracker.
func NewBuilder(registry *faction.Registry, tracker *alignment.Tracker) *Builder {
	return &Builder{registry: registry, tracker: tracker}
}

// Build produces the dialogue context for a character facing a faction.
// recentEvents may be in any order; the newest RecentEventLimit entries
// are kept, most recent first.
func (b *Builder) Build(character, factionKey string, recentEvents []event.ActionEvent) (*Context, error) {
	f, err := b.registry.Get(factionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: faction %s", ErrUnknownEntity, factionKey)
	}
	rec, err := b.tracker.Get(character)
	if err != nil {
		return nil, fmt.Errorf("%w: character %s", ErrUnknownEntity, character)
	}

	ctx := &Context{
		Character:      character,
		Faction:        f.Key,
		FactionName:    f.Name,
		Disposition:    f.Disposition(),
		AlignmentLabel: rec.Label(),
		AlignmentTrend: rec.Trend().Direction,
	}

	sorted := append([]event.ActionEvent(nil), recentEvents...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Timestamp.After(sorted[j-1].Timestamp); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > RecentEventLimit {
		sorted = sorted[:RecentEventLimit]
	}
	for _, ev := range sorted {
		ctx.RecentEvents = append(ctx.RecentEvents, EventSummary{
			Action:    ev.Type,
			Targets:   ev.Targets,
			Magnitude: ev.ClampedMagnitude(),
			Timestamp: ev.Timestamp,
		})
	}

	return ctx, nil
}
