// Package reputation applies player action events to faction and
// alignment state under a deterministic delta-then-clamp rule.
package reputation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/event"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
)

// DefaultBandWidth is the reputation band size whose crossing signals
// the quest generator.
const DefaultBandWidth = 25.0

// EventSink receives every applied action event, append-only.
type EventSink interface {
	Append(ctx context.Context, ev event.ActionEvent) error
}

// StateSink persists faction and alignment records after an update.
type StateSink interface {
	SaveFaction(ctx context.Context, f *faction.Faction) error
	SaveAlignment(ctx context.Context, rec *alignment.Record) error
}

// FactionChange reports one faction's values before and after an event.
type FactionChange struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	OldReputation float64  `json:"old_reputation"`
	NewReputation float64  `json:"new_reputation"`
	OldAwareness  float64  `json:"old_awareness"`
	NewAwareness  float64  `json:"new_awareness"`
	Propagated    bool     `json:"propagated,omitempty"` // change arrived via rival propagation
	Responses     []string `json:"responses,omitempty"`
}

// UpdateResult is the outcome of applying one action event.
type UpdateResult struct {
	Changes          []FactionChange `json:"changes"`
	Alignment        float64         `json:"alignment"`
	AlignmentLabel   alignment.Label `json:"alignment_label"`
	ThresholdCrossed bool            `json:"threshold_crossed"`
}

// Engine converts action events into faction and alignment updates.
// Registry and tracker are the in-memory ground truth; the sinks mirror
// updates durably and record the audit trail.
type Engine struct {
	registry  *faction.Registry
	tracker   *alignment.Tracker
	state     StateSink
	events    EventSink
	bandWidth float64
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSinks attaches durable persistence for state and the event log.
func WithSinks(state StateSink, events EventSink) Option {
	return func(e *Engine) {
		e.state = state
		e.events = events
	}
}

// WithBandWidth overrides the quest-trigger band size.
func WithBandWidth(w float64) Option {
	return func(e *Engine) {
		if w > 0 {
			e.bandWidth = w
		}
	}
}

// NewEngine creates a reputation engine over the given registry and tracker.
func NewEngine(registry *faction.Registry, tracker *alignment.Tracker, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		registry:  registry,
		tracker:   tracker,
		bandWidth: DefaultBandWidth,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs one action event through the simulation: primary deltas to
// every target faction, opposite-signed half-magnitude propagation to
// their rivals, and the actor's alignment shift. The whole step happens
// under the affected factions' locks, so propagation never interleaves
// with another event. Validation failures return before any mutation.
func (e *Engine) Apply(ctx context.Context, ev event.ActionEvent) (*UpdateResult, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	// Resolve targets and their rivals up front. Unknown targets fail
	// the whole event; nothing is partially applied.
	affected := make([]string, 0, len(ev.Targets)*2)
	rivals := make(map[string]string, len(ev.Targets))
	for _, key := range ev.Targets {
		f, err := e.registry.Get(key)
		if err != nil {
			return nil, err
		}
		affected = append(affected, key)
		// Passive decay is not a directed act; rivals do not react to it.
		if ev.Type != event.ActionCooldown && f.Rival != "" && e.registry.Exists(f.Rival) {
			rivals[key] = f.Rival
			affected = append(affected, f.Rival)
		}
	}

	effect := event.Table[ev.Type]
	mag := ev.ClampedMagnitude()

	before := make(map[string]faction.Faction, len(affected))
	after := make(map[string]faction.Faction, len(affected))
	propagated := make(map[string]bool, len(affected))

	err := e.registry.Update(affected, func(live map[string]*faction.Faction) error {
		for _, f := range live {
			before[f.Key] = *f
		}

		// Primary deltas first, then propagation, in the targets'
		// declared order. Both halves land before the locks release.
		for _, key := range ev.Targets {
			f := live[key]
			f.Reputation += effect.Reputation * mag
			f.Awareness += effect.Awareness * mag
		}
		for _, key := range ev.Targets {
			rivalKey, ok := rivals[key]
			if !ok {
				continue
			}
			rival := live[rivalKey]
			rival.Reputation += -effect.Reputation * mag * event.RivalFactor
			rival.Awareness += -effect.Awareness * mag * event.RivalFactor
			propagated[rivalKey] = true
		}

		for _, f := range live {
			f.Clamp()
			after[f.Key] = *f
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Alignment coupling for the acting character. Morally neutral
	// actions leave the history untouched, and the passive cooldown tick
	// carries no actor identity at all.
	var rec *alignment.Record
	if ev.Type != event.ActionCooldown {
		if effect.Alignment != 0 {
			rec, err = e.tracker.Apply(ev.Actor, effect.Alignment*mag, string(ev.Type))
		} else {
			e.tracker.Register(ev.Actor, 0)
			rec, err = e.tracker.Get(ev.Actor)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to apply alignment shift: %w", err)
		}
	}

	result := &UpdateResult{}
	if rec != nil {
		result.Alignment = rec.Value
		result.AlignmentLabel = rec.Label()
	}
	for _, key := range orderedKeys(affected) {
		old, updated := before[key], after[key]
		result.Changes = append(result.Changes, FactionChange{
			Key:           key,
			Name:          updated.Name,
			OldReputation: old.Reputation,
			NewReputation: updated.Reputation,
			OldAwareness:  old.Awareness,
			NewAwareness:  updated.Awareness,
			Propagated:    propagated[key] && !isTarget(ev.Targets, key),
			Responses:     faction.ResponseLines(&old, &updated),
		})
		if e.band(old.Reputation) != e.band(updated.Reputation) {
			result.ThresholdCrossed = true
		}
	}

	if err := e.persist(ctx, ev, after, rec); err != nil {
		return nil, err
	}

	e.logger.Debug("Applied action event",
		"event_id", ev.ID,
		"actor", ev.Actor,
		"action", ev.Type,
		"factions", len(result.Changes),
		"threshold_crossed", result.ThresholdCrossed)

	return result, nil
}

// persist mirrors the in-memory update into the durable sinks and appends
// the event to the audit log. In-memory state is already consistent; a
// sink failure surfaces to the caller.
func (e *Engine) persist(ctx context.Context, ev event.ActionEvent, after map[string]faction.Faction, rec *alignment.Record) error {
	if e.state != nil {
		for key := range after {
			f := after[key]
			if err := e.state.SaveFaction(ctx, &f); err != nil {
				return fmt.Errorf("failed to save faction %s: %w", key, err)
			}
		}
		if rec != nil {
			if err := e.state.SaveAlignment(ctx, rec); err != nil {
				return fmt.Errorf("failed to save alignment for %s: %w", rec.Character, err)
			}
		}
	}
	if e.events != nil {
		if err := e.events.Append(ctx, ev); err != nil {
			return fmt.Errorf("failed to append action event: %w", err)
		}
	}
	return nil
}

func (e *Engine) band(reputation float64) int {
	return int(math.Floor(reputation / e.bandWidth))
}

func isTarget(targets []string, key string) bool {
	for _, t := range targets {
		if t == key {
			return true
		}
	}
	return false
}

func orderedKeys(affected []string) []string {
	seen := make(map[string]bool, len(affected))
	out := make([]string, 0, len(affected))
	for _, k := range affected {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
