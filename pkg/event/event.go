package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionType enumerates the player actions the simulation understands.
type ActionType string

const (
	ActionAid        ActionType = "aid"
	ActionBetray     ActionType = "betray"
	ActionTrade      ActionType = "trade"
	ActionAttack     ActionType = "attack"
	ActionIntimidate ActionType = "intimidate"
	ActionNegotiate  ActionType = "negotiate"
	ActionIgnore     ActionType = "ignore"

	// ActionCooldown is the passive tick: awareness decays while the
	// player lies low. It is the only path by which awareness drops
	// outside the delta table.
	ActionCooldown ActionType = "cooldown"
)

// Magnitude hint clamp. A single event can at most double, and at least
// halve, the base deltas.
const (
	MagnitudeMin = 0.5
	MagnitudeMax = 2.0
)

// ActionEvent is the atomic input to the reputation engine. Immutable
// once recorded; the event log is the audit trail.
type ActionEvent struct {
	ID        uuid.UUID  `json:"id"`
	Actor     string     `json:"actor"`   // acting character identity
	Targets   []string   `json:"targets"` // target faction keys
	Type      ActionType `json:"type"`
	Magnitude float64    `json:"magnitude"` // hint, clamped to [0.5, 2.0]
	Timestamp time.Time  `json:"timestamp"`
}

// New builds an ActionEvent with a fresh ID and timestamp. Magnitude 0
// is treated as 1.0 so callers can omit the hint.
func New(actor string, actionType ActionType, magnitude float64, targets ...string) ActionEvent {
	if magnitude == 0 {
		magnitude = 1.0
	}
	return ActionEvent{
		ID:        uuid.New(),
		Actor:     actor,
		Targets:   targets,
		Type:      actionType,
		Magnitude: magnitude,
		Timestamp: time.Now().UTC(),
	}
}

func (e *ActionEvent) Validate() error {
	if e.Actor == "" {
		return fmt.Errorf("event actor cannot be empty")
	}
	if len(e.Targets) == 0 {
		return fmt.Errorf("event must target at least one faction")
	}
	// Repeated targets would stack the delta and sidestep the magnitude clamp.
	seen := make(map[string]bool, len(e.Targets))
	for _, target := range e.Targets {
		if seen[target] {
			return fmt.Errorf("duplicate target faction: %q", target)
		}
		seen[target] = true
	}
	if _, ok := Table[e.Type]; !ok {
		return fmt.Errorf("unknown action type: %q", e.Type)
	}
	return nil
}

// ClampedMagnitude returns the magnitude hint forced into bounds, so a
// single event can never dominate the simulation.
func (e *ActionEvent) ClampedMagnitude() float64 {
	m := e.Magnitude
	if m < MagnitudeMin {
		return MagnitudeMin
	}
	if m > MagnitudeMax {
		return MagnitudeMax
	}
	return m
}
