package reputation

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"testing"

	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/event"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func testWorld(t *testing.T) (*faction.Registry, *alignment.Tracker, *Engine) {
	t.Helper()
	registry := faction.NewRegistry()
	factions := []*faction.Faction{
		{Key: "hutt_cartel", Name: "Hutt Cartel", Reputation: 0, Awareness: 10, Rival: "rebel_alliance"},
		{Key: "rebel_alliance", Name: "Rebel Alliance", Reputation: 0, Awareness: 40, Rival: "hutt_cartel"},
		{Key: "corporate_sector", Name: "Corporate Sector Authority", Reputation: 20, Awareness: 5},
	}
	for _, f := range factions {
		if err := registry.Upsert(f); err != nil {
			t.Fatalf("Failed to seed registry: %v", err)
		}
	}
	tracker := alignment.NewTracker()
	engine := NewEngine(registry, tracker, testLogger())
	return registry, tracker, engine
}

// attack at magnitude 1.0: primary faction takes -15 reputation and
// +20 awareness; the rival receives the opposite-signed half deltas.
func TestEngine_AttackWithRivalPropagation(t *testing.T) {
	registry, _, engine := testWorld(t)

	result, err := engine.Apply(context.Background(), event.New("han_solo", event.ActionAttack, 1.0, "hutt_cartel"))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	hutt, _ := registry.Get("hutt_cartel")
	if hutt.Reputation != -15 {
		t.Errorf("Hutt reputation = %v, want -15", hutt.Reputation)
	}
	if hutt.Awareness != 30 {
		t.Errorf("Hutt awareness = %v, want 30", hutt.Awareness)
	}

	rebels, _ := registry.Get("rebel_alliance")
	if rebels.Reputation != 7.5 {
		t.Errorf("Rebel reputation = %v, want +7.5", rebels.Reputation)
	}
	if rebels.Awareness != 30 {
		t.Errorf("Rebel awareness = %v, want 30 (40 - 10)", rebels.Awareness)
	}

	if len(result.Changes) != 2 {
		t.Fatalf("Expected 2 faction changes, got %d", len(result.Changes))
	}
	for _, c := range result.Changes {
		if c.Key == "rebel_alliance" && !c.Propagated {
			t.Error("Rebel change should be marked as propagated")
		}
		if c.Key == "hutt_cartel" && c.Propagated {
			t.Error("Hutt change should not be marked as propagated")
		}
	}
}

func TestEngine_MagnitudeClamp(t *testing.T) {
	registry, _, engine := testWorld(t)

	// Magnitude 10 clamps to 2.0; a single event cannot dominate.
	_, err := engine.Apply(context.Background(), event.New("han_solo", event.ActionAttack, 10, "corporate_sector"))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	csa, _ := registry.Get("corporate_sector")
	if csa.Reputation != -10 { // 20 + (-15 * 2.0)
		t.Errorf("Reputation = %v, want -10", csa.Reputation)
	}
	if csa.Awareness != 45 { // 5 + (20 * 2.0)
		t.Errorf("Awareness = %v, want 45", csa.Awareness)
	}
}

// Repeating a target must not stack its delta; the event fails
// validation before anything mutates.
func TestEngine_RejectsDuplicateTargets(t *testing.T) {
	registry, _, engine := testWorld(t)

	before, _ := registry.Get("hutt_cartel")
	_, err := engine.Apply(context.Background(), event.New("han_solo", event.ActionAttack, 1.0, "hutt_cartel", "hutt_cartel"))
	if err == nil {
		t.Fatal("Expected a validation error for duplicated targets")
	}

	after, _ := registry.Get("hutt_cartel")
	if after.Reputation != before.Reputation || after.Awareness != before.Awareness {
		t.Error("Rejected event mutated faction state")
	}
}

func TestEngine_UnknownFactionNoMutation(t *testing.T) {
	registry, tracker, engine := testWorld(t)

	before, _ := registry.Get("hutt_cartel")
	_, err := engine.Apply(context.Background(), event.New("han_solo", event.ActionAttack, 1.0, "hutt_cartel", "black_sun"))
	if !errors.Is(err, faction.ErrUnknownFaction) {
		t.Fatalf("Expected ErrUnknownFaction, got %v", err)
	}

	after, _ := registry.Get("hutt_cartel")
	if after.Reputation != before.Reputation || after.Awareness != before.Awareness {
		t.Error("Failed event partially mutated faction state")
	}
	if tracker.Exists("han_solo") {
		t.Error("Failed event created an alignment record")
	}
}

// Applying the same event twice accumulates. The engine is not
// idempotent, and that is the intended semantics.
func TestEngine_NotIdempotent(t *testing.T) {
	registry, _, engine := testWorld(t)
	ev := event.New("han_solo", event.ActionAttack, 1.0, "corporate_sector")

	if _, err := engine.Apply(context.Background(), ev); err != nil {
		t.Fatalf("First apply failed: %v", err)
	}
	first, _ := registry.Get("corporate_sector")

	if _, err := engine.Apply(context.Background(), ev); err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	second, _ := registry.Get("corporate_sector")

	if second.Reputation == first.Reputation {
		t.Error("Second apply did not accumulate reputation")
	}
	if second.Reputation != 20-15-15 {
		t.Errorf("Reputation = %v, want -10", second.Reputation)
	}
}

func TestEngine_AlignmentCoupling(t *testing.T) {
	_, tracker, engine := testWorld(t)
	ctx := context.Background()

	if _, err := engine.Apply(ctx, event.New("han_solo", event.ActionBetray, 1.0, "hutt_cartel")); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	rec, _ := tracker.Get("han_solo")
	if rec.Value != -10 {
		t.Errorf("Alignment = %v, want -10 after betray", rec.Value)
	}

	if _, err := engine.Apply(ctx, event.New("han_solo", event.ActionAid, 1.0, "rebel_alliance")); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	rec, _ = tracker.Get("han_solo")
	if rec.Value != -5 {
		t.Errorf("Alignment = %v, want -5 after aid", rec.Value)
	}
	if len(rec.History) != 2 {
		t.Errorf("History length = %d, want 2", len(rec.History))
	}

	// Morally neutral actions leave no history entry.
	if _, err := engine.Apply(ctx, event.New("han_solo", event.ActionTrade, 1.0, "hutt_cartel")); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	rec, _ = tracker.Get("han_solo")
	if len(rec.History) != 2 {
		t.Errorf("Trade appended an alignment shift: history length = %d", len(rec.History))
	}
}

func TestEngine_ThresholdCrossing(t *testing.T) {
	tests := []struct {
		name    string
		initial float64
		action  event.ActionType
		want    bool
	}{
		{"crosses band upward", 24, event.ActionNegotiate, true},   // 24 -> 27
		{"stays inside band", 10, event.ActionNegotiate, false},    // 10 -> 13
		{"crosses band downward", 2, event.ActionIntimidate, true}, // 2 -> -6
		{"no reputation change", 10, event.ActionIgnore, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := faction.NewRegistry()
			_ = registry.Upsert(&faction.Faction{Key: "csa", Name: "CSA", Reputation: tt.initial})
			engine := NewEngine(registry, alignment.NewTracker(), testLogger())

			result, err := engine.Apply(context.Background(), event.New("han_solo", tt.action, 1.0, "csa"))
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if result.ThresholdCrossed != tt.want {
				t.Errorf("ThresholdCrossed = %v, want %v", result.ThresholdCrossed, tt.want)
			}
		})
	}
}

// For any sequence of events, every faction stays inside its declared
// bounds after every apply.
func TestEngine_ClampInvariant(t *testing.T) {
	registry, _, engine := testWorld(t)
	rng := rand.New(rand.NewSource(42))
	actions := []event.ActionType{
		event.ActionAid, event.ActionBetray, event.ActionTrade, event.ActionAttack,
		event.ActionIntimidate, event.ActionNegotiate, event.ActionIgnore,
	}
	keys := []string{"hutt_cartel", "rebel_alliance", "corporate_sector"}

	ctx := context.Background()
	for i := 0; i < 500; i++ {
		ev := event.New("han_solo", actions[rng.Intn(len(actions))], rng.Float64()*3, keys[rng.Intn(len(keys))])
		if _, err := engine.Apply(ctx, ev); err != nil {
			t.Fatalf("Apply failed on iteration %d: %v", i, err)
		}

		for _, f := range registry.Snapshot() {
			if f.Reputation < faction.ReputationMin || f.Reputation > faction.ReputationMax {
				t.Fatalf("Iteration %d: faction %q reputation out of bounds: %v", i, f.Key, f.Reputation)
			}
			if f.Awareness < faction.AwarenessMin || f.Awareness > faction.AwarenessMax {
				t.Fatalf("Iteration %d: faction %q awareness out of bounds: %v", i, f.Key, f.Awareness)
			}
		}
	}
}

// Rival propagation lands atomically with the primary delta: replaying
// the same event against identical fresh state always produces the same
// final pair, even under concurrent unrelated events.
func TestEngine_PropagationDeterministic(t *testing.T) {
	run := func() (float64, float64, float64, float64) {
		registry, _, engine := testWorld(t)
		ev := event.ActionEvent{
			Actor:     "han_solo",
			Targets:   []string{"hutt_cartel"},
			Type:      event.ActionAttack,
			Magnitude: 1.0,
		}
		ev.ID = event.New("han_solo", event.ActionAttack, 1.0, "hutt_cartel").ID
		if _, err := engine.Apply(context.Background(), ev); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		hutt, _ := registry.Get("hutt_cartel")
		rebels, _ := registry.Get("rebel_alliance")
		return hutt.Reputation, hutt.Awareness, rebels.Reputation, rebels.Awareness
	}

	hr1, ha1, rr1, ra1 := run()
	hr2, ha2, rr2, ra2 := run()
	if hr1 != hr2 || ha1 != ha2 || rr1 != rr2 || ra1 != ra2 {
		t.Errorf("Propagation not deterministic: (%v,%v,%v,%v) vs (%v,%v,%v,%v)",
			hr1, ha1, rr1, ra1, hr2, ha2, rr2, ra2)
	}
}

func TestEngine_ConcurrentApplySerializes(t *testing.T) {
	registry, _, engine := testWorld(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.Apply(ctx, event.New("han_solo", event.ActionNegotiate, 1.0, "corporate_sector"))
		}()
	}
	wg.Wait()

	// 20 + 20*3 = 80, no event lost under contention.
	csa, _ := registry.Get("corporate_sector")
	if csa.Reputation != 80 {
		t.Errorf("Reputation = %v, want 80 after 20 serialized negotiations", csa.Reputation)
	}
}

type captureSink struct {
	mu         sync.Mutex
	factions   []*faction.Faction
	alignments []*alignment.Record
	events     []event.ActionEvent
}

func (c *captureSink) SaveFaction(_ context.Context, f *faction.Faction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factions = append(c.factions, f)
	return nil
}

func (c *captureSink) SaveAlignment(_ context.Context, rec *alignment.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alignments = append(c.alignments, rec)
	return nil
}

func (c *captureSink) Append(_ context.Context, ev event.ActionEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func TestEngine_PersistsThroughSinks(t *testing.T) {
	registry := faction.NewRegistry()
	_ = registry.Upsert(&faction.Faction{Key: "hutt_cartel", Name: "Hutt Cartel", Rival: "rebel_alliance"})
	_ = registry.Upsert(&faction.Faction{Key: "rebel_alliance", Name: "Rebel Alliance"})

	sink := &captureSink{}
	engine := NewEngine(registry, alignment.NewTracker(), testLogger(), WithSinks(sink, sink))

	ev := event.New("han_solo", event.ActionAid, 1.0, "hutt_cartel")
	if _, err := engine.Apply(context.Background(), ev); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if len(sink.factions) != 2 {
		t.Errorf("Expected 2 faction saves (primary + rival), got %d", len(sink.factions))
	}
	if len(sink.alignments) != 1 {
		t.Errorf("Expected 1 alignment save, got %d", len(sink.alignments))
	}
	if len(sink.events) != 1 || sink.events[0].ID != ev.ID {
		t.Errorf("Expected the applied event in the log, got %+v", sink.events)
	}
}
