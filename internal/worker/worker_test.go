package worker

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/jwebster45206/holocron-engine/internal/services"
	"github.com/jwebster45206/holocron-engine/internal/services/queue"
	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/event"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/quest"
	"github.com/jwebster45206/holocron-engine/pkg/reputation"
)

type fixture struct {
	worker   *Worker
	queue    *queue.ActionQueue
	registry *faction.Registry
	storage  *services.MockStorage
}

func testWorker(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	mr := miniredis.RunT(t)
	client, err := queue.NewClient(mr.Addr(), logger)
	if err != nil {
		t.Fatalf("Failed to create queue client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	actionQueue := queue.NewActionQueue(client)

	registry := faction.NewRegistry()
	factions := []*faction.Faction{
		{Key: "hutt_cartel", Name: "Hutt Cartel", Reputation: 20, Awareness: 10},
		{Key: "rebel_alliance", Name: "Rebel Alliance", Reputation: 30, Awareness: 20},
	}
	for _, f := range factions {
		if err := registry.Upsert(f); err != nil {
			t.Fatalf("Failed to seed registry: %v", err)
		}
	}

	tracker := alignment.NewTracker()
	storage := services.NewMockStorage()
	engine := reputation.NewEngine(registry, tracker, logger)
	generator := quest.NewGenerator(registry, tracker, logger,
		quest.WithSeed(1), quest.WithStore(storage))

	w := New(actionQueue, engine, generator, logger, "test-worker")
	t.Cleanup(w.Stop)

	return &fixture{worker: w, queue: actionQueue, registry: registry, storage: storage}
}

func TestWorker_AppliesQueuedEvent(t *testing.T) {
	f := testWorker(t)
	ctx := context.Background()

	// negotiate at 20 stays inside the 0-25 band: no quest expected.
	if err := f.queue.Enqueue(ctx, event.New("han_solo", event.ActionNegotiate, 1.0, "hutt_cartel")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := f.worker.processNext(); err != nil {
		t.Fatalf("processNext failed: %v", err)
	}

	hutt, err := f.registry.Get("hutt_cartel")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hutt.Reputation != 23 {
		t.Errorf("Reputation = %v, want 23 after negotiate", hutt.Reputation)
	}

	quests, _ := f.storage.RecentQuests(ctx, "han_solo", 5)
	if len(quests) != 0 {
		t.Errorf("Got %d quests without a band crossing, want 0", len(quests))
	}
}

func TestWorker_GeneratesQuestOnThresholdCrossing(t *testing.T) {
	f := testWorker(t)
	ctx := context.Background()

	// 20 + 10 = 30 crosses the 25 band boundary.
	if err := f.queue.Enqueue(ctx, event.New("han_solo", event.ActionAid, 1.0, "hutt_cartel")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := f.worker.processNext(); err != nil {
		t.Fatalf("processNext failed: %v", err)
	}

	quests, err := f.storage.RecentQuests(ctx, "han_solo", 5)
	if err != nil {
		t.Fatalf("RecentQuests failed: %v", err)
	}
	if len(quests) != 1 {
		t.Fatalf("Got %d quests, want 1 after band crossing", len(quests))
	}
	if quests[0].Character != "han_solo" {
		t.Errorf("Quest character = %s, want han_solo", quests[0].Character)
	}
}

func TestWorker_DropsUnknownFactionEvent(t *testing.T) {
	f := testWorker(t)
	ctx := context.Background()

	if err := f.queue.Enqueue(ctx, event.New("han_solo", event.ActionAttack, 1.0, "black_sun")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	// The bad event is logged and dropped, not returned as an error.
	if err := f.worker.processNext(); err != nil {
		t.Fatalf("processNext should drop unknown-faction events, got: %v", err)
	}

	depth, err := f.queue.Depth(ctx)
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	if depth != 0 {
		t.Errorf("Queue depth = %d, want 0 after drop", depth)
	}
}
