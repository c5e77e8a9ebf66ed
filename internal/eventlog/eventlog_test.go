package eventlog

import (
	"context"
	"testing"
	"time"

	"github.com/jwebster45206/holocron-engine/pkg/event"
)

func testLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open event log: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLog_AppendAndRecent(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()

	events := []event.ActionEvent{
		event.New("han_solo", event.ActionAttack, 1.0, "hutt_cartel"),
		event.New("han_solo", event.ActionAid, 0.5, "rebel_alliance"),
		event.New("leia", event.ActionNegotiate, 1.0, "corporate_sector"),
	}
	for _, ev := range events {
		if err := l.Append(ctx, ev); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		// Distinct logged_at values so recency ordering is deterministic.
		time.Sleep(2 * time.Millisecond)
	}

	recent, err := l.Recent(ctx, "han_solo", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Got %d events for han_solo, want 2", len(recent))
	}

	// Newest first.
	if recent[0].Type != event.ActionAid {
		t.Errorf("First event = %s, want aid", recent[0].Type)
	}
	if recent[1].Type != event.ActionAttack {
		t.Errorf("Second event = %s, want attack", recent[1].Type)
	}

	// Round trip preserves identity and targets.
	if recent[1].ID != events[0].ID {
		t.Errorf("Event ID lost in round trip")
	}
	if len(recent[1].Targets) != 1 || recent[1].Targets[0] != "hutt_cartel" {
		t.Errorf("Targets = %v, want [hutt_cartel]", recent[1].Targets)
	}
}

func TestLog_RecentAllActors(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()

	if err := l.Append(ctx, event.New("han_solo", event.ActionTrade, 1.0, "hutt_cartel")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Append(ctx, event.New("leia", event.ActionAid, 1.0, "rebel_alliance")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	recent, err := l.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("Got %d events, want 2 across all actors", len(recent))
	}
}

func TestLog_RecentLimit(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if err := l.Append(ctx, event.New("han_solo", event.ActionIgnore, 1.0, "hutt_cartel")); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	recent, err := l.Recent(ctx, "han_solo", 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("Got %d events, want limit of 3", len(recent))
	}

	count, err := l.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 8 {
		t.Errorf("Count = %d, want 8", count)
	}
}

func TestLog_DuplicateIDRejected(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()

	ev := event.New("han_solo", event.ActionBetray, 1.0, "hutt_cartel")
	if err := l.Append(ctx, ev); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Append(ctx, ev); err == nil {
		t.Error("Expected duplicate event ID to be rejected")
	}
}
