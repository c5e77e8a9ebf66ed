package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jwebster45206/holocron-engine/pkg/event"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/reputation"
)

// cooldownActor is the synthetic actor on passive decay events. The
// engine attaches no alignment record to cooldown ticks, so the name
// only shows up in the audit log.
const cooldownActor = "galaxy"

// RunCooldown applies the passive awareness decay tick to every
// registered faction at the given interval, until ctx is cancelled.
// This is the only path by which awareness drops without player action.
func RunCooldown(ctx context.Context, engine *reputation.Engine, registry *faction.Registry, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("Cooldown tick started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("Cooldown tick stopped")
			return
		case <-ticker.C:
			n, err := applyCooldownTick(ctx, engine, registry)
			if err != nil {
				log.Error("Cooldown tick failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("Cooldown tick applied", "factions", n)
			}
		}
	}
}

func applyCooldownTick(ctx context.Context, engine *reputation.Engine, registry *faction.Registry) (int, error) {
	snapshot := registry.Snapshot()
	if len(snapshot) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(snapshot))
	for _, f := range snapshot {
		keys = append(keys, f.Key)
	}

	ev := event.New(cooldownActor, event.ActionCooldown, 1.0, keys...)
	if _, err := engine.Apply(ctx, ev); err != nil {
		return 0, err
	}
	return len(keys), nil
}
