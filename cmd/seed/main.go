// Command seed loads the default faction roster into storage. Run it
// once against a fresh Redis before starting the API.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/jwebster45206/holocron-engine/internal/config"
	"github.com/jwebster45206/holocron-engine/internal/logger"
	"github.com/jwebster45206/holocron-engine/internal/services"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
)

func main() {
	force := flag.Bool("force", false, "overwrite existing faction records")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	slogger := logger.Setup(cfg)

	storage := services.NewRedisStorage(cfg.RedisURL, slogger)
	defer func() { _ = storage.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := storage.Ping(ctx); err != nil {
		slogger.Error("Failed to connect to storage", "error", err)
		return
	}

	existing, err := storage.LoadFactions(ctx)
	if err != nil {
		slogger.Error("Failed to check existing factions", "error", err)
		return
	}
	if len(existing) > 0 && !*force {
		slogger.Info("Factions already seeded, use -force to overwrite",
			"count", len(existing))
		return
	}

	for _, f := range faction.Defaults() {
		if err := storage.SaveFaction(ctx, f); err != nil {
			slogger.Error("Failed to save faction", "key", f.Key, "error", err)
			return
		}
		slogger.Info("Seeded faction",
			"key", f.Key,
			"name", f.Name,
			"reputation", f.Reputation,
			"awareness", f.Awareness)
	}

	slogger.Info("Seeding complete", "factions", len(faction.Defaults()))
}
