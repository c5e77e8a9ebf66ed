package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/holocron-engine/internal/config"
	"github.com/jwebster45206/holocron-engine/internal/eventlog"
	"github.com/jwebster45206/holocron-engine/internal/logger"
	"github.com/jwebster45206/holocron-engine/internal/services"
	"github.com/jwebster45206/holocron-engine/internal/services/queue"
	"github.com/jwebster45206/holocron-engine/internal/worker"
	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/quest"
	"github.com/jwebster45206/holocron-engine/pkg/reputation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Holocron Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL)

	storage := services.NewRedisStorage(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := storage.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	registry := faction.NewRegistry()
	persisted, err := storage.LoadFactions(storageCtx)
	if err != nil {
		log.Error("Failed to load factions", "error", err)
		os.Exit(1)
	}
	for _, f := range persisted {
		if err := registry.Upsert(f); err != nil {
			log.Error("Failed to restore faction", "key", f.Key, "error", err)
			os.Exit(1)
		}
	}

	tracker := alignment.NewTracker()
	records, err := storage.LoadAlignments(storageCtx)
	if err != nil {
		log.Error("Failed to load alignment records", "error", err)
		os.Exit(1)
	}
	for _, rec := range records {
		tracker.Restore(rec)
	}
	log.Info("Simulation state restored",
		"factions", registry.Len(),
		"characters", len(records))

	var auditLog *eventlog.Log
	if cfg.EventLogPath != "" {
		auditLog, err = eventlog.Open(cfg.EventLogPath)
		if err != nil {
			log.Error("Failed to open event log", "error", err, "path", cfg.EventLogPath)
			os.Exit(1)
		}
		defer func() { _ = auditLog.Close() }()
	}

	queueClient := queue.NewClientFromRedis(storage.GetClient(), log)
	actionQueue := queue.NewActionQueue(queueClient)

	engineOpts := []reputation.Option{reputation.WithBandWidth(cfg.BandWidth)}
	if auditLog != nil {
		engineOpts = append(engineOpts, reputation.WithSinks(storage, auditLog))
	}
	engine := reputation.NewEngine(registry, tracker, log, engineOpts...)

	generator := quest.NewGenerator(registry, tracker, log,
		quest.WithStore(storage),
		quest.WithTrustFloor(cfg.TrustFloor))

	w := worker.New(actionQueue, engine, generator, log, cfg.WorkerID)

	tickCtx, tickCancel := context.WithCancel(context.Background())
	defer tickCancel()
	if cfg.CooldownInterval > 0 {
		go worker.RunCooldown(tickCtx, engine, registry, cfg.CooldownInterval, log)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for action events...")

	<-quit
	log.Info("Worker shutdown signal received")

	tickCancel()
	w.Stop()

	// Give the worker time to finish the current event
	time.Sleep(2 * time.Second)

	log.Info("Worker exited")
}
