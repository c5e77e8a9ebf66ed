package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/holocron-engine/internal/config"
	"github.com/jwebster45206/holocron-engine/internal/eventlog"
	"github.com/jwebster45206/holocron-engine/internal/handlers"
	"github.com/jwebster45206/holocron-engine/internal/logger"
	"github.com/jwebster45206/holocron-engine/internal/middleware"
	"github.com/jwebster45206/holocron-engine/internal/services"
	"github.com/jwebster45206/holocron-engine/internal/services/queue"
	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/dialogue"
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

	log.Info("Starting Holocron Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"model_name", cfg.ModelName)

	storage := services.NewRedisStorage(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := storage.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	// Rebuild the in-memory simulation state from storage.
	registry := faction.NewRegistry()
	persisted, err := storage.LoadFactions(storageCtx)
	if err != nil {
		log.Error("Failed to load factions", "error", err)
		os.Exit(1)
	}
	if len(persisted) == 0 {
		log.Info("No persisted factions, seeding defaults")
		persisted = faction.Defaults()
		for _, f := range persisted {
			if err := storage.SaveFaction(storageCtx, f); err != nil {
				log.Error("Failed to persist seed faction", "key", f.Key, "error", err)
				os.Exit(1)
			}
		}
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

	builder := dialogue.NewBuilder(registry, tracker)

	if cfg.NIMAPIKey == "" {
		log.Error("NIM API key is required")
		os.Exit(1)
	}
	llmService := services.NewNemotronService(cfg.NIMAPIKey, cfg.NIMBaseURL, cfg.ModelName, log)

	initCtx, initCancel := context.WithTimeout(context.Background(), time.Minute)
	defer initCancel()
	if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(storage, log))

	factionHandler := handlers.NewFactionHandler(registry, log)
	mux.Handle("/v1/factions", factionHandler)
	mux.Handle("/v1/factions/", factionHandler)

	mux.Handle("/v1/actions", handlers.NewActionHandler(engine, actionQueue, log))
	mux.Handle("/v1/quests", handlers.NewQuestHandler(generator, storage, log))

	var eventSource handlers.EventSource
	if auditLog != nil {
		eventSource = auditLog
	}
	mux.Handle("/v1/dialogue", handlers.NewDialogueHandler(builder, eventSource, llmService, log))

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := storage.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
