// Package worker consumes queued action events and applies them through
// the reputation engine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/holocron-engine/internal/services/queue"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/quest"
	"github.com/jwebster45206/holocron-engine/pkg/reputation"
)

const dequeueTimeout = 5 * time.Second

// Worker pulls action events off the queue and applies them. When an
// event pushes a faction across a reputation band, the worker generates
// a follow-up quest offer for the actor.
type Worker struct {
	id        string
	queue     *queue.ActionQueue
	engine    *reputation.Engine
	generator *quest.Generator
	log       *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new worker instance
func New(actionQueue *queue.ActionQueue, engine *reputation.Engine, generator *quest.Generator, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:        workerID,
		queue:     actionQueue,
		engine:    engine,
		generator: generator,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins processing events from the queue
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNext(); err != nil {
				w.log.Error("Error processing event", "error", err, "worker_id", w.id)
				// Continue processing even on error
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNext pulls the next action event from the queue and applies it.
// A timeout with an empty queue is normal and returns nil.
func (w *Worker) processNext() error {
	ev, err := w.queue.BlockingDequeue(w.ctx, dequeueTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue action event: %w", err)
	}
	if ev == nil {
		return nil
	}

	w.log.Info("Received action event",
		"worker_id", w.id,
		"event_id", ev.ID,
		"actor", ev.Actor,
		"action", ev.Type)

	start := time.Now()

	result, err := w.engine.Apply(w.ctx, *ev)
	if err != nil {
		// Unknown factions are caller error, not a worker fault. Log
		// and drop; re-queueing would loop forever.
		if errors.Is(err, faction.ErrUnknownFaction) {
			w.log.Warn("Dropping event with unknown faction",
				"event_id", ev.ID,
				"error", err)
			return nil
		}
		return fmt.Errorf("failed to apply action event %s: %w", ev.ID, err)
	}

	w.log.Info("Action event applied",
		"worker_id", w.id,
		"event_id", ev.ID,
		"factions", len(result.Changes),
		"threshold_crossed", result.ThresholdCrossed,
		"duration_ms", time.Since(start).Milliseconds())

	// A band crossing is the story moving: offer the actor new work.
	if result.ThresholdCrossed && w.generator != nil {
		q, err := w.generator.Generate(w.ctx, ev.Actor, quest.TriggerThreshold)
		if err != nil {
			// Quest generation is opportunistic; the event itself
			// already landed.
			w.log.Error("Failed to generate threshold quest",
				"error", err,
				"actor", ev.Actor)
			return nil
		}
		w.log.Info("Generated threshold quest",
			"quest_id", q.ID,
			"actor", ev.Actor,
			"sponsor", q.Sponsor,
			"objective", q.Objective)
	}

	return nil
}
