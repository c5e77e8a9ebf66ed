package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/holocron-engine/internal/services/queue"
	"github.com/jwebster45206/holocron-engine/pkg/event"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/reputation"
)

// ActionRequest is the wire form of a player action.
type ActionRequest struct {
	Actor     string   `json:"actor"`
	Targets   []string `json:"targets"`
	Action    string   `json:"action"`
	Magnitude float64  `json:"magnitude,omitempty"`

	// Async enqueues the event for the worker instead of applying it
	// in-request.
	Async bool `json:"async,omitempty"`
}

// ActionAccepted is returned for async submissions.
type ActionAccepted struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// ActionHandler applies player actions through the reputation engine,
// or queues them for the worker.
type ActionHandler struct {
	engine *reputation.Engine
	queue  *queue.ActionQueue
	logger *slog.Logger
}

func NewActionHandler(engine *reputation.Engine, actionQueue *queue.ActionQueue, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{
		engine: engine,
		queue:  actionQueue,
		logger: logger,
	}
}

func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid action request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return
	}

	// The passive decay tick belongs to the worker; clients cannot lower
	// faction awareness on demand.
	if event.ActionType(req.Action) == event.ActionCooldown {
		writeError(w, h.logger, http.StatusBadRequest, "Action \"cooldown\" cannot be submitted directly.")
		return
	}

	ev := event.New(req.Actor, event.ActionType(req.Action), req.Magnitude, req.Targets...)
	if err := ev.Validate(); err != nil {
		h.logger.Warn("Invalid action event", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if req.Async {
		if h.queue == nil {
			writeError(w, h.logger, http.StatusServiceUnavailable, "Async processing is not available.")
			return
		}
		if err := h.queue.Enqueue(r.Context(), ev); err != nil {
			h.logger.Error("Failed to enqueue action event", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to queue action.")
			return
		}
		writeJSON(w, h.logger, http.StatusAccepted, ActionAccepted{
			EventID: ev.ID.String(),
			Status:  "queued",
		})
		return
	}

	result, err := h.engine.Apply(r.Context(), ev)
	if err != nil {
		if errors.Is(err, faction.ErrUnknownFaction) {
			writeError(w, h.logger, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("Failed to apply action event", "error", err, "event_id", ev.ID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to apply action.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
