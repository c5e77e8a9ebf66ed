package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/holocron-engine/internal/services"
	"github.com/jwebster45206/holocron-engine/pkg/chat"
	"github.com/jwebster45206/holocron-engine/pkg/dialogue"
	"github.com/jwebster45206/holocron-engine/pkg/event"
)

// EventSource supplies recent actions for the dialogue context. The
// sqlite event log satisfies it.
type EventSource interface {
	Recent(ctx context.Context, actor string, limit int) ([]event.ActionEvent, error)
}

// DialogueHandler builds a dialogue context from current state and asks
// the external text generator for the NPC's line. The generator call is
// the last step; a failure there leaves no state to roll back.
type DialogueHandler struct {
	builder    *dialogue.Builder
	events     EventSource
	llmService services.LLMService
	logger     *slog.Logger
}

func NewDialogueHandler(builder *dialogue.Builder, events EventSource, llmService services.LLMService, logger *slog.Logger) *DialogueHandler {
	return &DialogueHandler{
		builder:    builder,
		events:     events,
		llmService: llmService,
		logger:     logger,
	}
}

func (h *DialogueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req chat.DialogueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid dialogue request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	var recent []event.ActionEvent
	if h.events != nil {
		var err error
		recent, err = h.events.Recent(r.Context(), req.Character, dialogue.RecentEventLimit)
		if err != nil {
			h.logger.Error("Failed to load recent events", "error", err, "character", req.Character)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load recent events.")
			return
		}
	}

	dc, err := h.builder.Build(req.Character, req.Faction, recent)
	if err != nil {
		if errors.Is(err, dialogue.ErrUnknownEntity) {
			writeError(w, h.logger, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("Failed to build dialogue context", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to build dialogue context.")
		return
	}

	messages := dialogue.BuildMessages(dc, &req)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	response, err := h.llmService.Chat(ctx, messages)
	if err != nil {
		h.logger.Error("Error generating dialogue", "error", err)
		writeError(w, h.logger, http.StatusBadGateway, "Failed to generate dialogue. Please try again.")
		return
	}
	response.NPCName = req.NPCName

	writeJSON(w, h.logger, http.StatusOK, response)
}
