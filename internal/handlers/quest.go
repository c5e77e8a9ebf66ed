package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/holocron-engine/internal/services"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/quest"
)

// QuestRequest asks for a new quest offer.
type QuestRequest struct {
	Character string `json:"character"`
}

// QuestHandler serves quest generation and history.
type QuestHandler struct {
	generator *quest.Generator
	storage   services.Storage
	logger    *slog.Logger
}

func NewQuestHandler(generator *quest.Generator, storage services.Storage, logger *slog.Logger) *QuestHandler {
	return &QuestHandler{
		generator: generator,
		storage:   storage,
		logger:    logger,
	}
}

func (h *QuestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodPost:
		h.generate(w, r)
	case http.MethodGet:
		h.recent(w, r)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Use POST to generate or GET for history.")
	}
}

func (h *QuestHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req QuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid quest request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Character == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Character cannot be empty.")
		return
	}

	q, err := h.generator.Generate(r.Context(), req.Character, quest.TriggerManual)
	if err != nil {
		if errors.Is(err, faction.ErrNoFactionsRegistered) {
			writeError(w, h.logger, http.StatusConflict, "No factions registered; seed the galaxy first.")
			return
		}
		h.logger.Error("Failed to generate quest", "error", err, "character", req.Character)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to generate quest.")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, q)
}

func (h *QuestHandler) recent(w http.ResponseWriter, r *http.Request) {
	character := r.URL.Query().Get("character")
	if character == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Query parameter 'character' is required.")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, h.logger, http.StatusBadRequest, "Query parameter 'limit' must be a positive integer.")
			return
		}
		limit = n
	}

	quests, err := h.storage.RecentQuests(r.Context(), character, limit)
	if err != nil {
		h.logger.Error("Failed to load quest history", "error", err, "character", character)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load quest history.")
		return
	}
	if quests == nil {
		quests = []*quest.Quest{}
	}

	writeJSON(w, h.logger, http.StatusOK, quests)
}
