package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/holocron-engine/pkg/faction"
)

// FactionListResponse is the full galaxy view: every faction with its
// disposition, plus the aggregate momentum metric.
type FactionListResponse struct {
	Factions []FactionView `json:"factions"`
	Momentum float64       `json:"momentum"`
}

// FactionView is one faction with its derived disposition.
type FactionView struct {
	faction.Faction
	Disposition faction.Disposition `json:"disposition"`
}

// FactionHandler serves faction state reads. All writes go through the
// action endpoint.
type FactionHandler struct {
	registry *faction.Registry
	logger   *slog.Logger
}

func NewFactionHandler(registry *faction.Registry, logger *slog.Logger) *FactionHandler {
	return &FactionHandler{
		registry: registry,
		logger:   logger,
	}
}

func (h *FactionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/v1/factions")
	key = strings.Trim(key, "/")

	if key == "" {
		h.list(w)
		return
	}
	h.get(w, key)
}

func (h *FactionHandler) list(w http.ResponseWriter) {
	snapshot := h.registry.Snapshot()
	views := make([]FactionView, 0, len(snapshot))
	for _, f := range snapshot {
		views = append(views, FactionView{Faction: *f, Disposition: f.Disposition()})
	}

	writeJSON(w, h.logger, http.StatusOK, FactionListResponse{
		Factions: views,
		Momentum: h.registry.Momentum(),
	})
}

func (h *FactionHandler) get(w http.ResponseWriter, key string) {
	f, err := h.registry.Get(key)
	if err != nil {
		if errors.Is(err, faction.ErrUnknownFaction) {
			writeError(w, h.logger, http.StatusNotFound, "Faction not found: "+key)
			return
		}
		h.logger.Error("Error loading faction", "key", key, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load faction.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, FactionView{Faction: *f, Disposition: f.Disposition()})
}
