package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/holocron-engine/pkg/faction"
)

func testRegistry(t *testing.T) *faction.Registry {
	t.Helper()
	registry := faction.NewRegistry()
	factions := []*faction.Faction{
		{Key: "hutt_cartel", Name: "Hutt Cartel", Reputation: -60, Awareness: 80},
		{Key: "rebel_alliance", Name: "Rebel Alliance", Reputation: 30, Awareness: 20, Rival: "galactic_empire"},
		{Key: "galactic_empire", Name: "Galactic Empire", Reputation: -20, Awareness: 50, Rival: "rebel_alliance"},
	}
	for _, f := range factions {
		require.NoError(t, registry.Upsert(f))
	}
	return registry
}

func TestFactionHandler_List(t *testing.T) {
	handler := NewFactionHandler(testRegistry(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/factions", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response FactionListResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Len(t, response.Factions, 3)
	assert.Greater(t, response.Momentum, 0.0)

	// Snapshot order is sorted by key.
	assert.Equal(t, "galactic_empire", response.Factions[0].Key)
	assert.Equal(t, "hutt_cartel", response.Factions[1].Key)

	// Disposition is derived, not stored.
	assert.Equal(t, faction.StandingHostile, response.Factions[1].Disposition.Standing)
	assert.Equal(t, faction.PostureHunting, response.Factions[1].Disposition.Posture)
}

func TestFactionHandler_Get(t *testing.T) {
	handler := NewFactionHandler(testRegistry(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/factions/rebel_alliance", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var view FactionView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	assert.Equal(t, "Rebel Alliance", view.Name)
	assert.Equal(t, faction.StandingFriendly, view.Disposition.Standing)
}

func TestFactionHandler_GetUnknown(t *testing.T) {
	handler := NewFactionHandler(testRegistry(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/factions/black_sun", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFactionHandler_MethodNotAllowed(t *testing.T) {
	handler := NewFactionHandler(testRegistry(t), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/factions", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
