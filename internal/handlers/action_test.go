package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/reputation"
)

func testActionHandler(t *testing.T) (*ActionHandler, *faction.Registry) {
	t.Helper()
	registry := faction.NewRegistry()
	require.NoError(t, registry.Upsert(&faction.Faction{
		Key: "hutt_cartel", Name: "Hutt Cartel", Reputation: 0, Awareness: 10, Rival: "rebel_alliance",
	}))
	require.NoError(t, registry.Upsert(&faction.Faction{
		Key: "rebel_alliance", Name: "Rebel Alliance", Reputation: 0, Awareness: 40, Rival: "hutt_cartel",
	}))

	engine := reputation.NewEngine(registry, alignment.NewTracker(), testLogger())
	return NewActionHandler(engine, nil, testLogger()), registry
}

func postAction(t *testing.T, handler *ActionHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/actions", bytes.NewReader(data))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestActionHandler_Apply(t *testing.T) {
	handler, registry := testActionHandler(t)

	rr := postAction(t, handler, ActionRequest{
		Actor:     "han_solo",
		Targets:   []string{"hutt_cartel"},
		Action:    "attack",
		Magnitude: 1.0,
	})

	require.Equal(t, http.StatusOK, rr.Code)

	var result reputation.UpdateResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Len(t, result.Changes, 2)
	assert.Equal(t, alignment.LabelGrey, result.AlignmentLabel)

	hutt, err := registry.Get("hutt_cartel")
	require.NoError(t, err)
	assert.Equal(t, -15.0, hutt.Reputation)
	assert.Equal(t, 30.0, hutt.Awareness)

	rebels, err := registry.Get("rebel_alliance")
	require.NoError(t, err)
	assert.Equal(t, 7.5, rebels.Reputation)
}

func TestActionHandler_UnknownFaction(t *testing.T) {
	handler, _ := testActionHandler(t)

	rr := postAction(t, handler, ActionRequest{
		Actor:   "han_solo",
		Targets: []string{"black_sun"},
		Action:  "attack",
	})

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestActionHandler_InvalidAction(t *testing.T) {
	handler, _ := testActionHandler(t)

	tests := []struct {
		name string
		req  ActionRequest
	}{
		{"unknown action type", ActionRequest{Actor: "han_solo", Targets: []string{"hutt_cartel"}, Action: "bribe"}},
		{"missing actor", ActionRequest{Targets: []string{"hutt_cartel"}, Action: "attack"}},
		{"no targets", ActionRequest{Actor: "han_solo", Action: "attack"}},
		{"duplicate targets", ActionRequest{Actor: "han_solo", Targets: []string{"hutt_cartel", "hutt_cartel"}, Action: "attack"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postAction(t, handler, tt.req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

// The passive decay tick is worker-internal; a client submitting it
// directly must be refused before any awareness drops.
func TestActionHandler_RejectsCooldown(t *testing.T) {
	handler, registry := testActionHandler(t)

	rr := postAction(t, handler, ActionRequest{
		Actor:   "han_solo",
		Targets: []string{"hutt_cartel"},
		Action:  "cooldown",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	hutt, err := registry.Get("hutt_cartel")
	require.NoError(t, err)
	assert.Equal(t, 10.0, hutt.Awareness)
}

func TestActionHandler_InvalidJSON(t *testing.T) {
	handler, _ := testActionHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/actions", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestActionHandler_AsyncWithoutQueue(t *testing.T) {
	handler, _ := testActionHandler(t)

	rr := postAction(t, handler, ActionRequest{
		Actor:   "han_solo",
		Targets: []string{"hutt_cartel"},
		Action:  "aid",
		Async:   true,
	})

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestActionHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := testActionHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/actions", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
