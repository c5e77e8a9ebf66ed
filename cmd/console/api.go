package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/holocron-engine/pkg/chat"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/quest"
	"github.com/jwebster45206/holocron-engine/pkg/reputation"
)

// Wire shapes mirrored from the handlers package.

type FactionView struct {
	faction.Faction
	Disposition faction.Disposition `json:"disposition"`
}

type FactionListResponse struct {
	Factions []FactionView `json:"factions"`
	Momentum float64       `json:"momentum"`
}

type ActionRequest struct {
	Actor     string   `json:"actor"`
	Targets   []string `json:"targets"`
	Action    string   `json:"action"`
	Magnitude float64  `json:"magnitude,omitempty"`
}

type QuestRequest struct {
	Character string `json:"character"`
}

func listFactions(client *http.Client, baseURL string) (*FactionListResponse, error) {
	resp, err := client.Get(baseURL + "/v1/factions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var list FactionListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse faction list: %w", err)
	}
	return &list, nil
}

func submitAction(client *http.Client, baseURL string, req ActionRequest) (*reputation.UpdateResult, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/actions", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var result reputation.UpdateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse action result: %w", err)
	}
	return &result, nil
}

func requestQuest(client *http.Client, baseURL, character string) (*quest.Quest, error) {
	jsonData, err := json.Marshal(QuestRequest{Character: character})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quest request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/quests", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp.StatusCode, body)
	}

	var q quest.Quest
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, fmt.Errorf("failed to parse quest: %w", err)
	}
	return &q, nil
}

func requestDialogue(client *http.Client, baseURL string, req chat.DialogueRequest) (*chat.DialogueResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dialogue request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/dialogue", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var dr chat.DialogueResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("failed to parse dialogue response: %w", err)
	}
	return &dr, nil
}

func apiError(status int, body []byte) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s", errorResp.Error)
}
