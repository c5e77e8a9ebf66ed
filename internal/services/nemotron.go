package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/holocron-engine/pkg/chat"
)

const (
	DefaultNIMTemperature = 0.7
	DefaultNIMMaxTokens   = 1024
)

// NemotronService implements LLMService against the NVIDIA NIM
// chat-completions API (OpenAI-compatible wire format).
type NemotronService struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

type nimChatRequest struct {
	Model       string             `json:"model"`
	Messages    []chat.ChatMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Stream      bool               `json:"stream"`
}

type nimChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      chat.ChatMessage `json:"message"`
		FinishReason string           `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewNemotronService(apiKey, baseURL, modelName string, logger *slog.Logger) *NemotronService {
	return &NemotronService{
		apiKey:    apiKey,
		baseURL:   baseURL,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// InitModel is a no-op: NIM models are hosted and need no warm-up call.
func (n *NemotronService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

func (n *NemotronService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.DialogueResponse, error) {
	nimReq := nimChatRequest{
		Model:       n.modelName,
		Messages:    messages,
		MaxTokens:   DefaultNIMMaxTokens,
		Temperature: DefaultNIMTemperature,
	}

	reqBody, err := json.Marshal(nimReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var nimResp nimChatResponse
	if err := json.Unmarshal(body, &nimResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if nimResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", nimResp.Error.Message)
	}
	if len(nimResp.Choices) == 0 {
		return nil, fmt.Errorf("API returned no choices")
	}

	content := nimResp.Choices[0].Message.Content
	if content == "" {
		content = "(no response)"
	}

	n.logger.Debug("NIM chat completion",
		"model", n.modelName,
		"prompt_tokens", nimResp.Usage.PromptTokens,
		"completion_tokens", nimResp.Usage.CompletionTokens)

	return &chat.DialogueResponse{Message: content}, nil
}
