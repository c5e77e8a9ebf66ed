package services

import (
	"context"

	"github.com/jwebster45206/holocron-engine/pkg/chat"
)

// MockLLMService is a test double for the text generator.
type MockLLMService struct {
	ChatFunc      func(ctx context.Context, messages []chat.ChatMessage) (*chat.DialogueResponse, error)
	InitModelFunc func(ctx context.Context, modelName string) error

	// ChatCalls records the messages from every Chat invocation.
	ChatCalls [][]chat.ChatMessage
}

var _ LLMService = (*MockLLMService)(nil)

func (m *MockLLMService) InitModel(ctx context.Context, modelName string) error {
	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

func (m *MockLLMService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.DialogueResponse, error) {
	m.ChatCalls = append(m.ChatCalls, messages)
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}
	return &chat.DialogueResponse{Message: "The NPC eyes you in silence."}, nil
}
