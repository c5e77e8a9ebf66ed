package services

import (
	"context"

	"github.com/jwebster45206/holocron-engine/pkg/chat"
)

// LLMService defines the interface for the external text generator. The
// simulation core never calls it; handlers invoke it after the core has
// produced a dialogue context.
type LLMService interface {
	// InitModel prepares the model on startup.
	InitModel(ctx context.Context, modelName string) error

	// Chat generates NPC dialogue from the assembled messages.
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.DialogueResponse, error)
}
