package chat

import "fmt"

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // NPC
	ChatRoleSystem = "system"    // Scene direction
)

// ChatMessage is a single message in a dialogue exchange. This shape is
// defined by chat-completion APIs and is used to structure messages sent
// to the text generator.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// DialogueRequest is a request for generated NPC dialogue.
type DialogueRequest struct {
	Character string `json:"character"` // acting character identity
	Faction   string `json:"faction"`   // faction the NPC speaks for
	NPCName   string `json:"npc_name,omitempty"`
	Scene     string `json:"scene,omitempty"` // free-form scene prompt from the caller
	Message   string `json:"message"`         // what the player says
}

// DialogueResponse carries the generated dialogue text back to the caller.
type DialogueResponse struct {
	NPCName string `json:"npc_name,omitempty"`
	Message string `json:"message"`
}

func (dr *DialogueRequest) Validate() error {
	if dr.Character == "" {
		return fmt.Errorf("character cannot be empty")
	}
	if dr.Faction == "" {
		return fmt.Errorf("faction cannot be empty")
	}
	if dr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}
