// Package assistant turns a hiker's question into a reply from a hosted LLM.
//
// The LLM is an opaque collaborator: we send role-tagged messages (a fixed
// system prompt, optional earlier turns, the new user message) and get one
// text reply back. Any failure is returned as apperror.ErrUpstream; there is
// no retry and no canned fallback answer.
package assistant

import "context"

// SystemPrompt is sent as the first message of every request.
const SystemPrompt = "You are a helpful hiking assistant. " +
	"You help users with trails, safety, equipment, and planning hikes."

// Roles accepted in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one earlier turn of the conversation.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// Assistant answers one message, optionally in the context of earlier turns.
type Assistant interface {
	Ask(ctx context.Context, message string, history []Message) (string, error)
}
