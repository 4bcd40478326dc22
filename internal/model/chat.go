package model

import "time"

// ChatMessage pairs one user message with the assistant reply it produced.
// UserID is nil for anonymous chats.
type ChatMessage struct {
	ID          string    `json:"id"`
	UserID      *string   `json:"user_id"`
	UserMessage string    `json:"user_message"`
	BotReply    string    `json:"bot_reply"`
	CreatedAt   time.Time `json:"created_at"`
}
