package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/hike-planner/internal/apperror"
	"github.com/sakif/hike-planner/internal/assistant"
	"github.com/sakif/hike-planner/internal/model"
	"github.com/sakif/hike-planner/internal/repository"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
	MaxChatMessageLen   = 4000
)

// ChatInput is one user turn. History carries earlier turns the client
// wants the assistant to see; it is not read from the store.
type ChatInput struct {
	UserID  *string             `json:"user_id"`
	Message string              `json:"message" validate:"required,max=4000"`
	History []assistant.Message `json:"history" validate:"omitempty,max=50,dive"`
}

type ChatService struct {
	repo      repository.ChatRepository
	assistant assistant.Assistant
	logger    *slog.Logger
}

func NewChatService(repo repository.ChatRepository, a assistant.Assistant, logger *slog.Logger) *ChatService {
	return &ChatService{
		repo:      repo,
		assistant: a,
		logger:    logger,
	}
}

// Chat asks the assistant and stores the exchange. Nothing is stored when
// the assistant fails; that error comes back as apperror.ErrUpstream.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (string, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := validateStruct(in); err != nil {
		return "", err
	}

	var userID *string
	if in.UserID != nil {
		if id := strings.TrimSpace(*in.UserID); id != "" {
			userID = &id
		}
	}

	reply, err := s.assistant.Ask(ctx, in.Message, in.History)
	if err != nil {
		s.logger.Warn("assistant request failed",
			slog.String("user_id", valueOrEmpty(userID)),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	msg := &model.ChatMessage{
		UserID:      userID,
		UserMessage: in.Message,
		BotReply:    reply,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateChatMessage(ctx, msg); err != nil {
		s.logger.Error("failed to store chat message",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("storing chat message: %w", err)
	}

	s.logger.Info("chat message stored",
		slog.String("id", msg.ID),
		slog.Int("reply_len", len(reply)),
	)
	return reply, nil
}

// History returns the most recent exchanges across all users, newest first.
func (s *ChatService) History(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	return s.list(ctx, "", limit)
}

// UserHistory is History restricted to one user's exchanges.
func (s *ChatService) UserHistory(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("user_id", "user_id is required")
	}
	return s.list(ctx, userID, limit)
}

func (s *ChatService) list(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	messages, err := s.repo.ListChatMessages(ctx, userID, repository.ListOptions{
		Limit: clampHistoryLimit(limit),
	})
	if err != nil {
		s.logger.Error("failed to list chat history",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing chat history: %w", err)
	}
	return messages, nil
}

func clampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
