package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/hike-planner/internal/apperror"
	"github.com/sakif/hike-planner/internal/model"
	"github.com/sakif/hike-planner/internal/service"
)

// ChatHandler serves the assistant and its stored history under /api/chat.
type ChatHandler struct {
	chat   *service.ChatService
	logger *slog.Logger
}

func NewChatHandler(chat *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type HistoryResponse struct {
	Messages []model.ChatMessage `json:"messages"`
}

// HandleChat forwards one message to the assistant.
// An assistant failure answers 502 and nothing is stored.
//
// HTTP: POST /api/chat
// REQUEST BODY: {"message": "...", "user_id": "u1", "history": [{"role":"user","content":"..."}]}
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var in service.ChatInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	reply, err := h.chat.Chat(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// HandleHistory returns recent exchanges, newest first.
//
// HTTP: GET /api/chat/history?limit=20&user_id=u1
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperror.ValidationFailed("limit", "limit must be an integer"))
			return
		}
		limit = n
	}

	var (
		messages []model.ChatMessage
		err      error
	)
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		messages, err = h.chat.UserHistory(r.Context(), userID, limit)
	} else {
		messages, err = h.chat.History(r.Context(), limit)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Messages: messages})
}
