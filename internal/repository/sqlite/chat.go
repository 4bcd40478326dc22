package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/hike-planner/internal/model"
	"github.com/sakif/hike-planner/internal/repository"
)

var _ repository.ChatRepository = (*DB)(nil)

// CreateChatMessage appends one exchange. CreatedAt defaults to now when the
// caller left it zero.
func (db *DB) CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	msg.ID = xid.New().String()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.CreatedAt = msg.CreatedAt.UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, user_message, bot_reply, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID,
		ptrToNull(msg.UserID),
		msg.UserMessage,
		msg.BotReply,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating chat message: %w", err)
	}
	return nil
}

// ListChatMessages returns up to opts.Limit messages, newest first.
// The id tie-breaker keeps the order stable for messages stored within the
// same clock tick, since xids increase monotonically per process.
func (db *DB) ListChatMessages(ctx context.Context, userID string, opts repository.ListOptions) ([]model.ChatMessage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, user_id, user_message, bot_reply, created_at FROM chat_messages`
	args := make([]any, 0, 2)
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.ChatMessage, 0, limit)
	for rows.Next() {
		var m model.ChatMessage
		var uid sql.NullString
		if err := rows.Scan(&m.ID, &uid, &m.UserMessage, &m.BotReply, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning chat message row: %w", err)
		}
		m.UserID = nullToPtr(uid)
		m.CreatedAt = m.CreatedAt.UTC()
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating chat messages: %w", err)
	}

	return messages, nil
}
