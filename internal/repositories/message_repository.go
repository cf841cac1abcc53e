package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mindwell-service/internal/models"
)

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, sessionID string, senderID *string, senderType, message string) (models.ChatMessage, error)
	ListSessionMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, session_id, sender_id, sender_type, message, created_at`

// CreateMessage stores a message; created_at is assigned by the store.
func (r *MessageRepo) CreateMessage(ctx context.Context, sessionID string, senderID *string, senderType, message string) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := r.db.GetContext(ctx, &msg,
		`INSERT INTO chat_messages (id, session_id, sender_id, sender_type, message) VALUES ($1, $2, $3, $4, $5) RETURNING `+messageColumns,
		uuid.NewString(), sessionID, senderID, senderType, message)
	return msg, err
}

// ListSessionMessages returns the session's messages ordered oldest-first.
func (r *MessageRepo) ListSessionMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM chat_messages WHERE session_id=$1 ORDER BY created_at ASC`, sessionID)
	return msgs, err
}
