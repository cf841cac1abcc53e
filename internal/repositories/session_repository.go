package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"mindwell-service/internal/models"
)

var ErrSessionNotFound = errors.New("chat session not found")

// SessionRepository abstracts chat session persistence.
type SessionRepository interface {
	StartOrResumeSession(ctx context.Context, userID string) (models.ChatSession, error)
	GetSession(ctx context.Context, sessionID string) (models.ChatSession, error)
	EndSession(ctx context.Context, sessionID string) error
}

// SessionRepo is a sqlx implementation of SessionRepository.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs a SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

const sessionColumns = `id, user_id, counselor_id, is_active, created_at, ended_at`

// StartOrResumeSession returns the user's active session, creating one with
// no counselor assigned when none exists. The partial unique index on
// chat_sessions backs up the read-then-create against racing requests: a
// losing insert is retried as a lookup.
func (r *SessionRepo) StartOrResumeSession(ctx context.Context, userID string) (models.ChatSession, error) {
	session, err := r.getActiveSession(ctx, userID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.ChatSession{}, err
	}

	err = r.db.GetContext(ctx, &session,
		`INSERT INTO chat_sessions (id, user_id) VALUES ($1, $2) RETURNING `+sessionColumns,
		uuid.NewString(), userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return r.getActiveSessionChecked(ctx, userID)
		}
		return models.ChatSession{}, err
	}
	return session, nil
}

func (r *SessionRepo) getActiveSession(ctx context.Context, userID string) (models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.GetContext(ctx, &session,
		`SELECT `+sessionColumns+` FROM chat_sessions WHERE user_id=$1 AND is_active ORDER BY created_at DESC LIMIT 1`,
		userID)
	return session, err
}

func (r *SessionRepo) getActiveSessionChecked(ctx context.Context, userID string) (models.ChatSession, error) {
	session, err := r.getActiveSession(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatSession{}, ErrSessionNotFound
	}
	return session, err
}

// GetSession fetches a session by id.
func (r *SessionRepo) GetSession(ctx context.Context, sessionID string) (models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.GetContext(ctx, &session, `SELECT `+sessionColumns+` FROM chat_sessions WHERE id=$1`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatSession{}, ErrSessionNotFound
	}
	return session, err
}

// EndSession flips the activity flag and stamps ended_at. Ending an
// already-ended session is a no-op.
func (r *SessionRepo) EndSession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE chat_sessions SET is_active = FALSE, ended_at = NOW() WHERE id=$1 AND is_active`, sessionID)
	return err
}
