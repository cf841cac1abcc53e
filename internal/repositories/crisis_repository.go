package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mindwell-service/internal/models"
)

// CrisisRepository abstracts crisis alert persistence.
type CrisisRepository interface {
	CreateCrisisAlert(ctx context.Context, userID string, moodLevel int, notes *string) (models.CrisisAlert, error)
}

// CrisisRepo is a sqlx implementation of CrisisRepository.
type CrisisRepo struct {
	db *sqlx.DB
}

// NewCrisisRepo constructs a CrisisRepo.
func NewCrisisRepo(db *sqlx.DB) *CrisisRepo {
	return &CrisisRepo{db: db}
}

// CreateCrisisAlert records an unresolved alert for a very low check-in.
func (r *CrisisRepo) CreateCrisisAlert(ctx context.Context, userID string, moodLevel int, notes *string) (models.CrisisAlert, error) {
	var alert models.CrisisAlert
	err := r.db.GetContext(ctx, &alert,
		`INSERT INTO crisis_alerts (id, user_id, mood_level, notes) VALUES ($1, $2, $3, $4) RETURNING id, user_id, mood_level, notes, resolved, created_at`,
		uuid.NewString(), userID, moodLevel, notes)
	return alert, err
}
