package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mindwell-service/internal/models"
)

// AchievementRepository abstracts achievement persistence.
type AchievementRepository interface {
	CreateAchievement(ctx context.Context, userID, achievementType, title, description, icon string) (models.Achievement, error)
	ListAchievements(ctx context.Context, userID string) ([]models.Achievement, error)
}

// AchievementRepo is a sqlx implementation of AchievementRepository.
type AchievementRepo struct {
	db *sqlx.DB
}

// NewAchievementRepo constructs an AchievementRepo.
func NewAchievementRepo(db *sqlx.DB) *AchievementRepo {
	return &AchievementRepo{db: db}
}

const achievementColumns = `id, user_id, type, title, description, icon, unlocked_at`

// CreateAchievement stores an unlocked achievement.
func (r *AchievementRepo) CreateAchievement(ctx context.Context, userID, achievementType, title, description, icon string) (models.Achievement, error) {
	var achievement models.Achievement
	err := r.db.GetContext(ctx, &achievement,
		`INSERT INTO achievements (id, user_id, type, title, description, icon) VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+achievementColumns,
		uuid.NewString(), userID, achievementType, title, description, icon)
	return achievement, err
}

// ListAchievements returns the user's achievements, newest first.
func (r *AchievementRepo) ListAchievements(ctx context.Context, userID string) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.SelectContext(ctx, &achievements,
		`SELECT `+achievementColumns+` FROM achievements WHERE user_id=$1 ORDER BY unlocked_at DESC`, userID)
	return achievements, err
}
