package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mindwell-service/internal/models"
)

var ErrNoMoodEntryToday = errors.New("no mood entry today")

// MoodRepository abstracts mood check-in persistence.
type MoodRepository interface {
	CreateMoodEntry(ctx context.Context, userID string, moodLevel int, moodType string, notes *string) (models.MoodEntry, error)
	ListMoodEntries(ctx context.Context, userID string, limit int) ([]models.MoodEntry, error)
	GetTodayMoodEntry(ctx context.Context, userID string) (models.MoodEntry, error)
}

// MoodRepo is a sqlx implementation of MoodRepository.
type MoodRepo struct {
	db *sqlx.DB
}

// NewMoodRepo constructs a MoodRepo.
func NewMoodRepo(db *sqlx.DB) *MoodRepo {
	return &MoodRepo{db: db}
}

const moodColumns = `id, user_id, mood_level, mood_type, notes, created_at`

// CreateMoodEntry stores a check-in.
func (r *MoodRepo) CreateMoodEntry(ctx context.Context, userID string, moodLevel int, moodType string, notes *string) (models.MoodEntry, error) {
	var entry models.MoodEntry
	err := r.db.GetContext(ctx, &entry,
		`INSERT INTO mood_entries (id, user_id, mood_level, mood_type, notes) VALUES ($1, $2, $3, $4, $5) RETURNING `+moodColumns,
		uuid.NewString(), userID, moodLevel, moodType, notes)
	return entry, err
}

// ListMoodEntries returns the user's check-ins, newest first.
func (r *MoodRepo) ListMoodEntries(ctx context.Context, userID string, limit int) ([]models.MoodEntry, error) {
	var entries []models.MoodEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT `+moodColumns+` FROM mood_entries WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	return entries, err
}

// GetTodayMoodEntry returns the most recent check-in from the current day.
func (r *MoodRepo) GetTodayMoodEntry(ctx context.Context, userID string) (models.MoodEntry, error) {
	var entry models.MoodEntry
	err := r.db.GetContext(ctx, &entry,
		`SELECT `+moodColumns+` FROM mood_entries WHERE user_id=$1 AND created_at >= date_trunc('day', NOW()) ORDER BY created_at DESC LIMIT 1`,
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MoodEntry{}, ErrNoMoodEntryToday
	}
	return entry, err
}
