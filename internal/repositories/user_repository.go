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

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// UserRepository abstracts user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string, displayName *string) (models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	UpdateStreak(ctx context.Context, userID string, streak int) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, password, display_name, streak, total_check_ins, created_at`

// CreateUser stores a new account with a pre-hashed password.
func (r *UserRepo) CreateUser(ctx context.Context, username, passwordHash string, displayName *string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`INSERT INTO users (id, username, password, display_name) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		uuid.NewString(), username, passwordHash, displayName)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserByUsername fetches a user by unique username.
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateStreak sets the streak counter and bumps the total check-in count.
func (r *UserRepo) UpdateStreak(ctx context.Context, userID string, streak int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET streak=$2, total_check_ins = total_check_ins + 1 WHERE id=$1`, userID, streak)
	return err
}
