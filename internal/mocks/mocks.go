package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mindwell-service/internal/models"
	"mindwell-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, username, passwordHash string, displayName *string) (models.User, error) {
	args := m.Called(ctx, username, passwordHash, displayName)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateStreak(ctx context.Context, userID string, streak int) error {
	args := m.Called(ctx, userID, streak)
	return args.Error(0)
}

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) StartOrResumeSession(ctx context.Context, userID string) (models.ChatSession, error) {
	args := m.Called(ctx, userID)
	var session models.ChatSession
	if val := args.Get(0); val != nil {
		session = val.(models.ChatSession)
	}
	return session, args.Error(1)
}

func (m *SessionRepositoryMock) GetSession(ctx context.Context, sessionID string) (models.ChatSession, error) {
	args := m.Called(ctx, sessionID)
	var session models.ChatSession
	if val := args.Get(0); val != nil {
		session = val.(models.ChatSession)
	}
	return session, args.Error(1)
}

func (m *SessionRepositoryMock) EndSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, sessionID string, senderID *string, senderType, message string) (models.ChatMessage, error) {
	args := m.Called(ctx, sessionID, senderID, senderType, message)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListSessionMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	args := m.Called(ctx, sessionID)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

type MoodRepositoryMock struct {
	mock.Mock
}

func (m *MoodRepositoryMock) CreateMoodEntry(ctx context.Context, userID string, moodLevel int, moodType string, notes *string) (models.MoodEntry, error) {
	args := m.Called(ctx, userID, moodLevel, moodType, notes)
	var entry models.MoodEntry
	if val := args.Get(0); val != nil {
		entry = val.(models.MoodEntry)
	}
	return entry, args.Error(1)
}

func (m *MoodRepositoryMock) ListMoodEntries(ctx context.Context, userID string, limit int) ([]models.MoodEntry, error) {
	args := m.Called(ctx, userID, limit)
	var entries []models.MoodEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.MoodEntry)
	}
	return entries, args.Error(1)
}

func (m *MoodRepositoryMock) GetTodayMoodEntry(ctx context.Context, userID string) (models.MoodEntry, error) {
	args := m.Called(ctx, userID)
	var entry models.MoodEntry
	if val := args.Get(0); val != nil {
		entry = val.(models.MoodEntry)
	}
	return entry, args.Error(1)
}

type AchievementRepositoryMock struct {
	mock.Mock
}

func (m *AchievementRepositoryMock) CreateAchievement(ctx context.Context, userID, achievementType, title, description, icon string) (models.Achievement, error) {
	args := m.Called(ctx, userID, achievementType, title, description, icon)
	var achievement models.Achievement
	if val := args.Get(0); val != nil {
		achievement = val.(models.Achievement)
	}
	return achievement, args.Error(1)
}

func (m *AchievementRepositoryMock) ListAchievements(ctx context.Context, userID string) ([]models.Achievement, error) {
	args := m.Called(ctx, userID)
	var achievements []models.Achievement
	if val := args.Get(0); val != nil {
		achievements = val.([]models.Achievement)
	}
	return achievements, args.Error(1)
}

type CrisisRepositoryMock struct {
	mock.Mock
}

func (m *CrisisRepositoryMock) CreateCrisisAlert(ctx context.Context, userID string, moodLevel int, notes *string) (models.CrisisAlert, error) {
	args := m.Called(ctx, userID, moodLevel, notes)
	var alert models.CrisisAlert
	if val := args.Get(0); val != nil {
		alert = val.(models.CrisisAlert)
	}
	return alert, args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.SessionRepository = (*SessionRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.MoodRepository = (*MoodRepositoryMock)(nil)
var _ repositories.AchievementRepository = (*AchievementRepositoryMock)(nil)
var _ repositories.CrisisRepository = (*CrisisRepositoryMock)(nil)
