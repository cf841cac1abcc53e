package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindwell-service/internal/observability"
	"mindwell-service/internal/repositories"
	"mindwell-service/internal/telemetry"
)

// Mood levels at or below this threshold raise a crisis alert.
const crisisMoodThreshold = 2

const moodHistoryDefaultLimit = 10

// MoodHandler manages daily check-ins and their side effects (streaks,
// achievements, crisis alerts).
type MoodHandler struct {
	moodRepo        repositories.MoodRepository
	userRepo        repositories.UserRepository
	achievementRepo repositories.AchievementRepository
	crisisRepo      repositories.CrisisRepository
	audit           *telemetry.AuditEmitter
}

// NewMoodHandler builds a MoodHandler.
func NewMoodHandler(moodRepo repositories.MoodRepository, userRepo repositories.UserRepository, achievementRepo repositories.AchievementRepository, crisisRepo repositories.CrisisRepository, audit *telemetry.AuditEmitter) *MoodHandler {
	return &MoodHandler{
		moodRepo:        moodRepo,
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
		crisisRepo:      crisisRepo,
		audit:           audit,
	}
}

// CreateEntry records a check-in, bumps the streak, and fires the crisis
// and achievement side effects.
func (h *MoodHandler) CreateEntry(c *gin.Context) {
	var req struct {
		MoodLevel int     `json:"moodLevel" binding:"required,min=1,max=10"`
		MoodType  string  `json:"moodType" binding:"required"`
		Notes     *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mood data"})
		return
	}

	userID := c.GetString("userID")
	entry, err := h.moodRepo.CreateMoodEntry(c.Request.Context(), userID, req.MoodLevel, req.MoodType, req.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store mood entry"})
		return
	}
	observability.IncMoodCheckIn()

	user, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err == nil {
		newStreak := user.Streak + 1
		if err := h.userRepo.UpdateStreak(c.Request.Context(), userID, newStreak); err == nil {
			if user.Streak > 0 && newStreak%7 == 0 {
				_, _ = h.achievementRepo.CreateAchievement(c.Request.Context(), userID,
					"daily-tracker", "Daily Tracker",
					fmt.Sprintf("%d days in a row", newStreak), "fas fa-calendar-check")
			}
		}
	}

	if req.MoodLevel <= crisisMoodThreshold {
		alert, err := h.crisisRepo.CreateCrisisAlert(c.Request.Context(), userID, req.MoodLevel, req.Notes)
		if err == nil {
			observability.IncCrisisAlert()
			h.audit.EmitCrisis(c.Request.Context(), alert)
		}
	}

	c.JSON(http.StatusOK, entry)
}

// History returns the caller's check-ins, newest first.
func (h *MoodHandler) History(c *gin.Context) {
	userID := c.GetString("userID")

	entries, err := h.moodRepo.ListMoodEntries(c.Request.Context(), userID, moodHistoryDefaultLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch mood history"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Today returns the caller's check-in from the current day, or null.
func (h *MoodHandler) Today(c *gin.Context) {
	userID := c.GetString("userID")

	entry, err := h.moodRepo.GetTodayMoodEntry(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNoMoodEntryToday) {
			c.JSON(http.StatusOK, nil)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch today's mood"})
		return
	}

	c.JSON(http.StatusOK, entry)
}
