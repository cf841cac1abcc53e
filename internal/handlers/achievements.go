package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindwell-service/internal/models"
	"mindwell-service/internal/repositories"
)

// AchievementHandler serves the unlocked-achievements endpoint.
type AchievementHandler struct {
	achievementRepo repositories.AchievementRepository
}

// NewAchievementHandler builds an AchievementHandler.
func NewAchievementHandler(achievementRepo repositories.AchievementRepository) *AchievementHandler {
	return &AchievementHandler{achievementRepo: achievementRepo}
}

// List returns the caller's achievements, newest first.
func (h *AchievementHandler) List(c *gin.Context) {
	userID := c.GetString("userID")

	achievements, err := h.achievementRepo.ListAchievements(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch achievements"})
		return
	}
	if achievements == nil {
		achievements = []models.Achievement{}
	}

	c.JSON(http.StatusOK, achievements)
}
