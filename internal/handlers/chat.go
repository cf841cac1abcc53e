package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindwell-service/internal/models"
	"mindwell-service/internal/repositories"
)

// ChatHandler manages chat session endpoints. Message relay happens over
// the websocket; this layer covers session lifecycle and history.
type ChatHandler struct {
	sessionRepo repositories.SessionRepository
	messageRepo repositories.MessageRepository
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(sessionRepo repositories.SessionRepository, messageRepo repositories.MessageRepository) *ChatHandler {
	return &ChatHandler{sessionRepo: sessionRepo, messageRepo: messageRepo}
}

// StartSession returns the caller's active session, creating one if none
// exists.
func (h *ChatHandler) StartSession(c *gin.Context) {
	userID := c.GetString("userID")

	session, err := h.sessionRepo.StartOrResumeSession(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat session"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// EndSession closes the caller's session. Ending twice is a no-op.
func (h *ChatHandler) EndSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	userID := c.GetString("userID")

	session, err := h.sessionRepo.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "session not found"})
		return
	}
	if session.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
		return
	}

	if err := h.sessionRepo.EndSession(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end session"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMessages returns the session's messages oldest-first. Only the owner
// and the assigned counselor may read them.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	sessionID := c.Param("session_id")
	userID := c.GetString("userID")

	session, err := h.sessionRepo.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "session not found"})
		return
	}
	if !canReadSession(session, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a session participant"})
		return
	}

	msgs, err := h.messageRepo.ListSessionMessages(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, msgs)
}

func canReadSession(session models.ChatSession, userID string) bool {
	if session.UserID == userID {
		return true
	}
	return session.CounselorID != nil && *session.CounselorID == userID
}
