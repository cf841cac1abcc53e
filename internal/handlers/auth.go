package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"mindwell-service/internal/auth"
	"mindwell-service/internal/repositories"
	"mindwell-service/internal/telemetry"
)

// AuthHandler manages registration, login and the profile endpoint.
type AuthHandler struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	audit    *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(userRepo repositories.UserRepository, tokens *auth.TokenManager, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, tokens: tokens, audit: audit}
}

// Register creates a new account and returns it with an access token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username    string  `json:"username" binding:"required"`
		Password    string  `json:"password" binding:"required"`
		DisplayName *string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	displayName := req.DisplayName
	if displayName == nil {
		displayName = &req.Username
	}

	user, err := h.userRepo.CreateUser(c.Request.Context(), req.Username, string(hash), displayName)
	if err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "user registered", requestIDFromContext(c), &user.ID)
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login verifies credentials and returns the user with an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.audit.Emit(c.Request.Context(), "WARN", "failed login attempt", requestIDFromContext(c), &user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "user logged in", requestIDFromContext(c), &user.ID)
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	c.JSON(http.StatusOK, user)
}
