package handlers

import (
	"net/http"
	"time"

	"github.com/crestline-ir/internal/config"
	"github.com/crestline-ir/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users    *services.UserService
	sessions *services.SessionService
	cfg      *config.Configuration
	logger   *zap.Logger
}

func NewAuthHandler(users *services.UserService, sessions *services.SessionService, cfg *config.Configuration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.With(zap.String("handler", "auth")),
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token := h.sessions.Create(user.ID, c.ClientIP(), c.Request.UserAgent())
	c.SetCookie("session_token", token, int(h.cfg.Security.SessionTimeout.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"user_id":      user.ID,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"role":         user.Role,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie("session_token"); err == nil {
		h.sessions.Destroy(token)
	}
	c.SetCookie("session_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

type esignCallback struct {
	UserID   uint      `json:"user_id" binding:"required"`
	SignedAt time.Time `json:"signed_at"`
}

// EsignWebhook is the callback from the e-signature provider: the sole writer
// of signed=true. A shared token guards it instead of a session.
func (h *AuthHandler) EsignWebhook(c *gin.Context) {
	if h.cfg.Security.EsignWebhookToken == "" ||
		c.GetHeader("X-Webhook-Token") != h.cfg.Security.EsignWebhookToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
		return
	}

	var req esignCallback
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	signedAt := req.SignedAt
	if signedAt.IsZero() {
		signedAt = time.Now().UTC()
	}

	if err := h.users.MarkNdaSigned(c.Request.Context(), req.UserID, signedAt); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
