package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studentportal/internal/service"
)

type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type authenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticate POST /api/authenticate
func (h *AuthHandler) Authenticate(c *gin.Context) {
	l := reqLogger(c, h.logger)

	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn("Authenticate: invalid body", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Email address and password are required")
		return
	}

	res, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrCredentialsRequired):
		respondError(c, http.StatusBadRequest, "Email address and password are required")
		return
	case errors.Is(err, service.ErrInvalidEmail):
		respondError(c, http.StatusBadRequest, MsgInvalidEmail)
		return
	case errors.Is(err, service.ErrPasswordMismatch):
		l.Warn("Authenticate: password mismatch")
		respondError(c, http.StatusUnauthorized, "Password does not match our records for this email")
		return
	case errors.Is(err, service.ErrAccountNotFound):
		l.Warn("Authenticate: unknown account")
		respondError(c, http.StatusUnauthorized, "No account found with these credentials")
		return
	case err != nil:
		l.Error("Authenticate: failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgServerError)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, res.Token, int(time.Until(res.ExpiresAt).Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Authentication successful",
		"user":    newUserView(res.User),
		"token":   res.Token,
	})
}
