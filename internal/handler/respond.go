// Package handler holds the gin handlers of the portal HTTP API and pages.
package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studentportal/pkg/logger"
)

// SessionCookie carries the session token issued at login.
const SessionCookie = "portal_session"

// Error messages shared by more than one route.
const (
	MsgEndpointNotFound = "Endpoint not found"
	MsgInternal         = "Internal server error"
	MsgServerError      = "Server error occurred"
	MsgInvalidEmail     = "Please enter a valid email address"
)

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// sessionToken returns the bearer token, or the session cookie when no header is sent.
func sessionToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return token
}

// reqLogger returns the handler logger tagged with the request trace id.
func reqLogger(c *gin.Context, base *zap.Logger) *zap.Logger {
	return logger.WithTrace(c.Request.Context(), base)
}
