package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studentportal/internal/completion"
	"studentportal/internal/service"
)

type DoubtHandler struct {
	solver *service.DoubtSolverService
	logger *zap.Logger
}

func NewDoubtHandler(solver *service.DoubtSolverService, logger *zap.Logger) *DoubtHandler {
	return &DoubtHandler{solver: solver, logger: logger}
}

type doubtRequest struct {
	Message string `json:"message"`
}

// Solve POST /api/doubt-solver
func (h *DoubtHandler) Solve(c *gin.Context) {
	l := reqLogger(c, h.logger)

	var req doubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn("DoubtSolver: invalid body", zap.Error(err))
		respondError(c, http.StatusBadRequest, "No doubt provided")
		return
	}

	answer, err := h.solver.Solve(c.Request.Context(), c.ClientIP(), req.Message)
	switch {
	case errors.Is(err, service.ErrDoubtRequired):
		respondError(c, http.StatusBadRequest, "No doubt provided")
		return
	case errors.Is(err, service.ErrRateLimited):
		l.Warn("DoubtSolver: rate limited", zap.String("client_ip", c.ClientIP()))
		respondError(c, http.StatusTooManyRequests, "Too many requests, please try again later")
		return
	case errors.Is(err, completion.ErrMissingCredential):
		l.Error("DoubtSolver: completion API key not configured")
		respondError(c, http.StatusInternalServerError, "OpenAI API key not set in environment")
		return
	case err != nil:
		l.Error("DoubtSolver: completion failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to get response from LLM")
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": answer})
}
