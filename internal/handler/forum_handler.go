package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studentportal/internal/service"
)

type ForumHandler struct {
	forum  *service.ForumService
	logger *zap.Logger
}

func NewForumHandler(forum *service.ForumService, logger *zap.Logger) *ForumHandler {
	return &ForumHandler{forum: forum, logger: logger}
}

// Page GET /raise-query
func (h *ForumHandler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, "raise_query.html", nil)
}

type raiseQueryRequest struct {
	SpecialMentions json.RawMessage `json:"special_mentions"`
	Brief           string          `json:"brief"`
}

// RaiseQuery POST /api/raise-query
func (h *ForumHandler) RaiseQuery(c *gin.Context) {
	l := reqLogger(c, h.logger)

	var req raiseQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn("RaiseQuery: invalid body", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Brief about your query is required")
		return
	}

	_, err := h.forum.RaiseQuery(c.Request.Context(), req.SpecialMentions, req.Brief)
	if errors.Is(err, service.ErrBriefRequired) {
		respondError(c, http.StatusBadRequest, "Brief about your query is required")
		return
	}
	if err != nil {
		l.Error("RaiseQuery: failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to submit query")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Query submitted successfully"})
}

type addAnswerRequest struct {
	QueryID queryID `json:"query_id"`
	Answer  string  `json:"answer"`
}

// AddAnswer POST /api/add-answer
func (h *ForumHandler) AddAnswer(c *gin.Context) {
	l := reqLogger(c, h.logger)

	var req addAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn("AddAnswer: invalid body", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Query ID and answer are required")
		return
	}

	a, err := h.forum.AddAnswer(c.Request.Context(), int(req.QueryID), req.Answer)
	switch {
	case errors.Is(err, service.ErrAnswerRequired):
		respondError(c, http.StatusBadRequest, "Query ID and answer are required")
		return
	case errors.Is(err, service.ErrQueryNotFound):
		l.Warn("AddAnswer: unknown query", zap.Int("query_id", int(req.QueryID)))
		respondError(c, http.StatusNotFound, "Query not found")
		return
	case err != nil:
		l.Error("AddAnswer: failed", zap.Int("query_id", int(req.QueryID)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to add answer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"answer":     a.Text,
		"created_at": a.CreatedAt.Format(service.TimestampLayout),
	})
}

// queryID accepts a JSON integer or a string holding one. Anything else decodes as 0.
type queryID int

func (q *queryID) UnmarshalJSON(b []byte) error {
	*q = 0

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) <= math.MaxInt32 {
			*q = queryID(x)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			*q = queryID(n)
		}
	}
	return nil
}
