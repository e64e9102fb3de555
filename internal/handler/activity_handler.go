package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studentportal/internal/activity"
)

const (
	defaultActivityLimit = 20
	topMentionsLimit     = 10
)

// ActivityReader is the read side of the forum activity feed.
type ActivityReader interface {
	Recent(ctx context.Context, n int) ([]activity.Entry, error)
	TopMentions(ctx context.Context, n int) ([]activity.MentionCount, error)
	AnswerCount(ctx context.Context, queryID int) (int64, error)
}

type ActivityHandler struct {
	feed   ActivityReader
	logger *zap.Logger
}

// NewActivityHandler serves the feed; a nil feed answers 503 since the projection needs Redis.
func NewActivityHandler(feed ActivityReader, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{feed: feed, logger: logger}
}

// Feed GET /api/forum/activity?limit=N
func (h *ActivityHandler) Feed(c *gin.Context) {
	if h.feed == nil {
		respondError(c, http.StatusServiceUnavailable, "Forum activity feed unavailable")
		return
	}
	l := reqLogger(c, h.logger)
	ctx := c.Request.Context()

	limit := defaultActivityLimit
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		limit = n
	}

	recent, err := h.feed.Recent(ctx, limit)
	if err != nil {
		l.Error("ActivityFeed: failed to read entries", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgServerError)
		return
	}
	top, err := h.feed.TopMentions(ctx, topMentionsLimit)
	if err != nil {
		l.Error("ActivityFeed: failed to read mentions", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recent": recent, "top_mentions": top})
}

// Answers GET /api/forum/activity/queries/:id
func (h *ActivityHandler) Answers(c *gin.Context) {
	if h.feed == nil {
		respondError(c, http.StatusServiceUnavailable, "Forum activity feed unavailable")
		return
	}
	queryID, err := strconv.Atoi(c.Param("id"))
	if err != nil || queryID <= 0 {
		respondError(c, http.StatusNotFound, MsgEndpointNotFound)
		return
	}

	n, err := h.feed.AnswerCount(c.Request.Context(), queryID)
	if err != nil {
		reqLogger(c, h.logger).Error("ActivityFeed: failed to read answer count",
			zap.Int("query_id", queryID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query_id": queryID, "answers": n})
}
