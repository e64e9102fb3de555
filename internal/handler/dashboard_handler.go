package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studentportal/internal/service"
)

type DashboardHandler struct {
	dashboard   *service.DashboardService
	performance *service.PerformanceService
	current     *service.CurrentUserResolver
	logger      *zap.Logger
}

func NewDashboardHandler(
	dashboard *service.DashboardService,
	performance *service.PerformanceService,
	current *service.CurrentUserResolver,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, performance: performance, current: current, logger: logger}
}

// Page GET /dashboard
func (h *DashboardHandler) Page(c *gin.Context) {
	view, ok := h.build(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", view)
}

// JSON GET /api/dashboard
func (h *DashboardHandler) JSON(c *gin.Context) {
	view, ok := h.build(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DashboardHandler) build(c *gin.Context) (*service.DashboardView, bool) {
	ctx := c.Request.Context()

	userID, err := h.dashboardUserID(ctx, sessionToken(c))
	if err == nil {
		var view *service.DashboardView
		view, err = h.dashboard.Build(ctx, userID)
		if err == nil {
			return view, true
		}
	}

	reqLogger(c, h.logger).Error("Dashboard: failed to build", zap.Error(err))
	respondError(c, http.StatusInternalServerError, MsgInternal)
	return nil, false
}

// dashboardUserID falls back to FallbackUserID when there are no users.
func (h *DashboardHandler) dashboardUserID(ctx context.Context, token string) (int, error) {
	u, err := h.current.Resolve(ctx, token)
	if errors.Is(err, service.ErrNoUsers) {
		return service.FallbackUserID, nil
	}
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// Performance GET /api/performance-data
func (h *DashboardHandler) Performance(c *gin.Context) {
	l := reqLogger(c, h.logger)
	ctx := c.Request.Context()

	u, err := h.current.Resolve(ctx, sessionToken(c))
	if errors.Is(err, service.ErrNoUsers) {
		l.Warn("PerformanceData: no users")
		respondError(c, http.StatusNotFound, "No user found")
		return
	}
	if err != nil {
		l.Error("PerformanceData: failed to resolve user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch performance data")
		return
	}

	data, err := h.performance.Data(ctx, u)
	if err != nil {
		l.Error("PerformanceData: failed", zap.Int("user_id", u.ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch performance data")
		return
	}
	c.JSON(http.StatusOK, data)
}
