// Package httpserver assembles the gin engine: middleware, routes and page templates.
package httpserver

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"studentportal/internal/handler"
	"studentportal/pkg/otel"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectionChecker reports whether a broker connection is open.
type ConnectionChecker interface {
	IsConnected() bool
}

// Handlers are the route handlers mounted by NewRouter.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Dashboard *handler.DashboardHandler
	Forum     *handler.ForumHandler
	Doubt     *handler.DoubtHandler
	Videos    *handler.VideoHandler
	Activity  *handler.ActivityHandler
}

// Deps are the readiness checks. Broker may be nil when publishing is disabled.
type Deps struct {
	Store  Pinger
	Broker ConnectionChecker
}

// NewRouter builds the portal engine.
func NewRouter(h Handlers, deps Deps, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templateFS, "templates/*.html")))

	r.Use(
		TraceID(),
		Recovery(logger),
		AccessLog(logger),
		CORS(),
		otel.GinMiddleware(),
	)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": handler.MsgEndpointNotFound})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := deps.Store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready"})
			return
		}
		if deps.Broker != nil && !deps.Broker.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "mq_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Pages
	r.GET("/", handler.LoginPage)
	r.GET("/dashboard", h.Dashboard.Page)
	r.GET("/raise-query", h.Forum.Page)

	api := r.Group("/api")
	{
		api.POST("/authenticate", h.Auth.Authenticate)

		api.GET("/users", h.Users.List)
		api.POST("/users", h.Users.Create)
		api.DELETE("/users/:id", h.Users.Delete)

		api.GET("/dashboard", h.Dashboard.JSON)
		api.GET("/performance-data", h.Dashboard.Performance)

		api.POST("/raise-query", h.Forum.RaiseQuery)
		api.POST("/add-answer", h.Forum.AddAnswer)
		api.GET("/forum/activity", h.Activity.Feed)
		api.GET("/forum/activity/queries/:id", h.Activity.Answers)

		api.POST("/doubt-solver", h.Doubt.Solve)
		api.GET("/videos", h.Videos.List)
	}

	return r
}
