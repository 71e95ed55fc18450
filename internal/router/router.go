package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kachele/neuralsync-backend/internal/config"
	"github.com/kachele/neuralsync-backend/internal/handler"
	"github.com/kachele/neuralsync-backend/internal/middleware"
	"github.com/kachele/neuralsync-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Workspace *handler.WorkspaceHandler
	Upload    *handler.UploadHandler
	Chat      *handler.ChatHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the dialogue routes (30 requests per minute per IP):
	// every one of them fans out to the tutor service.
	dialogueLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Workspace Group ────────────────────────────────────────────
	api := router.Group("/api/v1/workspaces")
	{
		api.POST("", handlers.Workspace.OpenWorkspace)
		api.GET("/:id", handlers.Workspace.GetWorkspace)
		api.DELETE("/:id", handlers.Workspace.CloseWorkspace)
		api.POST("/:id/session", handlers.Workspace.RetrySession)
		api.GET("/:id/stats", handlers.Workspace.GetStats)

		api.POST("/:id/upload", handlers.Upload.Upload)

		api.POST("/:id/messages", dialogueLimiter.Middleware(), handlers.Chat.SubmitMessage)
		api.POST("/:id/questions/:index/activate", handlers.Chat.ActivateQuestion)
		api.POST("/:id/hint", dialogueLimiter.Middleware(), handlers.Chat.Hint)
	}

	// ─── 2. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/workspaces/:id/stream", handlers.WS.WorkspaceStream)
	}

	return router
}
