package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/khinsider-go/api/handlers"
	"github.com/yourusername/khinsider-go/api/middleware"
	"github.com/yourusername/khinsider-go/internal/domain"
	"github.com/yourusername/khinsider-go/pkg/logger"
)

// SetupRouter sets up the read-only history API. logsDir may be empty when the
// event log is disabled, in which case the log endpoints are not registered.
func SetupRouter(repo domain.SessionRepository, logsDir string, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	healthHandler := handlers.NewHealthHandler(repo)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		sessionHandler := handlers.NewSessionHandler(repo, log)
		sessions := v1.Group("/sessions")
		{
			sessions.GET("", sessionHandler.ListSessions)
			sessions.GET("/stats", sessionHandler.GetStats)
			sessions.GET("/:id", sessionHandler.GetSession)
		}

		if logsDir != "" {
			reader := logger.NewLogReader(logsDir)
			logHandler := handlers.NewLogHandler(reader)
			streamHandler := handlers.NewLogStreamHandler(reader, log)
			logs := v1.Group("/logs")
			{
				logs.GET("/categories", logHandler.GetCategories)
				logs.GET("/:category", logHandler.GetLogs)
				logs.GET("/:category/stream", streamHandler.Stream)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
