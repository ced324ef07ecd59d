package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sajjat43/ai-agent/internal/fileio"
	"github.com/sajjat43/ai-agent/internal/httpapi/handlers"
	"github.com/sajjat43/ai-agent/internal/logger"
)

func NewRouter(h *handlers.Handler, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(cors.Default())
	r.MaxMultipartMemory = fileio.MaxUploadSize

	api := r.Group("/api")

	api.POST("/chat", h.Chat)
	api.GET("/history/:sessionId", h.GetHistory)
	api.GET("/sessions", h.GetSessions)
	api.DELETE("/history/:sessionId", h.DeleteHistory)

	api.POST("/upload", h.UploadFile)
	api.GET("/files/:sessionId", h.GetFiles)
	api.POST("/analyze-file", h.AnalyzeFile)
	api.GET("/file-analysis/:fileId", h.GetFileAnalysis)
	api.DELETE("/files/:fileId", h.DeleteFile)

	api.GET("/health", h.Health)
	api.GET("/models", h.GetModels)
	api.GET("/stats", h.GetStats)

	return r
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	l := log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
