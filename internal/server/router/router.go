package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/cellar/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(cellar *handlers.CellarHandler, scans *handlers.ScanHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	wines := api.Group("/wines")
	wines.GET("", cellar.List)
	wines.GET("/export.csv", cellar.ExportCSV)
	wines.POST("/export/sheets", cellar.ExportSheets)
	wines.PUT("/import", cellar.Import)
	wines.PATCH("/:id/price", cellar.SetPrice)
	wines.POST("/:id/stock/increment", cellar.Increment)
	wines.POST("/:id/stock/decrement", cellar.Decrement)
	wines.DELETE("/:id", cellar.Delete)
	wines.GET("/:id/image", cellar.Image)
	wines.POST("/:id/image/preferred", cellar.PreferWebImage)

	scanRoutes := api.Group("/scans")
	scanRoutes.POST("", scans.Submit)
	scanRoutes.POST("/:id/analyze", scans.Analyze)
	scanRoutes.POST("/:id/confirm", scans.Confirm)
	scanRoutes.DELETE("/:id", scans.Discard)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
