// Package server exposes the codec and the snapshot store over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIVersion is the path segment every API route is served under.
const APIVersion = "v1"

// SetupRouter wires the controller actions. A nil logger disables request
// logging.
func SetupRouter(controller *Controller, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if logger != nil {
		router.Use(requestLogger(logger.With(slog.String("component", "server"))))
	}

	apiRouterGroup := router.Group("/api/" + APIVersion)
	apiRouterGroup.POST("/squish", controller.SquishAction)
	apiRouterGroup.POST("/unsquish", controller.UnsquishAction)
	apiRouterGroup.POST("/structure", controller.StructureAction)

	apiRouterGroup.PUT("/snapshots/:book/:sheet", controller.PutSnapshotAction)
	apiRouterGroup.GET("/snapshots/:book/:sheet", controller.GetSnapshotAction)
	apiRouterGroup.GET("/snapshots/:book/:sheet/cells", controller.GetSnapshotCellsAction)
	apiRouterGroup.DELETE("/snapshots/:book/:sheet", controller.DeleteSnapshotAction)
	apiRouterGroup.GET("/snapshots/:book", controller.ListSnapshotsAction)

	apiRouterGroup.PUT("/books/:book", controller.PutBookAction)
	apiRouterGroup.GET("/books/:book", controller.GetBookAction)

	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "health")
	})

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			logger.Warn("request failed", append(attrs, slog.String("error", c.Errors.String()))...)
			return
		}
		logger.Debug("request", attrs...)
	}
}
