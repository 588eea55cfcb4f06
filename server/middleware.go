package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/katalvlaran/lattix/telemetry"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// observe tags the request with an id, attaches a request logger to the
// context, then logs and counts the request once it completes.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		logger := telemetry.WithRequestID(s.cfg.Logger, id).With("method", c.Request.Method, "route", route)
		c.Request = c.Request.WithContext(telemetry.WithLogger(c.Request.Context(), logger))

		c.Next()

		elapsed := time.Since(start)
		code := c.Writer.Status()
		s.metrics.ObserveRequest(route, code, elapsed.Seconds())
		logger.Info("server: request", "status", code, "duration", elapsed)
	}
}

// recovery turns a handler panic into a 500 with the usual error body.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		telemetry.FromContext(c.Request.Context()).Error("server: panic", "panic", fmt.Sprint(recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
			Error: errorDetail{Code: "INTERNAL_ERROR", Message: "an unexpected error occurred"},
		})
	})
}
