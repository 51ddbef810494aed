package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/utils"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// LoggerMiddleware assigns a request id and writes one structured line per request
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = utils.NewRequestID()
		}
		c.Set(response.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("size", c.Writer.Size()),
		}
		if doctorID := GetDoctorID(c); doctorID != 0 {
			fields = append(fields, zap.Int64("doctor_id", doctorID))
		}

		switch {
		case len(c.Errors) > 0:
			for _, e := range c.Errors {
				fields = append(fields, zap.NamedError("cause", e.Err))
			}
			log.Error("request failed", fields...)
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
