package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks a dependency, such as the database
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	service string
	version string
	db      Pinger
}

// NewHealthHandler creates a new health handler. db may be nil.
func NewHealthHandler(service, version string, db Pinger) *HealthHandler {
	return &HealthHandler{service: service, version: version, db: db}
}

// Health answers 200 when the database responds and 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	database := "ok"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status, code, database = "degraded", http.StatusServiceUnavailable, "unreachable"
		}
	}

	c.JSON(code, gin.H{
		"status":   status,
		"service":  h.service,
		"version":  h.version,
		"database": database,
	})
}
