package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/pkg/events"
)

// EventHandler upgrades requests to the live event stream
type EventHandler struct {
	hub    *events.Hub
	logger *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(hub *events.Hub, logger *zap.Logger) *EventHandler {
	return &EventHandler{hub: hub, logger: logger}
}

// Stream serves the websocket. The doctor only receives their own events.
func (h *EventHandler) Stream(c *gin.Context) {
	doctorID, ok := GetDoctorID(c)
	if !ok {
		return
	}

	// the upgrader has already answered the client when this fails
	if err := h.hub.ServeWS(c.Writer, c.Request, doctorID); err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Int64("doctor_id", doctorID), zap.Error(err))
	}
}
