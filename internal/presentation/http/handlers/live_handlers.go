package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/messaging"
)

// LiveHandlers upgrades dashboard clients onto the notification hub.
type LiveHandlers struct {
	hub *messaging.NotificationHub
}

func NewLiveHandlers(hub *messaging.NotificationHub) *LiveHandlers {
	return &LiveHandlers{hub: hub}
}

// HandleLive handles GET /api/v1/emotions/live
func (h *LiveHandlers) HandleLive(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live notifications disabled"})
		return
	}
	h.hub.ServeWS(c.Writer, c.Request)
}
