package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/emotrack-go/internal/application/container"
)

// HealthHandlers reports liveness and basic wiring.
type HealthHandlers struct {
	container *container.Container
	startedAt time.Time
}

func NewHealthHandlers(c *container.Container) *HealthHandlers {
	return &HealthHandlers{container: c, startedAt: time.Now()}
}

// HandleHealth handles GET /health
func (h *HealthHandlers) HandleHealth(c *gin.Context) {
	liveClients := 0
	if h.container.NotificationHub != nil {
		liveClients = h.container.NotificationHub.ClientCount()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"recordSource": h.container.RecordSourceName,
		"ingest":       h.container.RecordStore != nil,
		"liveClients":  liveClients,
		"uptime":       time.Since(h.startedAt).Round(time.Second).String(),
	})
}
