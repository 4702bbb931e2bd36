package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	players PlayerSource
}

func NewHealthHandler(players PlayerSource) *HealthHandler {
	return &HealthHandler{players: players}
}

// GetHealth always answers 200 while the process is up; "loaded" says
// whether a player snapshot is being served.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	status := h.players.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "fpl-scout",
		"time":     time.Now().UTC(),
		"loaded":   status.Loaded,
		"gameweek": status.Gameweek,
	})
}
