package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-scout/pkg/utils"
)

// ConnectionCounter reports live websocket clients. *services.Hub satisfies it.
type ConnectionCounter interface {
	ConnectionCount() int
}

// BreakerReporter exposes a circuit breaker's state.
type BreakerReporter interface {
	BreakerState() string
}

type AdminHandler struct {
	players  PlayerSource
	hub      ConnectionCounter
	breakers map[string]BreakerReporter
	logger   *logrus.Logger
}

// NewAdminHandler builds the admin endpoints. breakers maps a display name
// to each upstream client; nil entries are skipped.
func NewAdminHandler(players PlayerSource, hub ConnectionCounter, breakers map[string]BreakerReporter, logger *logrus.Logger) *AdminHandler {
	active := make(map[string]BreakerReporter, len(breakers))
	for name, b := range breakers {
		if b != nil {
			active[name] = b
		}
	}
	return &AdminHandler{
		players:  players,
		hub:      hub,
		breakers: active,
		logger:   logger,
	}
}

// Refresh rebuilds the player snapshot now. ?force=true bypasses the feed cache.
func (h *AdminHandler) Refresh(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	start := time.Now()
	status, err := h.players.Refresh(c.Request.Context(), force)
	if err != nil {
		h.logger.WithError(err).Error("Manual refresh failed")
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"force":    force,
		"gameweek": status.Gameweek,
		"players":  status.PlayerCount,
		"duration": time.Since(start).String(),
	}).Info("Manual refresh completed")
	utils.SendSuccess(c, status)
}

func (h *AdminHandler) Status(c *gin.Context) {
	breakers := make(map[string]string, len(h.breakers))
	for name, b := range h.breakers {
		breakers[name] = b.BreakerState()
	}
	connections := 0
	if h.hub != nil {
		connections = h.hub.ConnectionCount()
	}

	utils.SendSuccess(c, gin.H{
		"snapshot":    h.players.Status(),
		"connections": connections,
		"breakers":    breakers,
	})
}
