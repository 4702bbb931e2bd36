package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-scout/internal/analytics"
	"github.com/stitts-dev/fpl-scout/internal/models"
	"github.com/stitts-dev/fpl-scout/internal/session"
	"github.com/stitts-dev/fpl-scout/pkg/utils"
)

// SessionHandler exposes per-client browsing state: search, filters,
// sort, pagination, selection, compare list and team builder.
type SessionHandler struct {
	store   *session.Store
	players PlayerSource
	logger  *logrus.Logger
}

func NewSessionHandler(store *session.Store, players PlayerSource, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		store:   store,
		players: players,
		logger:  logger,
	}
}

type playerRef struct {
	PlayerID string `json:"playerId" binding:"required"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type sortRequest struct {
	Key string `json:"key"`
	Dir string `json:"dir"`
}

type pageRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

type formationRequest struct {
	Formation string `json:"formation" binding:"required"`
}

// sync installs the latest snapshot into st when it has moved on.
func (h *SessionHandler) sync(st *session.State) {
	status := h.players.Status()
	if !status.Loaded || st.Version().Equal(status.UpdatedAt) {
		return
	}
	st.Sync(h.players.Players(), status.UpdatedAt)
}

// update runs fn against the synced session and writes the session view.
func (h *SessionHandler) update(c *gin.Context, fn func(st *session.State) error) {
	view, err := h.store.Update(c.Param("id"), func(st *session.State) error {
		h.sync(st)
		return fn(st)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccess(c, view)
}

// withPlayer resolves the body's playerId before running fn.
func (h *SessionHandler) withPlayer(c *gin.Context, fn func(st *session.State, id string) error) {
	var ref playerRef
	if err := c.ShouldBindJSON(&ref); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	h.update(c, func(st *session.State) error {
		return fn(st, ref.PlayerID)
	})
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	if !ensureLoaded(c, h.players) {
		return
	}
	view := h.store.Create(h.sync)
	h.logger.WithField("session_id", view.ID).Debug("Session created")
	utils.SendCreated(c, view)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	h.update(c, func(*session.State) error { return nil })
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"deleted": c.Param("id")})
}

func (h *SessionHandler) SetQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	h.update(c, func(st *session.State) error {
		st.SetQuery(req.Query)
		return nil
	})
}

// SetFilters replaces the session's filters. Omitted fields keep their
// admit-everything defaults.
func (h *SessionHandler) SetFilters(c *gin.Context) {
	spec := analytics.DefaultFilterSpec()
	if err := c.ShouldBindJSON(&spec); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	h.update(c, func(st *session.State) error {
		return st.SetFilters(spec)
	})
}

func (h *SessionHandler) ClearFilters(c *gin.Context) {
	h.update(c, func(st *session.State) error {
		st.ClearFilters()
		return nil
	})
}

func (h *SessionHandler) SetSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	dir, err := analytics.ParseSortDirection(req.Dir)
	if err != nil {
		utils.SendValidationError(c, "Invalid sort direction", err.Error())
		return
	}
	h.update(c, func(st *session.State) error {
		return st.SetSort(req.Key, dir)
	})
}

// SetPage changes page size first, then the page, so both can move in one call.
func (h *SessionHandler) SetPage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	h.update(c, func(st *session.State) error {
		if req.PerPage != 0 {
			if err := st.SetPerPage(req.PerPage); err != nil {
				return err
			}
		}
		if req.Page != 0 {
			return st.SetPage(req.Page)
		}
		return nil
	})
}

// GetPlayers returns the current page of the session's filtered list.
func (h *SessionHandler) GetPlayers(c *gin.Context) {
	var items []models.PlayerRecord
	view, err := h.store.Update(c.Param("id"), func(st *session.State) error {
		h.sync(st)
		items = st.PageItems()
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendList(c, items, utils.NewMeta(view.Page, view.PerPage, view.TotalPlayers))
}

func (h *SessionHandler) SelectPlayer(c *gin.Context) {
	h.withPlayer(c, func(st *session.State, id string) error {
		p, err := h.players.Player(id)
		if err != nil {
			return err
		}
		st.Select(p)
		return nil
	})
}

func (h *SessionHandler) ClearSelection(c *gin.Context) {
	h.update(c, func(st *session.State) error {
		st.ClearSelection()
		return nil
	})
}

func (h *SessionHandler) AddToCompare(c *gin.Context) {
	h.withPlayer(c, func(st *session.State, id string) error {
		p, err := h.players.Player(id)
		if err != nil {
			return err
		}
		return st.AddToCompare(p)
	})
}

func (h *SessionHandler) RemoveFromCompare(c *gin.Context) {
	h.update(c, func(st *session.State) error {
		st.RemoveFromCompare(c.Param("playerId"))
		return nil
	})
}

func (h *SessionHandler) ClearCompare(c *gin.Context) {
	h.update(c, func(st *session.State) error {
		st.ClearCompare()
		return nil
	})
}

func (h *SessionHandler) AddToTeam(c *gin.Context) {
	h.withPlayer(c, func(st *session.State, id string) error {
		p, err := h.players.Player(id)
		if err != nil {
			return err
		}
		return st.Team().Add(p)
	})
}

func (h *SessionHandler) RemoveFromTeam(c *gin.Context) {
	h.update(c, func(st *session.State) error {
		return st.Team().Remove(c.Param("playerId"))
	})
}

func (h *SessionHandler) SetCaptain(c *gin.Context) {
	h.withPlayer(c, func(st *session.State, id string) error {
		return st.Team().SetCaptain(id)
	})
}

func (h *SessionHandler) SetViceCaptain(c *gin.Context) {
	h.withPlayer(c, func(st *session.State, id string) error {
		return st.Team().SetViceCaptain(id)
	})
}

func (h *SessionHandler) SetFormation(c *gin.Context) {
	var req formationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	h.update(c, func(st *session.State) error {
		return st.Team().SetFormation(req.Formation)
	})
}

func (h *SessionHandler) ClearTeam(c *gin.Context) {
	h.update(c, func(st *session.State) error {
		st.Team().Clear()
		return nil
	})
}
