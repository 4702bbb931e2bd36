package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-scout/internal/analytics"
	"github.com/stitts-dev/fpl-scout/internal/models"
	"github.com/stitts-dev/fpl-scout/internal/services"
	"github.com/stitts-dev/fpl-scout/internal/session"
	"github.com/stitts-dev/fpl-scout/pkg/utils"
)

// PlayerSource is the read side of the player snapshot.
// *services.PlayerService satisfies it.
type PlayerSource interface {
	EnsureLoaded(ctx context.Context) error
	Refresh(ctx context.Context, force bool) (services.SnapshotStatus, error)
	Players() []models.PlayerRecord
	Player(id string) (models.PlayerRecord, error)
	PlayerDetail(ctx context.Context, id string) (models.PlayerRecord, error)
	Recommendations() []analytics.Recommendation
	Teams() []models.TeamInfo
	Status() services.SnapshotStatus
}

// Narrator produces narratives. *services.NarrativeService satisfies it.
type Narrator interface {
	Analyze(ctx context.Context, p models.PlayerRecord) analytics.Narrative
}

type PlayerHandler struct {
	players    PlayerSource
	narratives Narrator
	logger     *logrus.Logger
}

func NewPlayerHandler(players PlayerSource, narratives Narrator, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{
		players:    players,
		narratives: narratives,
		logger:     logger,
	}
}

// ensureLoaded loads the first snapshot on demand. It writes the error
// response itself and reports whether the handler may continue.
func ensureLoaded(c *gin.Context, players PlayerSource) bool {
	if err := players.EnsureLoaded(c.Request.Context()); err != nil {
		_ = c.Error(err)
		utils.SendUnavailable(c, "Player data is not available yet")
		return false
	}
	return true
}

type searchRequest struct {
	Filters analytics.FilterSpec `json:"filters"`
	Query   string               `json:"query"`
	Sort    string               `json:"sort"`
	Dir     string               `json:"dir"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"perPage"`
}

// GetPlayers lists players matching ?q, sorted by ?sort and ?dir, paged by
// ?page and ?per_page.
func (h *PlayerHandler) GetPlayers(c *gin.Context) {
	if !ensureLoaded(c, h.players) {
		return
	}

	page, err := intQuery(c, "page", 1)
	if err != nil {
		utils.SendValidationError(c, "Invalid page", err.Error())
		return
	}
	perPage, err := intQuery(c, "per_page", 0)
	if err != nil {
		utils.SendValidationError(c, "Invalid per_page", err.Error())
		return
	}

	h.search(c, searchRequest{
		Filters: analytics.DefaultFilterSpec(),
		Query:   c.Query("q"),
		Sort:    c.Query("sort"),
		Dir:     c.Query("dir"),
		Page:    page,
		PerPage: perPage,
	})
}

// SearchPlayers applies a full filter spec from the request body.
func (h *PlayerHandler) SearchPlayers(c *gin.Context) {
	if !ensureLoaded(c, h.players) {
		return
	}

	req := searchRequest{Filters: analytics.DefaultFilterSpec(), Page: 1}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	h.search(c, req)
}

func (h *PlayerHandler) search(c *gin.Context, req searchRequest) {
	spec, err := analytics.NewFilterSpec(req.Filters)
	if err != nil {
		respondError(c, err)
		return
	}
	dir, err := analytics.ParseSortDirection(req.Dir)
	if err != nil {
		utils.SendValidationError(c, "Invalid sort direction", err.Error())
		return
	}

	players := analytics.Evaluate(h.players.Players(), spec, req.Query)
	if req.Sort != "" {
		if players, err = analytics.SortPlayers(players, req.Sort, dir); err != nil {
			respondError(c, err)
			return
		}
	}

	if req.PerPage <= 0 {
		utils.SendList(c, players, &utils.Meta{Total: int64(len(players))})
		return
	}
	items, meta := paginate(players, req.Page, req.PerPage)
	utils.SendList(c, items, meta)
}

// GetPlayer returns one player, with per-match history when the feed has it.
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	if !ensureLoaded(c, h.players) {
		return
	}
	player, err := h.players.PlayerDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccess(c, player)
}

// GetPlayerAnalysis returns the narrative assessment for one player.
func (h *PlayerHandler) GetPlayerAnalysis(c *gin.Context) {
	if !ensureLoaded(c, h.players) {
		return
	}
	player, err := h.players.Player(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	narrative := h.narratives.Analyze(c.Request.Context(), player)
	utils.SendSuccess(c, gin.H{
		"playerId":  player.ID,
		"name":      player.Name,
		"narrative": narrative,
	})
}

func (h *PlayerHandler) GetRecommendations(c *gin.Context) {
	if !ensureLoaded(c, h.players) {
		return
	}
	utils.SendSuccess(c, h.players.Recommendations())
}

func (h *PlayerHandler) GetTeams(c *gin.Context) {
	if !ensureLoaded(c, h.players) {
		return
	}
	utils.SendSuccess(c, h.players.Teams())
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// paginate slices players to one page. Pages past the end are empty and
// perPage is capped at session.MaxPerPage.
func paginate(players []models.PlayerRecord, page, perPage int) ([]models.PlayerRecord, *utils.Meta) {
	if page < 1 {
		page = 1
	}
	perPage = min(perPage, session.MaxPerPage)
	total := len(players)
	meta := utils.NewMeta(page, perPage, total)
	if total == 0 || page-1 > (total-1)/perPage {
		return []models.PlayerRecord{}, meta
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	return players[start:end], meta
}
