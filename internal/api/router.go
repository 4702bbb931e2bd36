package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-scout/internal/api/handlers"
	"github.com/stitts-dev/fpl-scout/internal/api/middleware"
	"github.com/stitts-dev/fpl-scout/internal/session"
)

// Deps carries everything the routes need.
type Deps struct {
	Players    handlers.PlayerSource
	Narratives handlers.Narrator
	Sessions   *session.Store
	Hub        handlers.ConnectionCounter
	Breakers   map[string]handlers.BreakerReporter
	JWTSecret  string
	Logger     *logrus.Logger
}

// NewRouter builds the gin engine with middleware, /health, /ws and the
// /api/v1 routes. ws may be nil to skip the websocket endpoint.
func NewRouter(deps Deps, ws gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))

	health := handlers.NewHealthHandler(deps.Players)
	router.GET("/health", health.GetHealth)
	if ws != nil {
		router.GET("/ws", ws)
	}

	SetupRoutes(router.Group("/api/v1"), deps)
	return router
}

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, deps Deps) {
	playerHandler := handlers.NewPlayerHandler(deps.Players, deps.Narratives, deps.Logger)
	sessionHandler := handlers.NewSessionHandler(deps.Sessions, deps.Players, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.Players, deps.Hub, deps.Breakers, deps.Logger)

	// Player endpoints
	group.GET("/players", playerHandler.GetPlayers)
	group.POST("/players/search", playerHandler.SearchPlayers)
	group.GET("/players/:id", playerHandler.GetPlayer)
	group.GET("/players/:id/analysis", playerHandler.GetPlayerAnalysis)
	group.GET("/recommendations", playerHandler.GetRecommendations)
	group.GET("/teams", playerHandler.GetTeams)

	// Session endpoints
	sessions := group.Group("/sessions")
	{
		sessions.POST("", sessionHandler.CreateSession)
		sessions.GET("/:id", sessionHandler.GetSession)
		sessions.DELETE("/:id", sessionHandler.DeleteSession)

		sessions.PUT("/:id/query", sessionHandler.SetQuery)
		sessions.PUT("/:id/filters", sessionHandler.SetFilters)
		sessions.DELETE("/:id/filters", sessionHandler.ClearFilters)
		sessions.PUT("/:id/sort", sessionHandler.SetSort)
		sessions.PUT("/:id/page", sessionHandler.SetPage)
		sessions.GET("/:id/players", sessionHandler.GetPlayers)

		sessions.PUT("/:id/selected", sessionHandler.SelectPlayer)
		sessions.DELETE("/:id/selected", sessionHandler.ClearSelection)

		sessions.POST("/:id/compare", sessionHandler.AddToCompare)
		sessions.DELETE("/:id/compare/:playerId", sessionHandler.RemoveFromCompare)
		sessions.DELETE("/:id/compare", sessionHandler.ClearCompare)

		sessions.POST("/:id/team", sessionHandler.AddToTeam)
		sessions.DELETE("/:id/team/:playerId", sessionHandler.RemoveFromTeam)
		sessions.PUT("/:id/team/captain", sessionHandler.SetCaptain)
		sessions.PUT("/:id/team/vice", sessionHandler.SetViceCaptain)
		sessions.PUT("/:id/team/formation", sessionHandler.SetFormation)
		sessions.DELETE("/:id/team", sessionHandler.ClearTeam)
	}

	// Admin endpoints
	admin := group.Group("/admin")
	admin.Use(middleware.AuthRequired(deps.JWTSecret, middleware.RoleAdmin))
	{
		admin.POST("/refresh", adminHandler.Refresh)
		admin.GET("/status", adminHandler.Status)
	}
}
