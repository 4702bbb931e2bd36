package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/stitts-dev/fpl-scout/internal/analytics"
	"github.com/stitts-dev/fpl-scout/internal/api/handlers"
	"github.com/stitts-dev/fpl-scout/internal/api/middleware"
	"github.com/stitts-dev/fpl-scout/internal/models"
	"github.com/stitts-dev/fpl-scout/internal/providers"
	"github.com/stitts-dev/fpl-scout/internal/services"
	"github.com/stitts-dev/fpl-scout/internal/session"
)

const testSecret = "test-secret"

type fakePlayers struct {
	players    []models.PlayerRecord
	loaded     bool
	loadErr    error
	refreshErr error
	refreshes  int
	at         time.Time
}

func (f *fakePlayers) EnsureLoaded(ctx context.Context) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = true
	return nil
}

func (f *fakePlayers) Refresh(ctx context.Context, force bool) (services.SnapshotStatus, error) {
	if f.refreshErr != nil {
		return f.Status(), f.refreshErr
	}
	f.refreshes++
	f.loaded = true
	f.at = f.at.Add(time.Minute)
	return f.Status(), nil
}

func (f *fakePlayers) Players() []models.PlayerRecord {
	out := make([]models.PlayerRecord, len(f.players))
	copy(out, f.players)
	return out
}

func (f *fakePlayers) Player(id string) (models.PlayerRecord, error) {
	for _, p := range f.players {
		if p.ID == id {
			return p, nil
		}
	}
	return models.PlayerRecord{}, fmt.Errorf("%w: %s", services.ErrPlayerNotFound, id)
}

func (f *fakePlayers) PlayerDetail(ctx context.Context, id string) (models.PlayerRecord, error) {
	return f.Player(id)
}

func (f *fakePlayers) Recommendations() []analytics.Recommendation {
	return analytics.Recommend(f.players)
}

func (f *fakePlayers) Teams() []models.TeamInfo {
	return []models.TeamInfo{{ID: 1, Name: "Arsenal", ShortName: "ARS"}, {ID: 2, Name: "Chelsea", ShortName: "CHE"}}
}

func (f *fakePlayers) Status() services.SnapshotStatus {
	if !f.loaded {
		return services.SnapshotStatus{}
	}
	return services.SnapshotStatus{Loaded: true, Gameweek: 12, PlayerCount: len(f.players), UpdatedAt: f.at}
}

type fakeNarrator struct{}

func (fakeNarrator) Analyze(ctx context.Context, p models.PlayerRecord) analytics.Narrative {
	return analytics.Score(p)
}

type fakeBreaker string

func (b fakeBreaker) BreakerState() string { return string(b) }

type fakeHub int

func (h fakeHub) ConnectionCount() int { return int(h) }

func fixturePlayers() []models.PlayerRecord {
	mk := func(id, name, team string, pos models.Position, price, own, pred, rot float64) models.PlayerRecord {
		return models.PlayerRecord{
			ID: id, Name: name, Team: team, Position: pos,
			Price: price, Ownership: own, PredPtsGW: pred, PredPts3GW: pred * 3, PredPts6GW: pred * 6,
			MinutesL5: 450, FormL5: pred, NextOpponent: "CHE (H)", NextOpponentFDR: 3,
			InjuryStatus: models.StatusFit, RotationRiskPct: rot,
		}
	}
	return []models.PlayerRecord{
		mk("1", "Bukayo Saka", "ARS", models.PositionMID, 10.1, 38.6, 7.2, 5),
		mk("2", "Cole Palmer", "CHE", models.PositionMID, 10.8, 52.0, 7.9, 4),
		mk("3", "David Raya", "ARS", models.PositionGK, 5.6, 20.0, 4.1, 2),
		mk("4", "Levi Colwill", "CHE", models.PositionDEF, 4.6, 6.0, 3.8, 12),
		mk("5", "Kai Havertz", "ARS", models.PositionFWD, 8.1, 12.0, 5.0, 18),
		mk("6", "Nicolas Jackson", "CHE", models.PositionFWD, 7.6, 9.0, 4.9, 22),
	}
}

type RouterSuite struct {
	suite.Suite
	players *fakePlayers
	store   *session.Store
	router  *gin.Engine
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	s.players = &fakePlayers{players: fixturePlayers(), at: time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)}
	s.store = session.NewStore(100, time.Hour)
	s.router = NewRouter(Deps{
		Players:    s.players,
		Narratives: fakeNarrator{},
		Sessions:   s.store,
		Hub:        fakeHub(2),
		Breakers:   map[string]handlers.BreakerReporter{"fpl-feed": fakeBreaker("closed"), "claude-api": nil},
		JWTSecret:  testSecret,
		Logger:     logger,
	}, nil)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	} `json:"meta"`
}

func (s *RouterSuite) do(method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *RouterSuite) decode(env envelope, dest interface{}) {
	s.Require().NoError(json.Unmarshal(env.Data, dest))
}

func ids(players []models.PlayerRecord) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

func (s *RouterSuite) TestHealth() {
	w, _ := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"status":"ok"`)
	s.NotEmpty(w.Header().Get(middleware.RequestIDHeader))
}

func (s *RouterSuite) TestRequestIDIsEchoed() {
	id := "6f1c1f4e-3c3b-4c55-9f0e-2a3d4c5b6a7e"
	w, _ := s.do(http.MethodGet, "/health", nil, middleware.RequestIDHeader, id)
	s.Equal(id, w.Header().Get(middleware.RequestIDHeader))

	w, _ = s.do(http.MethodGet, "/health", nil, middleware.RequestIDHeader, "not-a-uuid")
	s.NotEqual("not-a-uuid", w.Header().Get(middleware.RequestIDHeader))
}

func (s *RouterSuite) TestListPlayers() {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{"all in feed order", "/api/v1/players", []string{"1", "2", "3", "4", "5", "6"}},
		{"query by team", "/api/v1/players?q=che", []string{"2", "4", "6"}},
		{"query by name", "/api/v1/players?q=SAKA", []string{"1"}},
		{"sorted by price", "/api/v1/players?sort=price", []string{"2", "1", "5", "6", "3", "4"}},
		{"sorted ascending", "/api/v1/players?q=ars&sort=price&dir=asc", []string{"3", "5", "1"}},
		{"second page", "/api/v1/players?sort=price&page=2&per_page=4", []string{"3", "4"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w, env := s.do(http.MethodGet, tt.path, nil)
			s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
			var players []models.PlayerRecord
			s.decode(env, &players)
			s.Equal(tt.want, ids(players))
		})
	}
}

func (s *RouterSuite) TestListPlayersPaginationMeta() {
	_, env := s.do(http.MethodGet, "/api/v1/players?page=2&per_page=4", nil)
	s.Require().NotNil(env.Meta)
	s.Equal(2, env.Meta.Page)
	s.Equal(4, env.Meta.PerPage)
	s.Equal(6, env.Meta.Total)
	s.Equal(2, env.Meta.TotalPages)
}

func (s *RouterSuite) TestListPlayersHugePage() {
	path := fmt.Sprintf("/api/v1/players?page=%d&per_page=2", math.MaxInt64/2+2)
	w, env := s.do(http.MethodGet, path, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var players []models.PlayerRecord
	if len(env.Data) > 0 {
		s.decode(env, &players)
	}
	s.Empty(players)
	s.Require().NotNil(env.Meta)
	s.Equal(6, env.Meta.Total)
	s.Equal(3, env.Meta.TotalPages)
}

func (s *RouterSuite) TestListPlayersPageSizeCapped() {
	w, env := s.do(http.MethodGet, "/api/v1/players?per_page=100000", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var players []models.PlayerRecord
	s.decode(env, &players)
	s.Len(players, 6)
	s.Require().NotNil(env.Meta)
	s.Equal(session.MaxPerPage, env.Meta.PerPage)
	s.Equal(1, env.Meta.TotalPages)
}

func (s *RouterSuite) TestListPlayersRejectsBadParams() {
	tests := []struct {
		path string
		code string
	}{
		{"/api/v1/players?sort=shoeSize", "VALIDATION_ERROR"},
		{"/api/v1/players?sort=price&dir=sideways", "VALIDATION_ERROR"},
		{"/api/v1/players?page=x", "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		s.Run(tt.path, func() {
			w, env := s.do(http.MethodGet, tt.path, nil)
			s.Equal(http.StatusBadRequest, w.Code)
			s.Require().NotNil(env.Error)
			s.Equal(tt.code, env.Error.Code)
		})
	}
}

func (s *RouterSuite) TestSearchPlayers() {
	body := map[string]interface{}{
		"filters": map[string]interface{}{
			"positions":  []string{"MID", "FWD"},
			"priceRange": map[string]float64{"min": 7.5, "max": 10.5},
		},
		"sort": "predPts_gw",
	}
	w, env := s.do(http.MethodPost, "/api/v1/players/search", body)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var players []models.PlayerRecord
	s.decode(env, &players)
	s.Equal([]string{"1", "5", "6"}, ids(players))
}

func (s *RouterSuite) TestSearchPlayersInvalidSpec() {
	body := map[string]interface{}{
		"filters": map[string]interface{}{"priceRange": map[string]float64{"min": 9, "max": 4}},
	}
	w, env := s.do(http.MethodPost, "/api/v1/players/search", body)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Require().NotNil(env.Error)
	s.Equal("INVALID_FILTER_SPEC", env.Error.Code)
}

func (s *RouterSuite) TestGetPlayer() {
	w, env := s.do(http.MethodGet, "/api/v1/players/2", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var p models.PlayerRecord
	s.decode(env, &p)
	s.Equal("Cole Palmer", p.Name)

	w, env = s.do(http.MethodGet, "/api/v1/players/999", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", env.Error.Code)
}

func (s *RouterSuite) TestGetPlayerAnalysis() {
	w, env := s.do(http.MethodGet, "/api/v1/players/1/analysis", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var out struct {
		PlayerID  string              `json:"playerId"`
		Narrative analytics.Narrative `json:"narrative"`
	}
	s.decode(env, &out)
	s.Equal("1", out.PlayerID)
	s.GreaterOrEqual(out.Narrative.CaptainRating, 4)
}

func (s *RouterSuite) TestRecommendationsAndTeams() {
	w, env := s.do(http.MethodGet, "/api/v1/recommendations", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var recs []analytics.Recommendation
	s.decode(env, &recs)
	s.Len(recs, 4)

	w, env = s.do(http.MethodGet, "/api/v1/teams", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var teams []models.TeamInfo
	s.decode(env, &teams)
	s.Len(teams, 2)
}

func (s *RouterSuite) TestFeedUnavailable() {
	s.players.loadErr = fmt.Errorf("bootstrap: %w", providers.ErrUnavailable)
	w, env := s.do(http.MethodGet, "/api/v1/players", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal("SERVICE_UNAVAILABLE", env.Error.Code)
}

func (s *RouterSuite) createSession() session.View {
	w, env := s.do(http.MethodPost, "/api/v1/sessions", nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var view session.View
	s.decode(env, &view)
	s.Require().NotEmpty(view.ID)
	return view
}

func (s *RouterSuite) TestSessionBrowsing() {
	view := s.createSession()
	s.Equal(6, view.TotalPlayers)
	base := "/api/v1/sessions/" + view.ID

	w, env := s.do(http.MethodPut, base+"/query", map[string]string{"query": "ars"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env, &view)
	s.Equal(3, view.TotalPlayers)

	w, env = s.do(http.MethodPut, base+"/filters", map[string]interface{}{
		"positions": []string{"MID", "FWD"},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(env, &view)
	s.Equal(2, view.TotalPlayers)

	w, _ = s.do(http.MethodPut, base+"/sort", map[string]string{"key": "price", "dir": "asc"})
	s.Require().Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPut, base+"/page", map[string]int{"perPage": 1, "page": 2})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodGet, base+"/players", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var players []models.PlayerRecord
	s.decode(env, &players)
	s.Equal([]string{"1"}, ids(players))
	s.Equal(2, env.Meta.Page)
	s.Equal(2, env.Meta.TotalPages)

	w, env = s.do(http.MethodPut, base+"/page", map[string]int{"page": 3})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION_ERROR", env.Error.Code)

	w, env = s.do(http.MethodDelete, base+"/filters", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env, &view)
	s.Equal(3, view.TotalPlayers)
	s.Equal(1, view.Page)
}

func (s *RouterSuite) TestSessionPicksUpRefresh() {
	view := s.createSession()
	base := "/api/v1/sessions/" + view.ID

	s.players.players = s.players.players[:2]
	_, err := s.players.Refresh(context.Background(), false)
	s.Require().NoError(err)

	w, env := s.do(http.MethodGet, base, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env, &view)
	s.Equal(2, view.TotalPlayers)
}

func (s *RouterSuite) TestSessionCompareAndSelection() {
	view := s.createSession()
	base := "/api/v1/sessions/" + view.ID

	for _, id := range []string{"1", "2", "3"} {
		w, _ := s.do(http.MethodPost, base+"/compare", map[string]string{"playerId": id})
		s.Require().Equal(http.StatusOK, w.Code)
	}
	w, env := s.do(http.MethodPost, base+"/compare", map[string]string{"playerId": "4"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("INVALID_SELECTION", env.Error.Code)

	w, env = s.do(http.MethodDelete, base+"/compare/2", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env, &view)
	s.Equal([]string{"1", "3"}, ids(view.Compare))

	w, _ = s.do(http.MethodPost, base+"/compare", map[string]string{"playerId": "999"})
	s.Equal(http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodPut, base+"/selected", map[string]string{"playerId": "5"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env, &view)
	s.Require().NotNil(view.Selected)
	s.Equal("Kai Havertz", view.Selected.Name)

	w, _ = s.do(http.MethodPut, base+"/selected", map[string]string{})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestSessionTeamBuilder() {
	view := s.createSession()
	base := "/api/v1/sessions/" + view.ID

	for _, id := range []string{"1", "2", "5"} {
		w, _ := s.do(http.MethodPost, base+"/team", map[string]string{"playerId": id})
		s.Require().Equal(http.StatusOK, w.Code)
	}
	w, env := s.do(http.MethodPost, base+"/team", map[string]string{"playerId": "1"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("INVALID_SELECTION", env.Error.Code)

	w, _ = s.do(http.MethodPut, base+"/team/captain", map[string]string{"playerId": "2"})
	s.Require().Equal(http.StatusOK, w.Code)
	w, env = s.do(http.MethodPut, base+"/team/vice", map[string]string{"playerId": "1"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env, &view)

	s.InDelta(71.0, view.Team.Remaining, 1e-9)
	for _, p := range view.Team.Players {
		switch p.ID {
		case "2":
			s.True(p.IsCaptain)
		case "1":
			s.True(p.IsViceCaptain)
		default:
			s.False(p.IsCaptain || p.IsViceCaptain)
		}
	}

	w, env = s.do(http.MethodPut, base+"/team/formation", map[string]string{"formation": "4-4-2"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env, &view)
	s.Equal("4-4-2", view.Team.Formation)

	w, _ = s.do(http.MethodPut, base+"/team/formation", map[string]string{"formation": "2-2-6"})
	s.Equal(http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodDelete, base+"/team/5", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env, &view)
	s.Len(view.Team.Players, 2)

	w, _ = s.do(http.MethodDelete, base+"/team/5", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodDelete, base+"/team", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env, &view)
	s.Empty(view.Team.Players)
	s.Equal(100.0, view.Team.Remaining)
}

func (s *RouterSuite) TestSessionBudgetExceeded() {
	s.players.players = append(s.players.players, models.PlayerRecord{
		ID: "7", Name: "Too Expensive", Team: "ARS", Position: models.PositionMID, Price: 95, InjuryStatus: models.StatusFit,
	})
	view := s.createSession()
	base := "/api/v1/sessions/" + view.ID

	w, _ := s.do(http.MethodPost, base+"/team", map[string]string{"playerId": "7"})
	s.Require().Equal(http.StatusOK, w.Code)
	w, env := s.do(http.MethodPost, base+"/team", map[string]string{"playerId": "4"})
	s.Equal(http.StatusOK, w.Code)
	w, env = s.do(http.MethodPost, base+"/team", map[string]string{"playerId": "3"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("BUDGET_EXCEEDED", env.Error.Code)
}

func (s *RouterSuite) TestSessionNotFound() {
	w, env := s.do(http.MethodGet, "/api/v1/sessions/missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", env.Error.Code)

	view := s.createSession()
	w, _ = s.do(http.MethodDelete, "/api/v1/sessions/"+view.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodDelete, "/api/v1/sessions/"+view.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) adminToken(role string) string {
	token, err := middleware.IssueToken(testSecret, "ops", role, time.Hour)
	s.Require().NoError(err)
	return "Bearer " + token
}

func (s *RouterSuite) TestAdminRequiresToken() {
	w, env := s.do(http.MethodGet, "/api/v1/admin/status", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("UNAUTHORIZED", env.Error.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/admin/status", nil, "Authorization", "Token abc")
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/admin/status", nil, "Authorization", "Bearer garbage")
	s.Equal(http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/admin/status", nil, "Authorization", s.adminToken("viewer"))
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("FORBIDDEN", env.Error.Code)

	other, err := middleware.IssueToken("other-secret", "ops", middleware.RoleAdmin, time.Hour)
	s.Require().NoError(err)
	w, _ = s.do(http.MethodGet, "/api/v1/admin/status", nil, "Authorization", "Bearer "+other)
	s.Equal(http.StatusUnauthorized, w.Code)

	expired, err := middleware.IssueToken(testSecret, "ops", middleware.RoleAdmin, -time.Minute)
	s.Require().NoError(err)
	w, _ = s.do(http.MethodGet, "/api/v1/admin/status", nil, "Authorization", "Bearer "+expired)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestAdminStatusAndRefresh() {
	token := s.adminToken(middleware.RoleAdmin)

	w, env := s.do(http.MethodPost, "/api/v1/admin/refresh?force=true", nil, "Authorization", token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var status services.SnapshotStatus
	s.decode(env, &status)
	s.True(status.Loaded)
	s.Equal(1, s.players.refreshes)

	w, env = s.do(http.MethodGet, "/api/v1/admin/status", nil, "Authorization", token)
	s.Require().Equal(http.StatusOK, w.Code)
	var out struct {
		Snapshot    services.SnapshotStatus `json:"snapshot"`
		Connections int                     `json:"connections"`
		Breakers    map[string]string       `json:"breakers"`
	}
	s.decode(env, &out)
	s.Equal(2, out.Connections)
	s.Equal(map[string]string{"fpl-feed": "closed"}, out.Breakers)
	s.Equal(6, out.Snapshot.PlayerCount)
}

func (s *RouterSuite) TestAdminRefreshFailure() {
	s.players.refreshErr = fmt.Errorf("failed to fetch bootstrap: %w", providers.ErrUnavailable)
	w, env := s.do(http.MethodPost, "/api/v1/admin/refresh", nil, "Authorization", s.adminToken(middleware.RoleAdmin))
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal("SERVICE_UNAVAILABLE", env.Error.Code)

	s.players.refreshErr = errors.New("boom")
	w, _ = s.do(http.MethodPost, "/api/v1/admin/refresh", nil, "Authorization", s.adminToken(middleware.RoleAdmin))
	s.Equal(http.StatusInternalServerError, w.Code)
}

func TestRouter_PageBeyondEndAndWebsocketRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	players := fixturePlayers()
	router := NewRouter(Deps{
		Players:    &fakePlayers{players: players},
		Narratives: fakeNarrator{},
		Sessions:   session.NewStore(100, time.Hour),
		JWTSecret:  testSecret,
		Logger:     logrus.New(),
	}, func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players?page=9&per_page=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Saka")
	assert.Contains(t, w.Body.String(), `"total":6`)

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
