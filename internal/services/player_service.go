package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-scout/internal/analytics"
	"github.com/stitts-dev/fpl-scout/internal/feed"
	"github.com/stitts-dev/fpl-scout/internal/models"
	"github.com/stitts-dev/fpl-scout/pkg/logger"
)

var ErrPlayerNotFound = errors.New("player not found")

// FeedSource is the upstream feed. *providers.FPLClient satisfies it.
type FeedSource interface {
	GetBootstrap(ctx context.Context) (*feed.Bootstrap, error)
	GetFixtures(ctx context.Context) ([]feed.Fixture, error)
	GetElementSummary(ctx context.Context, elementID int) (*feed.ElementSummary, error)
	ClearCache()
}

// SnapshotRecorder persists refresh summaries. *AnalysisStore satisfies it.
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, snap *models.FeedSnapshot, recs []analytics.Recommendation) error
}

// Broadcaster pushes a typed message to connected clients. *Hub satisfies it.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

// SnapshotStatus describes the currently loaded snapshot.
type SnapshotStatus struct {
	Loaded      bool      `json:"loaded"`
	Gameweek    int       `json:"gameweek"`
	PlayerCount int       `json:"playerCount"`
	Skipped     int       `json:"skipped"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlayerService owns the derived player snapshot. Readers always see a
// complete snapshot; Refresh swaps it atomically.
type PlayerService struct {
	source      FeedSource
	recorder    SnapshotRecorder
	broadcaster Broadcaster
	logger      *logrus.Logger
	categories  []analytics.Category
	now         func() time.Time

	refreshMu sync.Mutex

	mu       sync.RWMutex
	snapshot *playerSnapshot
}

type playerSnapshot struct {
	players  []models.PlayerRecord
	index    map[string]int
	teamOf   map[string]int
	teams    []models.TeamInfo
	recs     []analytics.Recommendation
	ctx      *analytics.Context
	gameweek int
	skipped  int
	at       time.Time
}

// PlayerServiceOptions wires optional collaborators. Nil values are skipped.
type PlayerServiceOptions struct {
	Recorder    SnapshotRecorder
	Broadcaster Broadcaster
	Categories  []analytics.Category
}

func NewPlayerService(source FeedSource, opts PlayerServiceOptions, logger *logrus.Logger) *PlayerService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.Categories == nil {
		opts.Categories = analytics.DefaultCategories(nil)
	}
	return &PlayerService{
		source:      source,
		recorder:    opts.Recorder,
		broadcaster: opts.Broadcaster,
		logger:      logger,
		categories:  opts.Categories,
		now:         time.Now,
	}
}

// Refresh fetches the feed and rebuilds the snapshot. With force set the
// provider cache is cleared first. Concurrent calls are serialized.
func (s *PlayerService) Refresh(ctx context.Context, force bool) (SnapshotStatus, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := s.now()
	if force {
		s.source.ClearCache()
	}

	bootstrap, err := s.source.GetBootstrap(ctx)
	if err != nil {
		return s.Status(), fmt.Errorf("failed to fetch bootstrap: %w", err)
	}
	fixtures, err := s.source.GetFixtures(ctx)
	if err != nil {
		return s.Status(), fmt.Errorf("failed to fetch fixtures: %w", err)
	}

	ds := feed.Normalize(bootstrap, fixtures)
	dctx := analytics.NewContext(ds, start)
	players, failed := analytics.DeriveAll(ds.Entries, dctx, s.logger)

	snap := &playerSnapshot{
		players:  players,
		index:    make(map[string]int, len(players)),
		teamOf:   make(map[string]int, len(players)),
		teams:    teamsFromClubs(ds.Clubs),
		recs:     analytics.RecommendWith(players, s.categories),
		ctx:      dctx,
		gameweek: ds.CurrentGameweek,
		skipped:  ds.Skipped + failed,
		at:       start,
	}
	for i, p := range players {
		snap.index[p.ID] = i
	}
	for _, e := range ds.Entries {
		snap.teamOf[strconv.Itoa(e.ID)] = e.TeamID
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	status := s.Status()
	elapsed := s.now().Sub(start)
	logger.WithGameweek(s.logger, status.Gameweek).WithFields(logrus.Fields{
		"players":  status.PlayerCount,
		"skipped":  status.Skipped,
		"fixtures": len(ds.Matches),
		"duration": elapsed.String(),
	}).Info("Player snapshot refreshed")

	if s.recorder != nil {
		record := &models.FeedSnapshot{
			Gameweek:       status.Gameweek,
			PlayerCount:    status.PlayerCount,
			SkippedCount:   status.Skipped,
			FixtureCount:   len(ds.Matches),
			DurationMillis: elapsed.Milliseconds(),
			FetchedAt:      start.UTC(),
		}
		if err := s.recorder.RecordSnapshot(ctx, record, snap.recs); err != nil {
			s.logger.WithError(err).Warn("Failed to record feed snapshot")
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(MessagePlayersRefreshed, status)
	}
	return status, nil
}

// EnsureLoaded refreshes once if no snapshot has been loaded yet.
func (s *PlayerService) EnsureLoaded(ctx context.Context) error {
	if s.current() != nil {
		return nil
	}
	_, err := s.Refresh(ctx, false)
	return err
}

func (s *PlayerService) current() *playerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Players returns a copy of every derived record in feed order.
func (s *PlayerService) Players() []models.PlayerRecord {
	snap := s.current()
	if snap == nil {
		return []models.PlayerRecord{}
	}
	out := make([]models.PlayerRecord, len(snap.players))
	copy(out, snap.players)
	return out
}

// Player looks up one derived record by id.
func (s *PlayerService) Player(id string) (models.PlayerRecord, error) {
	snap := s.current()
	if snap == nil {
		return models.PlayerRecord{}, ErrPlayerNotFound
	}
	i, ok := snap.index[id]
	if !ok {
		return models.PlayerRecord{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return snap.players[i], nil
}

// PlayerDetail returns the record with its match series replaced by the
// provider's per-match history when that is available. Any history fetch
// failure falls back to the derived record.
func (s *PlayerService) PlayerDetail(ctx context.Context, id string) (models.PlayerRecord, error) {
	rec, err := s.Player(id)
	if err != nil {
		return rec, err
	}
	snap := s.current()
	elementID, convErr := strconv.Atoi(id)
	if convErr != nil {
		return rec, nil
	}

	summary, err := s.source.GetElementSummary(ctx, elementID)
	if err != nil {
		logger.WithPlayer(s.logger, id, "").WithError(err).Debug("Player history unavailable")
		return rec, nil
	}
	return analytics.WithHistory(rec, snap.teamOf[id], summary.History, snap.ctx), nil
}

// Recommendations returns the categories computed for the current snapshot.
func (s *PlayerService) Recommendations() []analytics.Recommendation {
	snap := s.current()
	if snap == nil {
		return analytics.RecommendWith(nil, s.categories)
	}
	return snap.recs
}

// Teams lists clubs by short name.
func (s *PlayerService) Teams() []models.TeamInfo {
	snap := s.current()
	if snap == nil {
		return []models.TeamInfo{}
	}
	return snap.teams
}

func (s *PlayerService) Status() SnapshotStatus {
	snap := s.current()
	if snap == nil {
		return SnapshotStatus{}
	}
	return SnapshotStatus{
		Loaded:      true,
		Gameweek:    snap.gameweek,
		PlayerCount: len(snap.players),
		Skipped:     snap.skipped,
		UpdatedAt:   snap.at,
	}
}

func teamsFromClubs(clubs map[int]feed.Club) []models.TeamInfo {
	teams := make([]models.TeamInfo, 0, len(clubs))
	for _, c := range clubs {
		teams = append(teams, models.TeamInfo{ID: c.ID, Name: c.Name, ShortName: c.ShortName})
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].ShortName < teams[j].ShortName
	})
	return teams
}
