package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/stitts-dev/fpl-scout/internal/analytics"
	"github.com/stitts-dev/fpl-scout/internal/models"
	"github.com/stitts-dev/fpl-scout/pkg/database"
)

type AnalysisStoreSuite struct {
	suite.Suite
	db    *database.DB
	store *AnalysisStore
	ctx   context.Context
}

func (s *AnalysisStoreSuite) SetupTest() {
	db, err := database.NewConnection("sqlite", "file::memory:", false)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))

	s.db = db
	s.store = NewAnalysisStore(db, testLogger())
	s.ctx = context.Background()
}

func (s *AnalysisStoreSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *AnalysisStoreSuite) TestRecordNarrative() {
	p := templatePlayer()
	n := analytics.Score(p)

	s.Require().NoError(s.store.RecordNarrative(s.ctx, p, n, "abc123"))

	logs, err := s.store.RecentNarratives(s.ctx, p.ID, 5)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)

	entry := logs[0]
	s.Equal("17", entry.PlayerID)
	s.Equal("Saka", entry.PlayerName)
	s.Equal(analytics.SourceRules, entry.Source)
	s.Equal(4, entry.CaptainRating)
	s.Equal("abc123", entry.Fingerprint)
	s.Equal([]string{"Difficult upcoming fixture"}, []string(entry.RiskFactors))

	var payload analytics.Narrative
	s.Require().NoError(json.Unmarshal(entry.Payload, &payload))
	s.Equal(n, payload)
}

func (s *AnalysisStoreSuite) TestRecentNarrativesNewestFirst() {
	p := templatePlayer()
	for i := 0; i < 4; i++ {
		n := analytics.Score(p)
		n.CaptainRating = i + 1
		s.Require().NoError(s.store.RecordNarrative(s.ctx, p, n, "fp"))
	}
	other := templatePlayer()
	other.ID = "99"
	s.Require().NoError(s.store.RecordNarrative(s.ctx, other, analytics.Score(other), "fp"))

	logs, err := s.store.RecentNarratives(s.ctx, "17", 2)
	s.Require().NoError(err)
	s.Require().Len(logs, 2)
	s.Equal(4, logs[0].CaptainRating)
	s.Equal(3, logs[1].CaptainRating)
}

func (s *AnalysisStoreSuite) TestSnapshots() {
	_, err := s.store.LatestSnapshot(s.ctx)
	s.ErrorIs(err, ErrNoSnapshot)

	recs := analytics.Recommend([]models.PlayerRecord{templatePlayer()})
	first := &models.FeedSnapshot{Gameweek: 11, PlayerCount: 600, FetchedAt: time.Now().Add(-time.Hour)}
	second := &models.FeedSnapshot{Gameweek: 12, PlayerCount: 610, SkippedCount: 2, FetchedAt: time.Now()}
	s.Require().NoError(s.store.RecordSnapshot(s.ctx, first, nil))
	s.Require().NoError(s.store.RecordSnapshot(s.ctx, second, recs))

	latest, err := s.store.LatestSnapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(12, latest.Gameweek)
	s.Equal(2, latest.SkippedCount)

	var stored []analytics.Recommendation
	s.Require().NoError(json.Unmarshal(latest.Recommendations, &stored))
	s.Len(stored, 4)
}

func (s *AnalysisStoreSuite) TestPrune() {
	p := templatePlayer()
	s.Require().NoError(s.store.RecordNarrative(s.ctx, p, analytics.Score(p), "fp"))
	s.Require().NoError(s.store.RecordSnapshot(s.ctx, &models.FeedSnapshot{Gameweek: 1, FetchedAt: time.Now()}, nil))

	removed, err := s.store.Prune(s.ctx, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(0), removed)

	removed, err = s.store.Prune(s.ctx, time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(2), removed)

	logs, err := s.store.RecentNarratives(s.ctx, p.ID, 10)
	s.Require().NoError(err)
	s.Empty(logs)
}

func TestAnalysisStoreSuite(t *testing.T) {
	suite.Run(t, new(AnalysisStoreSuite))
}
