package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stitts-dev/fpl-scout/internal/analytics"
	"github.com/stitts-dev/fpl-scout/internal/models"
	"github.com/stitts-dev/fpl-scout/pkg/database"
)

var ErrNoSnapshot = errors.New("no feed snapshot recorded")

// AnalysisStore persists the narrative audit log and feed snapshots.
type AnalysisStore struct {
	db     *database.DB
	logger *logrus.Logger
}

func NewAnalysisStore(db *database.DB, logger *logrus.Logger) *AnalysisStore {
	return &AnalysisStore{db: db, logger: logger}
}

// RecordNarrative appends one served narrative to the audit log.
func (s *AnalysisStore) RecordNarrative(ctx context.Context, p models.PlayerRecord, n analytics.Narrative, fingerprint string) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal narrative: %w", err)
	}

	entry := models.NarrativeLog{
		PlayerID:       p.ID,
		PlayerName:     p.Name,
		Source:         n.Source,
		CaptainRating:  n.CaptainRating,
		TransferAdvice: n.TransferAdvice,
		RiskFactors:    pq.StringArray(n.RiskFactors),
		Fingerprint:    fingerprint,
		Payload:        datatypes.JSON(payload),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record narrative: %w", err)
	}
	return nil
}

// RecentNarratives returns the newest audit entries for a player.
func (s *AnalysisStore) RecentNarratives(ctx context.Context, playerID string, limit int) ([]models.NarrativeLog, error) {
	if limit <= 0 {
		limit = 10
	}
	var logs []models.NarrativeLog
	err := s.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load narratives: %w", err)
	}
	return logs, nil
}

// RecordSnapshot stores a refresh summary with its recommendations.
func (s *AnalysisStore) RecordSnapshot(ctx context.Context, snap *models.FeedSnapshot, recs []analytics.Recommendation) error {
	if recs != nil {
		data, err := json.Marshal(recs)
		if err != nil {
			return fmt.Errorf("failed to marshal recommendations: %w", err)
		}
		snap.Recommendations = datatypes.JSON(data)
	}
	if err := s.db.WithContext(ctx).Create(snap).Error; err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent refresh summary.
func (s *AnalysisStore) LatestSnapshot(ctx context.Context) (*models.FeedSnapshot, error) {
	var snap models.FeedSnapshot
	err := s.db.WithContext(ctx).Order("fetched_at DESC, id DESC").First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &snap, nil
}

// Prune deletes audit rows and snapshots created before cutoff.
func (s *AnalysisStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	db := s.db.WithContext(ctx)
	cutoff = cutoff.UTC()

	narratives := db.Where("created_at < ?", cutoff).Delete(&models.NarrativeLog{})
	if narratives.Error != nil {
		return 0, fmt.Errorf("failed to prune narratives: %w", narratives.Error)
	}
	snapshots := db.Where("created_at < ?", cutoff).Delete(&models.FeedSnapshot{})
	if snapshots.Error != nil {
		return narratives.RowsAffected, fmt.Errorf("failed to prune snapshots: %w", snapshots.Error)
	}

	removed := narratives.RowsAffected + snapshots.RowsAffected
	s.logger.WithFields(logrus.Fields{
		"cutoff":  cutoff.Format(time.RFC3339),
		"removed": removed,
	}).Info("Pruned analysis history")
	return removed, nil
}
