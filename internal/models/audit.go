package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// NarrativeLog records every narrative assessment served to a client.
type NarrativeLog struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PlayerID       string         `gorm:"not null;index" json:"player_id"`
	PlayerName     string         `json:"player_name"`
	Source         string         `gorm:"not null" json:"source"` // "rules" or "external"
	CaptainRating  int            `gorm:"not null" json:"captain_rating"`
	TransferAdvice string         `json:"transfer_advice"`
	RiskFactors    pq.StringArray `gorm:"type:text" json:"risk_factors"`
	Fingerprint    string         `gorm:"index" json:"fingerprint"`
	Payload        datatypes.JSON `json:"payload"`
	CreatedAt      time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM
func (NarrativeLog) TableName() string {
	return "narrative_logs"
}

// FeedSnapshot records one successful refresh of the provider feed.
type FeedSnapshot struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Gameweek        int            `gorm:"index" json:"gameweek"`
	PlayerCount     int            `json:"player_count"`
	SkippedCount    int            `json:"skipped_count"`
	FixtureCount    int            `json:"fixture_count"`
	DurationMillis  int64          `json:"duration_ms"`
	Recommendations datatypes.JSON `json:"recommendations"`
	FetchedAt       time.Time      `gorm:"index" json:"fetched_at"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (FeedSnapshot) TableName() string {
	return "feed_snapshots"
}

// AllModels lists every persisted model for migrations.
func AllModels() []interface{} {
	return []interface{}{&NarrativeLog{}, &FeedSnapshot{}}
}
