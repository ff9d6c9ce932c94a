package dto

import (
	"time"

	"github.com/google/uuid"
)

// LevelStatus is the progress of a balance towards the next level.
type LevelStatus struct {
	Level        int     `json:"level"`
	MaxLevel     bool    `json:"max_level"`
	CurrentLevel int     `json:"current_level_points"` // points where the current level starts
	NextLevel    int     `json:"next_level_points"`    // points needed for the next level
	Progress     float64 `json:"progress"`             // 0-100
}

type PointsProfileResponse struct {
	ID          uuid.UUID   `json:"id"`
	Username    string      `json:"username"`
	Email       *string     `json:"email,omitempty"`
	AvatarURL   *string     `json:"avatar_url,omitempty"`
	TotalPoints int         `json:"total_points"`
	Level       int         `json:"level"`
	Role        string      `json:"role"`
	Status      LevelStatus `json:"level_status"`
	CreatedAt   *time.Time  `json:"created_at,omitempty"`
}

type RankingResponse struct {
	Rank        int   `json:"rank"` // 0 when unknown
	TotalPoints int   `json:"total_points"`
	Level       int   `json:"level"`
	TotalUsers  int64 `json:"total_users"`
}

type PointRecordResponse struct {
	ID        uuid.UUID `json:"id"`
	Points    int       `json:"points"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type LeaderboardEntry struct {
	Position    int       `json:"position"` // 1-based
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Role        string    `json:"role"`
	TotalPoints int       `json:"total_points"`
	Level       int       `json:"level"`
	// WeeklyPoints is filled for the weekly timeframe only.
	WeeklyPoints int    `json:"weekly_points,omitempty"`
	WeeklyLabel  string `json:"weekly_label,omitempty"`
}

// DriftEntry is a profile whose balance disagrees with its ledger.
type DriftEntry struct {
	UserID      uuid.UUID `json:"user_id"`
	TotalPoints int       `json:"total_points"`
	LedgerSum   int       `json:"ledger_sum"`
}
