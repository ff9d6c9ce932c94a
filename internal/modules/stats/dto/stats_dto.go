package dto

import (
	"time"

	"github.com/google/uuid"
)

type CommunityStatsResponse struct {
	ActiveMembers   int64 `json:"active_members"`
	ThreadsThisWeek int64 `json:"threads_this_week"`
}

type TopUserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	TotalPoints int       `json:"total_points"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}
