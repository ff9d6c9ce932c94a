package dto

import (
	"time"

	"github.com/google/uuid"
)

type StatsResponse struct {
	TotalUsers          int64            `json:"total_users"`
	TotalPosts          int64            `json:"total_posts"`
	TotalReplies        int64            `json:"total_replies"`
	TotalLineGroups     int64            `json:"total_line_groups"`
	ActiveAdmins        int64            `json:"active_admins"`
	PointsInCirculation int64            `json:"points_in_circulation"`
	RoleDistribution    map[string]int64 `json:"role_distribution"`
}

type UserFilter struct {
	Role   string `form:"role" binding:"omitempty,oneof=user moderator admin superadmin"`
	Search string `form:"search" binding:"omitempty,max=100"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user moderator admin superadmin"`
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       *string   `json:"email,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Role        string    `json:"role"`
	TotalPoints int       `json:"total_points"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserListResponse struct {
	Data  []UserResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
