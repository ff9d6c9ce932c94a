package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateGroupRequest struct {
	Name        string  `json:"name" binding:"required,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	QRCodeURL   string  `json:"qr_code_url" binding:"required,url,max=2048"`
	IsPrivate   bool    `json:"is_private"`
	MemberCount int     `json:"member_count" binding:"min=0"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	QRCodeURL   *string `json:"qr_code_url" binding:"omitempty,url,max=2048"`
	IsActive    *bool   `json:"is_active"`
	MemberCount *int    `json:"member_count" binding:"omitempty,min=0"`
}

type GroupFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type ManagerResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

type GroupResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	QRCodeURL   string          `json:"qr_code_url"`
	Manager     ManagerResponse `json:"manager"`
	IsActive    bool            `json:"is_active"`
	IsPrivate   bool            `json:"is_private"`
	MemberCount int             `json:"member_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type GroupListResponse struct {
	Data  []GroupResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
