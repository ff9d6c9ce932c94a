package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateAnnouncementRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Content  string `json:"content" binding:"required,min=1,max=2000"`
	Priority int    `json:"priority" binding:"min=0,max=10"`
	IsActive *bool  `json:"is_active"`
}

type UpdateAnnouncementRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=1,max=200"`
	Content  *string `json:"content" binding:"omitempty,min=1,max=2000"`
	Priority *int    `json:"priority" binding:"omitempty,min=0,max=10"`
	IsActive *bool   `json:"is_active"`
}

type AnnouncementFilter struct {
	ActiveOnly *bool `form:"active_only"`
	Page       int   `form:"page"`
	Limit      int   `form:"limit"`
}

type AnnouncementResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Priority   int       `json:"priority"`
	IsActive   bool      `json:"is_active"`
	CreatedBy  uuid.UUID `json:"created_by"`
	AuthorName *string   `json:"author_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AnnouncementListResponse struct {
	Data  []AnnouncementResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
