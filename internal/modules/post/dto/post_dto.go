package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Title         string   `json:"title" binding:"required,min=3,max=200"`
	Summary       *string  `json:"summary" binding:"omitempty,max=20000"`
	Category      *string  `json:"category" binding:"omitempty,max=80"`
	CoverImageURL *string  `json:"cover_image_url" binding:"omitempty,url,max=2048"`
	Tags          []string `json:"tags" binding:"omitempty,max=10,dive,max=40"`
}

type CreateReplyRequest struct {
	Content       string `json:"content" binding:"required,max=10000"`
	ParentReplyID string `json:"parent_reply_id" binding:"omitempty,uuid"`
}

type PostFilter struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Tag      string `form:"tag"`
	Category string `form:"category"`
}

type AuthorResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Level     int       `json:"level"`
}

type PostResponse struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Summary       *string          `json:"summary,omitempty"`
	Category      *string          `json:"category,omitempty"`
	CoverImageURL *string          `json:"cover_image_url,omitempty"`
	Tags          []string         `json:"tags"`
	Author        AuthorResponse   `json:"author"`
	ReplyCount    int              `json:"reply_count"`
	ViewCount     int              `json:"view_count"`
	UpvoteCount   int              `json:"upvote_count"`
	DownvoteCount int              `json:"downvote_count"`
	IsClosed      bool             `json:"is_closed"`
	IsPinned      bool             `json:"is_pinned"`
	PinnedAt      *time.Time       `json:"pinned_at,omitempty"`
	UserVote      *string          `json:"user_vote,omitempty"`
	Replies       []*ReplyResponse `json:"replies,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type ReplyResponse struct {
	ID            uuid.UUID        `json:"id"`
	PostID        uuid.UUID        `json:"post_id"`
	ParentReplyID *uuid.UUID       `json:"parent_reply_id,omitempty"`
	Content       string           `json:"content"`
	Author        AuthorResponse   `json:"author"`
	UpvoteCount   int              `json:"upvote_count"`
	DownvoteCount int              `json:"downvote_count"`
	UserVote      *string          `json:"user_vote,omitempty"`
	Replies       []*ReplyResponse `json:"replies,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type PaginatedPostResponse struct {
	Data []PostResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}
