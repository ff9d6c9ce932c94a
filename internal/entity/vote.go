package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	VoteUp   = "upvote"
	VoteDown = "downvote"
)

type PostVote struct {
	PostID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	VoteType  string    `gorm:"size:10;not null" json:"vote_type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PostVote) TableName() string {
	return "post_votes"
}

type ReplyVote struct {
	ReplyID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"reply_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	VoteType  string    `gorm:"size:10;not null" json:"vote_type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ReplyVote) TableName() string {
	return "reply_votes"
}
