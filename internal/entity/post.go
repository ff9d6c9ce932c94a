package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Post struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Category      *string        `gorm:"size:80;index" json:"category,omitempty"`
	Summary       *string        `gorm:"type:text" json:"summary,omitempty"`
	CoverImageURL *string        `gorm:"type:text" json:"cover_image_url,omitempty"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags"`
	AuthorID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Author        *Profile       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	ReplyCount    int            `gorm:"not null;default:0" json:"reply_count"`
	ViewCount     int            `gorm:"not null;default:0" json:"view_count"`
	UpvoteCount   int            `gorm:"not null;default:0" json:"upvote_count"`
	DownvoteCount int            `gorm:"not null;default:0" json:"downvote_count"`
	IsClosed      bool           `gorm:"not null;default:false" json:"is_closed"`
	IsPinned      bool           `gorm:"not null;default:false;index" json:"is_pinned"`
	PinnedAt      *time.Time     `json:"pinned_at,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

// PinActive reports whether the pin is still within its window at now.
func (p *Post) PinActive(now time.Time, window time.Duration) bool {
	if !p.IsPinned || p.PinnedAt == nil {
		return false
	}
	return now.Sub(*p.PinnedAt) < window
}

type Reply struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PostID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"post_id"`
	Post          *Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author        *Profile   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	ParentReplyID *uuid.UUID `gorm:"type:uuid;index" json:"parent_reply_id,omitempty"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	UpvoteCount   int        `gorm:"not null;default:0" json:"upvote_count"`
	DownvoteCount int        `gorm:"not null;default:0" json:"downvote_count"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Reply) TableName() string {
	return "post_replies"
}

func (r *Reply) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
