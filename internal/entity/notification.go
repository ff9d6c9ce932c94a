package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationLevelUp     = "level_up"
	NotificationPostUpvoted = "post_upvoted"
	NotificationPostReplied = "post_replied"
	NotificationRoleChanged = "role_changed"

	NotificationApplicationReviewed  = "application_reviewed"
	NotificationGroupRequestReviewed = "group_request_reviewed"
	NotificationReportReviewed       = "report_reviewed"
)

type Notification struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1" json:"user_id"` // recipient
	ActorID    *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	EntityID   *uuid.UUID `gorm:"type:uuid" json:"entity_id,omitempty"`
	EntityType string     `gorm:"size:50" json:"entity_type,omitempty"` // 'post', 'reply', 'profile'
	Type       string     `gorm:"size:50;not null" json:"type"`
	Message    string     `gorm:"type:text" json:"message"`
	IsRead     bool       `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"is_read"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Actor *Profile `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
