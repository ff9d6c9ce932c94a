package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Announcement is a site-wide notice. CreatedBy may be a console admin
// without a forum profile, so it carries no foreign key.
type Announcement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Priority  int       `gorm:"not null;default:0;index:idx_announcements_active_priority,priority:2,sort:desc" json:"priority"`
	IsActive  bool      `gorm:"not null;default:true;index:idx_announcements_active_priority,priority:1" json:"is_active"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Announcement) TableName() string {
	return "announcements"
}

func (a *Announcement) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
