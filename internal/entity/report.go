package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReportTargetPost      = "post"
	ReportTargetReply     = "reply"
	ReportTargetLineGroup = "line_group"
)

const (
	ReportPending   = "pending"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// Report flags a post, reply or line group for moderation. A reporter can
// file one report per target.
type Report struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TargetType  string     `gorm:"size:20;not null;uniqueIndex:idx_reports_target_reporter,priority:1" json:"target_type"`
	TargetID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reports_target_reporter,priority:2" json:"target_id"`
	PostID      *uuid.UUID `gorm:"type:uuid;index" json:"post_id,omitempty"` // set for post and reply reports
	ReporterID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reports_target_reporter,priority:3" json:"reporter_id"`
	Reporter    *Profile   `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"reporter,omitempty"`
	Reason      string     `gorm:"size:200;not null" json:"reason"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	Status      string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
