package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointRecord is one signed entry of the points ledger.
type PointRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_point_records_user_created,priority:1" json:"user_id"`
	Points    int       `gorm:"not null" json:"points"`
	Reason    string    `gorm:"size:100;not null" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_point_records_user_created,priority:2,sort:desc" json:"created_at"`
}

func (PointRecord) TableName() string {
	return "point_records"
}

func (p *PointRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
