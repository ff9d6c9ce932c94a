package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LineGroup struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	QRCodeURL   string    `gorm:"type:text;not null" json:"qr_code_url"`
	ManagerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"manager_id"`
	Manager     *Profile  `gorm:"foreignKey:ManagerID;constraint:OnDelete:CASCADE" json:"manager,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	IsPrivate   bool      `gorm:"not null;default:false" json:"is_private"`
	MemberCount int       `gorm:"not null;default:0" json:"member_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LineGroup) TableName() string {
	return "line_groups"
}

func (g *LineGroup) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID, err = uuid.NewV7()
	}
	return
}
