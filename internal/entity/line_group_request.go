package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// LineGroupApplication is a request to join a line group.
type LineGroupApplication struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"group_id"`
	Group       *LineGroup `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"group,omitempty"`
	ApplicantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"applicant_id"`
	Applicant   *Profile   `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"applicant,omitempty"`
	Message     *string    `gorm:"type:text" json:"message,omitempty"`
	Status      string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (LineGroupApplication) TableName() string {
	return "line_group_applications"
}

func (a *LineGroupApplication) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

// LineGroupCreationRequest asks an admin to create a group managed by the
// requester.
type LineGroupCreationRequest struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester       *Profile   `gorm:"foreignKey:RequesterID;constraint:OnDelete:CASCADE" json:"requester,omitempty"`
	Name            string     `gorm:"size:100;not null" json:"name"`
	Description     *string    `gorm:"type:text" json:"description,omitempty"`
	QRCodeURL       string     `gorm:"type:text;not null" json:"qr_code_url"`
	IsPrivate       bool       `gorm:"not null;default:false" json:"is_private"`
	Status          string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	GroupID         *uuid.UUID `gorm:"type:uuid" json:"group_id,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (LineGroupCreationRequest) TableName() string {
	return "line_group_creation_requests"
}

func (r *LineGroupCreationRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
