package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser       = "user"
	RoleModerator  = "moderator"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// ValidRoles lists every role a profile may carry.
var ValidRoles = []string{RoleUser, RoleModerator, RoleAdmin, RoleSuperadmin}

// IsAdminRole reports whether the role grants admin privileges.
func IsAdminRole(role string) bool {
	switch role {
	case RoleModerator, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Profile is keyed by the identity provider's user id.
type Profile struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username      string     `gorm:"size:50;not null" json:"username"`
	Email         *string    `gorm:"size:255" json:"email,omitempty"`
	AvatarURL     *string    `gorm:"type:text" json:"avatar_url,omitempty"`
	TotalPoints   int        `gorm:"not null;default:0;index;check:chk_profiles_total_points,total_points >= 0" json:"total_points"`
	Level         int        `gorm:"not null;default:1" json:"level"`
	LastLoginDate *time.Time `gorm:"type:date" json:"last_login_date,omitempty"`
	Role          string     `gorm:"size:20;not null;default:user;index" json:"role"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Admin is a console operator, independent of the identity provider.
type Admin struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
