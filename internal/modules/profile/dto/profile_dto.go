package dto

import (
	"io"
	"time"

	pointsDto "anoa.com/campusforum/internal/modules/points/dto"
	"github.com/google/uuid"
)

// AvatarFile is an uploaded avatar image.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

// UpdateProfileInput accepts JSON or multipart form fields.
type UpdateProfileInput struct {
	Username  *string `json:"username" form:"username" binding:"omitempty,min=1,max=50"`
	AvatarURL *string `json:"avatar_url" form:"avatar_url" binding:"omitempty,url,max=2048"`
}

type PublicProfileResponse struct {
	ID          uuid.UUID             `json:"id"`
	Username    string                `json:"username"`
	AvatarURL   *string               `json:"avatar_url,omitempty"`
	Role        string                `json:"role"`
	TotalPoints int                   `json:"total_points"`
	Level       int                   `json:"level"`
	Status      pointsDto.LevelStatus `json:"level_status"`
	CreatedAt   time.Time             `json:"created_at"`
}
