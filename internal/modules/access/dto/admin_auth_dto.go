package dto

import "github.com/google/uuid"

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AdminLoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   int64     `json:"expires_at"`
	AdminID     uuid.UUID `json:"admin_id"`
	Email       string    `json:"email"`
}
