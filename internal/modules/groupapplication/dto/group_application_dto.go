package dto

import (
	"time"

	"github.com/google/uuid"
)

type ApplyRequest struct {
	Message *string `json:"message" binding:"omitempty,max=500"`
}

type ReviewApplicationRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

type ApplicationFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type CreationRequestRequest struct {
	Name        string  `json:"name" binding:"required,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	QRCodeURL   string  `json:"qr_code_url" binding:"required,url"`
	IsPrivate   bool    `json:"is_private"`
}

type ReviewCreationRequest struct {
	Status          string  `json:"status" binding:"required,oneof=approved rejected"`
	RejectionReason *string `json:"rejection_reason" binding:"omitempty,max=500"`
}

type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

type ApplicationResponse struct {
	ID         uuid.UUID   `json:"id"`
	GroupID    uuid.UUID   `json:"group_id"`
	GroupName  string      `json:"group_name,omitempty"`
	Applicant  UserSummary `json:"applicant"`
	Message    *string     `json:"message,omitempty"`
	Status     string      `json:"status"`
	ReviewedBy *uuid.UUID  `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type ApplicationListResponse struct {
	Data  []ApplicationResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

type CreationRequestResponse struct {
	ID              uuid.UUID   `json:"id"`
	Requester       UserSummary `json:"requester"`
	Name            string      `json:"name"`
	Description     *string     `json:"description,omitempty"`
	QRCodeURL       string      `json:"qr_code_url"`
	IsPrivate       bool        `json:"is_private"`
	Status          string      `json:"status"`
	RejectionReason *string     `json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID  `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time  `json:"reviewed_at,omitempty"`
	GroupID         *uuid.UUID  `json:"group_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

type CreationRequestListResponse struct {
	Data  []CreationRequestResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}
