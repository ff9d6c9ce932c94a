package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportRequest struct {
	Reason      string  `json:"reason" binding:"required,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// GroupReportRequest asks for a longer reason than post reports.
type GroupReportRequest struct {
	Reason      string  `json:"reason" binding:"required,min=10,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

type ReportFilter struct {
	Status     string `form:"status" binding:"omitempty,oneof=pending resolved dismissed"`
	TargetType string `form:"target_type" binding:"omitempty,oneof=post reply line_group"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// ReviewReportRequest accepts approved/rejected as aliases of
// resolved/dismissed.
type ReviewReportRequest struct {
	Status string `json:"status" binding:"required,oneof=resolved dismissed approved rejected"`
}

type ReporterResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type ReportResponse struct {
	ID          uuid.UUID         `json:"id"`
	TargetType  string            `json:"target_type"`
	TargetID    uuid.UUID         `json:"target_id"`
	PostID      *uuid.UUID        `json:"post_id,omitempty"`
	Reporter    *ReporterResponse `json:"reporter,omitempty"`
	Reason      string            `json:"reason"`
	Description *string           `json:"description,omitempty"`
	Status      string            `json:"status"`
	ReviewedBy  *uuid.UUID        `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

type ReportListResponse struct {
	Data  []ReportResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
