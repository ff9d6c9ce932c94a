package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/campusforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound       = errors.New("line group not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrRequestNotFound     = errors.New("creation request not found")
	ErrNotPending          = errors.New("already reviewed")
)

type ApplicationQuery struct {
	GroupIDs    []uuid.UUID
	ApplicantID *uuid.UUID
	Status      string
	Offset      int
	Limit       int
}

type RequestQuery struct {
	RequesterID *uuid.UUID
	Status      string
	Offset      int
	Limit       int
}

type GroupApplicationRepository interface {
	FindGroup(ctx context.Context, id uuid.UUID) (*entity.LineGroup, error)
	ManagedGroupIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error)

	// OpenApplicationStatus returns the status of a pending or approved
	// application, or "" when the user may apply.
	OpenApplicationStatus(ctx context.Context, groupID, applicantID uuid.UUID) (string, error)
	CreateApplication(ctx context.Context, app *entity.LineGroupApplication) error
	FindApplication(ctx context.Context, id uuid.UUID) (*entity.LineGroupApplication, error)
	ListApplications(ctx context.Context, q ApplicationQuery) ([]entity.LineGroupApplication, int64, error)
	// ReviewApplication settles a pending application. Approval bumps the
	// group's member count in the same transaction.
	ReviewApplication(ctx context.Context, id, groupID uuid.UUID, status string, reviewerID uuid.UUID, at time.Time) error

	CreateRequest(ctx context.Context, req *entity.LineGroupCreationRequest) error
	FindRequest(ctx context.Context, id uuid.UUID) (*entity.LineGroupCreationRequest, error)
	ListRequests(ctx context.Context, q RequestQuery) ([]entity.LineGroupCreationRequest, int64, error)
	// ApproveRequest creates the group and marks the request approved
	// atomically.
	ApproveRequest(ctx context.Context, id, reviewerID uuid.UUID, at time.Time, group *entity.LineGroup) error
	RejectRequest(ctx context.Context, id, reviewerID uuid.UUID, at time.Time, reason *string) error
}

type groupApplicationRepository struct {
	db *gorm.DB
}

func NewGroupApplicationRepository(db *gorm.DB) GroupApplicationRepository {
	return &groupApplicationRepository{db: db}
}

const pendingFirst = "CASE WHEN status = 'pending' THEN 0 ELSE 1 END, created_at DESC"

func (r *groupApplicationRepository) FindGroup(ctx context.Context, id uuid.UUID) (*entity.LineGroup, error) {
	var group entity.LineGroup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *groupApplicationRepository) ManagedGroupIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.LineGroup{}).
		Where("manager_id = ?", managerID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *groupApplicationRepository) OpenApplicationStatus(ctx context.Context, groupID, applicantID uuid.UUID) (string, error) {
	var statuses []string
	err := r.db.WithContext(ctx).Model(&entity.LineGroupApplication{}).
		Where("group_id = ? AND applicant_id = ? AND status IN ?", groupID, applicantID,
			[]string{entity.RequestPending, entity.RequestApproved}).
		Order("created_at DESC").
		Limit(1).
		Pluck("status", &statuses).Error
	if err != nil || len(statuses) == 0 {
		return "", err
	}
	return statuses[0], nil
}

func (r *groupApplicationRepository) CreateApplication(ctx context.Context, app *entity.LineGroupApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *groupApplicationRepository) FindApplication(ctx context.Context, id uuid.UUID) (*entity.LineGroupApplication, error) {
	var app entity.LineGroupApplication
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Applicant").
		Where("id = ?", id).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *groupApplicationRepository) ListApplications(ctx context.Context, q ApplicationQuery) ([]entity.LineGroupApplication, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.LineGroupApplication{})
	if q.GroupIDs != nil {
		query = query.Where("group_id IN ?", q.GroupIDs)
	}
	if q.ApplicantID != nil {
		query = query.Where("applicant_id = ?", *q.ApplicantID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []entity.LineGroupApplication
	if err := query.Preload("Group").Preload("Applicant").
		Order(pendingFirst).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *groupApplicationRepository) ReviewApplication(ctx context.Context, id, groupID uuid.UUID, status string, reviewerID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.LineGroupApplication{}).
			Where("id = ? AND status = ?", id, entity.RequestPending).
			Updates(map[string]any{
				"status":      status,
				"reviewed_by": reviewerID,
				"reviewed_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}

		if status != entity.RequestApproved {
			return nil
		}
		return tx.Model(&entity.LineGroup{}).
			Where("id = ?", groupID).
			UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error
	})
}

func (r *groupApplicationRepository) CreateRequest(ctx context.Context, req *entity.LineGroupCreationRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *groupApplicationRepository) FindRequest(ctx context.Context, id uuid.UUID) (*entity.LineGroupCreationRequest, error) {
	var req entity.LineGroupCreationRequest
	if err := r.db.WithContext(ctx).Preload("Requester").Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *groupApplicationRepository) ListRequests(ctx context.Context, q RequestQuery) ([]entity.LineGroupCreationRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.LineGroupCreationRequest{})
	if q.RequesterID != nil {
		query = query.Where("requester_id = ?", *q.RequesterID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reqs []entity.LineGroupCreationRequest
	if err := query.Preload("Requester").
		Order(pendingFirst).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (r *groupApplicationRepository) ApproveRequest(ctx context.Context, id, reviewerID uuid.UUID, at time.Time, group *entity.LineGroup) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		res := tx.Model(&entity.LineGroupCreationRequest{}).
			Where("id = ? AND status = ?", id, entity.RequestPending).
			Updates(map[string]any{
				"status":      entity.RequestApproved,
				"reviewed_by": reviewerID,
				"reviewed_at": at,
				"group_id":    group.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}
		return nil
	})
}

func (r *groupApplicationRepository) RejectRequest(ctx context.Context, id, reviewerID uuid.UUID, at time.Time, reason *string) error {
	res := r.db.WithContext(ctx).Model(&entity.LineGroupCreationRequest{}).
		Where("id = ? AND status = ?", id, entity.RequestPending).
		Updates(map[string]any{
			"status":           entity.RequestRejected,
			"reviewed_by":      reviewerID,
			"reviewed_at":      at,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
