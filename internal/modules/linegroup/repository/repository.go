package repository

import (
	"context"
	"errors"

	"anoa.com/campusforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrGroupNotFound = errors.New("line group not found")

type LineGroupRepository interface {
	Create(ctx context.Context, group *entity.LineGroup) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.LineGroup, error)
	List(ctx context.Context, includeInactive bool, offset, limit int) ([]entity.LineGroup, int64, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type lineGroupRepository struct {
	db *gorm.DB
}

func NewLineGroupRepository(db *gorm.DB) LineGroupRepository {
	return &lineGroupRepository{db: db}
}

func (r *lineGroupRepository) Create(ctx context.Context, group *entity.LineGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *lineGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.LineGroup, error) {
	var group entity.LineGroup
	if err := r.db.WithContext(ctx).Preload("Manager").Where("id = ?", id).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *lineGroupRepository) List(ctx context.Context, includeInactive bool, offset, limit int) ([]entity.LineGroup, int64, error) {
	var groups []entity.LineGroup
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.LineGroup{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Manager").
		Order("member_count DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&groups).Error; err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

func (r *lineGroupRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.LineGroup{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *lineGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.LineGroup{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGroupNotFound
	}
	return nil
}
