package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/campusforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type AccessRepository interface {
	HasActiveAdmin(ctx context.Context, id uuid.UUID) (bool, error)
	// ProfileRole returns ErrNotFound when the profile does not exist.
	ProfileRole(ctx context.Context, id uuid.UUID) (string, error)
	FindActiveAdminByEmail(ctx context.Context, email string) (*entity.Admin, error)
	StampAdminLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type accessRepository struct {
	db *gorm.DB
}

func NewAccessRepository(db *gorm.DB) AccessRepository {
	return &accessRepository{db: db}
}

func (r *accessRepository) HasActiveAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Admin{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error
	return count > 0, err
}

func (r *accessRepository) ProfileRole(ctx context.Context, id uuid.UUID) (string, error) {
	var roles []string
	err := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("role", &roles).Error
	if err != nil {
		return "", err
	}
	if len(roles) == 0 {
		return "", ErrNotFound
	}
	return roles[0], nil
}

func (r *accessRepository) FindActiveAdminByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	var admin entity.Admin
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND is_active = ?", email, true).
		First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *accessRepository) StampAdminLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.Admin{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
