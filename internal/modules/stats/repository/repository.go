package repository

import (
	"context"
	"time"

	"anoa.com/campusforum/internal/entity"
	"gorm.io/gorm"
)

type StatsRepository interface {
	// ActiveMembers counts distinct authors of posts or replies since the
	// given time.
	ActiveMembers(ctx context.Context, since time.Time) (int64, error)
	PostsSince(ctx context.Context, since time.Time) (int64, error)
	// TopUsers ranks profiles by points, leaving out staff roles and active
	// console admins.
	TopUsers(ctx context.Context, limit int) ([]entity.Profile, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) ActiveMembers(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT author_id) FROM (
			SELECT author_id FROM posts WHERE created_at >= ?
			UNION
			SELECT author_id FROM post_replies WHERE created_at >= ?
		) AS authors`, since, since).Scan(&n).Error
	return n, err
}

func (r *statsRepository) PostsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Post{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *statsRepository) TopUsers(ctx context.Context, limit int) ([]entity.Profile, error) {
	var users []entity.Profile
	err := r.db.WithContext(ctx).
		Where("role NOT IN ?", []string{entity.RoleModerator, entity.RoleAdmin, entity.RoleSuperadmin}).
		Where("id NOT IN (?)", r.db.Model(&entity.Admin{}).Select("id").Where("is_active = ?", true)).
		Order("total_points DESC, created_at ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
