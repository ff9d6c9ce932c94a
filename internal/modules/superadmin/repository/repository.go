package repository

import (
	"context"
	"errors"
	"strings"

	"anoa.com/campusforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type Stats struct {
	TotalUsers          int64
	TotalPosts          int64
	TotalReplies        int64
	TotalLineGroups     int64
	ActiveAdmins        int64
	PointsInCirculation int64
	RoleDistribution    map[string]int64
}

type UserQuery struct {
	Role   string
	Search string
	Offset int
	Limit  int
}

type SuperadminRepository interface {
	Stats(ctx context.Context) (*Stats, error)
	ListUsers(ctx context.Context, q UserQuery) ([]entity.Profile, int64, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role string) error
	// DeleteUser removes the profile and everything keyed by it.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type superadminRepository struct {
	db *gorm.DB
}

func NewSuperadminRepository(db *gorm.DB) SuperadminRepository {
	return &superadminRepository{db: db}
}

func (r *superadminRepository) Stats(ctx context.Context) (*Stats, error) {
	db := r.db.WithContext(ctx)
	st := &Stats{RoleDistribution: map[string]int64{}}

	counts := []struct {
		model any
		where string
		dst   *int64
	}{
		{&entity.Profile{}, "", &st.TotalUsers},
		{&entity.Post{}, "", &st.TotalPosts},
		{&entity.Reply{}, "", &st.TotalReplies},
		{&entity.LineGroup{}, "", &st.TotalLineGroups},
		{&entity.Admin{}, "is_active = true", &st.ActiveAdmins},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Model(&entity.Profile{}).
		Select("COALESCE(SUM(total_points), 0)").
		Scan(&st.PointsInCirculation).Error; err != nil {
		return nil, err
	}

	var roles []struct {
		Role  string
		Count int64
	}
	if err := db.Model(&entity.Profile{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&roles).Error; err != nil {
		return nil, err
	}
	for _, r := range roles {
		st.RoleDistribution[r.Role] = r.Count
	}
	return st, nil
}

func (r *superadminRepository) ListUsers(ctx context.Context, q UserQuery) ([]entity.Profile, int64, error) {
	var users []entity.Profile
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Profile{})
	if q.Role != "" {
		query = query.Where("role = ?", q.Role)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(q.Offset).Limit(q.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *superadminRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role string) error {
	res := r.db.WithContext(ctx).Model(&entity.Profile{}).Where("id = ?", userID).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *superadminRepository) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cleanup := []struct {
			model any
			where string
			args  []any
		}{
			{&entity.PointRecord{}, "user_id = ?", []any{userID}},
			{&entity.Notification{}, "user_id = ? OR actor_id = ?", []any{userID, userID}},
			{&entity.PostVote{}, "user_id = ? OR post_id IN (SELECT id FROM posts WHERE author_id = ?)", []any{userID, userID}},
			{&entity.ReplyVote{}, "user_id = ? OR reply_id IN (SELECT id FROM post_replies WHERE author_id = ?)", []any{userID, userID}},
		}
		for _, c := range cleanup {
			if err := tx.Where(c.where, c.args...).Delete(c.model).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&entity.Admin{}).Where("id = ?", userID).Update("is_active", false).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", userID).Delete(&entity.Profile{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}
