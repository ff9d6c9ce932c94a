package repository

import (
	"context"
	"errors"

	"anoa.com/campusforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

// AnnouncementRow carries the author's username when the creator has a
// forum profile.
type AnnouncementRow struct {
	entity.Announcement
	AuthorName *string
}

type AnnouncementRepository interface {
	Create(ctx context.Context, a *entity.Announcement) error
	FindByID(ctx context.Context, id uuid.UUID) (*AnnouncementRow, error)
	// List orders by priority then recency.
	List(ctx context.Context, activeOnly bool, offset, limit int) ([]AnnouncementRow, int64, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("announcements AS a").
		Select("a.*, p.username AS author_name").
		Joins("LEFT JOIN profiles p ON p.id = a.created_by")
}

func (r *announcementRepository) Create(ctx context.Context, a *entity.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *announcementRepository) FindByID(ctx context.Context, id uuid.UUID) (*AnnouncementRow, error) {
	var rows []AnnouncementRow
	if err := r.withAuthor(ctx).Where("a.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrAnnouncementNotFound
	}
	return &rows[0], nil
}

func (r *announcementRepository) List(ctx context.Context, activeOnly bool, offset, limit int) ([]AnnouncementRow, int64, error) {
	var total int64
	count := r.db.WithContext(ctx).Model(&entity.Announcement{})
	if activeOnly {
		count = count.Where("is_active = ?", true)
	}
	if err := count.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.withAuthor(ctx)
	if activeOnly {
		query = query.Where("a.is_active = ?", true)
	}

	var rows []AnnouncementRow
	if err := query.
		Order("a.priority DESC, a.created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *announcementRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.Announcement{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}

func (r *announcementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.Announcement{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}
