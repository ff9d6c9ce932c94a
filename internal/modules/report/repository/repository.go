package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/campusforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrTargetNotFound  = errors.New("report target not found")
	ErrDuplicateReport = errors.New("already reported")
	ErrAlreadyReviewed = errors.New("report already reviewed")
)

type ReportQuery struct {
	Status     string
	TargetType string
	Offset     int
	Limit      int
}

type ReportRepository interface {
	PostExists(ctx context.Context, postID uuid.UUID) (bool, error)
	// ReplyPostID returns the post a reply belongs to.
	ReplyPostID(ctx context.Context, replyID uuid.UUID) (uuid.UUID, error)
	GroupExists(ctx context.Context, groupID uuid.UUID) (bool, error)
	HasReported(ctx context.Context, targetType string, targetID, reporterID uuid.UUID) (bool, error)

	// Create returns ErrDuplicateReport when the reporter already flagged
	// the target.
	Create(ctx context.Context, report *entity.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	List(ctx context.Context, q ReportQuery) ([]entity.Report, int64, error)
	// Review closes a pending report; ErrAlreadyReviewed otherwise.
	Review(ctx context.Context, id uuid.UUID, status string, reviewerID uuid.UUID, at time.Time) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *reportRepository) PostExists(ctx context.Context, postID uuid.UUID) (bool, error) {
	return r.exists(ctx, &entity.Post{}, postID)
}

func (r *reportRepository) GroupExists(ctx context.Context, groupID uuid.UUID) (bool, error) {
	return r.exists(ctx, &entity.LineGroup{}, groupID)
}

func (r *reportRepository) ReplyPostID(ctx context.Context, replyID uuid.UUID) (uuid.UUID, error) {
	var reply entity.Reply
	err := r.db.WithContext(ctx).Select("id", "post_id").Where("id = ?", replyID).First(&reply).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrTargetNotFound
		}
		return uuid.Nil, err
	}
	return reply.PostID, nil
}

func (r *reportRepository) HasReported(ctx context.Context, targetType string, targetID, reporterID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Report{}).
		Where("target_type = ? AND target_id = ? AND reporter_id = ?", targetType, targetID, reporterID).
		Count(&n).Error
	return n > 0, err
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(report)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicateReport
	}
	return nil
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	var report entity.Report
	if err := r.db.WithContext(ctx).Preload("Reporter").Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, q ReportQuery) ([]entity.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Report{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.TargetType != "" {
		query = query.Where("target_type = ?", q.TargetType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []entity.Report
	if err := query.Preload("Reporter").
		Order("CASE WHEN status = 'pending' THEN 0 ELSE 1 END, created_at DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) Review(ctx context.Context, id uuid.UUID, status string, reviewerID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&entity.Report{}).
		Where("id = ? AND status = ?", id, entity.ReportPending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyReviewed
	}
	return nil
}
