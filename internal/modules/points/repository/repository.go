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
	ErrProfileNotFound     = errors.New("profile not found")
	ErrInsufficientBalance = errors.New("insufficient points")
)

// levelExpr derives the level from the pre-update balance plus the delta.
// Postgres evaluates every SET expression against the old row.
const levelExpr = "LEAST(10, GREATEST(1, 1 + (total_points + ?) / 100))"

// Balance is the state of a profile right after a ledger write.
type Balance struct {
	UserID      uuid.UUID
	TotalPoints int
	Level       int
}

// WeeklyScore is a profile with the points it earned inside a window.
type WeeklyScore struct {
	entity.Profile
	WindowPoints int
}

type DriftRow struct {
	UserID      uuid.UUID
	TotalPoints int
	LedgerSum   int
}

type LedgerRepository interface {
	// Apply adds delta to the balance and appends a ledger row in one
	// transaction. A negative delta is refused when it would overdraw.
	Apply(ctx context.Context, userID uuid.UUID, delta int, reason string) (*Balance, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	// LastLoginDate returns the civil date (YYYY-MM-DD) or "" when never set.
	LastLoginDate(ctx context.Context, userID uuid.UUID) (string, error)
	// StampLoginDate sets the date unless it already equals day; false means
	// another request claimed the day first.
	StampLoginDate(ctx context.Context, userID uuid.UUID, day string) (bool, error)
	// RestoreLoginDate undoes a stamp of day, putting prev ("" for NULL) back.
	RestoreLoginDate(ctx context.Context, userID uuid.UUID, day, prev string) error

	CountAbove(ctx context.Context, totalPoints int) (int64, error)
	CountProfiles(ctx context.Context) (int64, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointRecord, error)
	TopProfiles(ctx context.Context, limit int) ([]entity.Profile, error)
	TopSince(ctx context.Context, since time.Time, limit int) ([]WeeklyScore, error)
	Drift(ctx context.Context) ([]DriftRow, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Apply(ctx context.Context, userID uuid.UUID, delta int, reason string) (*Balance, error) {
	var updated entity.Profile

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&updated).
			Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "total_points"}, {Name: "level"}}}).
			Where("id = ?", userID)
		if delta < 0 {
			q = q.Where("total_points >= ?", -delta)
		}

		res := q.Updates(map[string]any{
			"total_points": gorm.Expr("total_points + ?", delta),
			"level":        gorm.Expr(levelExpr, delta),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&entity.Profile{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return ErrProfileNotFound
			}
			return ErrInsufficientBalance
		}

		return tx.Create(&entity.PointRecord{
			UserID: userID,
			Points: delta,
			Reason: reason,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &Balance{
		UserID:      userID,
		TotalPoints: updated.TotalPoints,
		Level:       updated.Level,
	}, nil
}

func (r *ledgerRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var p entity.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ledgerRepository) LastLoginDate(ctx context.Context, userID uuid.UUID) (string, error) {
	var rows []struct {
		Day *string
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Select("to_char(last_login_date, 'YYYY-MM-DD') AS day").
		Where("id = ?", userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", ErrProfileNotFound
	}
	if rows[0].Day == nil {
		return "", nil
	}
	return *rows[0].Day, nil
}

func (r *ledgerRepository) StampLoginDate(ctx context.Context, userID uuid.UUID, day string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("id = ? AND last_login_date IS DISTINCT FROM ?::date", userID, day).
		UpdateColumn("last_login_date", gorm.Expr("?::date", day))
	return res.RowsAffected > 0, res.Error
}

func (r *ledgerRepository) RestoreLoginDate(ctx context.Context, userID uuid.UUID, day, prev string) error {
	var value any = gorm.Expr("NULL")
	if prev != "" {
		value = gorm.Expr("?::date", prev)
	}
	return r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("id = ? AND last_login_date = ?::date", userID, day).
		UpdateColumn("last_login_date", value).Error
}

func (r *ledgerRepository) CountAbove(ctx context.Context, totalPoints int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Profile{}).Where("total_points > ?", totalPoints).Count(&n).Error
	return n, err
}

func (r *ledgerRepository) CountProfiles(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Profile{}).Count(&n).Error
	return n, err
}

func (r *ledgerRepository) History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointRecord, error) {
	var records []entity.PointRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *ledgerRepository) TopProfiles(ctx context.Context, limit int) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Order("total_points desc, created_at asc").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

func (r *ledgerRepository) TopSince(ctx context.Context, since time.Time, limit int) ([]WeeklyScore, error) {
	var rows []WeeklyScore
	err := r.db.WithContext(ctx).
		Table("profiles").
		Select("profiles.*, COALESCE(SUM(point_records.points), 0) AS window_points").
		Joins("JOIN point_records ON point_records.user_id = profiles.id AND point_records.created_at >= ?", since).
		Group("profiles.id").
		Order("window_points desc, profiles.total_points desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *ledgerRepository) Drift(ctx context.Context) ([]DriftRow, error) {
	var rows []DriftRow
	err := r.db.WithContext(ctx).
		Table("profiles AS p").
		Select("p.id AS user_id, p.total_points, COALESCE(SUM(r.points), 0) AS ledger_sum").
		Joins("LEFT JOIN point_records r ON r.user_id = p.id").
		Group("p.id, p.total_points").
		Having("p.total_points <> COALESCE(SUM(r.points), 0)").
		Scan(&rows).Error
	return rows, err
}
