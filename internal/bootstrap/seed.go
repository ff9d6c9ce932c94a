package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"anoa.com/campusforum/internal/entity"
	accessService "anoa.com/campusforum/internal/modules/access/service"
	pointsService "anoa.com/campusforum/internal/modules/points/service"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Profile{},
		&entity.Admin{},
		&entity.PointRecord{},
		&entity.Post{},
		&entity.Reply{},
		&entity.PostVote{},
		&entity.ReplyVote{},
		&entity.LineGroup{},
		&entity.Notification{},
		&entity.Announcement{},
		&entity.Report{},
		&entity.LineGroupApplication{},
		&entity.LineGroupCreationRequest{},
	)
}

// SeedSuperadmin creates the first console admin together with a superadmin
// profile sharing its id. Empty credentials skip seeding.
func SeedSuperadmin(ctx context.Context, db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		slog.Info("superadmin seed skipped, credentials not configured")
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&entity.Admin{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		slog.Info("superadmin already exists, skipping seed", "email", email)
		return nil
	}

	hash, err := accessService.HashPassword(password)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin := entity.Admin{
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		var existing entity.Profile
		err := tx.Where("id = ?", admin.ID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&existing).Update("role", entity.RoleSuperadmin).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile := entity.Profile{
				ID:       admin.ID,
				Username: pointsService.UsernameFromEmail(email),
				Email:    &email,
				Level:    1,
				Role:     entity.RoleSuperadmin,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		default:
			return err
		}

		slog.Info("superadmin seeded", "email", email, "id", admin.ID)
		return nil
	})
}
