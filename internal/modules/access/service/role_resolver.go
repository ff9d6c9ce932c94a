package service

import (
	"context"
	"errors"
	"time"

	"anoa.com/campusforum/internal/entity"
	accessRepo "anoa.com/campusforum/internal/modules/access/repository"
	"anoa.com/campusforum/pkg/logger"
	"github.com/google/uuid"
)

// RoleChecker is consumed by middleware and services that gate on roles.
type RoleChecker interface {
	IsAdmin(ctx context.Context, principalID uuid.UUID) bool
	IsSuperadmin(ctx context.Context, principalID uuid.UUID) bool
}

// RoleResolver is fail-closed: any lookup error or timeout means "no".
type RoleResolver struct {
	repo    accessRepo.AccessRepository
	timeout time.Duration
}

func NewRoleResolver(repo accessRepo.AccessRepository, timeout time.Duration) *RoleResolver {
	return &RoleResolver{repo: repo, timeout: timeout}
}

// IsAdmin is true for an active admin console account or a profile whose
// role is moderator, admin or superadmin.
func (r *RoleResolver) IsAdmin(ctx context.Context, principalID uuid.UUID) bool {
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ok, err := r.repo.HasActiveAdmin(ctx, principalID)
	if err != nil {
		log.Warn("admin record lookup failed", "principal_id", principalID, "error", err)
	}
	if ok {
		return true
	}

	role, err := r.repo.ProfileRole(ctx, principalID)
	if err != nil {
		if !errors.Is(err, accessRepo.ErrNotFound) {
			log.Warn("profile role lookup failed, denying admin", "principal_id", principalID, "error", err)
		}
		return false
	}
	return entity.IsAdminRole(role)
}

func (r *RoleResolver) IsSuperadmin(ctx context.Context, principalID uuid.UUID) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	role, err := r.repo.ProfileRole(ctx, principalID)
	if err != nil {
		if !errors.Is(err, accessRepo.ErrNotFound) {
			logger.FromContext(ctx).Warn("profile role lookup failed, denying superadmin", "principal_id", principalID, "error", err)
		}
		return false
	}
	return role == entity.RoleSuperadmin
}
