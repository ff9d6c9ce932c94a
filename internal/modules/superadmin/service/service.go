package superadmin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/campusforum/internal/entity"
	pointsDto "anoa.com/campusforum/internal/modules/points/dto"
	superadminDto "anoa.com/campusforum/internal/modules/superadmin/dto"
	superadminRepo "anoa.com/campusforum/internal/modules/superadmin/repository"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/logger"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound = apperror.NotFound("user not found")
	ErrSelfChange   = apperror.BadRequest("you cannot change or delete your own account here")
	ErrInvalidRole  = apperror.BadRequest("role must be one of user, moderator, admin, superadmin")
)

type Notifier interface {
	Notify(ctx context.Context, n *entity.Notification)
}

// Auditor compares profile balances with the points ledger.
type Auditor interface {
	AuditDrift(ctx context.Context) ([]pointsDto.DriftEntry, error)
}

type SuperadminService interface {
	GetStats(ctx context.Context) (*superadminDto.StatsResponse, error)
	ListUsers(ctx context.Context, filter superadminDto.UserFilter) (*superadminDto.UserListResponse, error)
	UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role string) error
	DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error
	LedgerAudit(ctx context.Context) ([]pointsDto.DriftEntry, error)
}

type superadminService struct {
	repo     superadminRepo.SuperadminRepository
	auditor  Auditor
	notifier Notifier
	timeout  time.Duration
}

func NewSuperadminService(repo superadminRepo.SuperadminRepository, auditor Auditor, notifier Notifier, timeout time.Duration) SuperadminService {
	return &superadminService{
		repo:     repo,
		auditor:  auditor,
		notifier: notifier,
		timeout:  timeout,
	}
}

func (s *superadminService) GetStats(ctx context.Context) (*superadminDto.StatsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	st, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	// every known role is present, even with zero profiles
	dist := make(map[string]int64, len(entity.ValidRoles))
	for _, r := range entity.ValidRoles {
		dist[r] = st.RoleDistribution[r]
	}

	return &superadminDto.StatsResponse{
		TotalUsers:          st.TotalUsers,
		TotalPosts:          st.TotalPosts,
		TotalReplies:        st.TotalReplies,
		TotalLineGroups:     st.TotalLineGroups,
		ActiveAdmins:        st.ActiveAdmins,
		PointsInCirculation: st.PointsInCirculation,
		RoleDistribution:    dist,
	}, nil
}

func (s *superadminService) ListUsers(ctx context.Context, filter superadminDto.UserFilter) (*superadminDto.UserListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Role != "" && !entity.IsValidRole(filter.Role) {
		return nil, ErrInvalidRole
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, total, err := s.repo.ListUsers(ctx, superadminRepo.UserQuery{
		Role:   filter.Role,
		Search: filter.Search,
		Offset: (filter.Page - 1) * filter.Limit,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, err
	}

	data := make([]superadminDto.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, superadminDto.UserResponse{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			AvatarURL:   u.AvatarURL,
			Role:        u.Role,
			TotalPoints: u.TotalPoints,
			Level:       u.Level,
			CreatedAt:   u.CreatedAt,
		})
	}
	return &superadminDto.UserListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *superadminService) UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role string) error {
	if !entity.IsValidRole(role) {
		return ErrInvalidRole
	}
	if actorID == userID {
		return ErrSelfChange
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, superadminRepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	logger.FromContext(ctx).Info("role changed", "actor_id", actorID, "user_id", userID, "role", role)

	if s.notifier != nil {
		s.notifier.Notify(ctx, &entity.Notification{
			UserID:     userID,
			ActorID:    &actorID,
			EntityID:   &userID,
			EntityType: "profile",
			Type:       entity.NotificationRoleChanged,
			Message:    fmt.Sprintf("Your role has been changed to %s", role),
		})
	}
	return nil
}

func (s *superadminService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return ErrSelfChange
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, superadminRepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	logger.FromContext(ctx).Info("user deleted", "actor_id", actorID, "user_id", userID)
	return nil
}

func (s *superadminService) LedgerAudit(ctx context.Context) ([]pointsDto.DriftEntry, error) {
	return s.auditor.AuditDrift(ctx)
}
