package linegroup

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/campusforum/internal/entity"
	accessService "anoa.com/campusforum/internal/modules/access/service"
	lineGroupDto "anoa.com/campusforum/internal/modules/linegroup/dto"
	lineGroupRepo "anoa.com/campusforum/internal/modules/linegroup/repository"
	pointsService "anoa.com/campusforum/internal/modules/points/service"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/logger"
	"anoa.com/campusforum/pkg/sanitize"
	"anoa.com/campusforum/pkg/storage"
	"github.com/google/uuid"
)

var (
	ErrGroupNotFound      = apperror.NotFound("line group not found")
	ErrAdminOnly          = apperror.Forbidden("only admins can create line groups")
	ErrNotManager         = apperror.Forbidden("only the group manager or an admin can do that")
	ErrInsufficientPoints = apperror.BadRequest("insufficient points")
)

type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) error
}

type LineGroupService interface {
	CreateGroup(ctx context.Context, userID uuid.UUID, email string, req lineGroupDto.CreateGroupRequest) (*lineGroupDto.GroupResponse, error)
	ListGroups(ctx context.Context, viewer *uuid.UUID, filter lineGroupDto.GroupFilter) (*lineGroupDto.GroupListResponse, error)
	GetGroup(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*lineGroupDto.GroupResponse, error)
	UpdateGroup(ctx context.Context, userID, id uuid.UUID, req lineGroupDto.UpdateGroupRequest) (*lineGroupDto.GroupResponse, error)
	DeleteGroup(ctx context.Context, userID, id uuid.UUID) error
}

type lineGroupService struct {
	repo     lineGroupRepo.LineGroupRepository
	roles    accessService.RoleChecker
	ledger   pointsService.PointsLedger
	profiles ProfileEnsurer
	images   storage.ImageStorage
	timeout  time.Duration
}

func NewLineGroupService(repo lineGroupRepo.LineGroupRepository, roles accessService.RoleChecker, ledger pointsService.PointsLedger, profiles ProfileEnsurer, images storage.ImageStorage, timeout time.Duration) LineGroupService {
	return &lineGroupService{
		repo:     repo,
		roles:    roles,
		ledger:   ledger,
		profiles: profiles,
		images:   images,
		timeout:  timeout,
	}
}

func (s *lineGroupService) CreateGroup(ctx context.Context, userID uuid.UUID, email string, req lineGroupDto.CreateGroupRequest) (*lineGroupDto.GroupResponse, error) {
	if !s.roles.IsAdmin(ctx, userID) {
		return nil, ErrAdminOnly
	}

	name := sanitize.Text(req.Name)
	if name == "" {
		return nil, apperror.BadRequest("name cannot be empty")
	}

	wctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.profiles.EnsureProfile(wctx, userID, email); err != nil {
		return nil, err
	}

	if req.IsPrivate && !s.ledger.DeductPoints(ctx, userID, pointsService.CostPrivateGroup, pointsService.ReasonPrivateGroup) {
		return nil, ErrInsufficientPoints
	}

	group := &entity.LineGroup{
		Name:        name,
		Description: cleanDescription(req.Description),
		QRCodeURL:   strings.TrimSpace(req.QRCodeURL),
		ManagerID:   userID,
		IsActive:    true,
		IsPrivate:   req.IsPrivate,
		MemberCount: req.MemberCount,
	}
	if err := s.repo.Create(wctx, group); err != nil {
		if req.IsPrivate {
			s.ledger.AwardPoints(ctx, userID, pointsService.CostPrivateGroup, pointsService.ReasonPrivateGroupRefund)
		}
		return nil, err
	}

	if !req.IsPrivate {
		s.ledger.AwardPoints(ctx, userID, pointsService.PointsPublicGroup, pointsService.ReasonPublicGroup)
	}

	if reloaded, err := s.repo.FindByID(wctx, group.ID); err == nil {
		group = reloaded
	}
	return mapGroup(group), nil
}

func (s *lineGroupService) ListGroups(ctx context.Context, viewer *uuid.UUID, filter lineGroupDto.GroupFilter) (*lineGroupDto.GroupListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	includeInactive := viewer != nil && s.roles.IsAdmin(ctx, *viewer)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	groups, total, err := s.repo.List(ctx, includeInactive, (filter.Page-1)*filter.Limit, filter.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]lineGroupDto.GroupResponse, 0, len(groups))
	for i := range groups {
		data = append(data, *mapGroup(&groups[i]))
	}
	return &lineGroupDto.GroupListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *lineGroupService) GetGroup(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*lineGroupDto.GroupResponse, error) {
	group, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !group.IsActive && (viewer == nil || !s.canManage(ctx, *viewer, group)) {
		return nil, ErrGroupNotFound
	}
	return mapGroup(group), nil
}

func (s *lineGroupService) UpdateGroup(ctx context.Context, userID, id uuid.UUID, req lineGroupDto.UpdateGroupRequest) (*lineGroupDto.GroupResponse, error) {
	group, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(ctx, userID, group) {
		return nil, ErrNotManager
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		if name == "" {
			return nil, apperror.BadRequest("name cannot be empty")
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = cleanDescription(req.Description)
	}
	if req.QRCodeURL != nil {
		fields["qr_code_url"] = strings.TrimSpace(*req.QRCodeURL)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.MemberCount != nil {
		fields["member_count"] = *req.MemberCount
	}
	if len(fields) == 0 {
		return nil, apperror.BadRequest("no fields to update")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, lineGroupRepo.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	if next, ok := fields["qr_code_url"]; ok && next != group.QRCodeURL {
		s.deleteImage(ctx, group.QRCodeURL)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapGroup(updated), nil
}

func (s *lineGroupService) DeleteGroup(ctx context.Context, userID, id uuid.UUID) error {
	group, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManage(ctx, userID, group) {
		return ErrNotManager
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, lineGroupRepo.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	s.deleteImage(ctx, group.QRCodeURL)
	return nil
}

func (s *lineGroupService) find(ctx context.Context, id uuid.UUID) (*entity.LineGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, lineGroupRepo.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *lineGroupService) canManage(ctx context.Context, userID uuid.UUID, group *entity.LineGroup) bool {
	return group.ManagerID == userID || s.roles.IsAdmin(ctx, userID)
}

// deleteImage removes Cloudinary-hosted QR codes. Other URLs are left alone.
func (s *lineGroupService) deleteImage(ctx context.Context, url string) {
	if s.images == nil || !strings.Contains(url, "res.cloudinary.com") {
		return
	}
	if err := s.images.DeleteImage(ctx, url); err != nil {
		logger.FromContext(ctx).Warn("failed to delete qr code image", "url", url, "error", err)
	}
}

func cleanDescription(v *string) *string {
	if v == nil {
		return nil
	}
	out := sanitize.HTML(*v)
	if out == "" {
		return nil
	}
	return &out
}

func mapGroup(g *entity.LineGroup) *lineGroupDto.GroupResponse {
	manager := lineGroupDto.ManagerResponse{ID: g.ManagerID, Username: "Unknown"}
	if g.Manager != nil {
		manager.Username = g.Manager.Username
		manager.AvatarURL = g.Manager.AvatarURL
	}
	return &lineGroupDto.GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		QRCodeURL:   g.QRCodeURL,
		Manager:     manager,
		IsActive:    g.IsActive,
		IsPrivate:   g.IsPrivate,
		MemberCount: g.MemberCount,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
