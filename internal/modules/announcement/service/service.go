package announcement

import (
	"context"
	"errors"
	"time"

	"anoa.com/campusforum/internal/entity"
	accessService "anoa.com/campusforum/internal/modules/access/service"
	announcementDto "anoa.com/campusforum/internal/modules/announcement/dto"
	announcementRepo "anoa.com/campusforum/internal/modules/announcement/repository"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/sanitize"
	"github.com/google/uuid"
)

var (
	ErrAnnouncementNotFound = apperror.NotFound("announcement not found")
	ErrAdminOnly            = apperror.Forbidden("only admins can manage announcements")
	ErrEmptyTitle           = apperror.BadRequest("title cannot be empty")
	ErrEmptyContent         = apperror.BadRequest("content cannot be empty")
	ErrNoFields             = apperror.BadRequest("no fields to update")
)

type AnnouncementService interface {
	// ListAnnouncements shows active announcements; only admins may ask for
	// inactive ones too.
	ListAnnouncements(ctx context.Context, viewer *uuid.UUID, filter announcementDto.AnnouncementFilter) (*announcementDto.AnnouncementListResponse, error)
	GetAnnouncement(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*announcementDto.AnnouncementResponse, error)
	CreateAnnouncement(ctx context.Context, adminID uuid.UUID, req announcementDto.CreateAnnouncementRequest) (*announcementDto.AnnouncementResponse, error)
	UpdateAnnouncement(ctx context.Context, adminID, id uuid.UUID, req announcementDto.UpdateAnnouncementRequest) (*announcementDto.AnnouncementResponse, error)
	DeleteAnnouncement(ctx context.Context, adminID, id uuid.UUID) error
}

type announcementService struct {
	repo    announcementRepo.AnnouncementRepository
	roles   accessService.RoleChecker
	timeout time.Duration
}

func NewAnnouncementService(repo announcementRepo.AnnouncementRepository, roles accessService.RoleChecker, timeout time.Duration) AnnouncementService {
	return &announcementService{
		repo:    repo,
		roles:   roles,
		timeout: timeout,
	}
}

func (s *announcementService) ListAnnouncements(ctx context.Context, viewer *uuid.UUID, filter announcementDto.AnnouncementFilter) (*announcementDto.AnnouncementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	activeOnly := true
	if filter.ActiveOnly != nil && !*filter.ActiveOnly && viewer != nil && s.roles.IsAdmin(ctx, *viewer) {
		activeOnly = false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, total, err := s.repo.List(ctx, activeOnly, (filter.Page-1)*filter.Limit, filter.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]announcementDto.AnnouncementResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *mapAnnouncement(&rows[i]))
	}
	return &announcementDto.AnnouncementListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *announcementService) GetAnnouncement(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*announcementDto.AnnouncementResponse, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !row.IsActive && (viewer == nil || !s.roles.IsAdmin(ctx, *viewer)) {
		return nil, ErrAnnouncementNotFound
	}
	return mapAnnouncement(row), nil
}

func (s *announcementService) CreateAnnouncement(ctx context.Context, adminID uuid.UUID, req announcementDto.CreateAnnouncementRequest) (*announcementDto.AnnouncementResponse, error) {
	if !s.roles.IsAdmin(ctx, adminID) {
		return nil, ErrAdminOnly
	}

	title := sanitize.Text(req.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	content := sanitize.HTML(req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	a := &entity.Announcement{
		Title:     title,
		Content:   content,
		Priority:  req.Priority,
		IsActive:  req.IsActive == nil || *req.IsActive,
		CreatedBy: adminID,
	}

	wctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Create(wctx, a); err != nil {
		return nil, err
	}
	// is_active defaults to true in the schema, so a false value needs an
	// explicit write.
	if !a.IsActive {
		if err := s.repo.Update(wctx, a.ID, map[string]any{"is_active": false}); err != nil {
			return nil, err
		}
	}

	row, err := s.repo.FindByID(wctx, a.ID)
	if err != nil {
		return nil, err
	}
	return mapAnnouncement(row), nil
}

func (s *announcementService) UpdateAnnouncement(ctx context.Context, adminID, id uuid.UUID, req announcementDto.UpdateAnnouncementRequest) (*announcementDto.AnnouncementResponse, error) {
	if !s.roles.IsAdmin(ctx, adminID) {
		return nil, ErrAdminOnly
	}

	fields := map[string]any{}
	if req.Title != nil {
		title := sanitize.Text(*req.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		fields["title"] = title
	}
	if req.Content != nil {
		content := sanitize.HTML(*req.Content)
		if content == "" {
			return nil, ErrEmptyContent
		}
		fields["content"] = content
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, announcementRepo.ErrAnnouncementNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapAnnouncement(row), nil
}

func (s *announcementService) DeleteAnnouncement(ctx context.Context, adminID, id uuid.UUID) error {
	if !s.roles.IsAdmin(ctx, adminID) {
		return ErrAdminOnly
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, announcementRepo.ErrAnnouncementNotFound) {
			return ErrAnnouncementNotFound
		}
		return err
	}
	return nil
}

func (s *announcementService) find(ctx context.Context, id uuid.UUID) (*announcementRepo.AnnouncementRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, announcementRepo.ErrAnnouncementNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return row, nil
}

func mapAnnouncement(row *announcementRepo.AnnouncementRow) *announcementDto.AnnouncementResponse {
	return &announcementDto.AnnouncementResponse{
		ID:         row.ID,
		Title:      row.Title,
		Content:    row.Content,
		Priority:   row.Priority,
		IsActive:   row.IsActive,
		CreatedBy:  row.CreatedBy,
		AuthorName: row.AuthorName,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
