package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/campusforum/internal/entity"
	pointsService "anoa.com/campusforum/internal/modules/points/service"
	profileDto "anoa.com/campusforum/internal/modules/profile/dto"
	profileRepo "anoa.com/campusforum/internal/modules/profile/repository"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/storage"
	"github.com/google/uuid"
)

type ProfileService interface {
	// EnsureProfile lazily creates the profile of an authenticated principal.
	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *profileDto.AvatarFile) (*entity.Profile, error)
	GetPublicProfile(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error)
}

type profileService struct {
	repo         profileRepo.ProfileRepository
	imageStorage storage.ImageStorage
	timeout      time.Duration
}

func NewProfileService(repo profileRepo.ProfileRepository, imageStorage storage.ImageStorage, timeout time.Duration) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
		timeout:      timeout,
	}
}

func (s *profileService) EnsureProfile(ctx context.Context, userID uuid.UUID, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p := &entity.Profile{
		ID:       userID,
		Username: pointsService.UsernameFromEmail(email),
		Role:     entity.RoleUser,
		Level:    pointsService.MinLevel,
	}
	if email != "" {
		p.Email = &email
	}
	return s.repo.CreateIfMissing(ctx, p)
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *profileDto.AvatarFile) (*entity.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fields := map[string]any{}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, apperror.BadRequest("username cannot be empty")
		}
		if len(username) > 50 {
			return nil, apperror.BadRequest("username must be at most 50 characters")
		}
		fields["username"] = username
	}

	switch {
	case avatar != nil && avatar.Reader != nil:
		if s.imageStorage == nil {
			return nil, apperror.New(http.StatusServiceUnavailable, "image uploads are disabled", apperror.ErrInternal)
		}
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		fields["avatar_url"] = url
	case input.AvatarURL != nil:
		fields["avatar_url"] = strings.TrimSpace(*input.AvatarURL)
	}

	if len(fields) == 0 {
		return nil, apperror.BadRequest("no fields to update")
	}

	if err := s.repo.Update(ctx, userID, fields); err != nil {
		if errors.Is(err, profileRepo.ErrProfileNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}

	return s.repo.FindByID(ctx, userID)
}

func (s *profileService) GetPublicProfile(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, profileRepo.ErrProfileNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}

	return &profileDto.PublicProfileResponse{
		ID:          p.ID,
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		Role:        p.Role,
		TotalPoints: p.TotalPoints,
		Level:       p.Level,
		Status:      pointsService.LevelStatusFor(p.TotalPoints),
		CreatedAt:   p.CreatedAt,
	}, nil
}
