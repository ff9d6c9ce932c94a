package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	accessDto "anoa.com/campusforum/internal/modules/access/dto"
	accessRepo "anoa.com/campusforum/internal/modules/access/repository"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/logger"
	"anoa.com/campusforum/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything after 72 bytes; newer versions reject it.
const bcryptMaxBytes = 72

var ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password", apperror.ErrUnauthorized)

type AdminAuthService interface {
	Login(ctx context.Context, req accessDto.AdminLoginRequest) (*accessDto.AdminLoginResponse, error)
}

type adminAuthService struct {
	repo     accessRepo.AccessRepository
	secret   string
	tokenTTL time.Duration
	timeout  time.Duration
	now      func() time.Time
}

func NewAdminAuthService(repo accessRepo.AccessRepository, secret string, tokenTTL, timeout time.Duration) AdminAuthService {
	return &adminAuthService{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
		timeout:  timeout,
		now:      time.Now,
	}
}

// HashPassword hashes with the same truncation Login applies.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

func (s *adminAuthService) Login(ctx context.Context, req accessDto.AdminLoginRequest) (*accessDto.AdminLoginResponse, error) {
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	admin, err := s.repo.FindActiveAdminByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, accessRepo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), truncate(req.Password)); err != nil {
		log.Info("admin login rejected", "admin_id", admin.ID)
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.StampAdminLogin(ctx, admin.ID, now); err != nil {
		log.Warn("failed to stamp admin last login", "admin_id", admin.ID, "error", err)
	}

	signed, expiresAt, err := token.Issue(s.secret, token.AdminIssuer, admin.ID.String(), admin.Email, s.tokenTTL, now)
	if err != nil {
		return nil, err
	}

	log.Info("admin logged in", "admin_id", admin.ID)
	return &accessDto.AdminLoginResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Unix(),
		AdminID:     admin.ID,
		Email:       admin.Email,
	}, nil
}
