package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"anoa.com/campusforum/internal/entity"
	accessDto "anoa.com/campusforum/internal/modules/access/dto"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAccessRepo()

	long := strings.Repeat("p", 80)
	hash, err := HashPassword(long)
	require.NoError(t, err)

	id := uuid.New()
	repo.admins[id] = &entity.Admin{ID: id, Email: "ops@uni.edu", PasswordHash: hash, IsActive: true}

	svc := NewAdminAuthService(repo, "admin-secret", time.Hour, time.Second)

	t.Run("success issues admin token and stamps login", func(t *testing.T) {
		resp, err := svc.Login(ctx, accessDto.AdminLoginRequest{Email: "OPS@uni.edu", Password: long})
		require.NoError(t, err)
		require.Equal(t, id, resp.AdminID)
		require.Contains(t, repo.stamped, id)

		claims, err := token.Parse("admin-secret", resp.AccessToken, jwt.WithIssuer(token.AdminIssuer))
		require.NoError(t, err)
		require.Equal(t, id.String(), claims.Subject)
	})

	t.Run("passwords are compared on the first 72 bytes", func(t *testing.T) {
		_, err := svc.Login(ctx, accessDto.AdminLoginRequest{Email: "ops@uni.edu", Password: long[:72] + "different"})
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, accessDto.AdminLoginRequest{Email: "ops@uni.edu", Password: "nope"})
		require.ErrorIs(t, err, apperror.ErrUnauthorized)
		require.Equal(t, http.StatusUnauthorized, apperror.MapErrorToStatus(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, accessDto.AdminLoginRequest{Email: "who@uni.edu", Password: long})
		require.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("inactive admin", func(t *testing.T) {
		repo.admins[id].IsActive = false
		defer func() { repo.admins[id].IsActive = true }()
		_, err := svc.Login(ctx, accessDto.AdminLoginRequest{Email: "ops@uni.edu", Password: long})
		require.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}
