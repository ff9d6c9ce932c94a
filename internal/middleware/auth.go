package middleware

import (
	"context"
	"net/http"
	"strings"

	accessService "anoa.com/campusforum/internal/modules/access/service"
	"anoa.com/campusforum/pkg/logger"
	"anoa.com/campusforum/pkg/response"
	"anoa.com/campusforum/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Principal kinds stored under response.KeyPrincipalKind.
const (
	PrincipalUser  = "user"
	PrincipalAdmin = "admin"
)

type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) error
}

// DailyLoginChecker grants the once-per-day login bonus.
type DailyLoginChecker interface {
	Check(ctx context.Context, userID uuid.UUID) bool
}

type AuthMiddleware struct {
	supabaseSecret string
	adminSecret    string
	profiles       ProfileEnsurer
	dailyLogin     DailyLoginChecker
	roles          accessService.RoleChecker
}

func NewAuthMiddleware(supabaseSecret, adminSecret string, profiles ProfileEnsurer, dailyLogin DailyLoginChecker, roles accessService.RoleChecker) *AuthMiddleware {
	return &AuthMiddleware{
		supabaseSecret: supabaseSecret,
		adminSecret:    adminSecret,
		profiles:       profiles,
		dailyLogin:     dailyLogin,
		roles:          roles,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		if !m.authenticate(c, tokenString) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through. A bad token is treated as
// anonymous as well.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			_ = m.authenticate(c, tokenString)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.requireRole("admin access required", m.roles.IsAdmin)
}

func (m *AuthMiddleware) RequireSuperadmin() gin.HandlerFunc {
	return m.requireRole("superadmin access required", m.roles.IsSuperadmin)
}

func (m *AuthMiddleware) requireRole(message string, allowed func(context.Context, uuid.UUID) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		if !allowed(c.Request.Context(), userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": message})
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate tries an admin console token first, then a Supabase access
// token, and stores the principal on the context.
func (m *AuthMiddleware) authenticate(c *gin.Context, tokenString string) bool {
	kind := PrincipalAdmin
	claims, err := token.Parse(m.adminSecret, tokenString, jwt.WithIssuer(token.AdminIssuer))
	if err != nil {
		kind = PrincipalUser
		claims, err = token.Parse(m.supabaseSecret, tokenString)
		if err != nil {
			return false
		}
		if claims.Issuer == token.AdminIssuer {
			return false
		}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return false
	}

	c.Set(response.KeyUserID, userID.String())
	c.Set(response.KeyEmail, claims.Email)
	c.Set(response.KeyPrincipalKind, kind)

	ctx := c.Request.Context()
	log := logger.FromContext(ctx).With("user_id", userID.String())
	c.Request = c.Request.WithContext(logger.WithContext(ctx, log))

	if kind == PrincipalUser {
		m.onUserSeen(c.Request.Context(), userID, claims.Email)
	}
	return true
}

// onUserSeen provisions the profile and runs the daily login bonus. Neither
// may block authentication.
func (m *AuthMiddleware) onUserSeen(ctx context.Context, userID uuid.UUID, email string) {
	if m.profiles != nil {
		if err := m.profiles.EnsureProfile(ctx, userID, email); err != nil {
			logger.FromContext(ctx).Warn("failed to ensure profile", "error", err)
			return
		}
	}
	if m.dailyLogin != nil {
		m.dailyLogin.Check(ctx, userID)
	}
}

func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	// websockets cannot set headers from the browser
	return c.Query("token")
}
