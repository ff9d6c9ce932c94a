package response

import (
	"errors"
	"net/http"
	"strconv"

	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/logger"
	"anoa.com/campusforum/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the auth middleware.
const (
	KeyUserID        = "user_id"
	KeyEmail         = "email"
	KeyPrincipalKind = "principal_kind"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(KeyUserID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	s, ok := v.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetOptionalUserID is GetUserID for routes behind OptionalAuth.
func GetOptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

func GetEmail(c *gin.Context) string {
	return c.GetString(KeyEmail)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	var rl *ratelimiter.RateLimitError
	if errors.As(err, &rl) {
		c.Header("Retry-After", strconv.Itoa(max(int(rl.RetryAfter.Seconds()), 1)))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": rl.Message})
		return
	}

	code := apperror.MapErrorToStatus(err)
	if code == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("internal error", "error", err)
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// QueryInt parses an integer query parameter, clamped to [1, maxValue].
func QueryInt(c *gin.Context, key string, fallback, maxValue int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return fallback
	}
	if v > maxValue {
		return maxValue
	}
	return v
}
