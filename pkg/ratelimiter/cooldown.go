package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitError is returned when a user action is still cooling down.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// Cooldown tracks per-user action cooldowns in redis. A nil client disables
// every check so the API keeps working without redis.
type Cooldown struct {
	rdb *redis.Client
}

func NewCooldown(rdb *redis.Client) *Cooldown {
	return &Cooldown{rdb: rdb}
}

func cooldownKey(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Acquire claims the cooldown slot. false means the user must wait.
func (c *Cooldown) Acquire(ctx context.Context, userID uuid.UUID, action string, limit time.Duration) (bool, error) {
	if c == nil || c.rdb == nil {
		return true, nil
	}

	wasSet, err := c.rdb.SetNX(ctx, cooldownKey(userID, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

func (c *Cooldown) TTL(ctx context.Context, userID uuid.UUID, action string) time.Duration {
	if c == nil || c.rdb == nil {
		return 0
	}
	ttl, err := c.rdb.TTL(ctx, cooldownKey(userID, action)).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

func (c *Cooldown) Release(ctx context.Context, userID uuid.UUID, action string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, cooldownKey(userID, action)).Err()
}

// Limited builds the error returned to the caller when Acquire fails.
func (c *Cooldown) Limited(ctx context.Context, userID uuid.UUID, action string) *RateLimitError {
	ttl := c.TTL(ctx, userID, action)
	return &RateLimitError{
		Message:    fmt.Sprintf("you are doing that too fast. Please wait %.0f seconds", ttl.Seconds()),
		RetryAfter: ttl,
	}
}
