package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/campusforum/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	pendingKey   = "pending:post_views"
	viewerWindow = time.Hour
)

// Store persists buffered view counts.
type Store interface {
	AddViewCount(ctx context.Context, postID uuid.UUID, n int) error
}

type ViewCounter interface {
	// Record counts a view unless the same viewer was seen within the last
	// hour. Anonymous views always count.
	Record(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (bool, error)
	// Flush moves buffered counts into the store and reports how many posts
	// were updated.
	Flush(ctx context.Context) (int, error)
}

type viewCounter struct {
	redisClient *redis.Client
	store       Store
}

// NewViewCounter buffers views in redis; with a nil client every view is
// written straight to the store.
func NewViewCounter(redisClient *redis.Client, store Store) ViewCounter {
	return &viewCounter{
		redisClient: redisClient,
		store:       store,
	}
}

func viewsKey(postID uuid.UUID) string {
	return fmt.Sprintf("post:views:%s", postID)
}

func viewerKey(postID, viewerID uuid.UUID) string {
	return fmt.Sprintf("post:viewer:%s:%s", postID, viewerID)
}

func (s *viewCounter) Record(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (bool, error) {
	if s.redisClient == nil {
		if err := s.store.AddViewCount(ctx, postID, 1); err != nil {
			return false, err
		}
		return true, nil
	}

	if viewerID != nil {
		fresh, err := s.redisClient.SetNX(ctx, viewerKey(postID, *viewerID), "viewed", viewerWindow).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check viewer: %w", err)
		}
		if !fresh {
			return false, nil
		}
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Incr(ctx, viewsKey(postID))
	pipe.SAdd(ctx, pendingKey, postID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to buffer view: %w", err)
	}
	return true, nil
}

func (s *viewCounter) Flush(ctx context.Context) (int, error) {
	if s.redisClient == nil {
		return 0, nil
	}

	ids, err := s.redisClient.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read pending views: %w", err)
	}

	log := logger.FromContext(ctx)
	synced := 0
	for _, raw := range ids {
		postID, err := uuid.Parse(raw)
		if err != nil {
			s.redisClient.SRem(ctx, pendingKey, raw)
			continue
		}

		// Drop from the pending set first; a concurrent Record re-adds it.
		if err := s.redisClient.SRem(ctx, pendingKey, raw).Err(); err != nil {
			log.Warn("failed to clear pending view", "post_id", postID, "error", err)
			continue
		}

		n, err := s.redisClient.GetDel(ctx, viewsKey(postID)).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Warn("failed to read buffered views", "post_id", postID, "error", err)
			continue
		}
		if n <= 0 {
			continue
		}

		if err := s.store.AddViewCount(ctx, postID, n); err != nil {
			// Put the count back so the next flush retries it.
			s.redisClient.IncrBy(ctx, viewsKey(postID), int64(n))
			s.redisClient.SAdd(ctx, pendingKey, raw)
			log.Warn("failed to persist views", "post_id", postID, "error", err)
			continue
		}
		synced++
	}

	return synced, nil
}
