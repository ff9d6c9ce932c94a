package stats

import (
	"context"
	"time"

	statsDto "anoa.com/campusforum/internal/modules/stats/dto"
	statsRepo "anoa.com/campusforum/internal/modules/stats/repository"
	"anoa.com/campusforum/pkg/logger"
)

const (
	activeWindow    = 30 * 24 * time.Hour
	threadsWindow   = 7 * 24 * time.Hour
	DefaultTopUsers = 5
	MaxTopUsers     = 50
)

// StatsService backs the public landing-page counters. Failures degrade to
// empty values instead of errors.
type StatsService interface {
	Community(ctx context.Context) statsDto.CommunityStatsResponse
	TopUsers(ctx context.Context, limit int) []statsDto.TopUserResponse
}

type statsService struct {
	repo    statsRepo.StatsRepository
	timeout time.Duration
	now     func() time.Time
}

func NewStatsService(repo statsRepo.StatsRepository, timeout time.Duration) StatsService {
	return &statsService{
		repo:    repo,
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *statsService) Community(ctx context.Context) statsDto.CommunityStatsResponse {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := logger.FromContext(ctx)
	now := s.now().UTC()

	active, err := s.repo.ActiveMembers(ctx, now.Add(-activeWindow))
	if err != nil {
		log.Warn("failed to count active members", "error", err)
		return statsDto.CommunityStatsResponse{}
	}
	threads, err := s.repo.PostsSince(ctx, now.Add(-threadsWindow))
	if err != nil {
		log.Warn("failed to count weekly threads", "error", err)
		return statsDto.CommunityStatsResponse{}
	}

	return statsDto.CommunityStatsResponse{
		ActiveMembers:   active,
		ThreadsThisWeek: threads,
	}
}

func (s *statsService) TopUsers(ctx context.Context, limit int) []statsDto.TopUserResponse {
	if limit < 1 {
		limit = DefaultTopUsers
	}
	limit = min(limit, MaxTopUsers)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.repo.TopUsers(ctx, limit)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to load top users", "error", err)
		return []statsDto.TopUserResponse{}
	}

	out := make([]statsDto.TopUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, statsDto.TopUserResponse{
			ID:          u.ID,
			Username:    u.Username,
			AvatarURL:   u.AvatarURL,
			TotalPoints: u.TotalPoints,
			Level:       max(u.Level, 1),
			CreatedAt:   u.CreatedAt,
		})
	}
	return out
}
