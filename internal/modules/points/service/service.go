package service

import (
	"context"
	"errors"
	"time"

	"anoa.com/campusforum/internal/entity"
	pointsDto "anoa.com/campusforum/internal/modules/points/dto"
	pointsRepo "anoa.com/campusforum/internal/modules/points/repository"
	"anoa.com/campusforum/pkg/logger"
	"github.com/google/uuid"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
	weeklyWindow        = 7 * 24 * time.Hour
)

// PointsService serves the read side of the ledger. Reads degrade to
// defaults instead of failing the request.
type PointsService interface {
	GetProfile(ctx context.Context, userID uuid.UUID, email string) pointsDto.PointsProfileResponse
	GetRanking(ctx context.Context, userID uuid.UUID) pointsDto.RankingResponse
	GetHistory(ctx context.Context, userID uuid.UUID, limit int) []pointsDto.PointRecordResponse
	GetLeaderboard(ctx context.Context, limit int, timeframe string) []pointsDto.LeaderboardEntry
	AuditDrift(ctx context.Context) ([]pointsDto.DriftEntry, error)
}

type pointsService struct {
	repo         pointsRepo.LedgerRepository
	readTimeout  time.Duration
	queryTimeout time.Duration
	now          func() time.Time
}

func NewPointsService(repo pointsRepo.LedgerRepository, readTimeout, queryTimeout time.Duration) PointsService {
	return &pointsService{
		repo:         repo,
		readTimeout:  readTimeout,
		queryTimeout: queryTimeout,
		now:          time.Now,
	}
}

// DefaultProfile is served when the profile cannot be read in time.
func DefaultProfile(userID uuid.UUID, email string) pointsDto.PointsProfileResponse {
	p := pointsDto.PointsProfileResponse{
		ID:       userID,
		Username: UsernameFromEmail(email),
		Level:    MinLevel,
		Role:     entity.RoleUser,
		Status:   LevelStatusFor(0),
	}
	if email != "" {
		p.Email = &email
	}
	return p
}

// UsernameFromEmail is the local part of the address, or "User".
func UsernameFromEmail(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			if i == 0 {
				break
			}
			return email[:i]
		}
	}
	return "User"
}

func (s *pointsService) GetProfile(ctx context.Context, userID uuid.UUID, email string) pointsDto.PointsProfileResponse {
	ctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, pointsRepo.ErrProfileNotFound) {
			logger.FromContext(ctx).Warn("points profile read failed, serving default", "user_id", userID, "error", err)
		}
		return DefaultProfile(userID, email)
	}

	created := p.CreatedAt
	return pointsDto.PointsProfileResponse{
		ID:          p.ID,
		Username:    p.Username,
		Email:       p.Email,
		AvatarURL:   p.AvatarURL,
		TotalPoints: p.TotalPoints,
		Level:       p.Level,
		Role:        p.Role,
		Status:      LevelStatusFor(p.TotalPoints),
		CreatedAt:   &created,
	}
}

func (s *pointsService) GetRanking(ctx context.Context, userID uuid.UUID) pointsDto.RankingResponse {
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	out := pointsDto.RankingResponse{Level: MinLevel}

	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		log.Warn("ranking: profile read failed", "user_id", userID, "error", err)
		return out
	}
	out.TotalPoints = p.TotalPoints
	out.Level = p.Level

	above, err := s.repo.CountAbove(ctx, p.TotalPoints)
	if err != nil {
		log.Warn("ranking: count failed", "user_id", userID, "error", err)
		return out
	}
	out.Rank = int(above) + 1

	if total, err := s.repo.CountProfiles(ctx); err == nil {
		out.TotalUsers = total
	}
	return out
}

func (s *pointsService) GetHistory(ctx context.Context, userID uuid.UUID, limit int) []pointsDto.PointRecordResponse {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	records, err := s.repo.History(ctx, userID, limit)
	if err != nil {
		logger.FromContext(ctx).Warn("points history read failed", "user_id", userID, "error", err)
		return []pointsDto.PointRecordResponse{}
	}

	out := make([]pointsDto.PointRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, pointsDto.PointRecordResponse{
			ID:        r.ID,
			Points:    r.Points,
			Reason:    r.Reason,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

func (s *pointsService) GetLeaderboard(ctx context.Context, limit int, timeframe string) []pointsDto.LeaderboardEntry {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	log := logger.FromContext(ctx)

	if timeframe == "weekly" {
		rows, err := s.repo.TopSince(ctx, s.now().Add(-weeklyWindow), limit)
		if err != nil {
			log.Warn("weekly leaderboard read failed", "error", err)
			return []pointsDto.LeaderboardEntry{}
		}
		out := make([]pointsDto.LeaderboardEntry, 0, len(rows))
		for i, r := range rows {
			e := entryFor(i, r.Profile)
			e.WeeklyPoints = r.WindowPoints
			e.WeeklyLabel = WeeklyLabel(r.WindowPoints)
			out = append(out, e)
		}
		return out
	}

	profiles, err := s.repo.TopProfiles(ctx, limit)
	if err != nil {
		log.Warn("leaderboard read failed", "error", err)
		return []pointsDto.LeaderboardEntry{}
	}
	out := make([]pointsDto.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		out = append(out, entryFor(i, p))
	}
	return out
}

func entryFor(i int, p entity.Profile) pointsDto.LeaderboardEntry {
	return pointsDto.LeaderboardEntry{
		Position:    i + 1,
		UserID:      p.ID,
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		Role:        p.Role,
		TotalPoints: p.TotalPoints,
		Level:       p.Level,
	}
}

// AuditDrift lists profiles whose balance differs from the sum of their
// ledger rows. It reports only; nothing is corrected.
func (s *pointsService) AuditDrift(ctx context.Context) ([]pointsDto.DriftEntry, error) {
	rows, err := s.repo.Drift(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]pointsDto.DriftEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, pointsDto.DriftEntry{
			UserID:      r.UserID,
			TotalPoints: r.TotalPoints,
			LedgerSum:   r.LedgerSum,
		})
	}
	return out, nil
}
