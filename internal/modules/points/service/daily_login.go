package service

import (
	"context"
	"fmt"
	"time"

	pointsRepo "anoa.com/campusforum/internal/modules/points/repository"
	"anoa.com/campusforum/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const dayLayout = "2006-01-02"

// DailyLogin grants the once-per-day login bonus. The day boundary is taken
// in a fixed location so it does not depend on the server's timezone.
type DailyLogin struct {
	repo    pointsRepo.LedgerRepository
	ledger  PointsLedger
	rdb     *redis.Client
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
}

func NewDailyLogin(repo pointsRepo.LedgerRepository, ledger PointsLedger, rdb *redis.Client, loc *time.Location, timeout time.Duration) *DailyLogin {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyLogin{
		repo:    repo,
		ledger:  ledger,
		rdb:     rdb,
		loc:     loc,
		timeout: timeout,
		now:     time.Now,
	}
}

func dailyLoginKey(userID uuid.UUID, day string) string {
	return fmt.Sprintf("daily_login:%s:%s", userID.String(), day)
}

// Check awards the bonus if userID has not logged in today. It returns true
// only when the point was actually granted; every failure reads as "not
// eligible".
func (d *DailyLogin) Check(ctx context.Context, userID uuid.UUID) bool {
	log := logger.FromContext(ctx).With("user_id", userID)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	today := d.now().In(d.loc).Format(dayLayout)

	// The redis key is only a fast path; the stamp in Postgres decides.
	key := dailyLoginKey(userID, today)
	guarded := false
	if d.rdb != nil {
		ok, err := d.rdb.SetNX(ctx, key, 1, 48*time.Hour).Result()
		switch {
		case err != nil:
			log.Debug("daily login guard unavailable", "error", err)
		case !ok:
			return false
		default:
			guarded = true
		}
	}
	release := func() {
		if guarded {
			if err := d.rdb.Del(ctx, key).Err(); err != nil {
				log.Debug("daily login guard not released", "error", err)
			}
		}
	}

	last, err := d.repo.LastLoginDate(ctx, userID)
	if err != nil {
		log.Warn("daily login: read last login date failed", "error", err)
		release()
		return false
	}
	if last == today {
		return false
	}

	claimed, err := d.repo.StampLoginDate(ctx, userID, today)
	if err != nil {
		log.Warn("daily login: stamp failed", "error", err)
		release()
		return false
	}
	if !claimed {
		return false
	}

	if !d.ledger.AwardPoints(ctx, userID, PointsDailyLogin, ReasonDailyLogin) {
		if err := d.repo.RestoreLoginDate(ctx, userID, today, last); err != nil {
			log.Warn("daily login: restore stamp failed", "error", err)
		}
		release()
		return false
	}

	log.Info("daily login bonus granted", "day", today)
	return true
}
