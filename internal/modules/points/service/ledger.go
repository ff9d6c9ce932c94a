package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/campusforum/internal/entity"
	pointsRepo "anoa.com/campusforum/internal/modules/points/repository"
	"anoa.com/campusforum/pkg/logger"
	"github.com/google/uuid"
)

// Point amounts for forum actions.
const (
	PointsDailyLogin   = 1
	PointsCreatePost   = 10
	PointsCreateReply  = 5
	PointsPostUpvoted  = 2
	PointsReplyUpvoted = 1
	PointsPublicGroup  = 20
	CostPinPost        = 50
	CostPrivateGroup   = 30
)

// Ledger reasons stored on point_records.
const (
	ReasonDailyLogin         = "daily login"
	ReasonCreatePost         = "create post"
	ReasonCreateReply        = "create reply"
	ReasonPostUpvoted        = "post upvoted"
	ReasonReplyUpvoted       = "reply upvoted"
	ReasonPublicGroup        = "create public line group"
	ReasonPinPost            = "pin post"
	ReasonPrivateGroup       = "create private line group"
	ReasonPinRefund          = "pin post refund"
	ReasonPrivateGroupRefund = "create private line group refund"
)

var (
	ErrInvalidAmount       = errors.New("points must be positive")
	ErrProfileNotFound     = pointsRepo.ErrProfileNotFound
	ErrInsufficientBalance = pointsRepo.ErrInsufficientBalance
	ErrPersistence         = errors.New("points ledger write failed")
	ErrTimeout             = errors.New("points ledger timed out")
)

// Notifier receives fire-and-forget notifications.
type Notifier interface {
	Notify(ctx context.Context, notification *entity.Notification)
}

// PointsLedger is what forum actions consume: a boolean success contract.
type PointsLedger interface {
	AwardPoints(ctx context.Context, userID uuid.UUID, points int, reason string) bool
	DeductPoints(ctx context.Context, userID uuid.UUID, points int, reason string) bool
}

type Ledger struct {
	repo     pointsRepo.LedgerRepository
	notifier Notifier
	timeout  time.Duration
}

func NewLedger(repo pointsRepo.LedgerRepository, notifier Notifier, timeout time.Duration) *Ledger {
	return &Ledger{
		repo:     repo,
		notifier: notifier,
		timeout:  timeout,
	}
}

// Award credits points and returns the new balance.
func (l *Ledger) Award(ctx context.Context, userID uuid.UUID, points int, reason string) (*pointsRepo.Balance, error) {
	if points <= 0 {
		return nil, ErrInvalidAmount
	}

	balance, err := l.apply(ctx, userID, points, reason)
	if err != nil {
		return nil, err
	}

	// A refund only restores a level the user already held.
	if prev := LevelFor(balance.TotalPoints - points); balance.Level > prev && !isRefund(reason) {
		l.sendLevelUp(ctx, balance, prev)
	}
	return balance, nil
}

func isRefund(reason string) bool {
	return reason == ReasonPinRefund || reason == ReasonPrivateGroupRefund
}

// Deduct debits points; an overdraw leaves the balance untouched and
// returns ErrInsufficientBalance.
func (l *Ledger) Deduct(ctx context.Context, userID uuid.UUID, points int, reason string) (*pointsRepo.Balance, error) {
	if points <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.apply(ctx, userID, -points, reason)
}

func (l *Ledger) apply(ctx context.Context, userID uuid.UUID, delta int, reason string) (*pointsRepo.Balance, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	balance, err := l.repo.Apply(ctx, userID, delta, reason)
	switch {
	case err == nil:
		return balance, nil
	case errors.Is(err, pointsRepo.ErrProfileNotFound), errors.Is(err, pointsRepo.ErrInsufficientBalance):
		return nil, err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

// AwardPoints never lets a failure escape: it logs and reports false. The
// write is detached from the caller's cancellation so a client hanging up
// does not lose points for an action that already happened.
func (l *Ledger) AwardPoints(ctx context.Context, userID uuid.UUID, points int, reason string) bool {
	if _, err := l.Award(context.WithoutCancel(ctx), userID, points, reason); err != nil {
		logger.FromContext(ctx).Warn("award points failed",
			"user_id", userID, "points", points, "reason", reason, "error", err)
		return false
	}
	return true
}

func (l *Ledger) DeductPoints(ctx context.Context, userID uuid.UUID, points int, reason string) bool {
	if _, err := l.Deduct(context.WithoutCancel(ctx), userID, points, reason); err != nil {
		logger.FromContext(ctx).Warn("deduct points failed",
			"user_id", userID, "points", points, "reason", reason, "error", err)
		return false
	}
	return true
}

func (l *Ledger) sendLevelUp(ctx context.Context, b *pointsRepo.Balance, prev int) {
	logger.FromContext(ctx).Info("level up", "user_id", b.UserID, "from", prev, "to", b.Level)
	if l.notifier == nil {
		return
	}

	userID := b.UserID
	l.notifier.Notify(ctx, &entity.Notification{
		UserID:     userID,
		EntityID:   &userID,
		EntityType: "profile",
		Type:       entity.NotificationLevelUp,
		Message:    fmt.Sprintf("🎉 Congratulations! You reached level %d with %d points.", b.Level, b.TotalPoints),
	})
}
