package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	cases := map[int]int{
		-5:    1,
		0:     1,
		99:    1,
		100:   2,
		105:   2,
		250:   3,
		899:   9,
		900:   10,
		5000:  10,
		99999: 10,
	}
	for total, want := range cases {
		require.Equal(t, want, LevelFor(total), "total=%d", total)
	}
}

func TestLevelStatusFor(t *testing.T) {
	s := LevelStatusFor(150)
	require.Equal(t, 2, s.Level)
	require.Equal(t, 100, s.CurrentLevel)
	require.Equal(t, 200, s.NextLevel)
	require.InDelta(t, 50.0, s.Progress, 0.001)

	top := LevelStatusFor(1200)
	require.True(t, top.MaxLevel)
	require.InDelta(t, 100.0, top.Progress, 0.001)
}

func TestLedgerAward(t *testing.T) {
	ctx := context.Background()

	t.Run("adds points and derives level", func(t *testing.T) {
		repo := newMemLedger()
		notifier := &recordingNotifier{}
		l := NewLedger(repo, notifier, time.Second)
		id := repo.addProfile(95)

		b, err := l.Award(ctx, id, 10, ReasonCreatePost)
		require.NoError(t, err)
		require.Equal(t, 105, b.TotalPoints)
		require.Equal(t, 2, b.Level)
		require.Equal(t, 105, repo.total(id))

		recs := repo.recordsFor(id)
		require.Len(t, recs, 1)
		require.Equal(t, 10, recs[0].Points)
		require.Equal(t, ReasonCreatePost, recs[0].Reason)

		require.Equal(t, 1, notifier.count(), "crossing 100 is a level up")
	})

	t.Run("no level up inside a level", func(t *testing.T) {
		repo := newMemLedger()
		notifier := &recordingNotifier{}
		l := NewLedger(repo, notifier, time.Second)
		id := repo.addProfile(10)

		require.True(t, l.AwardPoints(ctx, id, 5, ReasonCreateReply))
		require.Equal(t, 15, repo.total(id))
		require.Zero(t, notifier.count())
	})

	t.Run("non-positive amounts are a no-op", func(t *testing.T) {
		repo := newMemLedger()
		l := NewLedger(repo, nil, time.Second)
		id := repo.addProfile(20)

		for _, amount := range []int{0, -3} {
			_, err := l.Award(ctx, id, amount, "x")
			require.ErrorIs(t, err, ErrInvalidAmount)
			require.False(t, l.AwardPoints(ctx, id, amount, "x"))
			require.False(t, l.DeductPoints(ctx, id, amount, "x"))
		}
		require.Equal(t, 20, repo.total(id))
		require.Empty(t, repo.recordsFor(id))
	})

	t.Run("unknown profile", func(t *testing.T) {
		l := NewLedger(newMemLedger(), nil, time.Second)
		_, err := l.Award(ctx, uuid.New(), 1, ReasonDailyLogin)
		require.ErrorIs(t, err, ErrProfileNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := newMemLedger()
		repo.applyErr = errors.New("connection reset")
		l := NewLedger(repo, nil, time.Second)

		_, err := l.Award(ctx, repo.addProfile(0), 1, ReasonDailyLogin)
		require.ErrorIs(t, err, ErrPersistence)
	})

	t.Run("timeout", func(t *testing.T) {
		repo := newMemLedger()
		repo.block = true
		l := NewLedger(repo, nil, 20*time.Millisecond)

		_, err := l.Award(ctx, repo.addProfile(0), 1, ReasonDailyLogin)
		require.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("refund regaining a level is silent", func(t *testing.T) {
		repo := newMemLedger()
		notifier := &recordingNotifier{}
		l := NewLedger(repo, notifier, time.Second)
		id := repo.addProfile(120)

		require.True(t, l.DeductPoints(ctx, id, CostPinPost, ReasonPinPost))
		require.Equal(t, 1, repo.level(id))
		require.True(t, l.AwardPoints(ctx, id, CostPinPost, ReasonPinRefund))
		require.Equal(t, 120, repo.total(id))
		require.Equal(t, 2, repo.level(id))
		require.Zero(t, notifier.count())

		require.True(t, l.DeductPoints(ctx, id, CostPrivateGroup, ReasonPrivateGroup))
		require.True(t, l.AwardPoints(ctx, id, CostPrivateGroup, ReasonPrivateGroupRefund))
		require.Zero(t, notifier.count())
	})

	t.Run("caller cancellation does not abort the write", func(t *testing.T) {
		repo := newMemLedger()
		l := NewLedger(repo, nil, time.Second)
		id := repo.addProfile(0)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.True(t, l.AwardPoints(cctx, id, 10, ReasonCreatePost))
		require.Equal(t, 10, repo.total(id))
	})
}

func TestLedgerDeduct(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient balance changes nothing", func(t *testing.T) {
		repo := newMemLedger()
		l := NewLedger(repo, nil, time.Second)
		id := repo.addProfile(40)

		_, err := l.Deduct(ctx, id, 50, ReasonPinPost)
		require.ErrorIs(t, err, ErrInsufficientBalance)
		require.False(t, l.DeductPoints(ctx, id, 50, ReasonPinPost))
		require.Equal(t, 40, repo.total(id))
		require.Empty(t, repo.recordsFor(id))
	})

	t.Run("within balance", func(t *testing.T) {
		repo := newMemLedger()
		l := NewLedger(repo, nil, time.Second)
		id := repo.addProfile(250)

		b, err := l.Deduct(ctx, id, 60, ReasonPinPost)
		require.NoError(t, err)
		require.Equal(t, 190, b.TotalPoints)
		require.Equal(t, 2, b.Level)

		recs := repo.recordsFor(id)
		require.Len(t, recs, 1)
		require.Equal(t, -60, recs[0].Points)
	})

	t.Run("exact balance floors level at 1", func(t *testing.T) {
		repo := newMemLedger()
		l := NewLedger(repo, nil, time.Second)
		id := repo.addProfile(30)

		require.True(t, l.DeductPoints(ctx, id, 30, ReasonPrivateGroup))
		require.Equal(t, 0, repo.total(id))
		require.Equal(t, 1, repo.level(id))
	})
}

func TestLedgerNeverDrifts(t *testing.T) {
	ctx := context.Background()
	repo := newMemLedger()
	l := NewLedger(repo, nil, time.Second)
	id := repo.addProfile(0)

	l.AwardPoints(ctx, id, 10, ReasonCreatePost)
	l.AwardPoints(ctx, id, 5, ReasonCreateReply)
	l.DeductPoints(ctx, id, 50, ReasonPinPost) // refused
	l.DeductPoints(ctx, id, 12, ReasonPinPost)

	svc := NewPointsService(repo, time.Second, time.Second)
	drift, err := svc.AuditDrift(ctx)
	require.NoError(t, err)
	require.Empty(t, drift)
	require.Equal(t, 3, repo.total(id))
}
