package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/campusforum/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	active    int64
	posts     int64
	users     []entity.Profile
	err       error
	since     []time.Time
	lastLimit int
}

func (f *fakeStats) ActiveMembers(_ context.Context, since time.Time) (int64, error) {
	f.since = append(f.since, since)
	return f.active, f.err
}

func (f *fakeStats) PostsSince(_ context.Context, since time.Time) (int64, error) {
	f.since = append(f.since, since)
	return f.posts, f.err
}

func (f *fakeStats) TopUsers(_ context.Context, limit int) ([]entity.Profile, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.users[:min(limit, len(f.users))], nil
}

func TestCommunity(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("counts within the windows", func(t *testing.T) {
		repo := &fakeStats{active: 12, posts: 4}
		svc := &statsService{repo: repo, timeout: time.Second, now: func() time.Time { return now }}

		got := svc.Community(context.Background())
		require.EqualValues(t, 12, got.ActiveMembers)
		require.EqualValues(t, 4, got.ThreadsThisWeek)
		require.Equal(t, []time.Time{now.AddDate(0, 0, -30), now.AddDate(0, 0, -7)}, repo.since)
	})

	t.Run("errors read as zero", func(t *testing.T) {
		svc := NewStatsService(&fakeStats{active: 3, err: errors.New("db down")}, time.Second)
		got := svc.Community(context.Background())
		require.Zero(t, got.ActiveMembers)
		require.Zero(t, got.ThreadsThisWeek)
	})
}

func TestTopUsers(t *testing.T) {
	users := make([]entity.Profile, 0, 60)
	for i := range 60 {
		users = append(users, entity.Profile{ID: uuid.New(), Username: "student", TotalPoints: 600 - i, Level: 0})
	}

	t.Run("default and clamped limits", func(t *testing.T) {
		repo := &fakeStats{users: users}
		svc := NewStatsService(repo, time.Second)

		got := svc.TopUsers(context.Background(), 0)
		require.Len(t, got, DefaultTopUsers)
		require.Equal(t, 600, got[0].TotalPoints)
		require.Equal(t, 1, got[0].Level)

		got = svc.TopUsers(context.Background(), 500)
		require.Len(t, got, MaxTopUsers)
		require.Equal(t, MaxTopUsers, repo.lastLimit)
	})

	t.Run("errors read as empty", func(t *testing.T) {
		got := NewStatsService(&fakeStats{err: errors.New("db down")}, time.Second).TopUsers(context.Background(), 5)
		require.NotNil(t, got)
		require.Empty(t, got)
	})
}
