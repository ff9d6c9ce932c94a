package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"anoa.com/campusforum/internal/entity"
	"anoa.com/campusforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu    sync.Mutex
	items []entity.Notification
}

func (f *fakeRepo) Create(_ context.Context, n *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeRepo) GetByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkAsRead(_ context.Context, userID, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].UserID == userID {
			f.items[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, item := range f.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewNotificationService(repo, nil, time.Second)
	owner, stranger := uuid.New(), uuid.New()

	n := &entity.Notification{UserID: owner, Type: entity.NotificationLevelUp, Message: "level 2"}
	require.NoError(t, svc.CreateNotification(ctx, n))

	count, err := svc.UnreadCount(ctx, owner)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	t.Run("cannot mark someone else's notification", func(t *testing.T) {
		err := svc.MarkAsRead(ctx, stranger, n.ID)
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("owner marks as read", func(t *testing.T) {
		require.NoError(t, svc.MarkAsRead(ctx, owner, n.ID))
		count, err := svc.UnreadCount(ctx, owner)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("notify stores in background", func(t *testing.T) {
		svc.Notify(ctx, &entity.Notification{UserID: stranger, Type: entity.NotificationPostUpvoted})
		require.Eventually(t, func() bool {
			c, _ := svc.UnreadCount(ctx, stranger)
			return c == 1
		}, time.Second, 10*time.Millisecond)
	})
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("6f1c4a52-8a9e-4b8e-9d6a-0d2a4b9c1e11")
	require.Equal(t, "user_notifications:6f1c4a52-8a9e-4b8e-9d6a-0d2a4b9c1e11", Channel(id))
}
