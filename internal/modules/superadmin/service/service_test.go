package superadmin

import (
	"context"
	"testing"
	"time"

	"anoa.com/campusforum/internal/entity"
	pointsDto "anoa.com/campusforum/internal/modules/points/dto"
	superadminDto "anoa.com/campusforum/internal/modules/superadmin/dto"
	superadminRepo "anoa.com/campusforum/internal/modules/superadmin/repository"
	"anoa.com/campusforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	users map[uuid.UUID]*entity.Profile
	query superadminRepo.UserQuery
}

func (m *memUsers) Stats(context.Context) (*superadminRepo.Stats, error) {
	st := &superadminRepo.Stats{RoleDistribution: map[string]int64{}}
	for _, u := range m.users {
		st.TotalUsers++
		st.PointsInCirculation += int64(u.TotalPoints)
		st.RoleDistribution[u.Role]++
	}
	return st, nil
}

func (m *memUsers) ListUsers(_ context.Context, q superadminRepo.UserQuery) ([]entity.Profile, int64, error) {
	m.query = q
	var out []entity.Profile
	for _, u := range m.users {
		if q.Role == "" || u.Role == q.Role {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memUsers) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	u, ok := m.users[id]
	if !ok {
		return superadminRepo.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (m *memUsers) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return superadminRepo.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type fakeAuditor struct{ drift []pointsDto.DriftEntry }

func (f fakeAuditor) AuditDrift(context.Context) ([]pointsDto.DriftEntry, error) {
	return f.drift, nil
}

type fakeNotifier struct{ sent []*entity.Notification }

func (f *fakeNotifier) Notify(_ context.Context, n *entity.Notification) {
	f.sent = append(f.sent, n)
}

func seed(roles ...string) (*memUsers, []uuid.UUID) {
	m := &memUsers{users: map[uuid.UUID]*entity.Profile{}}
	ids := make([]uuid.UUID, 0, len(roles))
	for i, r := range roles {
		id := uuid.New()
		m.users[id] = &entity.Profile{ID: id, Username: "u", Role: r, TotalPoints: (i + 1) * 10}
		ids = append(ids, id)
	}
	return m, ids
}

func TestGetStats(t *testing.T) {
	repo, _ := seed(entity.RoleUser, entity.RoleUser, entity.RoleSuperadmin)
	svc := NewSuperadminService(repo, fakeAuditor{}, nil, time.Second)

	st, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, st.TotalUsers)
	require.EqualValues(t, 60, st.PointsInCirculation)
	require.Equal(t, map[string]int64{
		entity.RoleUser:       2,
		entity.RoleModerator:  0,
		entity.RoleAdmin:      0,
		entity.RoleSuperadmin: 1,
	}, st.RoleDistribution)
}

func TestListUsers(t *testing.T) {
	repo, _ := seed(entity.RoleUser, entity.RoleModerator)
	svc := NewSuperadminService(repo, fakeAuditor{}, nil, time.Second)

	res, err := svc.ListUsers(context.Background(), superadminDto.UserFilter{Role: entity.RoleModerator, Page: 2, Limit: 500})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	require.Equal(t, 20, res.Limit)
	require.Equal(t, 20, repo.query.Offset)

	_, err = svc.ListUsers(context.Background(), superadminDto.UserFilter{Role: "owner"})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	repo, ids := seed(entity.RoleSuperadmin, entity.RoleUser)
	notifier := &fakeNotifier{}
	svc := NewSuperadminService(repo, fakeAuditor{}, notifier, time.Second)
	actor, target := ids[0], ids[1]

	require.NoError(t, svc.UpdateRole(ctx, actor, target, entity.RoleModerator))
	require.Equal(t, entity.RoleModerator, repo.users[target].Role)
	require.Len(t, notifier.sent, 1)
	require.Equal(t, entity.NotificationRoleChanged, notifier.sent[0].Type)

	require.ErrorIs(t, svc.UpdateRole(ctx, actor, target, "owner"), ErrInvalidRole)
	require.ErrorIs(t, svc.UpdateRole(ctx, actor, actor, entity.RoleUser), ErrSelfChange)
	require.ErrorIs(t, svc.UpdateRole(ctx, actor, uuid.New(), entity.RoleUser), apperror.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	repo, ids := seed(entity.RoleSuperadmin, entity.RoleUser)
	svc := NewSuperadminService(repo, fakeAuditor{}, nil, time.Second)

	require.ErrorIs(t, svc.DeleteUser(ctx, ids[0], ids[0]), ErrSelfChange)
	require.NoError(t, svc.DeleteUser(ctx, ids[0], ids[1]))
	require.NotContains(t, repo.users, ids[1])
	require.ErrorIs(t, svc.DeleteUser(ctx, ids[0], ids[1]), ErrUserNotFound)
}

func TestLedgerAudit(t *testing.T) {
	drift := []pointsDto.DriftEntry{{UserID: uuid.New(), TotalPoints: 10, LedgerSum: 12}}
	svc := NewSuperadminService(&memUsers{}, fakeAuditor{drift: drift}, nil, time.Second)

	got, err := svc.LedgerAudit(context.Background())
	require.NoError(t, err)
	require.Equal(t, drift, got)
}
