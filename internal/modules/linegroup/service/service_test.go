package linegroup

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"anoa.com/campusforum/internal/entity"
	lineGroupDto "anoa.com/campusforum/internal/modules/linegroup/dto"
	lineGroupRepo "anoa.com/campusforum/internal/modules/linegroup/repository"
	pointsService "anoa.com/campusforum/internal/modules/points/service"
	"anoa.com/campusforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memGroups struct {
	groups    map[uuid.UUID]*entity.LineGroup
	createErr error
}

func (m *memGroups) Create(_ context.Context, g *entity.LineGroup) error {
	if m.createErr != nil {
		return m.createErr
	}
	g.ID = uuid.New()
	cp := *g
	m.groups[g.ID] = &cp
	return nil
}

func (m *memGroups) FindByID(_ context.Context, id uuid.UUID) (*entity.LineGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, lineGroupRepo.ErrGroupNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memGroups) List(_ context.Context, includeInactive bool, offset, limit int) ([]entity.LineGroup, int64, error) {
	var out []entity.LineGroup
	for _, g := range m.groups {
		if g.IsActive || includeInactive {
			out = append(out, *g)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memGroups) Update(_ context.Context, id uuid.UUID, fields map[string]any) error {
	g, ok := m.groups[id]
	if !ok {
		return lineGroupRepo.ErrGroupNotFound
	}
	if v, ok := fields["name"]; ok {
		g.Name = v.(string)
	}
	if v, ok := fields["is_active"]; ok {
		g.IsActive = v.(bool)
	}
	if v, ok := fields["qr_code_url"]; ok {
		g.QRCodeURL = v.(string)
	}
	return nil
}

func (m *memGroups) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.groups[id]; !ok {
		return lineGroupRepo.ErrGroupNotFound
	}
	delete(m.groups, id)
	return nil
}

type fakeRoles map[uuid.UUID]bool

func (f fakeRoles) IsAdmin(_ context.Context, id uuid.UUID) bool { return f[id] }
func (f fakeRoles) IsSuperadmin(context.Context, uuid.UUID) bool { return false }

type fakeLedger struct {
	balances map[uuid.UUID]int
	reasons  []string
}

func (f *fakeLedger) AwardPoints(_ context.Context, id uuid.UUID, points int, reason string) bool {
	f.balances[id] += points
	f.reasons = append(f.reasons, reason)
	return true
}

func (f *fakeLedger) DeductPoints(_ context.Context, id uuid.UUID, points int, reason string) bool {
	if f.balances[id] < points {
		return false
	}
	f.balances[id] -= points
	f.reasons = append(f.reasons, reason)
	return true
}

type noopProfiles struct{}

func (noopProfiles) EnsureProfile(context.Context, uuid.UUID, string) error { return nil }

type fakeImages struct{ deleted []string }

func (f *fakeImages) UploadImage(context.Context, io.Reader, string, string) (string, error) {
	return "", nil
}

func (f *fakeImages) DeleteImage(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func setup() (*lineGroupService, *memGroups, *fakeLedger, fakeRoles, *fakeImages) {
	repo := &memGroups{groups: map[uuid.UUID]*entity.LineGroup{}}
	ledger := &fakeLedger{balances: map[uuid.UUID]int{}}
	roles := fakeRoles{}
	images := &fakeImages{}
	svc := NewLineGroupService(repo, roles, ledger, noopProfiles{}, images, time.Second).(*lineGroupService)
	return svc, repo, ledger, roles, images
}

func createReq(private bool) lineGroupDto.CreateGroupRequest {
	return lineGroupDto.CreateGroupRequest{
		Name:      "CS Class of 2027",
		QRCodeURL: "https://res.cloudinary.com/demo/image/upload/v1/qr/cs.webp",
		IsPrivate: private,
	}
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("non admin is rejected", func(t *testing.T) {
		svc, repo, _, _, _ := setup()
		_, err := svc.CreateGroup(ctx, uuid.New(), "", createReq(false))
		require.ErrorIs(t, err, ErrAdminOnly)
		require.Empty(t, repo.groups)
	})

	t.Run("public group awards points", func(t *testing.T) {
		svc, repo, ledger, roles, _ := setup()
		admin := uuid.New()
		roles[admin] = true

		resp, err := svc.CreateGroup(ctx, admin, "", createReq(false))
		require.NoError(t, err)
		require.True(t, resp.IsActive)
		require.Len(t, repo.groups, 1)
		require.Equal(t, pointsService.PointsPublicGroup, ledger.balances[admin])
	})

	t.Run("private group costs points", func(t *testing.T) {
		svc, _, ledger, roles, _ := setup()
		admin := uuid.New()
		roles[admin] = true
		ledger.balances[admin] = 45

		_, err := svc.CreateGroup(ctx, admin, "", createReq(true))
		require.NoError(t, err)
		require.Equal(t, 15, ledger.balances[admin])
	})

	t.Run("private group without balance", func(t *testing.T) {
		svc, repo, ledger, roles, _ := setup()
		admin := uuid.New()
		roles[admin] = true
		ledger.balances[admin] = 29

		_, err := svc.CreateGroup(ctx, admin, "", createReq(true))
		require.ErrorIs(t, err, ErrInsufficientPoints)
		require.ErrorIs(t, err, apperror.ErrBadRequest)
		require.Empty(t, repo.groups)
		require.Equal(t, 29, ledger.balances[admin])
	})

	t.Run("failed insert refunds a private group", func(t *testing.T) {
		svc, repo, ledger, roles, _ := setup()
		admin := uuid.New()
		roles[admin] = true
		ledger.balances[admin] = 30
		repo.createErr = errors.New("db down")

		_, err := svc.CreateGroup(ctx, admin, "", createReq(true))
		require.Error(t, err)
		require.Equal(t, 30, ledger.balances[admin])
	})
}

func TestGroupVisibilityAndManagement(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, roles, images := setup()
	admin, manager, stranger := uuid.New(), uuid.New(), uuid.New()
	roles[admin] = true

	g := &entity.LineGroup{Name: "Hidden", QRCodeURL: "https://res.cloudinary.com/demo/image/upload/v1/qr/h.webp", ManagerID: manager, IsActive: false}
	require.NoError(t, repo.Create(ctx, g))

	_, err := svc.GetGroup(ctx, &stranger, g.ID)
	require.ErrorIs(t, err, ErrGroupNotFound)
	_, err = svc.GetGroup(ctx, nil, g.ID)
	require.ErrorIs(t, err, ErrGroupNotFound)
	_, err = svc.GetGroup(ctx, &manager, g.ID)
	require.NoError(t, err)

	list, err := svc.ListGroups(ctx, nil, lineGroupDto.GroupFilter{})
	require.NoError(t, err)
	require.Empty(t, list.Data)
	list, err = svc.ListGroups(ctx, &admin, lineGroupDto.GroupFilter{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)

	active := true
	_, err = svc.UpdateGroup(ctx, stranger, g.ID, lineGroupDto.UpdateGroupRequest{IsActive: &active})
	require.ErrorIs(t, err, ErrNotManager)

	updated, err := svc.UpdateGroup(ctx, manager, g.ID, lineGroupDto.UpdateGroupRequest{IsActive: &active})
	require.NoError(t, err)
	require.True(t, updated.IsActive)

	_, err = svc.UpdateGroup(ctx, manager, g.ID, lineGroupDto.UpdateGroupRequest{})
	require.ErrorIs(t, err, apperror.ErrBadRequest)

	require.ErrorIs(t, svc.DeleteGroup(ctx, stranger, g.ID), ErrNotManager)
	require.NoError(t, svc.DeleteGroup(ctx, admin, g.ID))
	require.Equal(t, []string{g.QRCodeURL}, images.deleted)
	require.ErrorIs(t, svc.DeleteGroup(ctx, admin, g.ID), ErrGroupNotFound)
}
