package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/campusforum/internal/entity"
	accessRepo "anoa.com/campusforum/internal/modules/access/repository"
	"github.com/google/uuid"
)

type fakeAccessRepo struct {
	admins   map[uuid.UUID]*entity.Admin
	roles    map[uuid.UUID]string
	adminErr error
	roleErr  error
	block    bool
	stamped  map[uuid.UUID]time.Time
}

func newFakeAccessRepo() *fakeAccessRepo {
	return &fakeAccessRepo{
		admins:  map[uuid.UUID]*entity.Admin{},
		roles:   map[uuid.UUID]string{},
		stamped: map[uuid.UUID]time.Time{},
	}
}

func (f *fakeAccessRepo) HasActiveAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	if f.adminErr != nil {
		return false, f.adminErr
	}
	a, ok := f.admins[id]
	return ok && a.IsActive, nil
}

func (f *fakeAccessRepo) ProfileRole(ctx context.Context, id uuid.UUID) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.roleErr != nil {
		return "", f.roleErr
	}
	role, ok := f.roles[id]
	if !ok {
		return "", accessRepo.ErrNotFound
	}
	return role, nil
}

func (f *fakeAccessRepo) FindActiveAdminByEmail(_ context.Context, email string) (*entity.Admin, error) {
	for _, a := range f.admins {
		if strings.EqualFold(a.Email, email) && a.IsActive {
			return a, nil
		}
	}
	return nil, accessRepo.ErrNotFound
}

func (f *fakeAccessRepo) StampAdminLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if _, ok := f.admins[id]; !ok {
		return errors.New("no such admin")
	}
	f.stamped[id] = at
	return nil
}
