package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"anoa.com/campusforum/internal/entity"
	pointsRepo "anoa.com/campusforum/internal/modules/points/repository"
	"github.com/google/uuid"
)

// memLedger mirrors the SQL semantics of the gorm repository in memory.
type memLedger struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*entity.Profile
	lastLogin map[uuid.UUID]string
	records   []entity.PointRecord

	applyErr error
	stampErr error
	block    bool // Apply waits for ctx to expire
}

func newMemLedger() *memLedger {
	return &memLedger{
		profiles:  map[uuid.UUID]*entity.Profile{},
		lastLogin: map[uuid.UUID]string{},
	}
}

func (m *memLedger) addProfile(total int) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.profiles[id] = &entity.Profile{
		ID:          id,
		Username:    "user-" + id.String()[:4],
		TotalPoints: total,
		Level:       LevelFor(total),
		Role:        entity.RoleUser,
	}
	return id
}

func (m *memLedger) total(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[id].TotalPoints
}

func (m *memLedger) level(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[id].Level
}

func (m *memLedger) recordsFor(id uuid.UUID) []entity.PointRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.PointRecord
	for _, r := range m.records {
		if r.UserID == id {
			out = append(out, r)
		}
	}
	return out
}

func (m *memLedger) Apply(ctx context.Context, userID uuid.UUID, delta int, reason string) (*pointsRepo.Balance, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.applyErr != nil {
		return nil, m.applyErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, pointsRepo.ErrProfileNotFound
	}
	if delta < 0 && p.TotalPoints < -delta {
		return nil, pointsRepo.ErrInsufficientBalance
	}
	p.TotalPoints += delta
	p.Level = min(10, max(1, 1+p.TotalPoints/100))
	m.records = append(m.records, entity.PointRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Points:    delta,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
	return &pointsRepo.Balance{UserID: userID, TotalPoints: p.TotalPoints, Level: p.Level}, nil
}

func (m *memLedger) GetProfile(_ context.Context, userID uuid.UUID) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, pointsRepo.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memLedger) LastLoginDate(_ context.Context, userID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[userID]; !ok {
		return "", pointsRepo.ErrProfileNotFound
	}
	return m.lastLogin[userID], nil
}

func (m *memLedger) StampLoginDate(_ context.Context, userID uuid.UUID, day string) (bool, error) {
	if m.stampErr != nil {
		return false, m.stampErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[userID]; !ok || m.lastLogin[userID] == day {
		return false, nil
	}
	m.lastLogin[userID] = day
	return true, nil
}

func (m *memLedger) RestoreLoginDate(_ context.Context, userID uuid.UUID, day, prev string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastLogin[userID] == day {
		m.lastLogin[userID] = prev
	}
	return nil
}

func (m *memLedger) CountAbove(_ context.Context, total int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.profiles {
		if p.TotalPoints > total {
			n++
		}
	}
	return n, nil
}

func (m *memLedger) CountProfiles(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.profiles)), nil
}

func (m *memLedger) History(_ context.Context, userID uuid.UUID, limit int) ([]entity.PointRecord, error) {
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	recs := m.recordsFor(userID)
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (m *memLedger) TopProfiles(_ context.Context, limit int) ([]entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalPoints > out[j].TotalPoints })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLedger) TopSince(context.Context, time.Time, int) ([]pointsRepo.WeeklyScore, error) {
	return nil, errors.New("not supported")
}

func (m *memLedger) Drift(context.Context) ([]pointsRepo.DriftRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sums := map[uuid.UUID]int{}
	for _, r := range m.records {
		sums[r.UserID] += r.Points
	}
	var out []pointsRepo.DriftRow
	for id, p := range m.profiles {
		if sums[id] != p.TotalPoints {
			out = append(out, pointsRepo.DriftRow{UserID: id, TotalPoints: p.TotalPoints, LedgerSum: sums[id]})
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []entity.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n *entity.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, *n)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}
