package report

import (
	"context"
	"testing"
	"time"

	"anoa.com/campusforum/internal/entity"
	reportDto "anoa.com/campusforum/internal/modules/report/dto"
	reportRepo "anoa.com/campusforum/internal/modules/report/repository"
	"anoa.com/campusforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memReports struct {
	posts   map[uuid.UUID]bool
	replies map[uuid.UUID]uuid.UUID // reply -> post
	groups  map[uuid.UUID]bool
	reports map[uuid.UUID]*entity.Report
}

func newMemReports() *memReports {
	return &memReports{
		posts:   map[uuid.UUID]bool{},
		replies: map[uuid.UUID]uuid.UUID{},
		groups:  map[uuid.UUID]bool{},
		reports: map[uuid.UUID]*entity.Report{},
	}
}

func (m *memReports) PostExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.posts[id], nil
}

func (m *memReports) GroupExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.groups[id], nil
}

func (m *memReports) ReplyPostID(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	postID, ok := m.replies[id]
	if !ok {
		return uuid.Nil, reportRepo.ErrTargetNotFound
	}
	return postID, nil
}

func (m *memReports) HasReported(_ context.Context, targetType string, targetID, reporterID uuid.UUID) (bool, error) {
	for _, r := range m.reports {
		if r.TargetType == targetType && r.TargetID == targetID && r.ReporterID == reporterID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReports) Create(ctx context.Context, r *entity.Report) error {
	if dup, _ := m.HasReported(ctx, r.TargetType, r.TargetID, r.ReporterID); dup {
		return reportRepo.ErrDuplicateReport
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *memReports) FindByID(_ context.Context, id uuid.UUID) (*entity.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, reportRepo.ErrReportNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReports) List(_ context.Context, q reportRepo.ReportQuery) ([]entity.Report, int64, error) {
	var out []entity.Report
	for _, r := range m.reports {
		if (q.Status == "" || r.Status == q.Status) && (q.TargetType == "" || r.TargetType == q.TargetType) {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memReports) Review(_ context.Context, id uuid.UUID, status string, reviewerID uuid.UUID, at time.Time) error {
	r, ok := m.reports[id]
	if !ok || r.Status != entity.ReportPending {
		return reportRepo.ErrAlreadyReviewed
	}
	r.Status = status
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &at
	return nil
}

type fakeRoles map[uuid.UUID]bool

func (f fakeRoles) IsAdmin(_ context.Context, id uuid.UUID) bool { return f[id] }
func (f fakeRoles) IsSuperadmin(context.Context, uuid.UUID) bool { return false }

type fakeProfiles struct{ ensured []uuid.UUID }

func (f *fakeProfiles) EnsureProfile(_ context.Context, id uuid.UUID, _ string) error {
	f.ensured = append(f.ensured, id)
	return nil
}

type fakeNotifier struct{ sent []*entity.Notification }

func (f *fakeNotifier) Notify(_ context.Context, n *entity.Notification) {
	f.sent = append(f.sent, n)
}

type fixture struct {
	svc      ReportService
	repo     *memReports
	profiles *fakeProfiles
	notifier *fakeNotifier
	admin    uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newMemReports(),
		profiles: &fakeProfiles{},
		notifier: &fakeNotifier{},
		admin:    uuid.New(),
	}
	f.svc = NewReportService(f.repo, fakeRoles{f.admin: true}, f.profiles, f.notifier, time.Second)
	return f
}

func TestReportPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	postID, reporter := uuid.New(), uuid.New()
	f.repo.posts[postID] = true

	t.Run("files a pending report", func(t *testing.T) {
		resp, err := f.svc.ReportPost(ctx, reporter, "a@kampus.ac.id", postID, reportDto.CreateReportRequest{Reason: "spam"})
		require.NoError(t, err)
		require.Equal(t, entity.ReportPending, resp.Status)
		require.Equal(t, entity.ReportTargetPost, resp.TargetType)
		require.Equal(t, postID, resp.TargetID)
		require.Equal(t, []uuid.UUID{reporter}, f.profiles.ensured)
	})

	t.Run("second report from the same user", func(t *testing.T) {
		_, err := f.svc.ReportPost(ctx, reporter, "", postID, reportDto.CreateReportRequest{Reason: "spam again"})
		require.ErrorIs(t, err, ErrAlreadyReported)
		require.Len(t, f.repo.reports, 1)
	})

	t.Run("another user may report too", func(t *testing.T) {
		_, err := f.svc.ReportPost(ctx, uuid.New(), "", postID, reportDto.CreateReportRequest{Reason: "off topic"})
		require.NoError(t, err)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := f.svc.ReportPost(ctx, reporter, "", uuid.New(), reportDto.CreateReportRequest{Reason: "spam"})
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("markup-only reason", func(t *testing.T) {
		other := uuid.New()
		f.repo.posts[other] = true
		_, err := f.svc.ReportPost(ctx, reporter, "", other, reportDto.CreateReportRequest{Reason: "<i></i>"})
		require.ErrorIs(t, err, ErrEmptyReason)
	})
}

func TestReportReply(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	postID, otherPost, replyID := uuid.New(), uuid.New(), uuid.New()
	f.repo.replies[replyID] = postID

	_, err := f.svc.ReportReply(ctx, uuid.New(), "", otherPost, replyID, reportDto.CreateReportRequest{Reason: "rude"})
	require.ErrorIs(t, err, ErrReplyNotInPost)

	_, err = f.svc.ReportReply(ctx, uuid.New(), "", postID, uuid.New(), reportDto.CreateReportRequest{Reason: "rude"})
	require.ErrorIs(t, err, ErrReplyNotFound)

	resp, err := f.svc.ReportReply(ctx, uuid.New(), "", postID, replyID, reportDto.CreateReportRequest{Reason: "rude"})
	require.NoError(t, err)
	require.Equal(t, entity.ReportTargetReply, resp.TargetType)
	require.Equal(t, &postID, resp.PostID)
}

func TestReviewReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	groupID, reporter := uuid.New(), uuid.New()
	f.repo.groups[groupID] = true

	filed, err := f.svc.ReportGroup(ctx, reporter, "", groupID, reportDto.GroupReportRequest{Reason: "QR code leads to a scam"})
	require.NoError(t, err)

	t.Run("admin only", func(t *testing.T) {
		_, err := f.svc.ReviewReport(ctx, uuid.New(), filed.ID, reportDto.ReviewReportRequest{Status: "resolved"})
		require.ErrorIs(t, err, apperror.ErrForbidden)
		_, err = f.svc.ListReports(ctx, uuid.New(), reportDto.ReportFilter{})
		require.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("approved maps to resolved and notifies", func(t *testing.T) {
		resp, err := f.svc.ReviewReport(ctx, f.admin, filed.ID, reportDto.ReviewReportRequest{Status: "approved"})
		require.NoError(t, err)
		require.Equal(t, entity.ReportResolved, resp.Status)
		require.Equal(t, &f.admin, resp.ReviewedBy)
		require.NotNil(t, resp.ReviewedAt)

		require.Len(t, f.notifier.sent, 1)
		require.Equal(t, reporter, f.notifier.sent[0].UserID)
		require.Equal(t, entity.NotificationReportReviewed, f.notifier.sent[0].Type)
	})

	t.Run("cannot review twice", func(t *testing.T) {
		_, err := f.svc.ReviewReport(ctx, f.admin, filed.ID, reportDto.ReviewReportRequest{Status: "dismissed"})
		require.ErrorIs(t, err, ErrAlreadyReviewed)
	})

	t.Run("status filter", func(t *testing.T) {
		resp, err := f.svc.ListReports(ctx, f.admin, reportDto.ReportFilter{Status: entity.ReportPending})
		require.NoError(t, err)
		require.Zero(t, resp.Total)

		resp, err = f.svc.ListReports(ctx, f.admin, reportDto.ReportFilter{Status: entity.ReportResolved})
		require.NoError(t, err)
		require.EqualValues(t, 1, resp.Total)
	})

	t.Run("unknown report", func(t *testing.T) {
		_, err := f.svc.ReviewReport(ctx, f.admin, uuid.New(), reportDto.ReviewReportRequest{Status: "rejected"})
		require.ErrorIs(t, err, ErrReportNotFound)
	})
}
