package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/campusforum/internal/entity"
	accessService "anoa.com/campusforum/internal/modules/access/service"
	reportDto "anoa.com/campusforum/internal/modules/report/dto"
	reportRepo "anoa.com/campusforum/internal/modules/report/repository"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/logger"
	"anoa.com/campusforum/pkg/sanitize"
	"github.com/google/uuid"
)

var (
	ErrPostNotFound    = apperror.NotFound("post not found")
	ErrReplyNotFound   = apperror.NotFound("reply not found")
	ErrGroupNotFound   = apperror.NotFound("line group not found")
	ErrReportNotFound  = apperror.NotFound("report not found")
	ErrReplyNotInPost  = apperror.BadRequest("reply does not belong to this post")
	ErrAlreadyReported = apperror.BadRequest("you have already reported this")
	ErrAlreadyReviewed = apperror.BadRequest("report has already been reviewed")
	ErrEmptyReason     = apperror.BadRequest("reason cannot be empty")
	ErrInvalidStatus   = apperror.BadRequest("status must be resolved or dismissed")
	ErrAdminOnly       = apperror.Forbidden("only admins can review reports")
)

type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) error
}

type Notifier interface {
	Notify(ctx context.Context, n *entity.Notification)
}

type ReportService interface {
	ReportPost(ctx context.Context, reporterID uuid.UUID, email string, postID uuid.UUID, req reportDto.CreateReportRequest) (*reportDto.ReportResponse, error)
	ReportReply(ctx context.Context, reporterID uuid.UUID, email string, postID, replyID uuid.UUID, req reportDto.CreateReportRequest) (*reportDto.ReportResponse, error)
	ReportGroup(ctx context.Context, reporterID uuid.UUID, email string, groupID uuid.UUID, req reportDto.GroupReportRequest) (*reportDto.ReportResponse, error)
	ListReports(ctx context.Context, adminID uuid.UUID, filter reportDto.ReportFilter) (*reportDto.ReportListResponse, error)
	ReviewReport(ctx context.Context, adminID, id uuid.UUID, req reportDto.ReviewReportRequest) (*reportDto.ReportResponse, error)
}

type reportService struct {
	repo     reportRepo.ReportRepository
	roles    accessService.RoleChecker
	profiles ProfileEnsurer
	notifier Notifier
	timeout  time.Duration
	now      func() time.Time
}

func NewReportService(repo reportRepo.ReportRepository, roles accessService.RoleChecker, profiles ProfileEnsurer, notifier Notifier, timeout time.Duration) ReportService {
	return &reportService{
		repo:     repo,
		roles:    roles,
		profiles: profiles,
		notifier: notifier,
		timeout:  timeout,
		now:      time.Now,
	}
}

func (s *reportService) ReportPost(ctx context.Context, reporterID uuid.UUID, email string, postID uuid.UUID, req reportDto.CreateReportRequest) (*reportDto.ReportResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.repo.PostExists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPostNotFound
	}

	return s.file(ctx, reporterID, email, &entity.Report{
		TargetType: entity.ReportTargetPost,
		TargetID:   postID,
		PostID:     &postID,
	}, req.Reason, req.Description)
}

func (s *reportService) ReportReply(ctx context.Context, reporterID uuid.UUID, email string, postID, replyID uuid.UUID, req reportDto.CreateReportRequest) (*reportDto.ReportResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	parent, err := s.repo.ReplyPostID(ctx, replyID)
	if err != nil {
		if errors.Is(err, reportRepo.ErrTargetNotFound) {
			return nil, ErrReplyNotFound
		}
		return nil, err
	}
	if parent != postID {
		return nil, ErrReplyNotInPost
	}

	return s.file(ctx, reporterID, email, &entity.Report{
		TargetType: entity.ReportTargetReply,
		TargetID:   replyID,
		PostID:     &postID,
	}, req.Reason, req.Description)
}

func (s *reportService) ReportGroup(ctx context.Context, reporterID uuid.UUID, email string, groupID uuid.UUID, req reportDto.GroupReportRequest) (*reportDto.ReportResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.repo.GroupExists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGroupNotFound
	}

	return s.file(ctx, reporterID, email, &entity.Report{
		TargetType: entity.ReportTargetLineGroup,
		TargetID:   groupID,
	}, req.Reason, req.Description)
}

// file stores a pending report once per reporter and target.
func (s *reportService) file(ctx context.Context, reporterID uuid.UUID, email string, r *entity.Report, reason string, description *string) (*reportDto.ReportResponse, error) {
	reason = sanitize.Text(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	if err := s.profiles.EnsureProfile(ctx, reporterID, email); err != nil {
		return nil, err
	}

	dup, err := s.repo.HasReported(ctx, r.TargetType, r.TargetID, reporterID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrAlreadyReported
	}

	r.ReporterID = reporterID
	r.Reason = reason
	r.Description = cleanDescription(description)
	r.Status = entity.ReportPending
	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, reportRepo.ErrDuplicateReport) {
			return nil, ErrAlreadyReported
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("report filed",
		"report_id", r.ID, "target_type", r.TargetType, "target_id", r.TargetID, "reporter_id", reporterID)
	return mapReport(r), nil
}

func (s *reportService) ListReports(ctx context.Context, adminID uuid.UUID, filter reportDto.ReportFilter) (*reportDto.ReportListResponse, error) {
	if !s.roles.IsAdmin(ctx, adminID) {
		return nil, ErrAdminOnly
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reports, total, err := s.repo.List(ctx, reportRepo.ReportQuery{
		Status:     filter.Status,
		TargetType: filter.TargetType,
		Offset:     (filter.Page - 1) * filter.Limit,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, err
	}

	data := make([]reportDto.ReportResponse, 0, len(reports))
	for i := range reports {
		data = append(data, *mapReport(&reports[i]))
	}
	return &reportDto.ReportListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *reportService) ReviewReport(ctx context.Context, adminID, id uuid.UUID, req reportDto.ReviewReportRequest) (*reportDto.ReportResponse, error) {
	if !s.roles.IsAdmin(ctx, adminID) {
		return nil, ErrAdminOnly
	}

	status, ok := reviewStatus(req.Status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reportRepo.ErrReportNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if report.Status != entity.ReportPending {
		return nil, ErrAlreadyReviewed
	}

	now := s.now()
	if err := s.repo.Review(ctx, id, status, adminID, now); err != nil {
		if errors.Is(err, reportRepo.ErrAlreadyReviewed) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	report.Status = status
	report.ReviewedBy = &adminID
	report.ReviewedAt = &now

	if s.notifier != nil {
		s.notifier.Notify(ctx, &entity.Notification{
			UserID:     report.ReporterID,
			ActorID:    &adminID,
			EntityID:   &report.TargetID,
			EntityType: report.TargetType,
			Type:       entity.NotificationReportReviewed,
			Message:    fmt.Sprintf("Your report \"%s\" was %s.", report.Reason, status),
		})
	}
	return mapReport(report), nil
}

func reviewStatus(s string) (string, bool) {
	switch s {
	case entity.ReportResolved, "approved":
		return entity.ReportResolved, true
	case entity.ReportDismissed, "rejected":
		return entity.ReportDismissed, true
	}
	return "", false
}

func cleanDescription(v *string) *string {
	if v == nil {
		return nil
	}
	out := sanitize.Text(*v)
	if out == "" {
		return nil
	}
	return &out
}

func mapReport(r *entity.Report) *reportDto.ReportResponse {
	resp := &reportDto.ReportResponse{
		ID:          r.ID,
		TargetType:  r.TargetType,
		TargetID:    r.TargetID,
		PostID:      r.PostID,
		Reason:      r.Reason,
		Description: r.Description,
		Status:      r.Status,
		ReviewedBy:  r.ReviewedBy,
		ReviewedAt:  r.ReviewedAt,
		CreatedAt:   r.CreatedAt,
	}
	if r.Reporter != nil {
		resp.Reporter = &reportDto.ReporterResponse{ID: r.Reporter.ID, Username: r.Reporter.Username}
	}
	return resp
}
