package groupapplication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/campusforum/internal/entity"
	accessService "anoa.com/campusforum/internal/modules/access/service"
	groupAppDto "anoa.com/campusforum/internal/modules/groupapplication/dto"
	groupAppRepo "anoa.com/campusforum/internal/modules/groupapplication/repository"
	pointsService "anoa.com/campusforum/internal/modules/points/service"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/logger"
	"anoa.com/campusforum/pkg/sanitize"
	"github.com/google/uuid"
)

var (
	ErrGroupNotFound       = apperror.NotFound("line group not found")
	ErrApplicationNotFound = apperror.NotFound("application not found")
	ErrRequestNotFound     = apperror.NotFound("creation request not found")
	ErrGroupInactive       = apperror.BadRequest("line group is not accepting applications")
	ErrOwnGroup            = apperror.BadRequest("you already manage this group")
	ErrAlreadyApplied      = apperror.BadRequest("you already have a pending application for this group")
	ErrAlreadyMember       = apperror.BadRequest("your application to this group was already approved")
	ErrAlreadyReviewed     = apperror.BadRequest("already reviewed")
	ErrEmptyName           = apperror.BadRequest("name cannot be empty")
	ErrInsufficientPoints  = apperror.BadRequest("requester has insufficient points for a private group")
	ErrNotManager          = apperror.Forbidden("only the group manager or an admin can do that")
	ErrAdminOnly           = apperror.Forbidden("only admins can review creation requests")
)

type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) error
}

type Notifier interface {
	Notify(ctx context.Context, n *entity.Notification)
}

type GroupApplicationService interface {
	Apply(ctx context.Context, userID uuid.UUID, email string, groupID uuid.UUID, req groupAppDto.ApplyRequest) (*groupAppDto.ApplicationResponse, error)
	ListGroupApplications(ctx context.Context, userID, groupID uuid.UUID, filter groupAppDto.ApplicationFilter) (*groupAppDto.ApplicationListResponse, error)
	ReviewApplication(ctx context.Context, userID, applicationID uuid.UUID, req groupAppDto.ReviewApplicationRequest) (*groupAppDto.ApplicationResponse, error)
	MyApplications(ctx context.Context, userID uuid.UUID, filter groupAppDto.ApplicationFilter) (*groupAppDto.ApplicationListResponse, error)
	ManagedApplications(ctx context.Context, userID uuid.UUID, filter groupAppDto.ApplicationFilter) (*groupAppDto.ApplicationListResponse, error)

	RequestGroup(ctx context.Context, userID uuid.UUID, email string, req groupAppDto.CreationRequestRequest) (*groupAppDto.CreationRequestResponse, error)
	// ListRequests shows every request to admins and only their own to
	// everyone else.
	ListRequests(ctx context.Context, userID uuid.UUID, filter groupAppDto.ApplicationFilter) (*groupAppDto.CreationRequestListResponse, error)
	ReviewRequest(ctx context.Context, adminID, requestID uuid.UUID, req groupAppDto.ReviewCreationRequest) (*groupAppDto.CreationRequestResponse, error)
}

type groupApplicationService struct {
	repo     groupAppRepo.GroupApplicationRepository
	roles    accessService.RoleChecker
	ledger   pointsService.PointsLedger
	profiles ProfileEnsurer
	notifier Notifier
	timeout  time.Duration
	now      func() time.Time
}

func NewGroupApplicationService(repo groupAppRepo.GroupApplicationRepository, roles accessService.RoleChecker, ledger pointsService.PointsLedger, profiles ProfileEnsurer, notifier Notifier, timeout time.Duration) GroupApplicationService {
	return &groupApplicationService{
		repo:     repo,
		roles:    roles,
		ledger:   ledger,
		profiles: profiles,
		notifier: notifier,
		timeout:  timeout,
		now:      time.Now,
	}
}

func (s *groupApplicationService) Apply(ctx context.Context, userID uuid.UUID, email string, groupID uuid.UUID, req groupAppDto.ApplyRequest) (*groupAppDto.ApplicationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.profiles.EnsureProfile(ctx, userID, email); err != nil {
		return nil, err
	}

	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, ErrGroupInactive
	}
	if group.ManagerID == userID {
		return nil, ErrOwnGroup
	}

	switch status, err := s.repo.OpenApplicationStatus(ctx, groupID, userID); {
	case err != nil:
		return nil, err
	case status == entity.RequestPending:
		return nil, ErrAlreadyApplied
	case status == entity.RequestApproved:
		return nil, ErrAlreadyMember
	}

	app := &entity.LineGroupApplication{
		GroupID:     groupID,
		ApplicantID: userID,
		Message:     cleanText(req.Message),
		Status:      entity.RequestPending,
	}
	if err := s.repo.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	app.Group = group

	logger.FromContext(ctx).Info("line group application submitted", "group_id", groupID, "applicant_id", userID)
	return mapApplication(app), nil
}

func (s *groupApplicationService) ListGroupApplications(ctx context.Context, userID, groupID uuid.UUID, filter groupAppDto.ApplicationFilter) (*groupAppDto.ApplicationListResponse, error) {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(ctx, userID, group) {
		return nil, ErrNotManager
	}
	return s.listApplications(ctx, groupAppRepo.ApplicationQuery{GroupIDs: []uuid.UUID{groupID}, Status: filter.Status}, filter)
}

func (s *groupApplicationService) MyApplications(ctx context.Context, userID uuid.UUID, filter groupAppDto.ApplicationFilter) (*groupAppDto.ApplicationListResponse, error) {
	return s.listApplications(ctx, groupAppRepo.ApplicationQuery{ApplicantID: &userID, Status: filter.Status}, filter)
}

func (s *groupApplicationService) ManagedApplications(ctx context.Context, userID uuid.UUID, filter groupAppDto.ApplicationFilter) (*groupAppDto.ApplicationListResponse, error) {
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	ids, err := s.repo.ManagedGroupIDs(qctx, userID)
	cancel()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		page, limit := paging(filter)
		return &groupAppDto.ApplicationListResponse{Data: []groupAppDto.ApplicationResponse{}, Page: page, Limit: limit}, nil
	}
	return s.listApplications(ctx, groupAppRepo.ApplicationQuery{GroupIDs: ids, Status: filter.Status}, filter)
}

func (s *groupApplicationService) listApplications(ctx context.Context, q groupAppRepo.ApplicationQuery, filter groupAppDto.ApplicationFilter) (*groupAppDto.ApplicationListResponse, error) {
	page, limit := paging(filter)
	q.Offset = (page - 1) * limit
	q.Limit = limit

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	apps, total, err := s.repo.ListApplications(ctx, q)
	if err != nil {
		return nil, err
	}

	data := make([]groupAppDto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		data = append(data, *mapApplication(&apps[i]))
	}
	return &groupAppDto.ApplicationListResponse{
		Data:  data,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *groupApplicationService) ReviewApplication(ctx context.Context, userID, applicationID uuid.UUID, req groupAppDto.ReviewApplicationRequest) (*groupAppDto.ApplicationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	app, err := s.repo.FindApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, groupAppRepo.ErrApplicationNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if app.Group == nil {
		return nil, ErrGroupNotFound
	}
	if !s.canManage(ctx, userID, app.Group) {
		return nil, ErrNotManager
	}
	if app.Status != entity.RequestPending {
		return nil, ErrAlreadyReviewed
	}

	now := s.now()
	if err := s.repo.ReviewApplication(ctx, app.ID, app.GroupID, req.Status, userID, now); err != nil {
		if errors.Is(err, groupAppRepo.ErrNotPending) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	app.Status = req.Status
	app.ReviewedBy = &userID
	app.ReviewedAt = &now
	if req.Status == entity.RequestApproved {
		app.Group.MemberCount++
	}

	s.notify(ctx, app.ApplicantID, userID, app.GroupID, "line_group",
		entity.NotificationApplicationReviewed,
		fmt.Sprintf("Your application to join %s was %s.", app.Group.Name, req.Status))
	return mapApplication(app), nil
}

func (s *groupApplicationService) RequestGroup(ctx context.Context, userID uuid.UUID, email string, req groupAppDto.CreationRequestRequest) (*groupAppDto.CreationRequestResponse, error) {
	name := sanitize.Text(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.profiles.EnsureProfile(ctx, userID, email); err != nil {
		return nil, err
	}

	cr := &entity.LineGroupCreationRequest{
		RequesterID: userID,
		Name:        name,
		Description: cleanHTML(req.Description),
		QRCodeURL:   strings.TrimSpace(req.QRCodeURL),
		IsPrivate:   req.IsPrivate,
		Status:      entity.RequestPending,
	}
	if err := s.repo.CreateRequest(ctx, cr); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("line group creation requested", "request_id", cr.ID, "requester_id", userID, "private", cr.IsPrivate)
	return mapRequest(cr), nil
}

func (s *groupApplicationService) ListRequests(ctx context.Context, userID uuid.UUID, filter groupAppDto.ApplicationFilter) (*groupAppDto.CreationRequestListResponse, error) {
	page, limit := paging(filter)
	q := groupAppRepo.RequestQuery{
		Status: filter.Status,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
	if !s.roles.IsAdmin(ctx, userID) {
		q.RequesterID = &userID
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reqs, total, err := s.repo.ListRequests(ctx, q)
	if err != nil {
		return nil, err
	}

	data := make([]groupAppDto.CreationRequestResponse, 0, len(reqs))
	for i := range reqs {
		data = append(data, *mapRequest(&reqs[i]))
	}
	return &groupAppDto.CreationRequestListResponse{
		Data:  data,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *groupApplicationService) ReviewRequest(ctx context.Context, adminID, requestID uuid.UUID, req groupAppDto.ReviewCreationRequest) (*groupAppDto.CreationRequestResponse, error) {
	if !s.roles.IsAdmin(ctx, adminID) {
		return nil, ErrAdminOnly
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cr, err := s.repo.FindRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, groupAppRepo.ErrRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if cr.Status != entity.RequestPending {
		return nil, ErrAlreadyReviewed
	}

	now := s.now()
	if req.Status == entity.RequestRejected {
		reason := cleanText(req.RejectionReason)
		if err := s.repo.RejectRequest(ctx, cr.ID, adminID, now, reason); err != nil {
			if errors.Is(err, groupAppRepo.ErrNotPending) {
				return nil, ErrAlreadyReviewed
			}
			return nil, err
		}
		cr.Status = entity.RequestRejected
		cr.RejectionReason = reason
		cr.ReviewedBy = &adminID
		cr.ReviewedAt = &now

		msg := fmt.Sprintf("Your request to create %s was rejected.", cr.Name)
		if reason != nil {
			msg = fmt.Sprintf("Your request to create %s was rejected: %s", cr.Name, *reason)
		}
		s.notify(ctx, cr.RequesterID, adminID, cr.ID, "line_group_request", entity.NotificationGroupRequestReviewed, msg)
		return mapRequest(cr), nil
	}

	// Private groups cost the requester, who becomes the manager.
	if cr.IsPrivate && !s.ledger.DeductPoints(ctx, cr.RequesterID, pointsService.CostPrivateGroup, pointsService.ReasonPrivateGroup) {
		return nil, ErrInsufficientPoints
	}

	group := &entity.LineGroup{
		Name:        cr.Name,
		Description: cr.Description,
		QRCodeURL:   cr.QRCodeURL,
		ManagerID:   cr.RequesterID,
		IsActive:    true,
		IsPrivate:   cr.IsPrivate,
	}
	if err := s.repo.ApproveRequest(ctx, cr.ID, adminID, now, group); err != nil {
		if cr.IsPrivate {
			s.ledger.AwardPoints(ctx, cr.RequesterID, pointsService.CostPrivateGroup, pointsService.ReasonPrivateGroupRefund)
		}
		if errors.Is(err, groupAppRepo.ErrNotPending) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	if !cr.IsPrivate {
		s.ledger.AwardPoints(ctx, cr.RequesterID, pointsService.PointsPublicGroup, pointsService.ReasonPublicGroup)
	}

	cr.Status = entity.RequestApproved
	cr.ReviewedBy = &adminID
	cr.ReviewedAt = &now
	cr.GroupID = &group.ID

	logger.FromContext(ctx).Info("line group creation approved", "request_id", cr.ID, "group_id", group.ID, "admin_id", adminID)
	s.notify(ctx, cr.RequesterID, adminID, group.ID, "line_group", entity.NotificationGroupRequestReviewed,
		fmt.Sprintf("Your request to create %s was approved.", cr.Name))
	return mapRequest(cr), nil
}

func (s *groupApplicationService) findGroup(ctx context.Context, id uuid.UUID) (*entity.LineGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	group, err := s.repo.FindGroup(ctx, id)
	if err != nil {
		if errors.Is(err, groupAppRepo.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *groupApplicationService) canManage(ctx context.Context, userID uuid.UUID, group *entity.LineGroup) bool {
	return group.ManagerID == userID || s.roles.IsAdmin(ctx, userID)
}

func (s *groupApplicationService) notify(ctx context.Context, userID, actorID, entityID uuid.UUID, entityType, kind, msg string) {
	if s.notifier == nil || userID == actorID {
		return
	}
	s.notifier.Notify(ctx, &entity.Notification{
		UserID:     userID,
		ActorID:    &actorID,
		EntityID:   &entityID,
		EntityType: entityType,
		Type:       kind,
		Message:    msg,
	})
}

func paging(filter groupAppDto.ApplicationFilter) (int, int) {
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func cleanText(v *string) *string {
	if v == nil {
		return nil
	}
	out := sanitize.Text(*v)
	if out == "" {
		return nil
	}
	return &out
}

func cleanHTML(v *string) *string {
	if v == nil {
		return nil
	}
	out := sanitize.HTML(*v)
	if out == "" {
		return nil
	}
	return &out
}

func summary(id uuid.UUID, p *entity.Profile) groupAppDto.UserSummary {
	out := groupAppDto.UserSummary{ID: id, Username: "Unknown"}
	if p != nil {
		out.Username = p.Username
		out.AvatarURL = p.AvatarURL
	}
	return out
}

func mapApplication(a *entity.LineGroupApplication) *groupAppDto.ApplicationResponse {
	resp := &groupAppDto.ApplicationResponse{
		ID:         a.ID,
		GroupID:    a.GroupID,
		Applicant:  summary(a.ApplicantID, a.Applicant),
		Message:    a.Message,
		Status:     a.Status,
		ReviewedBy: a.ReviewedBy,
		ReviewedAt: a.ReviewedAt,
		CreatedAt:  a.CreatedAt,
	}
	if a.Group != nil {
		resp.GroupName = a.Group.Name
	}
	return resp
}

func mapRequest(r *entity.LineGroupCreationRequest) *groupAppDto.CreationRequestResponse {
	return &groupAppDto.CreationRequestResponse{
		ID:              r.ID,
		Requester:       summary(r.RequesterID, r.Requester),
		Name:            r.Name,
		Description:     r.Description,
		QRCodeURL:       r.QRCodeURL,
		IsPrivate:       r.IsPrivate,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		ReviewedBy:      r.ReviewedBy,
		ReviewedAt:      r.ReviewedAt,
		GroupID:         r.GroupID,
		CreatedAt:       r.CreatedAt,
	}
}
