package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"anoa.com/campusforum/internal/entity"
	accessService "anoa.com/campusforum/internal/modules/access/service"
	pointsService "anoa.com/campusforum/internal/modules/points/service"
	postDto "anoa.com/campusforum/internal/modules/post/dto"
	postRepo "anoa.com/campusforum/internal/modules/post/repository"
	search "anoa.com/campusforum/internal/modules/search/service"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/logger"
	"anoa.com/campusforum/pkg/ratelimiter"
	"anoa.com/campusforum/pkg/sanitize"
	"github.com/google/uuid"
)

var (
	ErrPostNotFound       = apperror.NotFound("post not found")
	ErrPostClosed         = apperror.BadRequest("post is closed")
	ErrParentMismatch     = apperror.BadRequest("parent reply does not belong to this post")
	ErrNotAuthor          = apperror.Forbidden("only the author can do that")
	ErrAlreadyPinned      = apperror.BadRequest("post is already pinned")
	ErrInsufficientPoints = apperror.BadRequest("insufficient points")
	ErrEmptyContent       = apperror.BadRequest("content cannot be empty")
)

// ProfileEnsurer creates the author's profile on first write.
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) error
}

type Notifier interface {
	Notify(ctx context.Context, n *entity.Notification)
}

type ViewRecorder interface {
	Record(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (bool, error)
}

type Limits struct {
	GlobalCooldown time.Duration
	PostCooldown   time.Duration
	PinDuration    time.Duration
	Timeout        time.Duration
}

type PostService interface {
	CreatePost(ctx context.Context, userID uuid.UUID, email string, req postDto.CreatePostRequest) (*postDto.PostResponse, error)
	CreateReply(ctx context.Context, userID uuid.UUID, email string, postID uuid.UUID, req postDto.CreateReplyRequest) (*postDto.ReplyResponse, error)
	GetPost(ctx context.Context, postID uuid.UUID, userID *uuid.UUID) (*postDto.PostResponse, error)
	ListPosts(ctx context.Context, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error)
	SimilarPosts(ctx context.Context, title string, limit int) []search.SimilarPost
	PinPost(ctx context.Context, userID, postID uuid.UUID) (*postDto.PostResponse, error)
	ClosePost(ctx context.Context, userID, postID uuid.UUID) error
	// ExpirePins unpins posts whose pin window has elapsed.
	ExpirePins(ctx context.Context) (int64, error)
}

type postService struct {
	repo     postRepo.PostRepository
	profiles ProfileEnsurer
	ledger   pointsService.PointsLedger
	roles    accessService.RoleChecker
	notifier Notifier
	meili    search.MeiliSearchService
	views    ViewRecorder
	cooldown *ratelimiter.Cooldown
	limits   Limits
	now      func() time.Time
}

func NewPostService(repo postRepo.PostRepository, profiles ProfileEnsurer, ledger pointsService.PointsLedger, roles accessService.RoleChecker, notifier Notifier, meili search.MeiliSearchService, views ViewRecorder, cooldown *ratelimiter.Cooldown, limits Limits) PostService {
	return &postService{
		repo:     repo,
		profiles: profiles,
		ledger:   ledger,
		roles:    roles,
		notifier: notifier,
		meili:    meili,
		views:    views,
		cooldown: cooldown,
		limits:   limits,
		now:      time.Now,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID uuid.UUID, email string, req postDto.CreatePostRequest) (*postDto.PostResponse, error) {
	allowed, err := s.cooldown.Acquire(ctx, userID, "global", s.limits.GlobalCooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		return nil, s.cooldown.Limited(ctx, userID, "global")
	}

	allowed, err = s.cooldown.Acquire(ctx, userID, "post", s.limits.PostCooldown)
	if err != nil {
		_ = s.cooldown.Release(ctx, userID, "global")
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		_ = s.cooldown.Release(ctx, userID, "global")
		limited := s.cooldown.Limited(ctx, userID, "post")
		limited.Message = fmt.Sprintf("you can only create one post every %.0f seconds. Please wait %.0f seconds", s.limits.PostCooldown.Seconds(), limited.RetryAfter.Seconds())
		return nil, limited
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = s.cooldown.Release(context.WithoutCancel(ctx), userID, "global")
			_ = s.cooldown.Release(context.WithoutCancel(ctx), userID, "post")
		}
	}()

	title := sanitize.Text(req.Title)
	if title == "" {
		return nil, apperror.BadRequest("title cannot be empty")
	}

	wctx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()

	if err := s.profiles.EnsureProfile(wctx, userID, email); err != nil {
		return nil, err
	}

	post := &entity.Post{
		Title:         title,
		Category:      trimmed(req.Category, sanitize.Text),
		Summary:       trimmed(req.Summary, sanitize.HTML),
		CoverImageURL: trimmed(req.CoverImageURL, strings.TrimSpace),
		Tags:          sanitize.Tags(req.Tags),
		AuthorID:      userID,
	}
	if err := s.repo.Create(wctx, post); err != nil {
		return nil, err
	}
	creationFailed = false

	if reloaded, err := s.repo.FindByID(wctx, post.ID); err == nil {
		post = reloaded
	}

	if s.meili != nil {
		if err := s.meili.IndexPost(wctx, post); err != nil {
			logger.FromContext(ctx).Warn("failed to index post", "post_id", post.ID, "error", err)
		}
	}

	s.ledger.AwardPoints(ctx, userID, pointsService.PointsCreatePost, pointsService.ReasonCreatePost)

	return mapPost(post), nil
}

func (s *postService) CreateReply(ctx context.Context, userID uuid.UUID, email string, postID uuid.UUID, req postDto.CreateReplyRequest) (*postDto.ReplyResponse, error) {
	content := sanitize.HTML(req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	ctx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.IsClosed {
		return nil, ErrPostClosed
	}

	var parentID *uuid.UUID
	var parent *entity.Reply
	if req.ParentReplyID != "" {
		pid, err := uuid.Parse(req.ParentReplyID)
		if err != nil {
			return nil, apperror.BadRequest("invalid parent reply id")
		}
		parent, err = s.repo.FindReplyByID(ctx, pid)
		if err != nil {
			if errors.Is(err, postRepo.ErrReplyNotFound) {
				return nil, apperror.NotFound("parent reply not found")
			}
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, ErrParentMismatch
		}
		parentID = &pid
	}

	if err := s.profiles.EnsureProfile(ctx, userID, email); err != nil {
		return nil, err
	}

	reply := &entity.Reply{
		PostID:        post.ID,
		AuthorID:      userID,
		ParentReplyID: parentID,
		Content:       content,
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		if errors.Is(err, postRepo.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	s.ledger.AwardPoints(ctx, userID, pointsService.PointsCreateReply, pointsService.ReasonCreateReply)

	target := post.AuthorID
	message := fmt.Sprintf("Someone replied to your post '%s'", post.Title)
	if parent != nil {
		target = parent.AuthorID
		message = fmt.Sprintf("Someone replied to your comment in '%s'", post.Title)
	}
	if target != userID && s.notifier != nil {
		s.notifier.Notify(ctx, &entity.Notification{
			UserID:     target,
			ActorID:    &userID,
			EntityID:   &post.ID,
			EntityType: "post",
			Type:       entity.NotificationPostReplied,
			Message:    message,
		})
	}

	return mapReply(reply), nil
}

func (s *postService) GetPost(ctx context.Context, postID uuid.UUID, userID *uuid.UUID) (*postDto.PostResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if counted, err := s.views.Record(ctx, postID, userID); err != nil {
		logger.FromContext(ctx).Warn("failed to record view", "post_id", postID, "error", err)
	} else if counted {
		post.ViewCount++
	}

	replies, err := s.repo.FindReplies(ctx, postID)
	if err != nil {
		return nil, err
	}

	votes := map[uuid.UUID]string{}
	resp := mapPost(post)
	if userID != nil {
		if v, err := s.repo.PostVoteOf(ctx, postID, *userID); err == nil && v != "" {
			resp.UserVote = &v
		}
		ids := make([]uuid.UUID, 0, len(replies))
		for _, r := range replies {
			ids = append(ids, r.ID)
		}
		if m, err := s.repo.ReplyVotesOf(ctx, ids, *userID); err == nil {
			votes = m
		}
	}
	resp.Replies = buildReplyTree(replies, votes)
	resp.IsPinned = post.PinActive(s.now(), s.limits.PinDuration)

	return resp, nil
}

func (s *postService) ListPosts(ctx context.Context, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 50 {
		filter.Limit = 50
	}

	ctx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()

	now := s.now()
	posts, total, err := s.repo.List(ctx, postRepo.ListFilter{
		Tag:         filter.Tag,
		Category:    filter.Category,
		Offset:      (filter.Page - 1) * filter.Limit,
		Limit:       filter.Limit,
		PinnedAfter: now.Add(-s.limits.PinDuration),
	})
	if err != nil {
		return nil, err
	}

	data := make([]postDto.PostResponse, 0, len(posts))
	for i := range posts {
		resp := mapPost(&posts[i])
		resp.IsPinned = posts[i].PinActive(now, s.limits.PinDuration)
		data = append(data, *resp)
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return &postDto.PaginatedPostResponse{
		Data: data,
		Meta: postDto.PaginationMeta{
			CurrentPage: filter.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       filter.Limit,
		},
	}, nil
}

func (s *postService) SimilarPosts(ctx context.Context, title string, limit int) []search.SimilarPost {
	if s.meili == nil {
		return []search.SimilarPost{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()

	hits, err := s.meili.SimilarPosts(ctx, title, limit)
	if err != nil {
		logger.FromContext(ctx).Warn("similar posts lookup failed", "error", err)
		return []search.SimilarPost{}
	}
	return hits
}

func (s *postService) PinPost(ctx context.Context, userID, postID uuid.UUID) (*postDto.PostResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	now := s.now()
	if post.PinActive(now, s.limits.PinDuration) {
		return nil, ErrAlreadyPinned
	}

	if !s.ledger.DeductPoints(ctx, userID, pointsService.CostPinPost, pointsService.ReasonPinPost) {
		return nil, ErrInsufficientPoints
	}

	pinned, err := s.repo.SetPinned(ctx, postID, now, now.Add(-s.limits.PinDuration))
	if err != nil {
		logger.FromContext(ctx).Error("pin failed after deduction, refunding",
			slog.String("post_id", postID.String()),
			slog.Any("error", err),
		)
		s.ledger.AwardPoints(ctx, userID, pointsService.CostPinPost, pointsService.ReasonPinRefund)
		return nil, err
	}
	if !pinned {
		// Another request pinned it between the check and the write.
		s.ledger.AwardPoints(ctx, userID, pointsService.CostPinPost, pointsService.ReasonPinRefund)
		return nil, ErrAlreadyPinned
	}

	post.IsPinned = true
	post.PinnedAt = &now
	return mapPost(post), nil
}

func (s *postService) ClosePost(ctx context.Context, userID, postID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID && !s.roles.IsAdmin(ctx, userID) {
		return apperror.Forbidden("only the author or an admin can close this post")
	}

	if err := s.repo.SetClosed(ctx, postID, true); err != nil {
		if errors.Is(err, postRepo.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if s.meili != nil {
		post.IsClosed = true
		if err := s.meili.IndexPost(ctx, post); err != nil {
			logger.FromContext(ctx).Warn("failed to reindex closed post", "post_id", postID, "error", err)
		}
	}
	return nil
}

func (s *postService) ExpirePins(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()

	return s.repo.UnpinBefore(ctx, s.now().Add(-s.limits.PinDuration))
}

func (s *postService) findPost(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, postRepo.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func trimmed(v *string, clean func(string) string) *string {
	if v == nil {
		return nil
	}
	out := clean(*v)
	if out == "" {
		return nil
	}
	return &out
}
