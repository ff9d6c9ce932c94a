package tag

import (
	"context"
	"strings"
	"time"

	"anoa.com/campusforum/internal/entity"
	accessService "anoa.com/campusforum/internal/modules/access/service"
	tagDto "anoa.com/campusforum/internal/modules/tag/dto"
	tagRepo "anoa.com/campusforum/internal/modules/tag/repository"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/logger"
	"anoa.com/campusforum/pkg/sanitize"
	"github.com/google/uuid"
)

const (
	hotTagWindow   = 500
	defaultHotTags = 20
	maxHotTags     = 50
)

var (
	ErrAdminOnly   = apperror.Forbidden("only admins can manage tags")
	ErrSameTag     = apperror.BadRequest("old and new tag must differ")
	ErrEmptyTag    = apperror.BadRequest("tag cannot be empty")
	ErrNoSourceTag = apperror.BadRequest("at least one source tag other than the target is required")
)

// Indexer refreshes a post's search document after its tags change.
type Indexer interface {
	IndexPost(ctx context.Context, post *entity.Post) error
}

type TagService interface {
	// HotTags never fails; a lookup error yields an empty list.
	HotTags(ctx context.Context, limit int) []tagDto.TagCount
	ListTags(ctx context.Context, adminID uuid.UUID) ([]tagDto.TagCount, error)
	RenameTag(ctx context.Context, adminID uuid.UUID, req tagDto.RenameTagRequest) (*tagDto.TagUpdateResponse, error)
	DeleteTag(ctx context.Context, adminID uuid.UUID, tag string) (*tagDto.TagUpdateResponse, error)
	MergeTags(ctx context.Context, adminID uuid.UUID, req tagDto.MergeTagsRequest) (*tagDto.TagUpdateResponse, error)
}

type tagService struct {
	repo    tagRepo.TagRepository
	roles   accessService.RoleChecker
	indexer Indexer
	timeout time.Duration
}

func NewTagService(repo tagRepo.TagRepository, roles accessService.RoleChecker, indexer Indexer, timeout time.Duration) TagService {
	return &tagService{
		repo:    repo,
		roles:   roles,
		indexer: indexer,
		timeout: timeout,
	}
}

func (s *tagService) HotTags(ctx context.Context, limit int) []tagDto.TagCount {
	if limit < 1 || limit > maxHotTags {
		limit = defaultHotTags
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.Hot(ctx, hotTagWindow, limit)
	if err != nil {
		logger.FromContext(ctx).Warn("hot tags lookup failed", "error", err)
		return []tagDto.TagCount{}
	}
	return mapCounts(rows)
}

func (s *tagService) ListTags(ctx context.Context, adminID uuid.UUID) ([]tagDto.TagCount, error) {
	if !s.roles.IsAdmin(ctx, adminID) {
		return nil, ErrAdminOnly
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return mapCounts(rows), nil
}

func (s *tagService) RenameTag(ctx context.Context, adminID uuid.UUID, req tagDto.RenameTagRequest) (*tagDto.TagUpdateResponse, error) {
	if !s.roles.IsAdmin(ctx, adminID) {
		return nil, ErrAdminOnly
	}

	oldTag := strings.TrimSpace(req.OldTag)
	newTag := sanitize.Text(req.NewTag)
	if oldTag == "" || newTag == "" {
		return nil, ErrEmptyTag
	}
	if oldTag == newTag {
		return nil, ErrSameTag
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	posts, err := s.repo.Rename(ctx, oldTag, newTag)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, posts)

	logger.FromContext(ctx).Info("tag renamed", "admin_id", adminID, "from", oldTag, "to", newTag, "posts", len(posts))
	return &tagDto.TagUpdateResponse{Message: "tag renamed", UpdatedPosts: len(posts)}, nil
}

func (s *tagService) DeleteTag(ctx context.Context, adminID uuid.UUID, tag string) (*tagDto.TagUpdateResponse, error) {
	if !s.roles.IsAdmin(ctx, adminID) {
		return nil, ErrAdminOnly
	}

	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrEmptyTag
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	posts, err := s.repo.Remove(ctx, tag)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, posts)

	logger.FromContext(ctx).Info("tag deleted", "admin_id", adminID, "tag", tag, "posts", len(posts))
	return &tagDto.TagUpdateResponse{Message: "tag deleted", UpdatedPosts: len(posts)}, nil
}

func (s *tagService) MergeTags(ctx context.Context, adminID uuid.UUID, req tagDto.MergeTagsRequest) (*tagDto.TagUpdateResponse, error) {
	if !s.roles.IsAdmin(ctx, adminID) {
		return nil, ErrAdminOnly
	}

	target := sanitize.Text(req.TargetTag)
	if target == "" {
		return nil, ErrEmptyTag
	}

	sources := make([]string, 0, len(req.SourceTags))
	seen := map[string]struct{}{target: {}}
	for _, t := range req.SourceTags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		sources = append(sources, t)
	}
	if len(sources) == 0 {
		return nil, ErrNoSourceTag
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	posts, err := s.repo.Merge(ctx, sources, target)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, posts)

	logger.FromContext(ctx).Info("tags merged", "admin_id", adminID, "sources", sources, "target", target, "posts", len(posts))
	return &tagDto.TagUpdateResponse{Message: "tags merged", UpdatedPosts: len(posts)}, nil
}

func (s *tagService) reindex(ctx context.Context, posts []entity.Post) {
	if s.indexer == nil {
		return
	}
	for i := range posts {
		if err := s.indexer.IndexPost(ctx, &posts[i]); err != nil {
			logger.FromContext(ctx).Warn("failed to reindex post after tag change", "post_id", posts[i].ID, "error", err)
		}
	}
}

func mapCounts(rows []tagRepo.TagCount) []tagDto.TagCount {
	out := make([]tagDto.TagCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, tagDto.TagCount{Tag: r.Tag, Count: r.Count})
	}
	return out
}
