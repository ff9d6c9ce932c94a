package tag

import (
	"context"
	"errors"
	"slices"
	"sort"
	"testing"
	"time"

	"anoa.com/campusforum/internal/entity"
	tagDto "anoa.com/campusforum/internal/modules/tag/dto"
	tagRepo "anoa.com/campusforum/internal/modules/tag/repository"
	"anoa.com/campusforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

type memTags struct {
	posts []*entity.Post
	err   error
}

func (m *memTags) add(tags ...string) *entity.Post {
	p := &entity.Post{ID: uuid.New(), Tags: pq.StringArray(tags)}
	m.posts = append(m.posts, p)
	return p
}

func count(posts []*entity.Post) []tagRepo.TagCount {
	counts := map[string]int64{}
	for _, p := range posts {
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	out := make([]tagRepo.TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, tagRepo.TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func dedupe(tags []string) pq.StringArray {
	out := pq.StringArray{}
	for _, t := range tags {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// rewrite applies fn to every post carrying any of match.
func (m *memTags) rewrite(match []string, fn func([]string) []string) []entity.Post {
	var changed []entity.Post
	for _, p := range m.posts {
		if !slices.ContainsFunc(p.Tags, func(t string) bool { return slices.Contains(match, t) }) {
			continue
		}
		p.Tags = dedupe(fn(p.Tags))
		changed = append(changed, *p)
	}
	return changed
}

func (m *memTags) Hot(_ context.Context, window, limit int) ([]tagRepo.TagCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	recent := m.posts
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	out := count(recent)
	return out[:min(limit, len(out))], nil
}

func (m *memTags) All(context.Context) ([]tagRepo.TagCount, error) {
	return count(m.posts), nil
}

func (m *memTags) Rename(_ context.Context, oldTag, newTag string) ([]entity.Post, error) {
	return m.rewrite([]string{oldTag}, func(tags []string) []string {
		out := make([]string, len(tags))
		for i, t := range tags {
			if t == oldTag {
				t = newTag
			}
			out[i] = t
		}
		return out
	}), nil
}

func (m *memTags) Remove(_ context.Context, tag string) ([]entity.Post, error) {
	return m.rewrite([]string{tag}, func(tags []string) []string {
		return slices.DeleteFunc(slices.Clone(tags), func(t string) bool { return t == tag })
	}), nil
}

func (m *memTags) Merge(_ context.Context, sources []string, target string) ([]entity.Post, error) {
	return m.rewrite(sources, func(tags []string) []string {
		kept := slices.DeleteFunc(slices.Clone(tags), func(t string) bool { return slices.Contains(sources, t) })
		return append(kept, target)
	}), nil
}

type fakeRoles map[uuid.UUID]bool

func (f fakeRoles) IsAdmin(_ context.Context, id uuid.UUID) bool { return f[id] }
func (f fakeRoles) IsSuperadmin(context.Context, uuid.UUID) bool { return false }

type fakeIndexer struct{ indexed []uuid.UUID }

func (f *fakeIndexer) IndexPost(_ context.Context, p *entity.Post) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func setup() (TagService, *memTags, *fakeIndexer, uuid.UUID) {
	repo := &memTags{}
	indexer := &fakeIndexer{}
	admin := uuid.New()
	return NewTagService(repo, fakeRoles{admin: true}, indexer, time.Second), repo, indexer, admin
}

func TestHotTags(t *testing.T) {
	ctx := context.Background()

	t.Run("most used first", func(t *testing.T) {
		svc, repo, _, _ := setup()
		repo.add("go", "exam")
		repo.add("go")
		repo.add("exam", "go", "kkn")

		got := svc.HotTags(ctx, 2)
		require.Equal(t, []tagDto.TagCount{{Tag: "go", Count: 3}, {Tag: "exam", Count: 2}}, got)
	})

	t.Run("lookup failure is an empty list", func(t *testing.T) {
		svc, repo, _, _ := setup()
		repo.err = errors.New("db down")
		got := svc.HotTags(ctx, 0)
		require.NotNil(t, got)
		require.Empty(t, got)
	})
}

func TestRenameTag(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces and dedupes", func(t *testing.T) {
		svc, repo, indexer, admin := setup()
		a := repo.add("golang", "go", "exam")
		b := repo.add("exam")

		resp, err := svc.RenameTag(ctx, admin, tagDto.RenameTagRequest{OldTag: "golang", NewTag: "go"})
		require.NoError(t, err)
		require.Equal(t, 1, resp.UpdatedPosts)
		require.Equal(t, pq.StringArray{"go", "exam"}, a.Tags)
		require.Equal(t, pq.StringArray{"exam"}, b.Tags)
		require.Equal(t, []uuid.UUID{a.ID}, indexer.indexed)
	})

	t.Run("same tag", func(t *testing.T) {
		svc, _, _, admin := setup()
		_, err := svc.RenameTag(ctx, admin, tagDto.RenameTagRequest{OldTag: "go", NewTag: " go "})
		require.ErrorIs(t, err, ErrSameTag)
	})

	t.Run("admin only", func(t *testing.T) {
		svc, _, _, _ := setup()
		_, err := svc.RenameTag(ctx, uuid.New(), tagDto.RenameTagRequest{OldTag: "a", NewTag: "b"})
		require.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestMergeAndDeleteTags(t *testing.T) {
	ctx := context.Background()

	t.Run("merge drops sources and appends the target once", func(t *testing.T) {
		svc, repo, _, admin := setup()
		a := repo.add("js", "frontend", "javascript")
		b := repo.add("javascript", "exam")
		c := repo.add("exam")

		resp, err := svc.MergeTags(ctx, admin, tagDto.MergeTagsRequest{
			SourceTags: []string{"js", "javascript", "javascript"},
			TargetTag:  "javascript",
		})
		require.NoError(t, err)
		require.Equal(t, 1, resp.UpdatedPosts, "javascript is the target so only js is a source")
		require.Equal(t, pq.StringArray{"frontend", "javascript"}, a.Tags)
		require.Equal(t, pq.StringArray{"javascript", "exam"}, b.Tags)
		require.Equal(t, pq.StringArray{"exam"}, c.Tags)
	})

	t.Run("target as the only source", func(t *testing.T) {
		svc, _, _, admin := setup()
		_, err := svc.MergeTags(ctx, admin, tagDto.MergeTagsRequest{SourceTags: []string{"go"}, TargetTag: "go"})
		require.ErrorIs(t, err, ErrNoSourceTag)
	})

	t.Run("delete", func(t *testing.T) {
		svc, repo, _, admin := setup()
		a := repo.add("spam", "go")
		repo.add("go")

		resp, err := svc.DeleteTag(ctx, admin, "spam")
		require.NoError(t, err)
		require.Equal(t, 1, resp.UpdatedPosts)
		require.Equal(t, pq.StringArray{"go"}, a.Tags)

		tags, err := svc.ListTags(ctx, admin)
		require.NoError(t, err)
		require.Equal(t, []tagDto.TagCount{{Tag: "go", Count: 2}}, tags)
	})
}
