package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"anoa.com/campusforum/internal/entity"
	"anoa.com/campusforum/pkg/sanitize"
	"github.com/meilisearch/meilisearch-go"
)

const postsIndex = "posts"

// SimilarPost is a search hit for the "similar posts" lookup.
type SimilarPost struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ReplyCount int    `json:"reply_count"`
}

type MeiliSearchService interface {
	IndexPost(ctx context.Context, post *entity.Post) error
	DeletePost(ctx context.Context, id string) error
	SimilarPosts(ctx context.Context, title string, limit int) ([]SimilarPost, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
	log    *slog.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *slog.Logger) MeiliSearchService {
	s := &meiliSearchService{
		client: client,
		log:    log,
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"category", "tags", "is_closed"}
	if _, err := s.client.Index(postsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.Warn("failed to update posts filterable attributes", "error", err)
	}

	sortable := []string{"created_at", "reply_count"}
	if _, err := s.client.Index(postsIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warn("failed to update posts sortable attributes", "error", err)
	}

	searchable := []string{"title", "summary", "tags"}
	if _, err := s.client.Index(postsIndex).UpdateSearchableAttributes(&searchable); err != nil {
		s.log.Warn("failed to update posts searchable attributes", "error", err)
	}

	s.log.Info("meilisearch indexes initialized")
}

type meiliPostDoc struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	AuthorID   string   `json:"author_id"`
	ReplyCount int      `json:"reply_count"`
	IsClosed   bool     `json:"is_closed"`
	CreatedAt  int64    `json:"created_at"`
}

func postDoc(p *entity.Post) meiliPostDoc {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return meiliPostDoc{
		ID:         p.ID.String(),
		Title:      sanitize.Text(p.Title),
		Summary:    sanitize.Text(deref(p.Summary)),
		Category:   deref(p.Category),
		Tags:       tags,
		AuthorID:   p.AuthorID.String(),
		ReplyCount: p.ReplyCount,
		IsClosed:   p.IsClosed,
		CreatedAt:  p.CreatedAt.Unix(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}

func (s *meiliSearchService) IndexPost(ctx context.Context, post *entity.Post) error {
	task, err := s.client.Index(postsIndex).AddDocumentsWithContext(ctx, []meiliPostDoc{postDoc(post)}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index post %s: %w", post.ID, err)
	}
	s.log.Debug("indexed post", "post_id", post.ID, "task_uid", task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeletePost(ctx context.Context, id string) error {
	_, err := s.client.Index(postsIndex).DeleteDocumentWithContext(ctx, id)
	return err
}

func (s *meiliSearchService) SimilarPosts(ctx context.Context, title string, limit int) ([]SimilarPost, error) {
	query := sanitize.Text(title)
	if query == "" {
		return []SimilarPost{}, nil
	}

	raw, err := s.client.Index(postsIndex).SearchRawWithContext(ctx, query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id", "title", "reply_count"},
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Hits []SimilarPost `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if resp.Hits == nil {
		resp.Hits = []SimilarPost{}
	}
	return resp.Hits, nil
}
