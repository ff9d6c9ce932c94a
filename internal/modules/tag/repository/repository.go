package repository

import (
	"context"
	"fmt"

	"anoa.com/campusforum/internal/entity"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// dedupeTags rebuilds an array keeping the first occurrence of each tag.
const dedupeTags = "ARRAY(SELECT t FROM unnest(%s) WITH ORDINALITY AS u(t, ord) GROUP BY t ORDER BY MIN(ord))"

type TagCount struct {
	Tag   string
	Count int64
}

type TagRepository interface {
	// Hot counts tags over the most recent window posts.
	Hot(ctx context.Context, window, limit int) ([]TagCount, error)
	All(ctx context.Context) ([]TagCount, error)
	// The mutations return the posts they rewrote.
	Rename(ctx context.Context, oldTag, newTag string) ([]entity.Post, error)
	Remove(ctx context.Context, tag string) ([]entity.Post, error)
	Merge(ctx context.Context, sources []string, target string) ([]entity.Post, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Hot(ctx context.Context, window, limit int) ([]TagCount, error) {
	var rows []TagCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT tag, COUNT(*) AS count
		FROM (
			SELECT unnest(tags) AS tag
			FROM (SELECT tags FROM posts ORDER BY created_at DESC LIMIT ?) recent
		) t
		GROUP BY tag
		ORDER BY count DESC, tag ASC
		LIMIT ?`, window, limit).Scan(&rows).Error
	return rows, err
}

func (r *tagRepository) All(ctx context.Context) ([]TagCount, error) {
	var rows []TagCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT tag, COUNT(*) AS count
		FROM posts, unnest(tags) AS tag
		GROUP BY tag
		ORDER BY count DESC, tag ASC`).Scan(&rows).Error
	return rows, err
}

func (r *tagRepository) Rename(ctx context.Context, oldTag, newTag string) ([]entity.Post, error) {
	var posts []entity.Post
	err := r.db.WithContext(ctx).Raw(`
		UPDATE posts
		SET tags = `+fmt.Sprintf(dedupeTags, "array_replace(tags, ?, ?)")+`, updated_at = NOW()
		WHERE ? = ANY(tags)
		RETURNING *`, oldTag, newTag, oldTag).Scan(&posts).Error
	return posts, err
}

func (r *tagRepository) Remove(ctx context.Context, tag string) ([]entity.Post, error) {
	var posts []entity.Post
	err := r.db.WithContext(ctx).Raw(`
		UPDATE posts
		SET tags = array_remove(tags, ?), updated_at = NOW()
		WHERE ? = ANY(tags)
		RETURNING *`, tag, tag).Scan(&posts).Error
	return posts, err
}

func (r *tagRepository) Merge(ctx context.Context, sources []string, target string) ([]entity.Post, error) {
	var posts []entity.Post
	err := r.db.WithContext(ctx).Raw(`
		UPDATE posts
		SET tags = `+fmt.Sprintf(dedupeTags, "array_append(ARRAY(SELECT x FROM unnest(tags) AS x WHERE x <> ALL(?::text[])), ?)")+`, updated_at = NOW()
		WHERE tags && ?::text[]
		RETURNING *`, pq.Array(sources), target, pq.Array(sources)).Scan(&posts).Error
	return posts, err
}
