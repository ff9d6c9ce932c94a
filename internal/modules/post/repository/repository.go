package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/campusforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrReplyNotFound = errors.New("reply not found")
)

// ListFilter narrows ListPosts. Pins newer than PinnedAfter sort first.
type ListFilter struct {
	Tag         string
	Category    string
	Offset      int
	Limit       int
	PinnedAfter time.Time
}

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	List(ctx context.Context, filter ListFilter) ([]entity.Post, int64, error)
	AddViewCount(ctx context.Context, id uuid.UUID, n int) error
	// SetPinned pins the post unless it holds a pin set after activeAfter,
	// and reports whether the row changed.
	SetPinned(ctx context.Context, id uuid.UUID, pinnedAt, activeAfter time.Time) (bool, error)
	SetClosed(ctx context.Context, id uuid.UUID, closed bool) error
	// UnpinBefore clears pins set before cutoff and returns how many changed.
	UnpinBefore(ctx context.Context, cutoff time.Time) (int64, error)

	CreateReply(ctx context.Context, reply *entity.Reply) error
	FindReplyByID(ctx context.Context, id uuid.UUID) (*entity.Reply, error)
	FindReplies(ctx context.Context, postID uuid.UUID) ([]entity.Reply, error)

	PostVoteOf(ctx context.Context, postID, userID uuid.UUID) (string, error)
	ReplyVotesOf(ctx context.Context, replyIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]string, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var post entity.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter ListFilter) ([]entity.Post, int64, error) {
	var posts []entity.Post
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Post{})
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Author").
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN is_pinned AND pinned_at > ? THEN 0 ELSE 1 END, pinned_at DESC NULLS LAST, created_at DESC",
			Vars:               []any{filter.PinnedAfter},
			WithoutParentheses: true,
		}}).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) AddViewCount(ctx context.Context, id uuid.UUID, n int) error {
	return r.db.WithContext(ctx).Model(&entity.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *postRepository) SetPinned(ctx context.Context, id uuid.UUID, pinnedAt, activeAfter time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Post{}).
		Where("id = ?", id).
		Where("is_pinned = ? OR pinned_at IS NULL OR pinned_at <= ?", false, activeAfter).
		Updates(map[string]any{"is_pinned": true, "pinned_at": pinnedAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) SetClosed(ctx context.Context, id uuid.UUID, closed bool) error {
	res := r.db.WithContext(ctx).Model(&entity.Post{}).
		Where("id = ?", id).
		Update("is_closed", closed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepository) UnpinBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Post{}).
		Where("is_pinned = ? AND (pinned_at IS NULL OR pinned_at <= ?)", true, cutoff).
		Updates(map[string]any{"is_pinned": false, "pinned_at": nil})
	return res.RowsAffected, res.Error
}

func (r *postRepository) CreateReply(ctx context.Context, reply *entity.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		res := tx.Model(&entity.Post{}).Where("id = ?", reply.PostID).
			UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

func (r *postRepository) FindReplyByID(ctx context.Context, id uuid.UUID) (*entity.Reply, error) {
	var reply entity.Reply
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reply).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReplyNotFound
		}
		return nil, err
	}
	return &reply, nil
}

func (r *postRepository) FindReplies(ctx context.Context, postID uuid.UUID) ([]entity.Reply, error) {
	var replies []entity.Reply
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&replies).Error
	return replies, err
}

func (r *postRepository) PostVoteOf(ctx context.Context, postID, userID uuid.UUID) (string, error) {
	var vote entity.PostVote
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Limit(1).
		Find(&vote).Error
	return vote.VoteType, err
}

func (r *postRepository) ReplyVotesOf(ctx context.Context, replyIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string)
	if len(replyIDs) == 0 {
		return out, nil
	}

	var votes []entity.ReplyVote
	if err := r.db.WithContext(ctx).
		Where("reply_id IN ? AND user_id = ?", replyIDs, userID).
		Find(&votes).Error; err != nil {
		return nil, err
	}
	for _, v := range votes {
		out[v.ReplyID] = v.VoteType
	}
	return out, nil
}
