package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTargetNotFound = errors.New("vote target not found")

// Target describes a votable table and its vote table.
type Target struct {
	Table     string
	VoteTable string
	FKColumn  string
}

var (
	PostTarget  = Target{Table: "posts", VoteTable: "post_votes", FKColumn: "post_id"}
	ReplyTarget = Target{Table: "post_replies", VoteTable: "reply_votes", FKColumn: "reply_id"}
)

// ToggleResult is the vote state before and after a toggle. An empty string
// means no vote.
type ToggleResult struct {
	Old       string
	New       string
	Upvotes   int
	Downvotes int
}

// Owner is who wrote the voted content.
type Owner struct {
	AuthorID uuid.UUID
	PostID   uuid.UUID
	Title    string
}

type VoteRepository interface {
	PostOwner(ctx context.Context, postID uuid.UUID) (*Owner, error)
	ReplyOwner(ctx context.Context, replyID uuid.UUID) (*Owner, error)
	Toggle(ctx context.Context, target Target, targetID, userID uuid.UUID, voteType string) (*ToggleResult, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) PostOwner(ctx context.Context, postID uuid.UUID) (*Owner, error) {
	var rows []Owner
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("author_id, id AS post_id, title").
		Where("id = ?", postID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrTargetNotFound
	}
	return &rows[0], nil
}

func (r *voteRepository) ReplyOwner(ctx context.Context, replyID uuid.UUID) (*Owner, error) {
	var rows []Owner
	err := r.db.WithContext(ctx).
		Table("post_replies AS r").
		Select("r.author_id, r.post_id, p.title").
		Joins("JOIN posts p ON p.id = r.post_id").
		Where("r.id = ?", replyID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrTargetNotFound
	}
	return &rows[0], nil
}

func (r *voteRepository) Toggle(ctx context.Context, target Target, targetID, userID uuid.UUID, voteType string) (*ToggleResult, error) {
	res := &ToggleResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Find with a slice avoids gorm's record-not-found log noise.
		var existing []string
		if err := tx.Table(target.VoteTable).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(target.FKColumn+" = ? AND user_id = ?", targetID, userID).
			Limit(1).
			Pluck("vote_type", &existing).Error; err != nil {
			return err
		}

		switch {
		case len(existing) == 0:
			if err := tx.Table(target.VoteTable).Create(map[string]any{
				target.FKColumn: targetID,
				"user_id":       userID,
				"vote_type":     voteType,
				"created_at":    time.Now(),
			}).Error; err != nil {
				return err
			}
			res.New = voteType
		case existing[0] == voteType:
			if err := tx.Exec("DELETE FROM "+target.VoteTable+" WHERE "+target.FKColumn+" = ? AND user_id = ?", targetID, userID).Error; err != nil {
				return err
			}
			res.Old = voteType
		default:
			if err := tx.Table(target.VoteTable).
				Where(target.FKColumn+" = ? AND user_id = ?", targetID, userID).
				Update("vote_type", voteType).Error; err != nil {
				return err
			}
			res.Old, res.New = existing[0], voteType
		}

		var counts struct {
			Up   int
			Down int
		}
		if err := tx.Raw(
			"SELECT COUNT(*) FILTER (WHERE vote_type = 'upvote') AS up, COUNT(*) FILTER (WHERE vote_type = 'downvote') AS down FROM "+
				target.VoteTable+" WHERE "+target.FKColumn+" = ?", targetID,
		).Scan(&counts).Error; err != nil {
			return err
		}
		res.Upvotes, res.Downvotes = counts.Up, counts.Down

		upd := tx.Table(target.Table).Where("id = ?", targetID).Updates(map[string]any{
			"upvote_count":   counts.Up,
			"downvote_count": counts.Down,
		})
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrTargetNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
