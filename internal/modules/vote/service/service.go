package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/campusforum/internal/entity"
	pointsService "anoa.com/campusforum/internal/modules/points/service"
	voteDto "anoa.com/campusforum/internal/modules/vote/dto"
	voteRepo "anoa.com/campusforum/internal/modules/vote/repository"
	"anoa.com/campusforum/pkg/apperror"
	"github.com/google/uuid"
)

type Notifier interface {
	Notify(ctx context.Context, n *entity.Notification)
}

type VoteService interface {
	VotePost(ctx context.Context, userID, postID uuid.UUID, voteType string) (*voteDto.VoteResponse, error)
	VoteReply(ctx context.Context, userID, replyID uuid.UUID, voteType string) (*voteDto.VoteResponse, error)
}

type voteService struct {
	repo     voteRepo.VoteRepository
	ledger   pointsService.PointsLedger
	notifier Notifier
	timeout  time.Duration
}

func NewVoteService(repo voteRepo.VoteRepository, ledger pointsService.PointsLedger, notifier Notifier, timeout time.Duration) VoteService {
	return &voteService{
		repo:     repo,
		ledger:   ledger,
		notifier: notifier,
		timeout:  timeout,
	}
}

func (s *voteService) VotePost(ctx context.Context, userID, postID uuid.UUID, voteType string) (*voteDto.VoteResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	owner, err := s.repo.PostOwner(ctx, postID)
	if err != nil {
		return nil, mapNotFound(err, "post not found")
	}

	res, err := s.toggle(ctx, voteRepo.PostTarget, postID, userID, voteType)
	if err != nil {
		return nil, err
	}

	if isNewUpvote(res) && owner.AuthorID != userID {
		s.ledger.AwardPoints(ctx, owner.AuthorID, pointsService.PointsPostUpvoted, pointsService.ReasonPostUpvoted)
		s.notifyUpvote(ctx, owner, userID, postID, "post", fmt.Sprintf("Someone upvoted your post '%s'", owner.Title))
	}

	return toResponse(postID, res), nil
}

func (s *voteService) VoteReply(ctx context.Context, userID, replyID uuid.UUID, voteType string) (*voteDto.VoteResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	owner, err := s.repo.ReplyOwner(ctx, replyID)
	if err != nil {
		return nil, mapNotFound(err, "reply not found")
	}

	res, err := s.toggle(ctx, voteRepo.ReplyTarget, replyID, userID, voteType)
	if err != nil {
		return nil, err
	}

	if isNewUpvote(res) && owner.AuthorID != userID {
		s.ledger.AwardPoints(ctx, owner.AuthorID, pointsService.PointsReplyUpvoted, pointsService.ReasonReplyUpvoted)
		s.notifyUpvote(ctx, owner, userID, owner.PostID, "reply", fmt.Sprintf("Someone upvoted your reply in '%s'", owner.Title))
	}

	return toResponse(replyID, res), nil
}

func (s *voteService) toggle(ctx context.Context, target voteRepo.Target, targetID, userID uuid.UUID, voteType string) (*voteRepo.ToggleResult, error) {
	if voteType != entity.VoteUp && voteType != entity.VoteDown {
		return nil, apperror.BadRequest("vote_type must be upvote or downvote")
	}

	res, err := s.repo.Toggle(ctx, target, targetID, userID, voteType)
	if err != nil {
		return nil, mapNotFound(err, "vote target not found")
	}
	return res, nil
}

func (s *voteService) notifyUpvote(ctx context.Context, owner *voteRepo.Owner, actor, entityID uuid.UUID, entityType, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, &entity.Notification{
		UserID:     owner.AuthorID,
		ActorID:    &actor,
		EntityID:   &entityID,
		EntityType: entityType,
		Type:       entity.NotificationPostUpvoted,
		Message:    message,
	})
}

// isNewUpvote is true only when no vote existed before. Switching a
// downvote to an upvote does not earn points.
func isNewUpvote(res *voteRepo.ToggleResult) bool {
	return res.Old == "" && res.New == entity.VoteUp
}

func toResponse(id uuid.UUID, res *voteRepo.ToggleResult) *voteDto.VoteResponse {
	out := &voteDto.VoteResponse{
		TargetID:      id,
		UpvoteCount:   res.Upvotes,
		DownvoteCount: res.Downvotes,
	}
	if res.New != "" {
		v := res.New
		out.UserVote = &v
	}
	return out
}

func mapNotFound(err error, message string) error {
	if errors.Is(err, voteRepo.ErrTargetNotFound) {
		return apperror.NotFound(message)
	}
	return err
}
