package vote

import (
	"context"
	"testing"
	"time"

	"anoa.com/campusforum/internal/entity"
	pointsService "anoa.com/campusforum/internal/modules/points/service"
	voteRepo "anoa.com/campusforum/internal/modules/vote/repository"
	"anoa.com/campusforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type voteKey struct {
	table  string
	target uuid.UUID
	user   uuid.UUID
}

type memVotes struct {
	owners map[uuid.UUID]*voteRepo.Owner
	votes  map[voteKey]string
}

func newMemVotes() *memVotes {
	return &memVotes{owners: map[uuid.UUID]*voteRepo.Owner{}, votes: map[voteKey]string{}}
}

func (m *memVotes) PostOwner(_ context.Context, id uuid.UUID) (*voteRepo.Owner, error) {
	if o, ok := m.owners[id]; ok {
		return o, nil
	}
	return nil, voteRepo.ErrTargetNotFound
}

func (m *memVotes) ReplyOwner(ctx context.Context, id uuid.UUID) (*voteRepo.Owner, error) {
	return m.PostOwner(ctx, id)
}

func (m *memVotes) Toggle(_ context.Context, t voteRepo.Target, target, user uuid.UUID, voteType string) (*voteRepo.ToggleResult, error) {
	key := voteKey{t.VoteTable, target, user}
	res := &voteRepo.ToggleResult{}
	switch old, ok := m.votes[key]; {
	case !ok:
		m.votes[key] = voteType
		res.New = voteType
	case old == voteType:
		delete(m.votes, key)
		res.Old = old
	default:
		m.votes[key] = voteType
		res.Old, res.New = old, voteType
	}
	for k, v := range m.votes {
		if k.table != t.VoteTable || k.target != target {
			continue
		}
		if v == entity.VoteUp {
			res.Upvotes++
		} else {
			res.Downvotes++
		}
	}
	return res, nil
}

type fakeLedger struct {
	awards map[uuid.UUID]int
}

func (f *fakeLedger) AwardPoints(_ context.Context, id uuid.UUID, points int, _ string) bool {
	f.awards[id] += points
	return true
}

func (f *fakeLedger) DeductPoints(context.Context, uuid.UUID, int, string) bool { return false }

type fakeNotifier struct{ sent []*entity.Notification }

func (f *fakeNotifier) Notify(_ context.Context, n *entity.Notification) {
	f.sent = append(f.sent, n)
}

func setup() (*voteService, *memVotes, *fakeLedger, *fakeNotifier) {
	repo := newMemVotes()
	ledger := &fakeLedger{awards: map[uuid.UUID]int{}}
	notifier := &fakeNotifier{}
	svc := NewVoteService(repo, ledger, notifier, time.Second).(*voteService)
	return svc, repo, ledger, notifier
}

func TestVotePost(t *testing.T) {
	ctx := context.Background()
	author, voter := uuid.New(), uuid.New()
	postID := uuid.New()

	t.Run("toggle semantics", func(t *testing.T) {
		svc, repo, ledger, notifier := setup()
		repo.owners[postID] = &voteRepo.Owner{AuthorID: author, PostID: postID, Title: "Dorm wifi"}

		res, err := svc.VotePost(ctx, voter, postID, entity.VoteUp)
		require.NoError(t, err)
		require.Equal(t, 1, res.UpvoteCount)
		require.Equal(t, entity.VoteUp, *res.UserVote)
		require.Equal(t, pointsService.PointsPostUpvoted, ledger.awards[author])
		require.Len(t, notifier.sent, 1)

		res, err = svc.VotePost(ctx, voter, postID, entity.VoteDown)
		require.NoError(t, err)
		require.Equal(t, 0, res.UpvoteCount)
		require.Equal(t, 1, res.DownvoteCount)

		res, err = svc.VotePost(ctx, voter, postID, entity.VoteDown)
		require.NoError(t, err)
		require.Nil(t, res.UserVote)
		require.Equal(t, 0, res.DownvoteCount)

		// switching back to upvote via a fresh insert awards again
		_, err = svc.VotePost(ctx, voter, postID, entity.VoteUp)
		require.NoError(t, err)
		require.Equal(t, 2*pointsService.PointsPostUpvoted, ledger.awards[author])
	})

	t.Run("switching down to up does not award", func(t *testing.T) {
		svc, repo, ledger, _ := setup()
		repo.owners[postID] = &voteRepo.Owner{AuthorID: author, PostID: postID}

		_, err := svc.VotePost(ctx, voter, postID, entity.VoteDown)
		require.NoError(t, err)
		_, err = svc.VotePost(ctx, voter, postID, entity.VoteUp)
		require.NoError(t, err)
		require.Zero(t, ledger.awards[author])
	})

	t.Run("self upvote does not award", func(t *testing.T) {
		svc, repo, ledger, notifier := setup()
		repo.owners[postID] = &voteRepo.Owner{AuthorID: author, PostID: postID}

		_, err := svc.VotePost(ctx, author, postID, entity.VoteUp)
		require.NoError(t, err)
		require.Zero(t, ledger.awards[author])
		require.Empty(t, notifier.sent)
	})

	t.Run("unknown post", func(t *testing.T) {
		svc, _, _, _ := setup()
		_, err := svc.VotePost(ctx, voter, uuid.New(), entity.VoteUp)
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("bad vote type", func(t *testing.T) {
		svc, repo, _, _ := setup()
		repo.owners[postID] = &voteRepo.Owner{AuthorID: author, PostID: postID}
		_, err := svc.VotePost(ctx, voter, postID, "sideways")
		require.ErrorIs(t, err, apperror.ErrBadRequest)
	})
}

func TestVoteReply(t *testing.T) {
	ctx := context.Background()
	svc, repo, ledger, notifier := setup()
	author, voter := uuid.New(), uuid.New()
	replyID, postID := uuid.New(), uuid.New()
	repo.owners[replyID] = &voteRepo.Owner{AuthorID: author, PostID: postID, Title: "Exam tips"}

	res, err := svc.VoteReply(ctx, voter, replyID, entity.VoteUp)
	require.NoError(t, err)
	require.Equal(t, replyID, res.TargetID)
	require.Equal(t, pointsService.PointsReplyUpvoted, ledger.awards[author])
	require.Len(t, notifier.sent, 1)
	require.Equal(t, postID, *notifier.sent[0].EntityID)
}
