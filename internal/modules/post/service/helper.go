package post

import (
	"anoa.com/campusforum/internal/entity"
	postDto "anoa.com/campusforum/internal/modules/post/dto"
	"github.com/google/uuid"
)

func mapAuthor(p *entity.Profile, id uuid.UUID) postDto.AuthorResponse {
	author := postDto.AuthorResponse{ID: id, Username: "Unknown", Level: 1}
	if p != nil {
		author.Username = p.Username
		author.AvatarURL = p.AvatarURL
		author.Level = p.Level
	}
	return author
}

func mapPost(post *entity.Post) *postDto.PostResponse {
	tags := []string(post.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &postDto.PostResponse{
		ID:            post.ID,
		Title:         post.Title,
		Summary:       post.Summary,
		Category:      post.Category,
		CoverImageURL: post.CoverImageURL,
		Tags:          tags,
		Author:        mapAuthor(post.Author, post.AuthorID),
		ReplyCount:    post.ReplyCount,
		ViewCount:     post.ViewCount,
		UpvoteCount:   post.UpvoteCount,
		DownvoteCount: post.DownvoteCount,
		IsClosed:      post.IsClosed,
		IsPinned:      post.IsPinned,
		PinnedAt:      post.PinnedAt,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}

func mapReply(r *entity.Reply) *postDto.ReplyResponse {
	return &postDto.ReplyResponse{
		ID:            r.ID,
		PostID:        r.PostID,
		ParentReplyID: r.ParentReplyID,
		Content:       r.Content,
		Author:        mapAuthor(r.Author, r.AuthorID),
		UpvoteCount:   r.UpvoteCount,
		DownvoteCount: r.DownvoteCount,
		CreatedAt:     r.CreatedAt,
	}
}

// buildReplyTree nests replies under their parents. Orphans become roots.
func buildReplyTree(replies []entity.Reply, votes map[uuid.UUID]string) []*postDto.ReplyResponse {
	nodes := make(map[uuid.UUID]*postDto.ReplyResponse, len(replies))
	for i := range replies {
		node := mapReply(&replies[i])
		if v, ok := votes[node.ID]; ok && v != "" {
			vote := v
			node.UserVote = &vote
		}
		nodes[node.ID] = node
	}

	roots := []*postDto.ReplyResponse{}
	for i := range replies {
		node := nodes[replies[i].ID]
		if pid := replies[i].ParentReplyID; pid != nil {
			if parent, ok := nodes[*pid]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
