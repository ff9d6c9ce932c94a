package dto

import "github.com/google/uuid"

type VoteRequest struct {
	VoteType string `json:"vote_type" binding:"required,oneof=upvote downvote"`
}

type VoteResponse struct {
	TargetID      uuid.UUID `json:"target_id"`
	UserVote      *string   `json:"user_vote"`
	UpvoteCount   int       `json:"upvote_count"`
	DownvoteCount int       `json:"downvote_count"`
}
