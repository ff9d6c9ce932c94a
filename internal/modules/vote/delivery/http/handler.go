package handler

import (
	"context"
	"net/http"

	voteDto "anoa.com/campusforum/internal/modules/vote/dto"
	vote "anoa.com/campusforum/internal/modules/vote/service"
	"anoa.com/campusforum/pkg/response"
	"anoa.com/campusforum/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VoteHandler struct {
	service vote.VoteService
}

func NewVoteHandler(service vote.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

func (h *VoteHandler) VotePost(c *gin.Context) {
	h.handle(c, "post_id", h.service.VotePost)
}

func (h *VoteHandler) VoteReply(c *gin.Context) {
	h.handle(c, "reply_id", h.service.VoteReply)
}

func (h *VoteHandler) handle(c *gin.Context, param string, fn func(ctx context.Context, userID, targetID uuid.UUID, voteType string) (*voteDto.VoteResponse, error)) {
	targetID, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req voteDto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := fn(c.Request.Context(), userID, targetID, req.VoteType)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
