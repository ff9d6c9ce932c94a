package handler

import (
	"net/http"

	lineGroupDto "anoa.com/campusforum/internal/modules/linegroup/dto"
	linegroup "anoa.com/campusforum/internal/modules/linegroup/service"
	"anoa.com/campusforum/pkg/response"
	"anoa.com/campusforum/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LineGroupHandler struct {
	service linegroup.LineGroupService
}

func NewLineGroupHandler(service linegroup.LineGroupService) *LineGroupHandler {
	return &LineGroupHandler{service: service}
}

func (h *LineGroupHandler) CreateGroup(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req lineGroupDto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.CreateGroup(c.Request.Context(), userID, response.GetEmail(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *LineGroupHandler) ListGroups(c *gin.Context) {
	var filter lineGroupDto.GroupFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.ListGroups(c.Request.Context(), response.GetOptionalUserID(c), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *LineGroupHandler) GetGroup(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetGroup(c.Request.Context(), response.GetOptionalUserID(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *LineGroupHandler) UpdateGroup(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req lineGroupDto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.UpdateGroup(c.Request.Context(), userID, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *LineGroupHandler) DeleteGroup(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteGroup(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "line group deleted"})
}

func parseGroupID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line group id"})
		return uuid.Nil, false
	}
	return id, true
}
