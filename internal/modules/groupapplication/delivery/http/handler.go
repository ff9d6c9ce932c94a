package handler

import (
	"net/http"

	groupAppDto "anoa.com/campusforum/internal/modules/groupapplication/dto"
	groupapplication "anoa.com/campusforum/internal/modules/groupapplication/service"
	"anoa.com/campusforum/pkg/response"
	"anoa.com/campusforum/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GroupApplicationHandler struct {
	service groupapplication.GroupApplicationService
}

func NewGroupApplicationHandler(service groupapplication.GroupApplicationService) *GroupApplicationHandler {
	return &GroupApplicationHandler{service: service}
}

func (h *GroupApplicationHandler) Apply(c *gin.Context) {
	groupID, ok := parseID(c, "id", "invalid line group id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req groupAppDto.ApplyRequest
	// the message is optional, so an empty body is fine
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
			return
		}
	}

	resp, err := h.service.Apply(c.Request.Context(), userID, response.GetEmail(c), groupID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *GroupApplicationHandler) ListGroupApplications(c *gin.Context) {
	groupID, ok := parseID(c, "id", "invalid line group id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	resp, err := h.service.ListGroupApplications(c.Request.Context(), userID, groupID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GroupApplicationHandler) ReviewApplication(c *gin.Context) {
	appID, ok := parseID(c, "application_id", "invalid application id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req groupAppDto.ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.ReviewApplication(c.Request.Context(), userID, appID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GroupApplicationHandler) MyApplications(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	resp, err := h.service.MyApplications(c.Request.Context(), userID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GroupApplicationHandler) ManagedApplications(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	resp, err := h.service.ManagedApplications(c.Request.Context(), userID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GroupApplicationHandler) RequestGroup(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req groupAppDto.CreationRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.RequestGroup(c.Request.Context(), userID, response.GetEmail(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *GroupApplicationHandler) ListRequests(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	resp, err := h.service.ListRequests(c.Request.Context(), userID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GroupApplicationHandler) ReviewRequest(c *gin.Context) {
	requestID, ok := parseID(c, "request_id", "invalid creation request id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req groupAppDto.ReviewCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.ReviewRequest(c.Request.Context(), userID, requestID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func bindFilter(c *gin.Context) (groupAppDto.ApplicationFilter, bool) {
	var filter groupAppDto.ApplicationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return filter, false
	}
	return filter, true
}

func parseID(c *gin.Context, param, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return uuid.Nil, false
	}
	return id, true
}
