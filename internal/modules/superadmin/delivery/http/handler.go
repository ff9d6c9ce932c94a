package handler

import (
	"net/http"

	superadminDto "anoa.com/campusforum/internal/modules/superadmin/dto"
	superadmin "anoa.com/campusforum/internal/modules/superadmin/service"
	"anoa.com/campusforum/pkg/response"
	"anoa.com/campusforum/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SuperadminHandler struct {
	service superadmin.SuperadminService
}

func NewSuperadminHandler(service superadmin.SuperadminService) *SuperadminHandler {
	return &SuperadminHandler{service: service}
}

func (h *SuperadminHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *SuperadminHandler) ListUsers(c *gin.Context) {
	var filter superadminDto.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SuperadminHandler) UpdateRole(c *gin.Context) {
	actorID, targetID, ok := ids(c)
	if !ok {
		return
	}

	var req superadminDto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.UpdateRole(c.Request.Context(), actorID, targetID, req.Role); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "role updated", "role": req.Role})
}

func (h *SuperadminHandler) DeleteUser(c *gin.Context) {
	actorID, targetID, ok := ids(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), actorID, targetID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}

func (h *SuperadminHandler) LedgerAudit(c *gin.Context) {
	drift, err := h.service.LedgerAudit(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": drift, "count": len(drift)})
}

func ids(c *gin.Context) (actor, target uuid.UUID, ok bool) {
	actor, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	target, err = uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return uuid.Nil, uuid.Nil, false
	}
	return actor, target, true
}
