package http

import (
	"net/http"

	accessDto "anoa.com/campusforum/internal/modules/access/dto"
	accessService "anoa.com/campusforum/internal/modules/access/service"
	"anoa.com/campusforum/pkg/response"
	"anoa.com/campusforum/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AdminAuthHandler struct {
	service accessService.AdminAuthService
}

func NewAdminAuthHandler(service accessService.AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{service: service}
}

func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req accessDto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
