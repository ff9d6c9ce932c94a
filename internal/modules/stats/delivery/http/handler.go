package handler

import (
	"net/http"

	stats "anoa.com/campusforum/internal/modules/stats/service"
	"anoa.com/campusforum/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	service stats.StatsService
}

func NewStatsHandler(service stats.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) Community(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Community(c.Request.Context()))
}

func (h *StatsHandler) TopUsers(c *gin.Context) {
	limit := response.QueryInt(c, "limit", stats.DefaultTopUsers, stats.MaxTopUsers)
	c.JSON(http.StatusOK, h.service.TopUsers(c.Request.Context(), limit))
}
