package http

import (
	"net/http"

	pointsService "anoa.com/campusforum/internal/modules/points/service"
	"anoa.com/campusforum/pkg/response"
	"github.com/gin-gonic/gin"
)

type PointsHandler struct {
	service pointsService.PointsService
}

func NewPointsHandler(service pointsService.PointsService) *PointsHandler {
	return &PointsHandler{service: service}
}

func (h *PointsHandler) GetProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.service.GetProfile(c.Request.Context(), userID, response.GetEmail(c)))
}

func (h *PointsHandler) GetRanking(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.service.GetRanking(c.Request.Context(), userID))
}

func (h *PointsHandler) GetHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit := response.QueryInt(c, "limit", pointsService.DefaultHistoryLimit, pointsService.MaxHistoryLimit)
	c.JSON(http.StatusOK, gin.H{"data": h.service.GetHistory(c.Request.Context(), userID, limit)})
}

func (h *PointsHandler) GetLeaderboard(c *gin.Context) {
	timeframe := c.DefaultQuery("timeframe", "all_time") // "all_time", "weekly"
	limit := response.QueryInt(c, "limit", 10, 50)

	c.JSON(http.StatusOK, gin.H{"data": h.service.GetLeaderboard(c.Request.Context(), limit, timeframe)})
}
