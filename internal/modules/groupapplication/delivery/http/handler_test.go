package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	groupAppDto "anoa.com/campusforum/internal/modules/groupapplication/dto"
	groupapplication "anoa.com/campusforum/internal/modules/groupapplication/service"
	"anoa.com/campusforum/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	groupapplication.GroupApplicationService
	got   *groupAppDto.ApplyRequest
	email string
	err   error
}

func (s *stubService) Apply(_ context.Context, userID uuid.UUID, email string, groupID uuid.UUID, req groupAppDto.ApplyRequest) (*groupAppDto.ApplicationResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.got = &req
	s.email = email
	return &groupAppDto.ApplicationResponse{ID: uuid.New(), GroupID: groupID, Status: "pending", Applicant: groupAppDto.UserSummary{ID: userID}}, nil
}

func newRouter(svc groupapplication.GroupApplicationService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(response.KeyUserID, userID.String())
		c.Set(response.KeyEmail, "student@kampus.ac.id")
		c.Next()
	})
	h := NewGroupApplicationHandler(svc)
	r.POST("/line-groups/:id/apply", h.Apply)
	return r
}

func TestApplyHandler(t *testing.T) {
	userID := uuid.New()
	groupID := uuid.New()

	t.Run("empty body applies without a message", func(t *testing.T) {
		svc := &stubService{}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/line-groups/"+groupID.String()+"/apply", nil)
		newRouter(svc, userID).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, svc.got)
		require.Nil(t, svc.got.Message)
		require.Equal(t, "student@kampus.ac.id", svc.email)

		var body groupAppDto.ApplicationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, groupID, body.GroupID)
		require.Equal(t, userID, body.Applicant.ID)
	})

	t.Run("message is passed through", func(t *testing.T) {
		svc := &stubService{}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/line-groups/"+groupID.String()+"/apply", strings.NewReader(`{"message":"semester 3, informatics"}`))
		req.Header.Set("Content-Type", "application/json")
		newRouter(svc, userID).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		require.Equal(t, "semester 3, informatics", *svc.got.Message)
	})

	t.Run("bad group id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/line-groups/not-a-uuid/apply", nil)
		newRouter(&stubService{}, userID).ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service errors map to status codes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/line-groups/"+groupID.String()+"/apply", nil)
		newRouter(&stubService{err: groupapplication.ErrGroupNotFound}, userID).ServeHTTP(w, req)
		require.Equal(t, http.StatusNotFound, w.Code)

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/line-groups/"+groupID.String()+"/apply", nil)
		newRouter(&stubService{err: groupapplication.ErrAlreadyApplied}, userID).ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}
