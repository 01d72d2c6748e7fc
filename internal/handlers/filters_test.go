package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/services"
	"github.com/iitp-cep/portal-service/internal/utils"
)

type stubCalendarService struct {
	lastFilters repositories.EventFilters
}

func (s *stubCalendarService) List(ctx context.Context, filters repositories.EventFilters) ([]*models.CalendarEvent, error) {
	s.lastFilters = filters
	return nil, nil
}

func (s *stubCalendarService) Create(ctx context.Context, req *services.CreateEventRequest) (*models.CalendarEvent, error) {
	return nil, nil
}

func (s *stubCalendarService) Update(ctx context.Context, id uint, req *services.CreateEventRequest) (*models.CalendarEvent, error) {
	return nil, nil
}

func (s *stubCalendarService) Delete(ctx context.Context, id uint) error { return nil }

type stubContentService struct {
	services.ContentService
	lastFilters repositories.AssessmentFilters
}

func (s *stubContentService) ListAssessments(ctx context.Context, filters repositories.AssessmentFilters) (*services.AssessmentListResponse, error) {
	s.lastFilters = filters
	return &services.AssessmentListResponse{}, nil
}

func TestListEventsTypeFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	calendar := &stubCalendarService{}
	h := NewDashboardHandler(nil, calendar, utils.NewDevelopmentLogger())

	router := gin.New()
	router.GET("/events", h.ListEvents)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events?type=notice", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, calendar.lastFilters.Type)
	assert.Equal(t, models.EventNotice, *calendar.lastFilters.Type)

	// No type query means no type filter.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, calendar.lastFilters.Type)
	assert.Equal(t, 50, calendar.lastFilters.Limit)
}

func TestListAssessmentsKindFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	content := &stubContentService{}
	h := NewAdminContentHandler(nil, content, nil, utils.NewDevelopmentLogger())

	router := gin.New()
	router.GET("/tests", h.ListAssessments)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tests?kind=quiz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, content.lastFilters.Kind)
	assert.Equal(t, models.KindQuiz, *content.lastFilters.Kind)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tests", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, content.lastFilters.Kind)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tests?kind=survey", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid kind filter")
}
