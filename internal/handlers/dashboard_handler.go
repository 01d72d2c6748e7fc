package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/services"
	"github.com/iitp-cep/portal-service/internal/utils"
)

// DashboardHandler serves the landing page aggregate and the public
// event listing.
type DashboardHandler struct {
	BaseHandler
	aggregatorService services.AggregatorService
	calendarService   services.CalendarService
}

func NewDashboardHandler(aggregatorService services.AggregatorService, calendarService services.CalendarService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:       NewBaseHandler(logger),
		aggregatorService: aggregatorService,
		calendarService:   calendarService,
	}
}

// Dashboard handles GET /api/v1/dashboard?year=&month=
//
// Without query params the calendar shows the current month.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	now := time.Now()

	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))

	dashboard, err := h.aggregatorService.Dashboard(c.Request.Context(), year, time.Month(month), now)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ListEvents handles GET /api/v1/events
func (h *DashboardHandler) ListEvents(c *gin.Context) {
	filters := repositories.EventFilters{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("type"); raw != "" {
		eventType := models.EventType(strings.ToUpper(raw))
		filters.Type = &eventType
	}
	if courseID, err := strconv.ParseUint(c.Query("course_id"), 10, 32); err == nil {
		id := uint(courseID)
		filters.CourseID = &id
	}

	events, err := h.calendarService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
