package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/services"
	"github.com/iitp-cep/portal-service/internal/utils"
)

// AdminPortalHandler serves the rest of the admin console: user
// management, system configuration, calendar events and portal stats.
type AdminPortalHandler struct {
	BaseHandler
	userService     services.UserAdminService
	configService   services.ConfigService
	calendarService services.CalendarService
	statsService    services.StatsService
}

func NewAdminPortalHandler(userService services.UserAdminService, configService services.ConfigService, calendarService services.CalendarService, statsService services.StatsService, logger utils.Logger) *AdminPortalHandler {
	return &AdminPortalHandler{
		BaseHandler:     NewBaseHandler(logger),
		userService:     userService,
		configService:   configService,
		calendarService: calendarService,
		statsService:    statsService,
	}
}

// ===== USERS =====

// ListUsers handles GET /api/v1/admin/users
func (h *AdminPortalHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{
		Query:  c.Query("q"),
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if banned := c.Query("is_banned"); banned != "" {
		isBanned := banned == "true"
		filters.IsBanned = &isBanned
	}
	if online := c.Query("is_online"); online != "" {
		isOnline := online == "true"
		filters.IsOnline = &isOnline
	}

	list, err := h.userService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type setBannedBody struct {
	IsBanned *bool `json:"is_banned" binding:"required"`
}

// SetBanned handles PUT /api/v1/admin/users/:id/ban
func (h *AdminPortalHandler) SetBanned(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var body setBannedBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.userService.SetBanned(c.Request.Context(), id, *body.IsBanned); err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "User unbanned"
	if *body.IsBanned {
		message = "User banned"
	}
	h.RespondWithSuccess(c, http.StatusOK, message, nil)
}

// DeleteUser handles DELETE /api/v1/admin/users/:id
func (h *AdminPortalHandler) DeleteUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "User deleted", nil)
}

// ===== SYSTEM CONFIG =====

// GetConfig handles GET /api/v1/admin/config
func (h *AdminPortalHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateConfig handles PUT /api/v1/admin/config
func (h *AdminPortalHandler) UpdateConfig(c *gin.Context) {
	var req services.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg, err := h.configService.Update(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Configuration updated", cfg)
}

// ===== CALENDAR EVENTS =====

// ListEvents handles GET /api/v1/admin/events
func (h *AdminPortalHandler) ListEvents(c *gin.Context) {
	filters := repositories.EventFilters{
		Limit:  parseIntQuery(c, "limit", 100),
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

// CreateEvent handles POST /api/v1/admin/events
func (h *AdminPortalHandler) CreateEvent(c *gin.Context) {
	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	event, err := h.calendarService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Event created", event)
}

// UpdateEvent handles PUT /api/v1/admin/events/:id
func (h *AdminPortalHandler) UpdateEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	event, err := h.calendarService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Event updated", event)
}

// DeleteEvent handles DELETE /api/v1/admin/events/:id
func (h *AdminPortalHandler) DeleteEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.calendarService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Event deleted", nil)
}

// ===== STATS =====

// PortalStats handles GET /api/v1/admin/stats
func (h *AdminPortalHandler) PortalStats(c *gin.Context) {
	stats, err := h.statsService.PortalStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
