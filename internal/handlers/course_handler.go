package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iitp-cep/portal-service/internal/services"
	"github.com/iitp-cep/portal-service/internal/utils"
)

// CourseHandler serves the public course pages.
type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// List handles GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GetByCode handles GET /api/v1/courses/:code
func (h *CourseHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.RespondWithError(c, http.StatusNotFound, "Course not found", nil)
		return
	}

	course, err := h.courseService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}
