package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/services"
	"github.com/iitp-cep/portal-service/internal/utils"
)

// AdminContentHandler serves the admin console's content management:
// courses, assessments, questions, bulk import and xlsx export.
type AdminContentHandler struct {
	BaseHandler
	courseService  services.CourseService
	contentService services.ContentService
	exportService  services.ExportService
}

func NewAdminContentHandler(courseService services.CourseService, contentService services.ContentService, exportService services.ExportService, logger utils.Logger) *AdminContentHandler {
	return &AdminContentHandler{
		BaseHandler:    NewBaseHandler(logger),
		courseService:  courseService,
		contentService: contentService,
		exportService:  exportService,
	}
}

// ===== COURSES =====

// CreateCourse handles POST /api/v1/admin/courses
func (h *AdminContentHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Course created", course)
}

// UpdateCourse handles PUT /api/v1/admin/courses/:id
func (h *AdminContentHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Course updated", course)
}

// DeleteCourse handles DELETE /api/v1/admin/courses/:id
func (h *AdminContentHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Course deleted", nil)
}

// ===== ASSESSMENTS =====

// ListAssessments handles GET /api/v1/admin/tests
func (h *AdminContentHandler) ListAssessments(c *gin.Context) {
	filters := repositories.AssessmentFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     parseIntQuery(c, "limit", 50),
		Offset:    parseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("kind"); raw != "" {
		kind, err := models.ParseKind(raw)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid kind filter", err)
			return
		}
		filters.Kind = &kind
	}
	if courseID, err := strconv.ParseUint(c.Query("course_id"), 10, 32); err == nil {
		id := uint(courseID)
		filters.CourseID = &id
	}
	if live := c.Query("is_live"); live != "" {
		isLive := live == "true"
		filters.IsLive = &isLive
	}

	list, err := h.contentService.ListAssessments(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetAssessment handles GET /api/v1/admin/tests/:kind/:id
func (h *AdminContentHandler) GetAssessment(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assessment, err := h.contentService.GetAssessment(c.Request.Context(), kind, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

// CreateAssessment handles POST /api/v1/admin/tests
func (h *AdminContentHandler) CreateAssessment(c *gin.Context) {
	var req services.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	assessment, err := h.contentService.CreateAssessment(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Assessment created", assessment)
}

// UpdateAssessment handles PUT /api/v1/admin/tests/:kind/:id
func (h *AdminContentHandler) UpdateAssessment(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	assessment, err := h.contentService.UpdateAssessment(c.Request.Context(), kind, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Assessment updated", assessment)
}

type setLiveBody struct {
	IsLive *bool `json:"is_live" binding:"required"`
}

// SetLive handles PUT /api/v1/admin/tests/:kind/:id/live
func (h *AdminContentHandler) SetLive(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var body setLiveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.contentService.SetLive(c.Request.Context(), kind, id, *body.IsLive); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Live flag updated", gin.H{"is_live": *body.IsLive})
}

// DeleteAssessment handles DELETE /api/v1/admin/tests/:kind/:id
func (h *AdminContentHandler) DeleteAssessment(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.contentService.DeleteAssessment(c.Request.Context(), kind, id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Assessment deleted", nil)
}

// ===== QUESTIONS =====

// ListQuestions handles GET /api/v1/admin/tests/:kind/:id/questions
func (h *AdminContentHandler) ListQuestions(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	questions, err := h.contentService.ListQuestions(c.Request.Context(), kind, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions, "total": len(questions)})
}

// CreateQuestion handles POST /api/v1/admin/tests/:kind/:id/questions
func (h *AdminContentHandler) CreateQuestion(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	question, err := h.contentService.CreateQuestion(c.Request.Context(), kind, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Question created", question)
}

// UpdateQuestion handles PUT /api/v1/admin/questions/:id
func (h *AdminContentHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	question, err := h.contentService.UpdateQuestion(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Question updated", question)
}

// DeleteQuestion handles DELETE /api/v1/admin/questions/:id
func (h *AdminContentHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.contentService.DeleteQuestion(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Question deleted", nil)
}

// BulkImport handles POST /api/v1/admin/tests/:kind/:id/questions/bulk
func (h *AdminContentHandler) BulkImport(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.contentService.BulkImport(c.Request.Context(), kind, id, req.Text, c.GetString(ctxUsername))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, fmt.Sprintf("Imported %d questions", result.Imported), result)
}

// ===== EXPORT =====

// ExportQuestions handles GET /api/v1/admin/tests/:kind/:id/export
func (h *AdminContentHandler) ExportQuestions(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	data, filename, err := h.exportService.ExportQuestions(c.Request.Context(), kind, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
